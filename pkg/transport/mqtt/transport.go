// Package mqtt provides a transport to devices bridged over MQTT.
//
// A bridge forwards payloads published on <prefix>cmd to the device and
// publishes device output on <prefix>msg.
package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topics relative to the topic prefix.
const (
	CommandTopic = "cmd"
	ReplyTopic   = "msg"
)

// DefaultConnectTimeout bounds broker connect and subscribe.
const DefaultConnectTimeout = 5 * time.Second

// Transport implements session.Transport over MQTT.
type Transport struct {
	ConnectTimeout time.Duration
	QuietTime      time.Duration
	// NewClient creates the client on each Open, paho.NewClient if nil.
	NewClient ClientFactory

	options     *paho.ClientOptions
	topicPrefix string

	queue    *Queue
	packetCh chan []byte
	lock     sync.Mutex
}

// NewTransport creates the Transport from a broker URL.
// defaultClientID is used when the URL doesn't specify one.
func NewTransport(brokerURL, defaultClientID string) (*Transport, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(defaultClientID)
	}
	return &Transport{
		ConnectTimeout: DefaultConnectTimeout,
		QuietTime:      50 * time.Millisecond,
		options:        opts,
		topicPrefix:    prefix,
	}, nil
}

// TopicPrefix returns the topic prefix of the bridge.
func (t *Transport) TopicPrefix() string {
	return t.topicPrefix
}

func waitToken(token paho.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errors.New("timeout")
	}
	return token.Error()
}

// Open implements session.Transport.
func (t *Transport) Open() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.queue != nil {
		return errors.New("already connected")
	}
	q := NewQueue(t.options, t.topicPrefix, t.NewClient)
	if err := waitToken(q.Connect(), t.ConnectTimeout); err != nil {
		q.Close()
		return fmt.Errorf("connect: %v", err)
	}
	packetCh := make(chan []byte, 16)
	handler := func(_ string, payload []byte) {
		select {
		case packetCh <- payload:
		default:
		}
	}
	if err := waitToken(q.Sub(ReplyTopic, handler), t.ConnectTimeout); err != nil {
		q.Close()
		return fmt.Errorf("subscribe: %v", err)
	}
	t.queue, t.packetCh = q, packetCh
	return nil
}

func (t *Transport) current() (*Queue, chan []byte) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.queue, t.packetCh
}

// Write implements session.Transport.
func (t *Transport) Write(frame []byte) error {
	q, _ := t.current()
	if q == nil {
		return errors.New("not connected")
	}
	return waitToken(q.Pub(CommandTopic, frame), t.ConnectTimeout)
}

// Read implements session.Transport.
func (t *Transport) Read(timeout time.Duration) ([]byte, error) {
	q, packetCh := t.current()
	if q == nil {
		return nil, errors.New("not connected")
	}
	window := time.NewTimer(timeout)
	defer window.Stop()
	var quiet <-chan time.Time
	var data []byte
	for {
		select {
		case pkt := <-packetCh:
			data = append(data, pkt...)
			if t.QuietTime > 0 {
				quiet = time.After(t.QuietTime)
			}
		case <-quiet:
			return data, nil
		case <-window.C:
			return data, nil
		}
	}
}

// Close implements session.Transport.
func (t *Transport) Close() error {
	t.lock.Lock()
	q := t.queue
	t.queue, t.packetCh = nil, nil
	t.lock.Unlock()
	if q == nil {
		return nil
	}
	q.Unsub(ReplyTopic).WaitTimeout(t.ConnectTimeout)
	return q.Close()
}
