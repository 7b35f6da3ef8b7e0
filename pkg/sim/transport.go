package sim

import (
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/robotalks/synchrotime/pkg/protocol"
)

var (
	// ErrPortBusy indicates the simulated port is already open.
	ErrPortBusy = errors.New("port busy")
	// ErrAbsent indicates the simulated device is unplugged.
	ErrAbsent = errors.New("device absent")
)

// Transport connects to a Device in-process.
type Transport struct {
	Device *Device
	// Absent makes Open fail.
	Absent bool

	open    bool
	pending []byte
	writes  [][]byte
	lock    sync.Mutex
}

// NewTransport creates a Transport attached to dev.
func NewTransport(dev *Device) *Transport {
	return &Transport{Device: dev}
}

// TransportFromURL creates a simulated device and transport from
// sim://?drift=5s&silent=true&absent=false&protocol=2.
func TransportFromURL(target string) (*Transport, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	dev := NewDevice()
	if val := q.Get("drift"); val != "" {
		if dev.Offset, err = time.ParseDuration(val); err != nil {
			return nil, err
		}
	}
	if val := q.Get("silent"); val != "" {
		if dev.Silent, err = strconv.ParseBool(val); err != nil {
			return nil, err
		}
	}
	if val := q.Get("protocol"); val != "" {
		version, err := strconv.Atoi(val)
		if err != nil {
			return nil, err
		}
		if dev.Codec, err = protocol.NewCodec(version); err != nil {
			return nil, err
		}
	}
	t := NewTransport(dev)
	if val := q.Get("absent"); val != "" {
		if t.Absent, err = strconv.ParseBool(val); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Open implements session.Transport.
func (t *Transport) Open() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.Absent {
		return ErrAbsent
	}
	if t.open {
		return ErrPortBusy
	}
	t.open, t.pending = true, nil
	return nil
}

// Write implements session.Transport.
func (t *Transport) Write(frame []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.open {
		return errors.New("port closed")
	}
	t.writes = append(t.writes, append([]byte(nil), frame...))
	t.pending = append(t.pending, t.Device.HandleFrame(frame)...)
	return nil
}

// Read implements session.Transport. It returns immediately as replies
// are produced synchronously.
func (t *Transport) Read(timeout time.Duration) ([]byte, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.open {
		return nil, errors.New("port closed")
	}
	data := t.pending
	t.pending = nil
	return data, nil
}

// Close implements session.Transport.
func (t *Transport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.open, t.pending = false, nil
	return nil
}

// IsOpen indicates the port is open.
func (t *Transport) IsOpen() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.open
}

// Writes returns all frames written so far.
func (t *Transport) Writes() [][]byte {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([][]byte(nil), t.writes...)
}
