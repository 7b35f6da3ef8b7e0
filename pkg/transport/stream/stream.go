// Package stream adapts byte streams to session.Transport.
package stream

import (
	"errors"
	"io"
	"sync"
	"time"
)

// ErrClosed indicates the stream is not open.
var ErrClosed = errors.New("stream closed")

// DialFunc opens the underlying stream.
type DialFunc func() (io.ReadWriteCloser, error)

// DefaultQuietTime ends a read once the peer went silent for this long
// after sending data.
const DefaultQuietTime = 50 * time.Millisecond

// Transport implements session.Transport over an io.ReadWriteCloser.
// A background reader collects bytes while the stream is open.
type Transport struct {
	Dial DialFunc
	// QuietTime is the silence after received data which completes
	// a read. Zero waits for the whole window.
	QuietTime time.Duration
	// BufferSize is the size of each read from the stream.
	BufferSize int

	rwc    io.ReadWriteCloser
	dataCh chan []byte
	errCh  chan error
	doneCh chan struct{}
	lock   sync.Mutex
}

// New creates a Transport.
func New(dial DialFunc) *Transport {
	return &Transport{
		Dial:       dial,
		QuietTime:  DefaultQuietTime,
		BufferSize: 256,
	}
}

// Open implements session.Transport.
func (t *Transport) Open() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.rwc != nil {
		return errors.New("stream already open")
	}
	rwc, err := t.Dial()
	if err != nil {
		return err
	}
	t.rwc = rwc
	t.dataCh = make(chan []byte)
	t.errCh = make(chan error, 1)
	t.doneCh = make(chan struct{})
	go t.readLoop(rwc, t.dataCh, t.errCh, t.doneCh)
	return nil
}

func (t *Transport) readLoop(r io.Reader, dataCh chan []byte, errCh chan error, doneCh chan struct{}) {
	size := t.BufferSize
	if size <= 0 {
		size = 256
	}
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case dataCh <- append([]byte(nil), buf[:n]...):
			case <-doneCh:
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (t *Transport) channels() (io.ReadWriteCloser, chan []byte, chan error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rwc, t.dataCh, t.errCh
}

// Write implements session.Transport.
func (t *Transport) Write(frame []byte) error {
	rwc, _, _ := t.channels()
	if rwc == nil {
		return ErrClosed
	}
	_, err := rwc.Write(frame)
	return err
}

// Read implements session.Transport.
func (t *Transport) Read(timeout time.Duration) ([]byte, error) {
	rwc, dataCh, errCh := t.channels()
	if rwc == nil {
		return nil, ErrClosed
	}
	window := time.NewTimer(timeout)
	defer window.Stop()
	var quiet <-chan time.Time
	var data []byte
	for {
		select {
		case b := <-dataCh:
			data = append(data, b...)
			if t.QuietTime > 0 {
				quiet = time.After(t.QuietTime)
			}
		case <-quiet:
			return data, nil
		case <-window.C:
			return data, nil
		case err := <-errCh:
			// keep the error for subsequent reads.
			errCh <- err
			return data, err
		}
	}
}

// Close implements session.Transport.
func (t *Transport) Close() error {
	t.lock.Lock()
	rwc, doneCh := t.rwc, t.doneCh
	t.rwc, t.doneCh = nil, nil
	t.lock.Unlock()
	if rwc == nil {
		return nil
	}
	close(doneCh)
	return rwc.Close()
}
