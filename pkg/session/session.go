package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Transport is the channel to a device.
type Transport interface {
	// Open acquires exclusive access to the channel.
	Open() error
	// Write hands bytes to the channel, no delivery acknowledgment implied.
	Write(frame []byte) error
	// Read waits until data arrives or timeout elapses and returns
	// whatever has been received, possibly nothing.
	Read(timeout time.Duration) ([]byte, error)
	// Close releases the channel.
	Close() error
}

// State is the progress of an exchange.
type State int

// Exchange states.
const (
	StateIdle State = iota
	StateOpening
	StateOpen
	StateSent
	StateAwaitingReply
	StateReplied
	StateFailed
	StateClosed
)

var stateNames = []string{
	"idle", "opening", "open", "sent", "awaiting-reply", "replied", "failed", "closed",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// DefaultWait is the default wait window for replies.
const DefaultWait = 2 * time.Second

// Reply is the outcome of one exchange.
type Reply struct {
	Data []byte
	// SentAt is the host time when the request was handed to the transport.
	SentAt time.Time
}

// Session runs exchanges on one transport, one at a time.
type Session struct {
	// Now provides the host clock, time.Now if nil.
	Now func() time.Time

	wait      time.Duration
	transport Transport
	state     State
	open      bool
	busy      bool
	lock      sync.Mutex
}

// New creates a Session. wait is the fixed window for every reply.
func New(t Transport, wait time.Duration) *Session {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Session{transport: t, wait: wait}
}

// Wait returns the wait window.
func (s *Session) Wait() time.Duration {
	return s.wait
}

// Transport returns the attached transport, nil if none.
func (s *Session) Transport() Transport {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.transport
}

// Attach replaces the transport. It fails while the channel is open.
func (s *Session) Attach(t Transport) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.open || s.busy {
		return ErrBusy
	}
	s.transport, s.state = t, StateIdle
	return nil
}

// State returns the current exchange state.
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.lock.Lock()
	s.state = state
	s.lock.Unlock()
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Open opens the transport.
func (s *Session) Open() error {
	s.lock.Lock()
	t := s.transport
	switch {
	case t == nil:
		s.lock.Unlock()
		return ErrNotAttached
	case s.open:
		s.lock.Unlock()
		return ErrAlreadyOpen
	}
	s.state = StateOpening
	s.lock.Unlock()

	if err := t.Open(); err != nil {
		s.setState(StateFailed)
		return &TransportError{Op: "open", Err: err}
	}
	s.lock.Lock()
	s.open, s.state = true, StateOpen
	s.lock.Unlock()
	return nil
}

func (s *Session) openTransport() (Transport, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.open {
		return nil, ErrNotOpen
	}
	return s.transport, nil
}

// Write sends a frame on the open transport.
func (s *Session) Write(frame []byte) error {
	t, err := s.openTransport()
	if err != nil {
		return err
	}
	if err = t.Write(frame); err != nil {
		s.setState(StateFailed)
		return &TransportError{Op: "write", Err: err}
	}
	s.setState(StateSent)
	return nil
}

// Read waits for a reply within the wait window.
func (s *Session) Read() ([]byte, error) {
	t, err := s.openTransport()
	if err != nil {
		return nil, err
	}
	s.setState(StateAwaitingReply)
	data, err := t.Read(s.wait)
	switch {
	case len(data) > 0:
		if err != nil {
			glog.Warningf("read: %d bytes received before error: %v", len(data), err)
		}
		s.setState(StateReplied)
		return data, nil
	case err != nil:
		s.setState(StateFailed)
		return nil, &TransportError{Op: "read", Err: err}
	}
	s.setState(StateFailed)
	return nil, nil
}

// Close closes the transport. It's a no-op if not open.
func (s *Session) Close() error {
	s.lock.Lock()
	if !s.open {
		s.lock.Unlock()
		return nil
	}
	t := s.transport
	s.open, s.state = false, StateClosed
	s.lock.Unlock()
	if err := t.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// Exchange sends a frame and waits for the reply. The transport is
// opened for the exchange and always closed before returning. An empty
// reply is returned as a Reply with no Data.
func (s *Session) Exchange(ctx context.Context, frame []byte) (*Reply, error) {
	s.lock.Lock()
	if s.busy {
		s.lock.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		s.busy = false
		s.lock.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			glog.Warningf("exchange: %v", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Write(frame); err != nil {
		return nil, err
	}
	reply := &Reply{SentAt: s.now()}
	glog.V(2).Infof("sent % x", frame)

	data, err := s.Read()
	if err != nil {
		return nil, err
	}
	reply.Data = data
	glog.V(2).Infof("received %d bytes", len(data))
	return reply, nil
}
