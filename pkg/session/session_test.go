package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	openErr  error
	writeErr error
	readErr  error
	closeErr error
	reply    []byte
	block    chan struct{}

	opens   int
	closes  int
	writes  [][]byte
	timeout time.Duration
	lock    sync.Mutex
}

func (f *fakeTransport) Open() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opens++
	return nil
}

func (f *fakeTransport) Write(frame []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), frame...))
	return nil
}

func (f *fakeTransport) Read(timeout time.Duration) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.timeout = timeout
	return f.reply, f.readErr
}

func (f *fakeTransport) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closes++
	return f.closeErr
}

func TestExchange(t *testing.T) {
	ft := &fakeTransport{reply: []byte{0, 0, 0, 1}}
	s := New(ft, 300*time.Millisecond)
	sentAt := time.Unix(1000, 0)
	s.Now = func() time.Time { return sentAt }

	reply, err := s.Exchange(context.Background(), []byte{'@', 'v'})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 1}, reply.Data)
	require.Equal(t, sentAt, reply.SentAt)
	require.Equal(t, [][]byte{{'@', 'v'}}, ft.writes)
	require.Equal(t, 300*time.Millisecond, ft.timeout)
	require.Equal(t, 1, ft.opens)
	require.Equal(t, 1, ft.closes)
	require.Equal(t, StateClosed, s.State())
}

func TestExchangeEmptyReply(t *testing.T) {
	ft := &fakeTransport{}
	s := New(ft, time.Millisecond)
	reply, err := s.Exchange(context.Background(), []byte{'@', 'r'})
	require.NoError(t, err)
	require.Empty(t, reply.Data)
	require.Equal(t, 1, ft.closes)
	require.Equal(t, StateClosed, s.State())
}

func TestExchangeOpenFailure(t *testing.T) {
	openErr := errors.New("device absent")
	ft := &fakeTransport{openErr: openErr}
	s := New(ft, time.Millisecond)
	reply, err := s.Exchange(context.Background(), []byte{'@', 'r'})
	require.Nil(t, reply)
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, "open", tErr.Op)
	require.True(t, errors.Is(err, openErr))
	require.Empty(t, ft.writes)
	require.Equal(t, 0, ft.closes)
	require.Equal(t, StateFailed, s.State())

	// the session stays usable.
	ft.openErr = nil
	_, err = s.Exchange(context.Background(), []byte{'@', 'r'})
	require.NoError(t, err)
}

func TestExchangeWriteFailureCloses(t *testing.T) {
	ft := &fakeTransport{writeErr: errors.New("broken pipe")}
	s := New(ft, time.Millisecond)
	_, err := s.Exchange(context.Background(), []byte{'@', 'v'})
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, "write", tErr.Op)
	require.Equal(t, 1, ft.closes)
	require.Equal(t, StateClosed, s.State())
}

func TestExchangeReadFailure(t *testing.T) {
	readErr := errors.New("EOF")
	ft := &fakeTransport{readErr: readErr}
	s := New(ft, time.Millisecond)
	_, err := s.Exchange(context.Background(), []byte{'@', 'v'})
	require.True(t, errors.Is(err, readErr))
	require.Equal(t, 1, ft.closes)

	// data received before the error is still a reply.
	ft.reply = []byte("RESET")
	reply, err := s.Exchange(context.Background(), []byte{'@', 'r'})
	require.NoError(t, err)
	require.Equal(t, []byte("RESET"), reply.Data)
	require.Equal(t, 2, ft.closes)
}

func TestExchangeCloseFailureIgnored(t *testing.T) {
	ft := &fakeTransport{reply: []byte{1}, closeErr: errors.New("close")}
	s := New(ft, time.Millisecond)
	reply, err := s.Exchange(context.Background(), []byte{'@', 'v'})
	require.NoError(t, err)
	require.Equal(t, []byte{1}, reply.Data)
}

func TestExchangeCanceled(t *testing.T) {
	ft := &fakeTransport{}
	s := New(ft, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Exchange(ctx, []byte{'@', 'v'})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 0, ft.opens)
}

func TestExchangeBusy(t *testing.T) {
	ft := &fakeTransport{reply: []byte{1}, block: make(chan struct{})}
	s := New(ft, time.Millisecond)
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Exchange(context.Background(), []byte{'@', 'v'})
		errCh <- err
	}()
	require.Eventually(t, func() bool {
		return s.State() == StateAwaitingReply
	}, time.Second, time.Millisecond)

	_, err := s.Exchange(context.Background(), []byte{'@', 'r'})
	require.Equal(t, ErrBusy, err)
	require.Equal(t, ErrBusy, s.Attach(&fakeTransport{}))
	require.Equal(t, ErrAlreadyOpen, s.Open())

	close(ft.block)
	require.NoError(t, <-errCh)
	require.Len(t, ft.writes, 1)
}

func TestNotAttached(t *testing.T) {
	s := New(nil, 0)
	require.Equal(t, DefaultWait, s.Wait())
	_, err := s.Exchange(context.Background(), []byte{'@', 'v'})
	require.Equal(t, ErrNotAttached, err)
	require.NoError(t, s.Close())

	ft := &fakeTransport{reply: []byte{1}}
	require.NoError(t, s.Attach(ft))
	require.Equal(t, Transport(ft), s.Transport())
	_, err = s.Exchange(context.Background(), []byte{'@', 'v'})
	require.NoError(t, err)
}

func TestCloseIdempotent(t *testing.T) {
	ft := &fakeTransport{openErr: errors.New("busy")}
	s := New(ft, time.Millisecond)

	require.NoError(t, s.Close())
	require.Error(t, s.Open())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 0, ft.closes)

	ft.openErr = nil
	require.NoError(t, s.Open())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, ft.closes)
}

func TestManualExchangeRequiresOpen(t *testing.T) {
	s := New(&fakeTransport{}, time.Millisecond)
	require.Equal(t, ErrNotOpen, s.Write([]byte{1}))
	_, err := s.Read()
	require.Equal(t, ErrNotOpen, err)
}
