package stream

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type streamTestEnv struct {
	t      *testing.T
	peer   net.Conn
	dials  int
	stream *Transport
}

func newStreamTestEnv(t *testing.T) *streamTestEnv {
	env := &streamTestEnv{t: t}
	env.stream = New(func() (io.ReadWriteCloser, error) {
		local, peer := net.Pipe()
		env.peer = peer
		env.dials++
		return local, nil
	})
	return env
}

func (e *streamTestEnv) expect(bs ...byte) {
	buf := make([]byte, len(bs))
	require.NoError(e.t, e.peer.SetReadDeadline(time.Now().Add(500*time.Millisecond)))
	_, err := io.ReadFull(e.peer, buf)
	require.NoError(e.t, err)
	require.Equal(e.t, bs, buf)
}

func (e *streamTestEnv) inject(bs ...byte) {
	go e.peer.Write(bs)
}

func TestReadReply(t *testing.T) {
	env := newStreamTestEnv(t)
	require.NoError(t, env.stream.Open())
	defer env.stream.Close()

	go func() {
		require.NoError(t, env.stream.Write([]byte{'@', 'v'}))
	}()
	env.expect('@', 'v')
	env.inject(0, 0, 0, 1)

	start := time.Now()
	data, err := env.stream.Read(2 * time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 1}, data)
	require.True(t, time.Since(start) < time.Second, "read should end on quiet time")
}

func TestReadWindowExpires(t *testing.T) {
	env := newStreamTestEnv(t)
	require.NoError(t, env.stream.Open())
	defer env.stream.Close()

	start := time.Now()
	data, err := env.stream.Read(50 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, data)
	require.True(t, time.Since(start) >= 50*time.Millisecond)
}

func TestReadWholeWindow(t *testing.T) {
	env := newStreamTestEnv(t)
	env.stream.QuietTime = 0
	require.NoError(t, env.stream.Open())
	defer env.stream.Close()

	env.inject('R', 'E')
	time.Sleep(10 * time.Millisecond)
	env.inject('S', 'E', 'T')
	data, err := env.stream.Read(200 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte("RESET"), data)
}

func TestReadPeerClosed(t *testing.T) {
	env := newStreamTestEnv(t)
	require.NoError(t, env.stream.Open())
	defer env.stream.Close()

	require.NoError(t, env.peer.Close())
	data, err := env.stream.Read(time.Second)
	require.Empty(t, data)
	require.Equal(t, io.EOF, err)
	_, err = env.stream.Read(time.Second)
	require.Equal(t, io.EOF, err)
}

func TestOpenClose(t *testing.T) {
	env := newStreamTestEnv(t)
	require.NoError(t, env.stream.Close())
	require.Equal(t, ErrClosed, env.stream.Write([]byte{1}))
	_, err := env.stream.Read(time.Millisecond)
	require.Equal(t, ErrClosed, err)

	require.NoError(t, env.stream.Open())
	require.Error(t, env.stream.Open())
	require.NoError(t, env.stream.Close())
	require.NoError(t, env.stream.Close())

	require.NoError(t, env.stream.Open())
	require.Equal(t, 2, env.dials)
	require.NoError(t, env.stream.Close())
}

func TestDialError(t *testing.T) {
	dialErr := errors.New("no such device")
	s := New(func() (io.ReadWriteCloser, error) { return nil, dialErr })
	require.Equal(t, dialErr, s.Open())
	require.NoError(t, s.Close())
}
