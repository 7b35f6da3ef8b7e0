package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientOptionsFromURL(t *testing.T) {
	testCases := []struct {
		url      string
		broker   string
		prefix   string
		clientID string
		username string
	}{
		{"mqtt://localhost:1883/rtc/dev1", "tcp://localhost:1883", "rtc/dev1/", "", ""},
		{"mqtts://u:p@broker:8883/rtc/", "ssl://broker:8883", "rtc/", "", "u"},
		{"mqtt://localhost:1883?client-id=host1", "tcp://localhost:1883", "", "host1", ""},
		{"ws://localhost:9001/bridge", "ws://localhost:9001", "bridge/", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			opts, prefix, err := ClientOptionsFromURL(tc.url)
			require.NoError(t, err)
			require.Equal(t, tc.prefix, prefix)
			require.Len(t, opts.Servers, 1)
			require.Equal(t, tc.broker, opts.Servers[0].String())
			require.Equal(t, tc.clientID, opts.ClientID)
			require.Equal(t, tc.username, opts.Username)
		})
	}
}

func TestNewTransportClientID(t *testing.T) {
	tr, err := NewTransport("mqtt://localhost:1883/rtc/", "synchrotime-abc")
	require.NoError(t, err)
	require.Equal(t, "synchrotime-abc", tr.options.ClientID)
	require.Equal(t, "rtc/", tr.TopicPrefix())

	tr, err = NewTransport("mqtt://localhost:1883/rtc/?client-id=x", "synchrotime-abc")
	require.NoError(t, err)
	require.Equal(t, "x", tr.options.ClientID)
}

func TestTransportNotConnected(t *testing.T) {
	tr, err := NewTransport("mqtt://localhost:1883/rtc/", "id")
	require.NoError(t, err)
	require.Error(t, tr.Write([]byte{1}))
	_, err = tr.Read(0)
	require.Error(t, err)
	require.NoError(t, tr.Close())
}
