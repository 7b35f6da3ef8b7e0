// Package websocket provides a transport to devices bridged over a
// WebSocket, each binary message carrying raw serial bytes.
package websocket

import (
	"io"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/synchrotime/pkg/transport/stream"
)

// DefaultOrigin is sent when the target doesn't specify one.
const DefaultOrigin = "http://localhost/"

// Config describes a bridge endpoint.
type Config struct {
	URL    string
	Origin string
}

// ConfigFromURL creates a Config for ws:// or wss:// targets.
// The origin query parameter overrides DefaultOrigin and is not
// forwarded to the bridge.
func ConfigFromURL(target string) (*Config, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	conf := &Config{Origin: DefaultOrigin}
	q := u.Query()
	if origin := q.Get("origin"); origin != "" {
		conf.Origin = origin
		q.Del("origin")
		u.RawQuery = q.Encode()
	}
	conf.URL = u.String()
	return conf, nil
}

// Dial connects to the bridge.
func (c *Config) Dial() (io.ReadWriteCloser, error) {
	conn, err := websocket.Dial(c.URL, "", c.Origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// NewTransport creates a stream transport dialing the bridge on each exchange.
func (c *Config) NewTransport() *stream.Transport {
	return stream.New(c.Dial)
}
