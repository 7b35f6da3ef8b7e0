// Package env builds sessions and controllers from flags and environment.
package env

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/synchrotime/pkg/controller"
	"github.com/robotalks/synchrotime/pkg/protocol"
	"github.com/robotalks/synchrotime/pkg/session"
	"github.com/robotalks/synchrotime/pkg/sim"
	"github.com/robotalks/synchrotime/pkg/transport/mqtt"
	"github.com/robotalks/synchrotime/pkg/transport/serial"
	"github.com/robotalks/synchrotime/pkg/transport/stream"
	"github.com/robotalks/synchrotime/pkg/transport/websocket"
)

// Config provides common options to reach a device.
type Config struct {
	// Target specifies the device, e.g.
	// /dev/ttyUSB0, serial:///dev/ttyUSB0?baud=9600,
	// mqtt://host:port/topic-prefix, ws://host:port/path, sim://?drift=5s.
	Target string
	// Wait is the window for each reply.
	Wait time.Duration
	// QuietTime ends a stream reply early after the last byte.
	QuietTime time.Duration
	// ProtocolVersion selects the wire layout.
	ProtocolVersion int
}

var defaultConfig = Config{
	Target:          "/dev/ttyUSB0",
	Wait:            session.DefaultWait,
	QuietTime:       stream.DefaultQuietTime,
	ProtocolVersion: protocol.DefaultVersion,
}

func init() {
	if val := os.Getenv("SYNCHROTIME_TARGET"); val != "" {
		defaultConfig.Target = val
	}
	if val := os.Getenv("SYNCHROTIME_WAIT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.Wait = d
		}
	}
	if val := os.Getenv("SYNCHROTIME_PROTOCOL"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			defaultConfig.ProtocolVersion = v
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Target, "target", defaultConfig.Target, "Device target: serial port, serial://, mqtt://, ws:// or sim:// URL.")
	flag.DurationVar(&defaultConfig.Wait, "wait", defaultConfig.Wait, "Wait window for each reply.")
	flag.DurationVar(&defaultConfig.QuietTime, "quiet", defaultConfig.QuietTime, "Quiet gap ending a reply early.")
	flag.IntVar(&defaultConfig.ProtocolVersion, "protocol", defaultConfig.ProtocolVersion, "Wire protocol version.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewTransport creates the transport selected by the target scheme.
func (c *Config) NewTransport() (session.Transport, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("target not specified")
	}
	parsedURL, err := url.Parse(c.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid target: %v", err)
	}
	switch parsedURL.Scheme {
	case "", "serial":
		conf, err := serial.ConfigFromURL(c.Target)
		if err != nil {
			return nil, err
		}
		return c.tuned(conf.NewTransport()), nil
	case "mqtt", "mqtts":
		t, err := mqtt.NewTransport(c.Target, "synchrotime-"+MachineID())
		if err != nil {
			return nil, err
		}
		if c.QuietTime > 0 {
			t.QuietTime = c.QuietTime
		}
		return t, nil
	case "ws", "wss":
		conf, err := websocket.ConfigFromURL(c.Target)
		if err != nil {
			return nil, err
		}
		return c.tuned(conf.NewTransport()), nil
	case "sim":
		t, err := sim.TransportFromURL(c.Target)
		if err != nil {
			return nil, err
		}
		if !parsedURL.Query().Has("protocol") {
			if t.Device.Codec, err = protocol.NewCodec(c.ProtocolVersion); err != nil {
				return nil, err
			}
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown target scheme: %q", parsedURL.Scheme)
	}
}

func (c *Config) tuned(t *stream.Transport) *stream.Transport {
	if c.QuietTime > 0 {
		t.QuietTime = c.QuietTime
	}
	return t
}

// NewSession creates a Session on a new transport.
func (c *Config) NewSession() (*session.Session, error) {
	t, err := c.NewTransport()
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("target %s, wait %v", c.Target, c.Wait)
	return session.New(t, c.Wait), nil
}

// NewEncoder creates the encoder of the configured protocol version.
func (c *Config) NewEncoder() (protocol.Encoder, error) {
	return protocol.NewEncoder(c.ProtocolVersion)
}

// NewController creates a Controller using current config.
func (c *Config) NewController() (*controller.Controller, error) {
	enc, err := c.NewEncoder()
	if err != nil {
		return nil, err
	}
	s, err := c.NewSession()
	if err != nil {
		return nil, err
	}
	return controller.New(s, enc), nil
}
