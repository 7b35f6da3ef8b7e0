// Package serial provides the serial port transport.
package serial

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/synchrotime/pkg/transport/stream"
)

// DefaultBaudRate is the baud rate of the RTC firmware.
const DefaultBaudRate = 115200

// Config describes a serial port.
type Config struct {
	Port string
	Mode serial.Mode
	// Settle is the delay after opening the port, for boards which
	// reset when the port opens.
	Settle time.Duration
}

// ConfigFromURL parses serial:///dev/ttyUSB0?baud=9600&parity=even&settle=2s.
// A bare device path (/dev/ttyUSB0, COM3) is accepted as well.
func ConfigFromURL(target string) (*Config, error) {
	conf := &Config{
		Mode: serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
	if !strings.HasPrefix(target, "serial:") {
		conf.Port = target
		return conf, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	conf.Port = u.Path
	if conf.Port == "" {
		conf.Port = u.Opaque
	}
	if conf.Port == "" {
		return nil, fmt.Errorf("serial port missing in %q", target)
	}
	q := u.Query()
	if val := q.Get("baud"); val != "" {
		if conf.Mode.BaudRate, err = strconv.Atoi(val); err != nil {
			return nil, fmt.Errorf("invalid baud %q: %v", val, err)
		}
	}
	if val := q.Get("databits"); val != "" {
		if conf.Mode.DataBits, err = strconv.Atoi(val); err != nil {
			return nil, fmt.Errorf("invalid databits %q: %v", val, err)
		}
	}
	switch val := q.Get("parity"); val {
	case "", "none":
	case "odd":
		conf.Mode.Parity = serial.OddParity
	case "even":
		conf.Mode.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("invalid parity %q", val)
	}
	switch val := q.Get("stopbits"); val {
	case "", "1":
	case "2":
		conf.Mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("invalid stopbits %q", val)
	}
	if val := q.Get("settle"); val != "" {
		if conf.Settle, err = time.ParseDuration(val); err != nil {
			return nil, fmt.Errorf("invalid settle %q: %v", val, err)
		}
	}
	return conf, nil
}

// NewTransport creates a stream transport opening the port on each exchange.
func (c *Config) NewTransport() *stream.Transport {
	return stream.New(c.Dial)
}

// Dial opens the port and drops any stale input.
func (c *Config) Dial() (io.ReadWriteCloser, error) {
	mode := c.Mode
	port, err := serial.Open(c.Port, &mode)
	if err != nil {
		return nil, describeError(c.Port, err)
	}
	if c.Settle > 0 {
		time.Sleep(c.Settle)
	}
	if err = port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("%s: reset input: %v", c.Port, err)
	}
	glog.V(3).Infof("opened %s at %d baud", c.Port, mode.BaudRate)
	return port, nil
}

func describeError(port string, err error) error {
	if portErr, ok := err.(*serial.PortError); ok {
		switch portErr.Code() {
		case serial.PortBusy:
			return fmt.Errorf("%s is open elsewhere: %w", port, err)
		case serial.PortNotFound:
			return fmt.Errorf("%s not found, device absent: %w", port, err)
		}
	}
	return fmt.Errorf("%s: %w", port, err)
}

// ListPorts lists serial ports on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
