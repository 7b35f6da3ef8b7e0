package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestConfigFromURL(t *testing.T) {
	testCases := []struct {
		target string
		port   string
		check  func(*testing.T, *Config)
	}{
		{"/dev/ttyUSB0", "/dev/ttyUSB0", func(t *testing.T, c *Config) {
			require.Equal(t, DefaultBaudRate, c.Mode.BaudRate)
			require.Equal(t, 8, c.Mode.DataBits)
			require.Equal(t, serial.NoParity, c.Mode.Parity)
			require.Equal(t, serial.OneStopBit, c.Mode.StopBits)
		}},
		{"COM3", "COM3", nil},
		{"serial:///dev/ttyACM1?baud=9600&parity=even&stopbits=2", "/dev/ttyACM1", func(t *testing.T, c *Config) {
			require.Equal(t, 9600, c.Mode.BaudRate)
			require.Equal(t, serial.EvenParity, c.Mode.Parity)
			require.Equal(t, serial.TwoStopBits, c.Mode.StopBits)
		}},
		{"serial:COM4?settle=2s&databits=7&parity=odd", "COM4", func(t *testing.T, c *Config) {
			require.Equal(t, 2*time.Second, c.Settle)
			require.Equal(t, 7, c.Mode.DataBits)
			require.Equal(t, serial.OddParity, c.Mode.Parity)
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			conf, err := ConfigFromURL(tc.target)
			require.NoError(t, err)
			require.Equal(t, tc.port, conf.Port)
			if tc.check != nil {
				tc.check(t, conf)
			}
		})
	}
}

func TestConfigFromURLErrors(t *testing.T) {
	for _, target := range []string{
		"serial://",
		"serial:///dev/ttyS0?baud=fast",
		"serial:///dev/ttyS0?parity=mark",
		"serial:///dev/ttyS0?stopbits=3",
		"serial:///dev/ttyS0?settle=soon",
	} {
		t.Run(target, func(t *testing.T) {
			_, err := ConfigFromURL(target)
			require.Error(t, err)
		})
	}
}
