package protocol

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// ClockReading is the interpreted version reply.
type ClockReading struct {
	// Device is the RTC time in epoch seconds.
	Device int64
	// Local is the host time in epoch seconds when the request was sent.
	Local int64
	// Drift is Device - Local.
	Drift int64
}

// DeviceTime returns the RTC time.
func (r *ClockReading) DeviceTime() time.Time {
	return time.Unix(r.Device, 0)
}

// LocalTime returns the host time at dispatch, truncated to seconds.
func (r *ClockReading) LocalTime() time.Time {
	return time.Unix(r.Local, 0)
}

// InterpretVersion decodes a version reply as big-endian epoch seconds
// and compares it with the host time captured at dispatch.
func InterpretVersion(data []byte, dispatched time.Time) (*ClockReading, error) {
	if len(data) == 0 {
		return nil, ErrEmptyReply
	}
	if len(data) > 8 || (len(data) == 8 && data[0]&0x80 != 0) {
		return nil, ErrReplyOverflow
	}
	var secs uint64
	for _, b := range data {
		secs = secs<<8 + uint64(b)
	}
	r := &ClockReading{Device: int64(secs), Local: dispatched.Unix()}
	r.Drift = Drift(r.Device, r.Local)
	return r, nil
}

// Drift calculates the signed difference of device and local epoch seconds.
func Drift(device, local int64) int64 {
	return device - local
}

// Echo is an opaque reply surfaced verbatim.
type Echo []byte

// InterpretEcho accepts any non-empty reply.
func InterpretEcho(data []byte) (Echo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyReply
	}
	return Echo(data), nil
}

// String returns the echo as text when printable, otherwise in hex.
func (e Echo) String() string {
	if isPrintable(e) {
		return string(e)
	}
	return fmt.Sprintf("% x", []byte(e))
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
