package protocol

import (
	"encoding/hex"
	"fmt"

	"github.com/robotalks/synchrotime/pkg/command"
)

// Frame is one encoded request ready for transmission.
type Frame []byte

// String implements fmt.Stringer.
func (f Frame) String() string {
	return hex.EncodeToString(f)
}

// Request is a decoded frame.
type Request struct {
	command.Descriptor
	// WriteEnable is set for the write-enable storage request,
	// which has no command string form.
	WriteEnable bool
	// Seq is the packet sequence number, v2 only.
	Seq PacketSeq
}

// Encoder builds request frames.
type Encoder interface {
	// ProtocolVersion returns the wire layout version.
	ProtocolVersion() int
	// Encode encodes a valid descriptor.
	Encode(*command.Descriptor) (Frame, error)
	// WriteEnable encodes the request unlocking a block for
	// format, erase or write.
	WriteEnable(block uint16) Frame
	// Unwrap extracts the reply payload to the request frame req from
	// received bytes.
	Unwrap(req Frame, reply []byte) ([]byte, error)
}

// Codec both encodes and decodes frames of one protocol version.
type Codec interface {
	Encoder
	Decode(Frame) (*Request, error)
	// Wrap frames a reply payload for req, which is nil when the
	// request could not be decoded.
	Wrap(req *Request, payload []byte) []byte
}

// DefaultVersion is the protocol version used when none is configured.
const DefaultVersion = 1

// NewCodec returns the Codec for a protocol version.
func NewCodec(version int) (Codec, error) {
	switch version {
	case 1:
		return V1{}, nil
	case 2:
		return NewV2(), nil
	default:
		return nil, fmt.Errorf("unsupported protocol version %d", version)
	}
}

// NewEncoder returns the Encoder for a protocol version.
func NewEncoder(version int) (Encoder, error) {
	return NewCodec(version)
}
