package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/robotalks/synchrotime/pkg/command"
)

// V1 frame layout:
//
//	'@' <cmd>                                     c, i, v, r
//	'@' 's' 'f' BLOCK[2]                          format
//	'@' 's' 'n' BLOCK[2]                          write enable
//	'@' 's' <task> BLOCK[2] START[4] END[4]       read, erase, write
const (
	V1Marker byte = '@'

	v1OpWriteEnable byte = 'n'

	v1HeadLen  = 2
	v1BlockLen = 3 + 2
	v1RangeLen = v1BlockLen + 4 + 4
)

// V1 is the Codec for protocol version 1.
type V1 struct{}

// ProtocolVersion implements Encoder.
func (V1) ProtocolVersion() int { return 1 }

// Encode implements Encoder.
func (V1) Encode(d *command.Descriptor) (Frame, error) {
	if !d.IsValid() {
		return nil, &EncodingError{Reason: "rejected", Err: ErrInvalidDescriptor}
	}
	switch d.Command {
	case command.Configure, command.Info, command.Version, command.Reset:
		return Frame{V1Marker, d.Command.Char()}, nil
	case command.Storage:
		return encodeStorageV1(d)
	}
	return nil, &EncodingError{Reason: fmt.Sprintf("unknown command %v", d.Command)}
}

func encodeStorageV1(d *command.Descriptor) (Frame, error) {
	switch d.Task {
	case command.Format:
		return storageFrameV1(d.Task.Char(), d.Block), nil
	case command.Read, command.Erase, command.Write:
		f := make(Frame, v1RangeLen)
		copy(f, storageFrameV1(d.Task.Char(), d.Block))
		binary.BigEndian.PutUint32(f[v1BlockLen:], d.Start)
		binary.BigEndian.PutUint32(f[v1BlockLen+4:], d.End)
		return f, nil
	}
	return nil, &EncodingError{Reason: fmt.Sprintf("unknown storage task %v", d.Task)}
}

// WriteEnable implements Encoder.
func (V1) WriteEnable(block uint16) Frame {
	return storageFrameV1(v1OpWriteEnable, block)
}

func storageFrameV1(op byte, block uint16) Frame {
	f := Frame{V1Marker, command.Storage.Char(), op, 0, 0}
	binary.BigEndian.PutUint16(f[3:], block)
	return f
}

// Decode implements Codec.
func (V1) Decode(f Frame) (*Request, error) {
	if len(f) < v1HeadLen || f[0] != V1Marker {
		return nil, &DecodeError{Frame: f, Reason: "bad header"}
	}
	req := &Request{Descriptor: command.Descriptor{Status: command.StatusValid}}
	switch f[1] {
	case 'c':
		req.Command = command.Configure
	case 'i':
		req.Command = command.Info
	case 'v':
		req.Command = command.Version
	case 'r':
		req.Command = command.Reset
	case 's':
		req.Command = command.Storage
		if err := decodeStorageV1(f, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, &DecodeError{Frame: f, Reason: fmt.Sprintf("unknown command %q", f[1])}
	}
	if len(f) != v1HeadLen {
		return nil, &DecodeError{Frame: f, Reason: "trailing bytes"}
	}
	return req, nil
}

func decodeStorageV1(f Frame, req *Request) error {
	if len(f) < v1BlockLen {
		return &DecodeError{Frame: f, Reason: "truncated storage frame"}
	}
	req.Block = binary.BigEndian.Uint16(f[3:])
	expectLen := v1BlockLen
	switch f[2] {
	case v1OpWriteEnable:
		req.WriteEnable = true
	case 'f':
		req.Task = command.Format
	case 'r':
		req.Task = command.Read
	case 'e':
		req.Task = command.Erase
	case 'w':
		req.Task = command.Write
	default:
		return &DecodeError{Frame: f, Reason: fmt.Sprintf("unknown storage op %q", f[2])}
	}
	if req.Task.HasRange() {
		expectLen = v1RangeLen
	}
	if len(f) != expectLen {
		return &DecodeError{Frame: f, Reason: fmt.Sprintf("expect %d bytes, got %d", expectLen, len(f))}
	}
	if req.Task.HasRange() {
		req.Start = binary.BigEndian.Uint32(f[v1BlockLen:])
		req.End = binary.BigEndian.Uint32(f[v1BlockLen+4:])
	}
	return nil
}

// Unwrap implements Encoder. V1 replies are unframed.
func (V1) Unwrap(req Frame, reply []byte) ([]byte, error) {
	return reply, nil
}

// Wrap implements Codec.
func (V1) Wrap(req *Request, payload []byte) []byte {
	return payload
}
