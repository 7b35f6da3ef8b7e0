package protocol

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/robotalks/synchrotime/pkg/command"
)

// V2 frames every request and reply as sequenced packets. The packet
// code is the command number. Storage requests carry
//
//	OP BLOCK[2] [START[4] END[4]]
//
// with OP being the same task characters as V1. A reply longer than
// MaxPacketData is split into consecutive packets of the same sequence.
type V2 struct {
	seq  PacketSeq
	lock sync.Mutex
}

// v2CodeBadRequest is reported when a request can't be decoded.
const v2CodeBadRequest = 0x0f

// NewV2 creates a V2 codec starting from a random sequence number.
func NewV2() *V2 {
	return &V2{seq: NewPacketSeq()}
}

// ProtocolVersion implements Encoder.
func (c *V2) ProtocolVersion() int { return 2 }

func (c *V2) nextSeq() PacketSeq {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.seq.IsValid() {
		c.seq = c.seq.Next()
	}
	seq := c.seq
	c.seq = c.seq.Next()
	return seq
}

// Encode implements Encoder.
func (c *V2) Encode(d *command.Descriptor) (Frame, error) {
	if !d.IsValid() {
		return nil, &EncodingError{Reason: "rejected", Err: ErrInvalidDescriptor}
	}
	pkt := &Packet{Code: byte(d.Command)}
	switch d.Command {
	case command.Configure, command.Info, command.Version, command.Reset:
	case command.Storage:
		switch d.Task {
		case command.Format:
			pkt.Data = storageDataV2(d.Task.Char(), d.Block)
		case command.Read, command.Erase, command.Write:
			pkt.Data = make([]byte, 11)
			copy(pkt.Data, storageDataV2(d.Task.Char(), d.Block))
			binary.BigEndian.PutUint32(pkt.Data[3:], d.Start)
			binary.BigEndian.PutUint32(pkt.Data[7:], d.End)
		default:
			return nil, &EncodingError{Reason: fmt.Sprintf("unknown storage task %v", d.Task)}
		}
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unknown command %v", d.Command)}
	}
	pkt.Seq = c.nextSeq()
	return Frame(pkt.Bytes()), nil
}

// WriteEnable implements Encoder.
func (c *V2) WriteEnable(block uint16) Frame {
	pkt := &Packet{
		Seq:  c.nextSeq(),
		Code: byte(command.Storage),
		Data: storageDataV2(v1OpWriteEnable, block),
	}
	return Frame(pkt.Bytes())
}

func storageDataV2(op byte, block uint16) []byte {
	data := []byte{op, 0, 0}
	binary.BigEndian.PutUint16(data[1:], block)
	return data
}

// Unwrap implements Encoder. It concatenates the data of all packets
// and fails on the first error packet. Every packet must carry the
// sequence number of req, except the error reply to an undecodable
// request which has none.
func (c *V2) Unwrap(req Frame, reply []byte) ([]byte, error) {
	reqPkt, _, err := ParsePacket(req)
	if err != nil {
		return nil, &DecodeError{Frame: req, Reason: "request: " + err.Error()}
	}
	var payload []byte
	for len(reply) > 0 {
		pkt, n, err := ParsePacket(reply)
		if err != nil {
			return nil, &DecodeError{Frame: reply, Reason: err.Error()}
		}
		if pkt.Seq != reqPkt.Seq && !(pkt.IsError() && pkt.Seq == 0) {
			return nil, &DecodeError{
				Frame:  reply,
				Reason: fmt.Sprintf("sequence %d, expect %d", pkt.Seq, reqPkt.Seq),
			}
		}
		if pkt.IsError() {
			return nil, &CommandError{Code: pkt.Code &^ packetErrorBit}
		}
		payload = append(payload, pkt.Data...)
		reply = reply[n:]
	}
	return payload, nil
}

// Decode implements Codec.
func (c *V2) Decode(f Frame) (*Request, error) {
	pkt, n, err := ParsePacket(f)
	if err != nil {
		return nil, &DecodeError{Frame: f, Reason: err.Error()}
	}
	if n != len(f) {
		return nil, &DecodeError{Frame: f, Reason: "trailing bytes"}
	}
	req := &Request{Descriptor: command.Descriptor{Status: command.StatusValid}, Seq: pkt.Seq}
	req.Command = command.Command(pkt.Code)
	switch req.Command {
	case command.Configure, command.Info, command.Version, command.Reset:
		if len(pkt.Data) != 0 {
			return nil, &DecodeError{Frame: f, Reason: "unexpected data"}
		}
		return req, nil
	case command.Storage:
		// reuse the v1 storage layout after its 2-byte header.
		if err := decodeStorageV1(append(Frame{V1Marker, pkt.Code}, pkt.Data...), req); err != nil {
			return nil, &DecodeError{Frame: f, Reason: err.(*DecodeError).Reason}
		}
		return req, nil
	}
	return nil, &DecodeError{Frame: f, Reason: fmt.Sprintf("unknown command code %d", pkt.Code)}
}

// Wrap implements Codec.
func (c *V2) Wrap(req *Request, payload []byte) []byte {
	if req == nil {
		return (&Packet{Code: packetErrorBit | v2CodeBadRequest}).Bytes()
	}
	if len(payload) == 0 {
		return (&Packet{Seq: req.Seq}).Bytes()
	}
	var out []byte
	for len(payload) > 0 {
		chunk := payload
		if len(chunk) > MaxPacketData {
			chunk = chunk[:MaxPacketData]
		}
		out = append(out, (&Packet{Seq: req.Seq, Data: chunk}).Bytes()...)
		payload = payload[len(chunk):]
	}
	return out
}
