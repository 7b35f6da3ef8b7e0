package protocol

import (
	"fmt"
	"time"
)

// PacketSeq defines the type of packet sequence number.
type PacketSeq byte

// NewPacketSeq creates a random packet sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Packet is the v2 wire unit:
//
//	SEQ CODE|LEN<<4 DATA[LEN]          LEN < 7
//	SEQ CODE|0x70 LEN DATA[LEN]        7 <= LEN < 128
//
// CODE uses the low 4 bits and the error bit 0x80.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// Packet limits.
const (
	MaxPacketData = 0x7f

	packetCodeMask = 0x8f
	packetErrorBit = 0x80
	packetLongLen  = 7
)

// Bytes returns encoded bytes for sending. Data beyond MaxPacketData
// is dropped.
func (p *Packet) Bytes() []byte {
	data := p.Data
	if len(data) > MaxPacketData {
		data = data[:MaxPacketData]
	}
	b := make([]byte, len(data)+3)
	b[0], b[1] = byte(p.Seq), (p.Code & packetCodeMask)
	if l := byte(len(data)); l >= packetLongLen {
		b[1] |= 0x70
		b[2] = l
		copy(b[3:], data)
	} else {
		b = b[:l+2]
		b[1] |= (l << 4) & 0x70
		copy(b[2:], data)
	}
	return b
}

// IsError indicates the packet reports a failure.
func (p *Packet) IsError() bool {
	return p.Code&packetErrorBit != 0
}

// ParsePacket parses one packet from the head of b and returns the
// number of bytes consumed.
func ParsePacket(b []byte) (*Packet, int, error) {
	if len(b) < 2 {
		return nil, 0, fmt.Errorf("truncated packet header")
	}
	pkt := &Packet{Seq: PacketSeq(b[0]), Code: b[1] & packetCodeMask}
	n := 2
	dataLen := int((b[1] >> 4) & 7)
	if dataLen == packetLongLen {
		if len(b) < 3 {
			return nil, 0, fmt.Errorf("truncated packet length")
		}
		if b[2] > MaxPacketData {
			return nil, 0, fmt.Errorf("invalid packet length %d", b[2])
		}
		dataLen, n = int(b[2]), 3
	}
	if len(b) < n+dataLen {
		return nil, 0, fmt.Errorf("expect %d data bytes, got %d", dataLen, len(b)-n)
	}
	if dataLen > 0 {
		pkt.Data = append([]byte(nil), b[n:n+dataLen]...)
	}
	return pkt, n + dataLen, nil
}
