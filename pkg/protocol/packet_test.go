package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeV2SequenceWraps(t *testing.T) {
	testCases := []struct {
		name   string
		start  PacketSeq
		expect []byte
	}{
		{"zero value", 0, []byte{1, 2, 3}},
		{"last valid", 0xee, []byte{0xee, 0xef, 1}},
		{"reserved", 0xf5, []byte{1, 2, 3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &V2{seq: tc.start}
			var seqs []byte
			for range tc.expect {
				f, err := c.Encode(mustParse(t, "v"))
				require.NoError(t, err)
				seqs = append(seqs, f[0])
			}
			require.Equal(t, tc.expect, seqs)
		})
	}
}

func TestV2SequenceStaysValid(t *testing.T) {
	c := NewV2()
	f := c.WriteEnable(0)
	require.True(t, PacketSeq(f[0]).IsValid())
	// a full cycle never yields 0 or a reserved value.
	for n := 0; n < 0x1ff; n++ {
		f = c.WriteEnable(0)
		seq := PacketSeq(f[0])
		require.True(t, seq.IsValid(), "seq %d", seq)
	}
	require.False(t, PacketSeq(0).IsValid())
	require.False(t, PacketSeq(0xf0).IsValid())
}

func TestPacketBytes(t *testing.T) {
	testCases := []struct {
		name   string
		packet Packet
		expect []byte
	}{
		{"no data", Packet{Seq: 1, Code: 2}, []byte{1, 2}},
		{"short data", Packet{Seq: 1, Code: 2, Data: []byte{1}}, []byte{1, 0x12, 1}},
		{"long data", Packet{Seq: 1, Code: 2, Data: []byte{1, 2, 3, 4, 5, 6, 7}}, []byte{1, 0x72, 7, 1, 2, 3, 4, 5, 6, 7}},
		{"error no data", Packet{Seq: 1, Code: 0x82}, []byte{1, 0x82}},
		{"error short data", Packet{Seq: 1, Code: 0x82, Data: []byte{1}}, []byte{1, 0x92, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := tc.packet.Bytes()
			require.Equal(t, tc.expect, encoded)
			pkt, n, err := ParsePacket(append(encoded, 0xaa))
			require.NoError(t, err)
			require.Equal(t, len(tc.expect), n)
			require.Equal(t, tc.packet.Seq, pkt.Seq)
			require.Equal(t, tc.packet.Code, pkt.Code)
			require.Equal(t, tc.packet.IsError(), pkt.IsError())
			require.True(t, bytes.Equal(tc.packet.Data, pkt.Data))
		})
	}
}

func TestPacketBytesTruncatesData(t *testing.T) {
	pkt := Packet{Seq: 1, Data: make([]byte, 200)}
	encoded := pkt.Bytes()
	require.Len(t, encoded, 3+MaxPacketData)
	require.Equal(t, byte(MaxPacketData), encoded[2])
}

func TestParsePacketErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"header only seq", []byte{1}},
		{"missing length", []byte{1, 0x70}},
		{"bad length", []byte{1, 0x70, 0x80}},
		{"short data", []byte{1, 0x30, 1, 2}},
		{"short long data", []byte{1, 0x70, 8, 1, 2, 3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkt, _, err := ParsePacket(tc.in)
			require.Error(t, err)
			require.Nil(t, pkt)
		})
	}
}
