// Package protocol encodes requests for the RTC/storage device and
// interprets its replies.
package protocol

// Version 1 requests are short binary frames. Every frame starts with a
// marker byte followed by the command character. Storage frames
// additionally carry the task, the block number and the address range,
// all big-endian. Replies carry no framing.
//
// Version 2 wraps requests and replies in sequenced packets, see Packet.
//
// The frame layout is versioned. A change of layout is a new protocol
// version with its own Codec, never an edit of an existing one.
//
// A version reply is the RTC time as big-endian epoch seconds. All
// other replies are opaque echoes whose only meaning is presence: an
// empty reply within the wait window is a failure.
