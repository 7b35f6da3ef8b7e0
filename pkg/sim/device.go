// Package sim simulates an RTC/storage device speaking the wire protocol.
package sim

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/synchrotime/pkg/command"
	"github.com/robotalks/synchrotime/pkg/protocol"
)

// Device geometry.
const (
	BlockSize  = 4096
	BlockCount = 16
	erased     = 0xff
)

// Replies of the simulated firmware.
var (
	ReplyReset  = []byte("RESET")
	ReplyOK     = []byte("OK")
	ReplyError  = []byte("ERR")
	ReplyLocked = []byte("LOCKED")
)

// Device is a simulated RTC with block storage.
type Device struct {
	// Clock is the host clock, time.Now if nil.
	Clock func() time.Time
	// Offset is added to Clock to get the RTC time.
	Offset time.Duration
	// Silent makes the device never reply.
	Silent bool
	// Info and Config are the replies to info and configure requests.
	Info   []byte
	Config []byte
	// Codec decodes requests and frames replies, V1 by default.
	Codec protocol.Codec

	blocks   [BlockCount][]byte
	unlocked map[uint16]bool
	lock     sync.Mutex
}

// NewDevice creates a device with formatted storage.
func NewDevice() *Device {
	d := &Device{
		Info:     []byte("DS3231 sim"),
		Config:   []byte("blocks=16 size=4096"),
		Codec:    protocol.V1{},
		unlocked: make(map[uint16]bool),
	}
	for n := range d.blocks {
		d.blocks[n] = formatted()
	}
	return d
}

func formatted() []byte {
	b := make([]byte, BlockSize)
	for n := range b {
		b[n] = erased
	}
	return b
}

// Now returns the RTC time.
func (d *Device) Now() time.Time {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().Add(d.Offset)
}

// Block returns a copy of a block content.
func (d *Device) Block(n uint16) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	if int(n) >= BlockCount {
		return nil
	}
	return append([]byte(nil), d.blocks[n]...)
}

// Fill sets storage content for a range in a block. Data past the end
// of the block is dropped. It returns the number of bytes stored.
func (d *Device) Fill(block uint16, start uint32, data []byte) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	if int(block) >= BlockCount || start >= BlockSize {
		return 0
	}
	return copy(d.blocks[block][start:], data)
}

// HandleFrame processes one request frame and returns the reply.
func (d *Device) HandleFrame(frame []byte) []byte {
	if d.Silent {
		return nil
	}
	req, err := d.Codec.Decode(frame)
	if err != nil {
		glog.V(2).Infof("sim: %v", err)
		return d.Codec.Wrap(nil, ReplyError)
	}
	return d.Codec.Wrap(req, d.handleRequest(req))
}

func (d *Device) handleRequest(req *protocol.Request) []byte {
	switch req.Command {
	case command.Version:
		reply := make([]byte, 4)
		binary.BigEndian.PutUint32(reply, uint32(d.Now().Unix()))
		return reply
	case command.Reset:
		d.lock.Lock()
		d.unlocked = make(map[uint16]bool)
		d.lock.Unlock()
		return ReplyReset
	case command.Info:
		return d.Info
	case command.Configure:
		return d.Config
	case command.Storage:
		return d.handleStorage(req)
	}
	return ReplyError
}

func (d *Device) handleStorage(req *protocol.Request) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	if int(req.Block) >= BlockCount {
		return ReplyError
	}
	if req.WriteEnable {
		d.unlocked[req.Block] = true
		return ReplyOK
	}
	if req.Task.HasRange() && (req.End >= BlockSize || req.Start > req.End) {
		return ReplyError
	}
	if req.Task.Mutates() {
		if !d.unlocked[req.Block] {
			return ReplyLocked
		}
		delete(d.unlocked, req.Block)
	}
	block := d.blocks[req.Block]
	switch req.Task {
	case command.Read:
		return append([]byte(nil), block[req.Start:req.End+1]...)
	case command.Format:
		d.blocks[req.Block] = formatted()
	case command.Erase:
		for n := req.Start; n <= req.End; n++ {
			block[n] = erased
		}
	case command.Write:
		// no payload in the request, the range is zeroed.
		for n := req.Start; n <= req.End; n++ {
			block[n] = 0
		}
	}
	return ReplyOK
}
