package command

import "fmt"

// Command selects the request sent to the device.
type Command int

// Commands
const (
	Configure Command = iota + 1
	Info
	Version
	Reset
	Storage
)

var commandNames = map[Command]string{
	Configure: "configure",
	Info:      "info",
	Version:   "version",
	Reset:     "reset",
	Storage:   "storage",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Char returns the command character used in command strings.
func (c Command) Char() byte {
	switch c {
	case Configure:
		return 'c'
	case Info:
		return 'i'
	case Version:
		return 'v'
	case Reset:
		return 'r'
	case Storage:
		return 's'
	}
	return 0
}

// Task is the storage operation, only meaningful for Storage.
type Task int

// Tasks
const (
	TaskNone Task = iota
	Format
	Read
	Erase
	Write
)

var taskNames = map[Task]string{
	TaskNone: "none",
	Format:   "format",
	Read:     "read",
	Erase:    "erase",
	Write:    "write",
}

// String implements fmt.Stringer.
func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return fmt.Sprintf("task(%d)", int(t))
}

// Char returns the task character used in command strings.
func (t Task) Char() byte {
	switch t {
	case Format:
		return 'f'
	case Read:
		return 'r'
	case Erase:
		return 'e'
	case Write:
		return 'w'
	}
	return 0
}

// HasRange indicates the task requires a start and end address.
func (t Task) HasRange() bool {
	return t == Read || t == Erase || t == Write
}

// Mutates indicates the task changes storage content.
func (t Task) Mutates() bool {
	return t == Format || t == Erase || t == Write
}

// Descriptor status values.
const (
	StatusUnset = -1
	StatusValid = 0
)

// Field limits shared with the wire encoding.
const (
	BlockBits   = 16
	AddressBits = 32
)

// Descriptor is a parsed command.
type Descriptor struct {
	Command Command
	Task    Task
	Block   uint16
	Start   uint32
	End     uint32
	// Status is StatusValid only after all required fields are
	// populated and checked.
	Status int
}

// NewDescriptor creates an empty descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{Status: StatusUnset}
}

// IsValid indicates the descriptor passed parsing.
func (d *Descriptor) IsValid() bool {
	return d != nil && d.Status == StatusValid
}

// String formats the descriptor back into a command string.
func (d *Descriptor) String() string {
	if d.Command != Storage {
		return string(d.Command.Char())
	}
	if !d.Task.HasRange() {
		return fmt.Sprintf("s:%d:%c", d.Block, d.Task.Char())
	}
	return fmt.Sprintf("s:%d:%c:%d:%d", d.Block, d.Task.Char(), d.Start, d.End)
}
