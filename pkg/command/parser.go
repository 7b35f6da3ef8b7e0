package command

import (
	"strconv"
	"strings"
)

const (
	fieldSep = ":"

	// minStorageLen is the length of the shortest storage string "s:N:t".
	minStorageLen = 5
)

// Parse parses a command string into a Descriptor.
// On failure the partially populated descriptor is returned with
// Status StatusUnset together with the error, except for empty input
// which yields no descriptor.
func Parse(input string) (*Descriptor, error) {
	if input == "" {
		return nil, ErrEmptyInput
	}
	d := NewDescriptor()
	switch input[0] {
	case 'c':
		d.Command = Configure
	case 'i':
		d.Command = Info
	case 'v':
		d.Command = Version
	case 'r':
		d.Command = Reset
	case 's':
		d.Command = Storage
		if err := parseStorage(d, input); err != nil {
			return d, err
		}
	default:
		return d, &UnknownCommandError{Char: input[0]}
	}
	d.Status = StatusValid
	return d, nil
}

func parseStorage(d *Descriptor, input string) error {
	if len(input) < minStorageLen || input[1] != ':' {
		return &BadFormatError{Input: input}
	}
	fields := strings.Split(input, fieldSep)
	block, err := parseField("block", fields[1], BlockBits)
	if err != nil {
		return err
	}
	d.Block = uint16(block)

	task := field(fields, 2)
	if len(task) != 1 {
		return &UnknownTaskError{Task: task}
	}
	switch task[0] {
	case 'f':
		d.Task = Format
		return nil
	case 'r':
		d.Task = Read
	case 'e':
		d.Task = Erase
	case 'w':
		d.Task = Write
	default:
		return &UnknownTaskError{Task: task}
	}
	return parseRange(d, fields)
}

func parseRange(d *Descriptor, fields []string) error {
	start := field(fields, 3)
	if start == "" {
		return &MissingAddressError{Which: "start"}
	}
	val, err := parseField("start address", start, AddressBits)
	if err != nil {
		return err
	}
	d.Start = uint32(val)

	end := field(fields, 4)
	if end == "" {
		return &MissingAddressError{Which: "end"}
	}
	if val, err = parseField("end address", end, AddressBits); err != nil {
		return err
	}
	d.End = uint32(val)

	if d.Start > d.End {
		return &RangeError{Start: d.Start, End: d.End}
	}
	return nil
}

func field(fields []string, index int) string {
	if index < len(fields) {
		return fields[index]
	}
	return ""
}

func parseField(name, value string, bits int) (uint64, error) {
	val, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok {
			err = numErr.Err
		}
		return 0, &BadFieldError{Field: name, Value: value, Err: err}
	}
	return val, nil
}
