// Package command parses storage and clock command strings.
package command

// A command string is a single token. The first character selects the
// command and only the storage command carries fields:
//
//	c | i | v | r
//	s:<block>:<task>[:<start>:<end>]
//
// task is one of f (format), r (read), e (erase), w (write). Read, erase
// and write require both addresses. The grammar is flat and positional,
// so parsing is a single split with no backtracking.
