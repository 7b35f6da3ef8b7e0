package storage

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/synchrotime/pkg/cli/sh"
	"github.com/robotalks/synchrotime/pkg/command"
)

// Token builds the storage command string from shell arguments.
func Token(task command.Task, args []string) (string, error) {
	want := 1
	if task.HasRange() {
		want = 3
	}
	if len(args) < want {
		if want == 1 {
			return "", fmt.Errorf("BLOCK required")
		}
		return "", fmt.Errorf("BLOCK START END required")
	}
	fields := append([]string{string(command.Storage.Char()), args[0], string(task.Char())}, args[1:want]...)
	return strings.Join(fields, ":"), nil
}

func taskFunc(task command.Task) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		token, err := Token(task, c.Args)
		if err != nil {
			sh.ShellFrom(c).Fail(c, err)
			return
		}
		sh.DoCommand(c, token)
	}
}

var (
	// FormatCmd formats a block.
	FormatCmd = ishell.Cmd{
		Name:    "storage.format",
		Aliases: []string{"sf"},
		Help:    "BLOCK",
		Func:    taskFunc(command.Format),
	}

	// ReadCmd reads a range of a block.
	ReadCmd = ishell.Cmd{
		Name:    "storage.read",
		Aliases: []string{"sr"},
		Help:    "BLOCK START END",
		Func:    taskFunc(command.Read),
	}

	// EraseCmd erases a range of a block.
	EraseCmd = ishell.Cmd{
		Name:    "storage.erase",
		Aliases: []string{"se"},
		Help:    "BLOCK START END",
		Func:    taskFunc(command.Erase),
	}

	// WriteCmd writes a range of a block.
	WriteCmd = ishell.Cmd{
		Name:    "storage.write",
		Aliases: []string{"sw"},
		Help:    "BLOCK START END",
		Func:    taskFunc(command.Write),
	}
)

func init() {
	sh.AddCmds(
		&FormatCmd,
		&ReadCmd,
		&EraseCmd,
		&WriteCmd,
	)
}
