package rtc

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/synchrotime/pkg/cli/sh"
	"github.com/robotalks/synchrotime/pkg/command"
)

func commandFunc(cmd command.Command) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		sh.DoCommand(c, string(cmd.Char()))
	}
}

var (
	// VersionCmd reads the RTC time and prints the drift.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"v", "time"},
		Help:    "",
		Func:    commandFunc(command.Version),
	}

	// ResetCmd resets the device.
	ResetCmd = ishell.Cmd{
		Name:    "reset",
		Aliases: []string{"r"},
		Help:    "",
		Func:    commandFunc(command.Reset),
	}

	// InfoCmd queries device information.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "",
		Func:    commandFunc(command.Info),
	}

	// ConfigureCmd queries device configuration.
	ConfigureCmd = ishell.Cmd{
		Name:    "configure",
		Aliases: []string{"c", "config"},
		Help:    "",
		Func:    commandFunc(command.Configure),
	}
)

func init() {
	sh.AddCmds(
		&VersionCmd,
		&ResetCmd,
		&InfoCmd,
		&ConfigureCmd,
	)
}
