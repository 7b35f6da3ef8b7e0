// Package all registers all shell commands.
package all

import (
	// register commands
	_ "github.com/robotalks/synchrotime/pkg/cli/cmds/rtc"
	_ "github.com/robotalks/synchrotime/pkg/cli/cmds/storage"
)
