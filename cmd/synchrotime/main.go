package main

import (
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/synchrotime/pkg/cli/sh"
	"github.com/robotalks/synchrotime/pkg/env"

	_ "github.com/robotalks/synchrotime/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	status := sh.Main()
	glog.Flush()
	os.Exit(status)
}
