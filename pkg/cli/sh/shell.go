package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/synchrotime/pkg/controller"
	"github.com/robotalks/synchrotime/pkg/env"
	"github.com/robotalks/synchrotime/pkg/transport/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell      *ishell.Shell
	Config     *env.Config
	Controller *controller.Controller

	// Status is the exit status, failed once any command failed.
	Status int
}

const (
	shellKey    = "$shell"
	promptFmt   = "[%s] > "
	noTargetMsg = "none"
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	cmdString  string

	// commands
	commands = []*ishell.Cmd{
		&ExecCmd,
		&PortsCmd,
		&TargetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&cmdString, "c", cmdString, "Command string to execute, e.g. v, r or s:1:r:0:15.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.setPrompt()
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	// anything else is taken as a command string.
	s.Shell.NotFound(func(c *ishell.Context) {
		DoCommand(c, strings.Join(c.Args, ""))
	})
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) setPrompt() {
	target := noTargetMsg
	if s.Config != nil && s.Config.Target != "" {
		target = s.Config.Target
	}
	s.Shell.SetPrompt(fmt.Sprintf(promptFmt, target))
}

// WithController uses an existing controller instead of building one
// from Config.
func (s *Shell) WithController(ctl *controller.Controller) *Shell {
	s.Controller = ctl
	return s
}

// EnsureController creates the controller on first use.
func (s *Shell) EnsureController() (*controller.Controller, error) {
	if s.Controller != nil {
		return s.Controller, nil
	}
	ctl, err := s.Config.NewController()
	if err != nil {
		return nil, err
	}
	s.Controller = ctl
	return ctl, nil
}

// SwitchTarget attaches a new target to the current session.
func (s *Shell) SwitchTarget(target string) error {
	conf := *s.Config
	conf.Target = target
	t, err := conf.NewTransport()
	if err != nil {
		return err
	}
	if s.Controller != nil {
		if err = s.Controller.Session.Attach(t); err != nil {
			return err
		}
	}
	s.Config.Target = target
	s.setPrompt()
	return nil
}

// Fail records a failure.
func (s *Shell) Fail(c *ishell.Context, err error) {
	s.Status = controller.StatusFailed
	c.Err(err)
}

type jsonResult struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Device  *int64 `json:"device,omitempty"`
	Local   *int64 `json:"local,omitempty"`
	Drift   *int64 `json:"drift,omitempty"`
	Echo    string `json:"echo,omitempty"`
}

func (s *Shell) printJSON(c *ishell.Context, res controller.Result) {
	out := jsonResult{Status: res.Status, Message: res.Message}
	if res.Reading != nil {
		out.Device, out.Local, out.Drift = &res.Reading.Device, &res.Reading.Local, &res.Reading.Drift
	}
	if res.Echo != nil {
		out.Echo = res.Echo.String()
	}
	encoded, err := json.Marshal(&out)
	if err != nil {
		s.Fail(c, err)
		return
	}
	c.Println(string(encoded))
}

// DoCommand executes a command string and reports the result.
func DoCommand(c *ishell.Context, input string) controller.Result {
	s := ShellFrom(c)
	ctl, err := s.EnsureController()
	if err != nil {
		s.Fail(c, err)
		return controller.Result{Status: controller.StatusFailed, Err: err}
	}
	if s.OutputJSON {
		ctl.Out = ioutil.Discard
	}
	res := ctl.Do(context.Background(), input)
	if s.OutputJSON {
		s.printJSON(c, res)
	}
	if !res.OK() {
		s.Fail(c, fmt.Errorf("%s", res.Message))
	}
	return res
}

// Run runs the shell and returns the exit status.
func (s *Shell) Run(args ...string) int {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Errorf("%v", err)
			s.Status = controller.StatusFailed
		}
		return s.Status
	}
	if s.Interactive {
		s.Shell.Run()
		return s.Status
	}
	glog.Errorln("command expected")
	return controller.StatusFailed
}

var (
	// ExecCmd executes a raw command string.
	ExecCmd = ishell.Cmd{
		Name:    "exec",
		Aliases: []string{"x"},
		Help:    "COMMAND, e.g. v, r, s:1:r:0:15",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				ShellFrom(c).Fail(c, fmt.Errorf("COMMAND required"))
				return
			}
			DoCommand(c, strings.Join(c.Args, ""))
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"discover", "list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := serial.ListPorts()
			if err != nil {
				s.Fail(c, err)
				return
			}
			if s.OutputJSON {
				if len(ports) == 0 {
					// in case ports is nil, make it empty slice.
					ports = []string{}
				}
				out, err := json.Marshal(ports)
				if err != nil {
					s.Fail(c, err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// TargetCmd shows or switches the device target.
	TargetCmd = ishell.Cmd{
		Name:    "target",
		Aliases: []string{"t"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) == 0 {
				c.Println(s.Config.Target)
				return
			}
			if err := s.SwitchTarget(c.Args[0]); err != nil {
				s.Fail(c, err)
			}
		},
	}
)

// Main is a helper to provide a single call in main. It returns the
// exit status.
func Main() int {
	flag.Parse()
	s := New(env.NewConfig())
	if cmdString != "" {
		return s.Run(ExecCmd.Name, cmdString)
	}
	return s.Run(flag.Args()...)
}
