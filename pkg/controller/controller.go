// Package controller executes parsed commands against a device session.
package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/synchrotime/pkg/command"
	"github.com/robotalks/synchrotime/pkg/protocol"
	"github.com/robotalks/synchrotime/pkg/session"
)

// Exit status values.
const (
	StatusOK     = 0
	StatusFailed = 1
)

// Result is the outcome of a command.
type Result struct {
	Status  int
	Message string
	Err     error

	// Reading is set for a successful version request.
	Reading *protocol.ClockReading
	// Echo is the reply of any other successful request.
	Echo protocol.Echo
}

// OK indicates the command succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

func failed(what string, err error) Result {
	glog.Errorf("%s: %v", what, err)
	return Result{
		Status:  StatusFailed,
		Message: fmt.Sprintf("%s: %v", what, err),
		Err:     err,
	}
}

// Controller runs one exchange per command, sequentially.
type Controller struct {
	Session *session.Session
	Encoder protocol.Encoder
	// Out receives human readable output.
	Out io.Writer
}

// New creates a Controller.
func New(s *session.Session, enc protocol.Encoder) *Controller {
	return &Controller{Session: s, Encoder: enc, Out: os.Stdout}
}

// Do parses and executes a command string.
func (c *Controller) Do(ctx context.Context, input string) Result {
	d, err := command.Parse(input)
	if err != nil {
		return failed("invalid command", err)
	}
	return c.Execute(ctx, d)
}

// Execute executes a parsed command.
func (c *Controller) Execute(ctx context.Context, d *command.Descriptor) Result {
	frame, err := c.Encoder.Encode(d)
	if err != nil {
		return failed(fmt.Sprintf("encode %v request", d.Command), err)
	}
	switch d.Command {
	case command.Version:
		return c.handleVersion(ctx, frame)
	case command.Reset:
		return c.handleEcho(ctx, frame, "Request for reset failed")
	case command.Info:
		return c.handleEcho(ctx, frame, "Request for device info failed")
	case command.Configure:
		return c.handleEcho(ctx, frame, "Request for configuration failed")
	case command.Storage:
		return c.handleStorage(ctx, d, frame)
	}
	return failed("execute", &protocol.EncodingError{Reason: fmt.Sprintf("unknown command %v", d.Command)})
}

func (c *Controller) exchange(ctx context.Context, frame protocol.Frame) (*session.Reply, error) {
	reply, err := c.Session.Exchange(ctx, frame)
	if err != nil {
		return nil, err
	}
	if len(reply.Data) == 0 {
		return nil, protocol.ErrEmptyReply
	}
	if reply.Data, err = c.Encoder.Unwrap(frame, reply.Data); err != nil {
		return nil, err
	}
	if len(reply.Data) == 0 {
		return nil, protocol.ErrEmptyReply
	}
	return reply, nil
}

func (c *Controller) handleVersion(ctx context.Context, frame protocol.Frame) Result {
	const what = "Request for return of the Version failed"
	reply, err := c.exchange(ctx, frame)
	if err != nil {
		return failed(what, err)
	}
	reading, err := protocol.InterpretVersion(reply.Data, reply.SentAt)
	if err != nil {
		return failed(what, err)
	}
	fmt.Fprintf(c.Out, "RTC time %ds: %s\n", reading.Device, reading.DeviceTime().UTC().Format(time.RFC1123))
	fmt.Fprintf(c.Out, "Local time %ds: %s\n", reading.Local, reading.LocalTime().UTC().Format(time.RFC1123))
	fmt.Fprintf(c.Out, "Difference %+ds\n", reading.Drift)
	return Result{
		Message: fmt.Sprintf("drift %+ds", reading.Drift),
		Reading: reading,
	}
}

func (c *Controller) handleEcho(ctx context.Context, frame protocol.Frame, what string) Result {
	reply, err := c.exchange(ctx, frame)
	if err != nil {
		return failed(what, err)
	}
	echo, err := protocol.InterpretEcho(reply.Data)
	if err != nil {
		return failed(what, err)
	}
	fmt.Fprintln(c.Out, echo.String())
	return Result{Message: echo.String(), Echo: echo}
}

func (c *Controller) handleStorage(ctx context.Context, d *command.Descriptor, frame protocol.Frame) Result {
	if d.Task.Mutates() {
		wren := c.Encoder.WriteEnable(d.Block)
		if _, err := c.exchange(ctx, wren); err != nil {
			return failed(fmt.Sprintf("Write enable of block %d failed", d.Block), err)
		}
	}
	return c.handleEcho(ctx, frame, fmt.Sprintf("Storage %v of block %d failed", d.Task, d.Block))
}
