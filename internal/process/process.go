// Package process starts child processes with their output streams wired for
// digest capture.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
)

const defaultWaitDelay = 5 * time.Second

// LauncherConfig is the configuration for the process launcher.
type LauncherConfig struct {
	// Env is the explicit environment of the children, nil inherits the
	// environment of the current process.
	Env []string
	// Dir is the working directory of the children, empty uses the current one.
	Dir string
	// WaitDelay bounds how long waiting for a process keeps waiting on its I/O
	// after the process itself exited.
	WaitDelay time.Duration
	Logger    log.Logger
}

func (c *LauncherConfig) defaults() error {
	if c.WaitDelay <= 0 {
		c.WaitDelay = defaultWaitDelay
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.Launcher"})
	return nil
}

// Launcher starts processes from command specs.
type Launcher struct {
	env       []string
	dir       string
	waitDelay time.Duration
	logger    log.Logger
}

// NewLauncher returns a new process launcher.
func NewLauncher(cfg LauncherConfig) (*Launcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Launcher{
		env:       cfg.Env,
		dir:       cfg.Dir,
		waitDelay: cfg.WaitDelay,
		logger:    cfg.Logger,
	}, nil
}

// Stream is one live output channel of a process.
type Stream struct {
	Channel model.Channel
	Reader  io.Reader
}

// Launch starts the command. In separate mode the process gets independent stdout
// and stderr pipes, in combined mode both are the same pipe. The command input
// payload is delivered on stdin, which is closed afterwards (or right away when
// there is no payload).
func (l *Launcher) Launch(ctx context.Context, spec model.CommandSpec, mode model.OutputMode) (*Process, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = l.dir
	cmd.Env = l.env
	cmd.WaitDelay = l.waitDelay
	setProcAttrs(cmd)

	if len(spec.Input) > 0 {
		cmd.Stdin = bytes.NewReader(spec.Input)
	}

	var (
		streams []Stream
		readers []*os.File
		writers []*os.File
	)
	closeAll := func(fs []*os.File) {
		for _, f := range fs {
			_ = f.Close()
		}
	}

	for _, ch := range mode.Channels() {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll(readers)
			closeAll(writers)
			return nil, fmt.Errorf("could not create %s pipe: %w", ch, err)
		}
		readers = append(readers, r)
		writers = append(writers, w)
		streams = append(streams, Stream{Channel: ch, Reader: r})
	}

	switch mode {
	case model.OutputModeCombined:
		cmd.Stdout = writers[0]
		cmd.Stderr = writers[0]
	default:
		cmd.Stdout = writers[0]
		cmd.Stderr = writers[1]
	}

	if err := cmd.Start(); err != nil {
		closeAll(readers)
		closeAll(writers)
		return nil, &model.LaunchError{Command: spec, Err: err}
	}

	// The child has its own copies, ours must be closed so the readers get EOF
	// when the child (and its children) are done writing.
	closeAll(writers)

	l.logger.WithCtxValues(ctx).Debugf("started (%s) with pid %d in %s mode", spec, cmd.Process.Pid, mode)

	return &Process{
		cmd:     cmd,
		command: spec,
		streams: streams,
		readers: readers,
		exited:  make(chan struct{}),
		logger:  l.logger,
	}, nil
}

// Process is a started child process.
type Process struct {
	cmd     *exec.Cmd
	command model.CommandSpec
	streams []Stream
	readers []*os.File
	logger  log.Logger

	waitOnce sync.Once
	exited   chan struct{}
	exitCode int
	waitErr  error
}

// Streams returns the output streams of the process.
func (p *Process) Streams() []Stream { return p.streams }

// Command returns the command the process was started from.
func (p *Process) Command() model.CommandSpec { return p.command }

// Pid returns the OS process ID.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Wait blocks until the process exits and returns its exit code. Processes
// killed by a signal return the negated signal number. It's safe to call Wait
// multiple times and concurrently.
//
// Wait releases the output streams, so it must only be called once the streams
// have been drained or the process has been killed.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		for _, r := range p.readers {
			_ = r.Close()
		}

		if p.cmd.ProcessState == nil {
			p.waitErr = fmt.Errorf("could not wait for (%s): %w", p.command, err)
		} else {
			var exitErr *exec.ExitError
			if err != nil && !errors.As(err, &exitErr) {
				// I/O errors after the process exited (e.g. stdin not consumed).
				p.logger.Debugf("wait for (%s) returned: %s", p.command, err)
			}
			p.exitCode = exitCode(p.cmd.ProcessState)
		}
		close(p.exited)
	})

	return p.exitCode, p.waitErr
}

// Exited returns a channel that is closed once the process has been waited for.
func (p *Process) Exited() <-chan struct{} { return p.exited }

// Running returns true while the process has not been reaped.
func (p *Process) Running() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Kill forcibly terminates the process, and all the processes it started, then
// reaps it. After Kill returns the process is not running.
func (p *Process) Kill() error {
	if !p.Running() {
		return nil
	}
	if err := killGroup(p.cmd.Process); err != nil {
		return fmt.Errorf("could not kill (%s): %w", p.command, err)
	}
	if _, err := p.Wait(); err != nil {
		return err
	}

	p.logger.Debugf("killed (%s)", p.command)
	return nil
}
