package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/process"
	"github.com/slok/diffrun/internal/runner"
	"github.com/slok/diffrun/internal/stream"
)

// RunnerConfig is the configuration for the local process runner.
type RunnerConfig struct {
	Launcher    *process.Launcher
	Multiplexer *stream.Multiplexer
	Logger      log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "runner.Local"})

	var err error
	if c.Launcher == nil {
		c.Launcher, err = process.NewLauncher(process.LauncherConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create launcher: %w", err)
		}
	}
	if c.Multiplexer == nil {
		c.Multiplexer, err = stream.NewMultiplexer(stream.MultiplexerConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create multiplexer: %w", err)
		}
	}

	return nil
}

// Runner runs processes on the local host.
type Runner struct {
	launcher *process.Launcher
	mux      *stream.Multiplexer
	sup      supervisor
	logger   log.Logger
}

// NewRunner returns a new local runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		launcher: cfg.Launcher,
		mux:      cfg.Multiplexer,
		sup:      supervisor{logger: cfg.Logger},
		logger:   cfg.Logger,
	}, nil
}

// Run launches the command, drains its output channels into digests and waits
// for it to exit.
func (r *Runner) Run(ctx context.Context, cmd model.CommandSpec, opts model.RunOpts) (*model.RunResult, error) {
	if opts.Mode == "" {
		opts.Mode = model.OutputModeSeparate
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout can't be negative: %w", model.ErrNotValid)
	}
	if opts.Digest != "" {
		if err := opts.Digest.Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	p, err := r.launcher.Launch(ctx, cmd, opts.Mode)
	if err != nil {
		return nil, err
	}

	sources := make([]stream.Source, 0, len(p.Streams()))
	for _, s := range p.Streams() {
		sources = append(sources, stream.Source{Channel: s.Channel, Reader: s.Reader})
	}

	digests, err := r.mux.Drain(ctx, sources, opts.Digest, opts.Timeout)
	if err != nil {
		if errors.Is(err, model.ErrReadinessTimeout) {
			r.logger.Warningf("(%s) failed to respond after %s, killing it", cmd, opts.Timeout)
			err = &model.ReadinessTimeoutError{Command: cmd, Timeout: opts.Timeout}
		}
		return nil, r.sup.abort(p, err)
	}

	code, err := r.sup.awaitExit(ctx, p, opts.Timeout)
	if err != nil {
		return nil, err
	}

	r.logger.Debugf("(%s) exited with code %d after %s", cmd, code, time.Since(start))

	return &model.RunResult{
		ExitCode: code,
		Mode:     opts.Mode,
		Digests:  digests,
	}, nil
}

// NewEnvRunnerFactory returns a factory of local runners whose children get an
// explicit environment.
func NewEnvRunnerFactory(logger log.Logger) func(env []string) (runner.Runner, error) {
	return func(env []string) (runner.Runner, error) {
		launcher, err := process.NewLauncher(process.LauncherConfig{Env: env, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("could not create launcher: %w", err)
		}
		return NewRunner(RunnerConfig{Launcher: launcher, Logger: logger})
	}
}
