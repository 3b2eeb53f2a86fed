package hash

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner"
)

// ServiceConfig is the configuration for the hash service.
type ServiceConfig struct {
	Runner runner.Runner
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Hash"})
	return nil
}

// Service runs a single program and summarizes its observable behavior.
type Service struct {
	runner runner.Runner
	logger log.Logger
}

// NewService creates a new hash service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters of a single hashed run.
type Request struct {
	Command model.CommandSpec
	Input   []byte
	Timeout time.Duration
	Mode    model.OutputMode
	Digest  model.DigestAlgorithm
}

func (r *Request) validate() error {
	if err := r.Command.Validate(); err != nil {
		return err
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %w", model.ErrNotValid)
	}
	if r.Mode == "" {
		r.Mode = model.OutputModeSeparate
	}
	if err := r.Mode.Validate(); err != nil {
		return err
	}
	if r.Digest == "" {
		r.Digest = model.DefaultDigestAlgorithm
	}
	return r.Digest.Validate()
}

// Run runs the command to completion and returns its exit code and per channel digests.
func (s *Service) Run(ctx context.Context, req Request) (*model.RunResult, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	cmd := req.Command
	if req.Input != nil {
		cmd = cmd.WithInput(req.Input)
	}

	res, err := s.runner.Run(ctx, cmd, model.RunOpts{Timeout: req.Timeout, Mode: req.Mode, Digest: req.Digest})
	if err != nil {
		return nil, fmt.Errorf("could not run (%s): %w", cmd, err)
	}

	s.logger.Debugf("(%s) exited with %d", cmd, res.ExitCode)
	return res, nil
}
