package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner"
)

// ServiceConfig is the configuration for the compare service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Compare"})
	return nil
}

// Service compares the observable behavior of a reference and a candidate program.
type Service struct {
	runner runner.Runner
	logger log.Logger
}

// NewService creates a new compare service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters of a comparison.
type Request struct {
	Reference model.CommandSpec
	Candidate model.CommandSpec
	// Input is delivered to both programs, it replaces any input on the commands.
	Input []byte
	// Timeout bounds every blocking wait of both runs, it must be positive.
	Timeout time.Duration
	Mode    model.OutputMode
	Digest  model.DigestAlgorithm
}

func (r *Request) validate() error {
	if err := r.Reference.Validate(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if err := r.Candidate.Validate(); err != nil {
		return fmt.Errorf("candidate: %w", err)
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

// Run runs the reference and then the candidate with identical input, and
// compares their results. A nil error means both programs behaved the same,
// otherwise the first discrepancy found is returned as a typed error.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	ref := req.Reference.WithInput(req.Input)
	cand := req.Candidate.WithInput(req.Input)
	opts := model.RunOpts{Timeout: req.Timeout, Mode: req.Mode, Digest: req.Digest}
	logger := s.logger.WithCtxValues(ctx)

	logger.Debugf("running reference (%s)", ref)
	refRes, err := s.runner.Run(ctx, ref, opts)
	if err != nil {
		return &model.RunError{Role: model.RoleReference, Reference: ref, Candidate: cand, Err: err}
	}

	logger.Debugf("running candidate (%s)", cand)
	candRes, err := s.runner.Run(ctx, cand, opts)
	if err != nil {
		return &model.RunError{Role: model.RoleCandidate, Reference: ref, Candidate: cand, Err: err}
	}

	if err := compareResults(ref, cand, *refRes, *candRes); err != nil {
		logger.Debugf("comparison failed: %s", err)
		return err
	}

	logger.Debugf("(%s) and (%s) behave the same", ref, cand)
	return nil
}

// compareResults checks stdout, then stderr (separate mode) or the combined
// output (combined mode), then the exit codes. The first difference wins.
func compareResults(ref, cand model.CommandSpec, refRes, candRes model.RunResult) error {
	if refRes.Mode != candRes.Mode {
		return fmt.Errorf("results captured in different modes (%s, %s): %w", refRes.Mode, candRes.Mode, model.ErrNotValid)
	}

	for _, ch := range refRes.Mode.Channels() {
		refDigest, _ := refRes.Digest(ch)
		candDigest, _ := candRes.Digest(ch)
		if refDigest != candDigest {
			return &model.OutputMismatchError{
				Reference:       ref,
				Candidate:       cand,
				Channel:         ch,
				ReferenceDigest: refDigest,
				CandidateDigest: candDigest,
			}
		}
	}

	if refRes.ExitCode != candRes.ExitCode {
		return &model.ExitCodeMismatchError{
			Reference:     ref,
			Candidate:     cand,
			ReferenceCode: refRes.ExitCode,
			CandidateCode: candRes.ExitCode,
		}
	}

	return nil
}
