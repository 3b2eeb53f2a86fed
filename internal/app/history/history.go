package history

import (
	"context"
	"fmt"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.VerdictRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})

	return nil
}

// Service lists recorded comparison verdicts.
type Service struct {
	repo   storage.VerdictRepository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// ID gets a single verdict, the filters are ignored when set.
	ID string
	// StatusFilter is an optional filter to only show verdicts with this status.
	StatusFilter *model.VerdictStatus
	// WorkloadFilter is an optional filter to only show verdicts of this workload.
	WorkloadFilter string
	// Limit caps the number of verdicts, 0 means all.
	Limit int
}

func (r Request) validate() error {
	if r.Limit < 0 {
		return fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}
	if r.StatusFilter != nil {
		switch *r.StatusFilter {
		case model.VerdictStatusPass, model.VerdictStatusFail:
		default:
			return fmt.Errorf("unknown status %q: %w", *r.StatusFilter, model.ErrNotValid)
		}
	}
	return nil
}

// Run returns the recorded verdicts, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Verdict, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	if req.ID != "" {
		v, err := s.repo.GetVerdict(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("could not get verdict: %w", err)
		}
		return []model.Verdict{*v}, nil
	}

	verdicts, err := s.repo.ListVerdicts(ctx, storage.ListVerdictsOpts{
		Status:   req.StatusFilter,
		Workload: req.WorkloadFilter,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list verdicts: %w", err)
	}

	s.logger.Debugf("found %d verdicts", len(verdicts))
	return verdicts, nil
}
