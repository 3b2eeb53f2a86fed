package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.VerdictRepository.
type Repository struct {
	verdicts map[string]model.Verdict
	mu       sync.RWMutex
	logger   log.Logger
}

var _ storage.VerdictRepository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		verdicts: make(map[string]model.Verdict),
		logger:   cfg.Logger,
	}, nil
}

// CreateVerdict stores a new verdict.
func (r *Repository) CreateVerdict(ctx context.Context, v model.Verdict) error {
	if v.ID == "" {
		return fmt.Errorf("verdict id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.verdicts[v.ID]; ok {
		return fmt.Errorf("verdict %s: %w", v.ID, model.ErrAlreadyExists)
	}

	r.verdicts[v.ID] = v
	r.logger.Debugf("Created verdict in repository: %s", v.ID)

	return nil
}

// GetVerdict retrieves a verdict by ID.
func (r *Repository) GetVerdict(ctx context.Context, id string) (*model.Verdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.verdicts[id]
	if !ok {
		return nil, fmt.Errorf("verdict %s: %w", id, model.ErrNotFound)
	}

	return &v, nil
}

// ListVerdicts returns the verdicts matching the options, newest first.
func (r *Repository) ListVerdicts(ctx context.Context, opts storage.ListVerdictsOpts) ([]model.Verdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	verdicts := make([]model.Verdict, 0, len(r.verdicts))
	for _, v := range r.verdicts {
		if opts.Match(v) {
			verdicts = append(verdicts, v)
		}
	}

	sort.Slice(verdicts, func(i, j int) bool {
		if !verdicts[i].CreatedAt.Equal(verdicts[j].CreatedAt) {
			return verdicts[i].CreatedAt.After(verdicts[j].CreatedAt)
		}
		return verdicts[i].ID > verdicts[j].ID
	})

	if opts.Limit > 0 && len(verdicts) > opts.Limit {
		verdicts = verdicts[:opts.Limit]
	}

	return verdicts, nil
}
