package storage

import (
	"context"

	"github.com/slok/diffrun/internal/model"
)

// ListVerdictsOpts filters the verdicts returned by a listing.
type ListVerdictsOpts struct {
	// Status only returns verdicts with this status when set.
	Status *model.VerdictStatus
	// Workload only returns verdicts of this workload when set.
	Workload string
	// Limit caps the number of verdicts, 0 means no limit.
	Limit int
}

// Match returns true if the verdict passes the filters (limit not included).
func (o ListVerdictsOpts) Match(v model.Verdict) bool {
	if o.Status != nil && v.Status != *o.Status {
		return false
	}
	if o.Workload != "" && v.Workload != o.Workload {
		return false
	}
	return true
}

// VerdictRepository is the interface for comparison verdict persistence.
// Listings are ordered from newest to oldest.
type VerdictRepository interface {
	CreateVerdict(ctx context.Context, v model.Verdict) error
	GetVerdict(ctx context.Context, id string) (*model.Verdict, error)
	ListVerdicts(ctx context.Context, opts ListVerdictsOpts) ([]model.Verdict, error)
}
