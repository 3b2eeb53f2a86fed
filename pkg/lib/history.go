package lib

import (
	"context"
	"fmt"

	"github.com/slok/diffrun/internal/app/history"
	"github.com/slok/diffrun/internal/model"
)

// ListVerdicts returns the recorded verdicts, newest first.
func (c *Client) ListVerdicts(ctx context.Context, opts *ListVerdictsOpts) ([]Verdict, error) {
	req := history.Request{}
	if opts != nil {
		if opts.Status != nil {
			s := model.VerdictStatus(*opts.Status)
			req.StatusFilter = &s
		}
		req.WorkloadFilter = opts.Workload
		req.Limit = opts.Limit
	}

	verdicts, err := c.historyRun(ctx, req)
	if err != nil {
		return nil, err
	}

	return fromInternalVerdicts(verdicts), nil
}

// GetVerdict returns a recorded verdict. Returns [ErrNotFound] if it doesn't exist.
func (c *Client) GetVerdict(ctx context.Context, id string) (*Verdict, error) {
	verdicts, err := c.historyRun(ctx, history.Request{ID: id})
	if err != nil {
		return nil, err
	}

	v := fromInternalVerdict(verdicts[0])
	return &v, nil
}

func (c *Client) historyRun(ctx context.Context, req history.Request) ([]model.Verdict, error) {
	svc, err := history.NewService(history.ServiceConfig{Repository: c.repo, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	verdicts, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return verdicts, nil
}
