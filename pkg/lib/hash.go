package lib

import (
	"context"
	"fmt"

	"github.com/slok/diffrun/internal/app/hash"
	"github.com/slok/diffrun/internal/model"
)

// Hash runs a single program and returns its exit code and output digests.
//
// Comparing the results of two Hash calls is equivalent to [Client.Compare].
func (c *Client) Hash(ctx context.Context, cmd Command, opts RunOpts) (*RunResult, error) {
	r, err := c.newRunner()
	if err != nil {
		return nil, err
	}

	svc, err := hash.NewService(hash.ServiceConfig{Runner: r, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, hash.Request{
		Command: toInternalCommand(cmd),
		Input:   opts.Input,
		Timeout: opts.Timeout,
		Mode:    model.OutputMode(opts.Mode),
		Digest:  model.DigestAlgorithm(opts.Digest),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRunResult(*res), nil
}
