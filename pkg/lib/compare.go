package lib

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/diffrun/internal/app/compare"
	"github.com/slok/diffrun/internal/model"
)

// Compare runs the reference and then the candidate with identical arguments
// and input, and compares their stdout, stderr and exit code.
//
// A nil error means both programs behaved the same. Otherwise the error
// describes the first discrepancy and names both command lines, match it with
// [ErrOutputMismatch], [ErrExitCodeMismatch], [ErrReadinessTimeout],
// [ErrExitTimeout] or [ErrLaunch]. Invalid options return [ErrNotValid].
func (c *Client) Compare(ctx context.Context, reference, candidate Command, opts CompareOpts) error {
	r, err := c.newRunner()
	if err != nil {
		return err
	}

	svc, err := compare.NewService(compare.ServiceConfig{Runner: r, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ref := toInternalCommand(reference)
	cand := toInternalCommand(candidate)

	start := time.Now()
	cmpErr := svc.Run(ctx, compare.Request{
		Reference: ref,
		Candidate: cand,
		Input:     opts.Input,
		Timeout:   opts.Timeout,
		Mode:      model.OutputMode(opts.Mode),
		Digest:    model.DigestAlgorithm(opts.Digest),
	})

	if opts.Record && ctx.Err() == nil {
		v := model.NewVerdict(ulid.MustNew(ulid.Timestamp(start), rand.Reader).String(), ref, cand, cmpErr)
		v.Workload = opts.Workload
		v.Arch, _ = model.NormalizeArch(runtime.GOARCH)
		v.CreatedAt = start.UTC()
		v.Duration = time.Since(start)
		if err := c.repo.CreateVerdict(ctx, v); err != nil {
			return mapError(fmt.Errorf("could not record verdict: %w", err))
		}
	}

	return mapError(cmpErr)
}
