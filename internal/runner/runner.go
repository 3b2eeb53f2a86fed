package runner

import (
	"context"

	"github.com/slok/diffrun/internal/model"
)

// Runner runs a single process to completion and summarizes its observable behavior.
type Runner interface {
	// Run returns the result only once every output channel reached end of stream
	// and the process exited. On timeouts the process is killed and no result is returned.
	Run(ctx context.Context, cmd model.CommandSpec, opts model.RunOpts) (*model.RunResult, error)
}
