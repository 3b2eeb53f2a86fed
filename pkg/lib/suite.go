package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/slok/diffrun/internal/app/itest"
	"github.com/slok/diffrun/internal/model"
	storageio "github.com/slok/diffrun/internal/storage/io"
)

// RunSuite runs the workloads of a YAML catalog, comparing every reference
// against its candidate on every architecture.
//
// Comparison failures are reported in the summary, the returned error is only
// set when the suite could not run (e.g an invalid catalog).
func (c *Client) RunSuite(ctx context.Context, opts SuiteOpts) (*SuiteSummary, error) {
	if opts.CatalogPath == "" {
		return nil, fmt.Errorf("catalog path is required: %w", ErrNotValid)
	}

	catalogPath, err := filepath.Abs(opts.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}
	catalog, err := storageio.NewCatalogYAMLRepository(os.DirFS("/")).
		GetCatalog(ctx, strings.TrimPrefix(filepath.ToSlash(catalogPath), "/"))
	if err != nil {
		return nil, mapError(fmt.Errorf("could not load catalog: %w", err))
	}

	arches, err := model.NormalizeArches(opts.Arches)
	if err != nil {
		return nil, mapError(err)
	}
	hostArch, _ := model.NormalizeArch(runtime.GOARCH)

	// Catalog variables are set on top of the inherited environment.
	baseEnv := c.env
	if baseEnv == nil {
		baseEnv = os.Environ()
	}

	svc, err := itest.NewService(itest.ServiceConfig{
		RunnerFactory: c.runnerFactory,
		Repository:    c.repo,
		Logger:        c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	summary, err := svc.Run(ctx, itest.Request{
		Catalog:           catalog,
		Workloads:         opts.Workloads,
		Arches:            arches,
		HostArch:          hostArch,
		SelfTest:          opts.SelfTest,
		ContinueOnFailure: opts.ContinueOnFailure,
		Timeout:           opts.Timeout,
		BaseEnv:           baseEnv,
		Record:            opts.Record,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalSummary(*summary), nil
}
