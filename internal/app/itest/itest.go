package itest

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/diffrun/internal/app/compare"
	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner"
	"github.com/slok/diffrun/internal/storage"
)

// RunnerFactory returns a runner whose children get the given explicit environment.
type RunnerFactory func(env []string) (runner.Runner, error)

// ServiceConfig is the configuration for the integration test service.
type ServiceConfig struct {
	RunnerFactory RunnerFactory
	// Repository records the verdicts, optional.
	Repository storage.VerdictRepository
	// IDGenerator returns verdict IDs, defaults to ULIDs.
	IDGenerator func() string
	// TimeNow defaults to time.Now.
	TimeNow func() time.Time
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.RunnerFactory == nil {
		return fmt.Errorf("runner factory is required")
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		}
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ITest"})
	return nil
}

// Service runs a catalog of workloads as differential comparisons.
type Service struct {
	runnerFactory RunnerFactory
	repo          storage.VerdictRepository
	idGen         func() string
	timeNow       func() time.Time
	logger        log.Logger
}

// NewService creates a new integration test service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runnerFactory: cfg.RunnerFactory,
		repo:          cfg.Repository,
		idGen:         cfg.IDGenerator,
		timeNow:       cfg.TimeNow,
		logger:        cfg.Logger,
	}, nil
}

// Request contains the parameters of a suite run.
type Request struct {
	Catalog model.Catalog
	// Workloads selects workloads by name, empty runs all of them.
	Workloads []string
	// Arches overrides the catalog architectures.
	Arches []model.Arch
	// HostArch is used when neither the request nor the catalog have architectures.
	HostArch model.Arch
	// SelfTest compares every reference against itself, validating the harness
	// and the determinism of the workloads.
	SelfTest bool
	// ContinueOnFailure keeps running the remaining workloads after a failure.
	ContinueOnFailure bool
	// Timeout is used by workloads without a timeout when the catalog has none.
	Timeout time.Duration
	// BaseEnv is the environment the catalog environment is added to.
	BaseEnv []string
	// Record stores every verdict in the repository.
	Record bool
}

type job struct {
	workload model.Workload
	arch     model.Arch
	timeout  time.Duration
}

// Run runs the selected workloads for every architecture. Comparison failures
// are reported in the summary, the returned error is only set when the suite
// itself could not run.
func (s *Service) Run(ctx context.Context, req Request) (*model.SuiteSummary, error) {
	if req.Record && s.repo == nil {
		return nil, fmt.Errorf("recording requires a verdict repository: %w", model.ErrNotValid)
	}

	workloads, err := req.Catalog.Select(req.Workloads)
	if err != nil {
		return nil, err
	}

	arches := req.Arches
	if len(arches) == 0 {
		arches = req.Catalog.Arches
	}
	if len(arches) == 0 {
		if req.HostArch == "" {
			return nil, fmt.Errorf("no architecture to run the suite for: %w", model.ErrNotValid)
		}
		arches = []model.Arch{req.HostArch}
	}

	// Resolve everything before running anything so a bad catalog fails fast.
	jobs := map[model.Arch][]job{}
	for _, arch := range arches {
		for _, w := range workloads {
			timeout := w.Timeout
			if timeout <= 0 {
				timeout = req.Catalog.Timeout
			}
			if timeout <= 0 {
				timeout = req.Timeout
			}
			if timeout <= 0 {
				return nil, fmt.Errorf("workload %s has no timeout: %w", w.Name, model.ErrNotValid)
			}
			jobs[arch] = append(jobs[arch], job{workload: w, arch: arch, timeout: timeout})
		}
	}

	start := s.timeNow()
	summary := &model.SuiteSummary{Verdicts: []model.Verdict{}}
	defer func() { summary.Duration = s.timeNow().Sub(start) }()

	for _, arch := range arches {
		env := buildEnv(req.BaseEnv, req.Catalog.Env, arch)
		r, err := s.runnerFactory(env)
		if err != nil {
			return summary, fmt.Errorf("could not create runner for %s: %w", arch, err)
		}
		comparer, err := compare.NewService(compare.ServiceConfig{Runner: r, Logger: s.logger})
		if err != nil {
			return summary, fmt.Errorf("could not create comparer: %w", err)
		}

		for _, j := range jobs[arch] {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			v, err := s.runJob(ctx, comparer, j, req)
			if err != nil {
				return summary, err
			}
			summary.Verdicts = append(summary.Verdicts, v)

			if v.Passed() {
				summary.Passed++
				continue
			}

			summary.Failed++
			if !req.ContinueOnFailure {
				summary.Aborted = true
				s.logger.Warningf("stopping suite after %s failure on %s", v.Workload, v.Arch)
				return summary, nil
			}
		}
	}

	return summary, nil
}

func (s *Service) runJob(ctx context.Context, comparer *compare.Service, j job, req Request) (model.Verdict, error) {
	ref, cand := j.workload.Commands(j.arch, req.SelfTest)
	logger := s.logger.WithValues(log.Kv{"workload": j.workload.Name, "arch": j.arch})

	logger.Debugf("comparing (%s) to (%s)", ref, cand)
	start := s.timeNow()
	cmpErr := comparer.Run(ctx, compare.Request{
		Reference: ref,
		Candidate: cand,
		Input:     j.workload.Input,
		Timeout:   j.timeout,
		Mode:      j.workload.Mode,
		Digest:    req.Catalog.Digest,
	})

	// A cancelled suite is not a workload verdict.
	if ctx.Err() != nil {
		return model.Verdict{}, ctx.Err()
	}

	v := model.NewVerdict(s.idGen(), ref, cand, cmpErr)
	v.Workload = j.workload.Name
	v.Arch = j.arch
	v.CreatedAt = start.UTC()
	v.Duration = s.timeNow().Sub(start)

	if v.Passed() {
		logger.Infof("PASS in %s", v.Duration)
	} else {
		logger.Errorf("FAIL (%s): %s", v.Failure, v.Detail)
	}

	if req.Record {
		if err := s.repo.CreateVerdict(ctx, v); err != nil {
			return model.Verdict{}, fmt.Errorf("could not record verdict: %w", err)
		}
	}

	return v, nil
}

// buildEnv returns the base environment with the catalog variables set on top,
// the `{arch}` and `{bits}` placeholders of the values are expanded.
func buildEnv(base []string, vars map[string]string, arch model.Arch) []string {
	if len(vars) == 0 {
		return base
	}

	r := strings.NewReplacer("{arch}", string(arch), "{bits}", strconv.Itoa(arch.Bits()))

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(vars))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := vars[k]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, k := range keys {
		env = append(env, k+"="+r.Replace(vars[k]))
	}

	return env
}
