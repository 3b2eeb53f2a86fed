package lib

import (
	"errors"
	"time"

	"github.com/slok/diffrun/internal/model"
)

// Errors returned by the client, inspect them with [errors.Is].
var (
	// ErrNotFound is returned when a verdict or a workload doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a verdict with the same ID already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input (e.g a non positive timeout).
	ErrNotValid = errors.New("not valid")

	// ErrLaunch is returned when a program could not be started.
	ErrLaunch = errors.New("launch failed")
	// ErrReadinessTimeout is returned when a program produced no output within the timeout.
	ErrReadinessTimeout = errors.New("readiness timeout")
	// ErrExitTimeout is returned when a program closed its output but didn't exit within the timeout.
	ErrExitTimeout = errors.New("exit timeout")
	// ErrOutputMismatch is returned when the reference and the candidate output differ.
	ErrOutputMismatch = errors.New("output mismatch")
	// ErrExitCodeMismatch is returned when the reference and the candidate exit codes differ.
	ErrExitCodeMismatch = errors.New("exit code mismatch")
)

// OutputMode selects how the output of the programs is captured.
type OutputMode string

const (
	// OutputModeSeparate digests stdout and stderr independently (default).
	OutputModeSeparate OutputMode = "separate"
	// OutputModeCombined digests stdout and stderr merged in a single stream.
	OutputModeCombined OutputMode = "combined"
)

// DigestAlgorithm selects the checksum used to summarize the output.
type DigestAlgorithm string

const (
	// DigestMD5 is the default digest algorithm.
	DigestMD5    DigestAlgorithm = "md5"
	DigestSHA256 DigestAlgorithm = "sha256"
	DigestXXHash DigestAlgorithm = "xxhash"
)

// Command is a program and its arguments.
type Command struct {
	// Path is the executable path, names without a slash are looked up in PATH.
	Path string
	Args []string
}

// RunOpts configures how programs are run.
type RunOpts struct {
	// Input is delivered on the stdin of the programs. Nil closes stdin right away.
	Input []byte
	// Timeout bounds the wait for output activity and for the exit after the
	// output is closed (required, must be positive).
	Timeout time.Duration
	// Mode defaults to [OutputModeSeparate].
	Mode OutputMode
	// Digest defaults to [DigestMD5].
	Digest DigestAlgorithm
}

// CompareOpts configures a comparison.
type CompareOpts struct {
	RunOpts
	// Record stores the verdict in the history.
	Record bool
	// Workload is the name of the recorded verdict workload.
	Workload string
}

// RunResult is the observable behavior of a finished program.
type RunResult struct {
	ExitCode int
	Mode     OutputMode
	// Digests are the hex digests of the output by channel: stdout and stderr
	// in separate mode, combined in combined mode.
	Digests map[string]string
}

// VerdictStatus is the outcome of a comparison.
type VerdictStatus string

const (
	VerdictStatusPass VerdictStatus = "pass"
	VerdictStatusFail VerdictStatus = "fail"
)

// Verdict is a recorded comparison.
type Verdict struct {
	// ID is the unique identifier (ULID) of the verdict.
	ID       string
	Workload string
	Arch     string
	// Reference and Candidate are the command lines, ready to be pasted in a shell.
	Reference string
	Candidate string
	Status    VerdictStatus
	// Failure is the kind of discrepancy, empty on pass.
	Failure string
	// Channel is the differing output channel on output mismatches.
	Channel   string
	Detail    string
	Duration  time.Duration
	CreatedAt time.Time
}

// ListVerdictsOpts filters the verdict history. Pass nil for all verdicts.
type ListVerdictsOpts struct {
	Status   *VerdictStatus
	Workload string
	Limit    int
}

// SuiteOpts configures a workload catalog run.
type SuiteOpts struct {
	// CatalogPath is the YAML workload catalog file (required).
	CatalogPath string
	// Workloads selects workloads by name, empty runs all of them.
	Workloads []string
	// Arches overrides the catalog architectures.
	Arches []string
	// SelfTest compares every reference against itself.
	SelfTest bool
	// ContinueOnFailure keeps running the remaining workloads after a failure.
	ContinueOnFailure bool
	// Timeout is used by workloads without one when the catalog has none.
	Timeout time.Duration
	// Record stores the verdicts in the history.
	Record bool
}

// SuiteSummary is the outcome of a catalog run.
type SuiteSummary struct {
	Verdicts []Verdict
	Passed   int
	Failed   int
	Aborted  bool
	Duration time.Duration
}

// AllPassed returns true if every comparison of the suite passed.
func (s SuiteSummary) AllPassed() bool { return s.Failed == 0 && !s.Aborted }

func toInternalCommand(c Command) model.CommandSpec {
	return model.CommandSpec{Path: c.Path, Args: c.Args}
}

func fromInternalRunResult(r model.RunResult) *RunResult {
	digests := make(map[string]string, len(r.Digests))
	for ch, d := range r.Digests {
		digests[string(ch)] = string(d)
	}
	return &RunResult{ExitCode: r.ExitCode, Mode: OutputMode(r.Mode), Digests: digests}
}

func fromInternalVerdict(v model.Verdict) Verdict {
	return Verdict{
		ID:        v.ID,
		Workload:  v.Workload,
		Arch:      string(v.Arch),
		Reference: v.Reference,
		Candidate: v.Candidate,
		Status:    VerdictStatus(v.Status),
		Failure:   string(v.Failure),
		Channel:   string(v.Channel),
		Detail:    v.Detail,
		Duration:  v.Duration,
		CreatedAt: v.CreatedAt,
	}
}

func fromInternalVerdicts(vs []model.Verdict) []Verdict {
	result := make([]Verdict, len(vs))
	for i, v := range vs {
		result[i] = fromInternalVerdict(v)
	}
	return result
}

func fromInternalSummary(s model.SuiteSummary) *SuiteSummary {
	return &SuiteSummary{
		Verdicts: fromInternalVerdicts(s.Verdicts),
		Passed:   s.Passed,
		Failed:   s.Failed,
		Aborted:  s.Aborted,
		Duration: s.Duration,
	}
}

var errorMapping = []struct {
	internal error
	public   error
}{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
	{model.ErrLaunch, ErrLaunch},
	{model.ErrReadinessTimeout, ErrReadinessTimeout},
	{model.ErrExitTimeout, ErrExitTimeout},
	{model.ErrOutputMismatch, ErrOutputMismatch},
	{model.ErrExitCodeMismatch, ErrExitCodeMismatch},
}

// mapError makes the internal sentinel errors matchable with the public ones.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}

	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
