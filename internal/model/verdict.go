package model

import (
	"errors"
	"time"
)

// VerdictStatus is the outcome of a comparison.
type VerdictStatus string

const (
	VerdictStatusPass VerdictStatus = "pass"
	VerdictStatusFail VerdictStatus = "fail"
)

// FailureKind classifies a failed comparison.
type FailureKind string

const (
	FailureKindNone             FailureKind = ""
	FailureKindLaunch           FailureKind = "launch"
	FailureKindReadinessTimeout FailureKind = "readiness-timeout"
	FailureKindExitTimeout      FailureKind = "exit-timeout"
	FailureKindOutputMismatch   FailureKind = "output-mismatch"
	FailureKindExitCodeMismatch FailureKind = "exit-code-mismatch"
	FailureKindError            FailureKind = "error"
)

// Verdict is the recorded outcome of one reference vs candidate comparison.
type Verdict struct {
	ID        string
	Workload  string
	Arch      Arch
	Reference string
	Candidate string
	Status    VerdictStatus
	Failure   FailureKind
	// Channel is set on output mismatches.
	Channel Channel
	// Detail has the failure message, empty on pass.
	Detail    string
	Duration  time.Duration
	CreatedAt time.Time
}

// Passed returns true if the comparison found no discrepancy.
func (v Verdict) Passed() bool { return v.Status == VerdictStatusPass }

// ClassifyFailure maps a comparison error to its failure kind and, for output
// mismatches, the differing channel.
func ClassifyFailure(err error) (FailureKind, Channel) {
	if err == nil {
		return FailureKindNone, ""
	}

	var outErr *OutputMismatchError
	switch {
	case errors.As(err, &outErr):
		return FailureKindOutputMismatch, outErr.Channel
	case errors.Is(err, ErrExitCodeMismatch):
		return FailureKindExitCodeMismatch, ""
	case errors.Is(err, ErrReadinessTimeout):
		return FailureKindReadinessTimeout, ""
	case errors.Is(err, ErrExitTimeout):
		return FailureKindExitTimeout, ""
	case errors.Is(err, ErrLaunch):
		return FailureKindLaunch, ""
	}

	return FailureKindError, ""
}

// NewVerdict builds a verdict from the result of a comparison, err being nil
// means the comparison passed.
func NewVerdict(id string, ref, cand CommandSpec, err error) Verdict {
	v := Verdict{
		ID:        id,
		Reference: ref.String(),
		Candidate: cand.String(),
		Status:    VerdictStatusPass,
	}

	if err != nil {
		v.Status = VerdictStatusFail
		v.Failure, v.Channel = ClassifyFailure(err)
		v.Detail = err.Error()
	}

	return v
}

// SuiteSummary is the outcome of running a catalog of workloads.
type SuiteSummary struct {
	Verdicts []Verdict
	Passed   int
	Failed   int
	// Aborted is true when the suite stopped on a failure.
	Aborted  bool
	Duration time.Duration
}

// AllPassed returns true if every comparison of the suite passed.
func (s SuiteSummary) AllPassed() bool { return s.Failed == 0 && !s.Aborted }
