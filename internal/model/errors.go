package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrLaunch is returned when a child process could not be started.
	ErrLaunch = errors.New("launch failed")
	// ErrReadinessTimeout is returned when a process produced no output activity within the timeout.
	ErrReadinessTimeout = errors.New("readiness timeout")
	// ErrExitTimeout is returned when a process closed its output but didn't exit within the timeout.
	ErrExitTimeout = errors.New("exit timeout")
	// ErrOutputMismatch is returned when the output digests of two runs differ.
	ErrOutputMismatch = errors.New("output mismatch")
	// ErrExitCodeMismatch is returned when the exit codes of two runs differ.
	ErrExitCodeMismatch = errors.New("exit code mismatch")
)

// LaunchError is returned when the executable of a command could not be started
// (missing binary, permission denied...).
type LaunchError struct {
	Command CommandSpec
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not launch (%s): %s", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() []error { return []error{ErrLaunch, e.Err} }

// ReadinessTimeoutError is returned when a process doesn't produce any output
// activity within the timeout. The process has been killed when this is returned.
type ReadinessTimeoutError struct {
	Command CommandSpec
	Timeout time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("child process (%s) failed to respond after a timeout of %s", e.Command, e.Timeout)
}

func (e *ReadinessTimeoutError) Unwrap() error { return ErrReadinessTimeout }

// ExitTimeoutError is returned when a process closed all its output channels but
// didn't exit within the timeout. The process has been killed when this is returned.
type ExitTimeoutError struct {
	Command CommandSpec
	Timeout time.Duration
}

func (e *ExitTimeoutError) Error() string {
	return fmt.Sprintf("child process (%s) failed to exit %s after ceasing output", e.Command, e.Timeout)
}

func (e *ExitTimeoutError) Unwrap() error { return ErrExitTimeout }

// OutputMismatchError is returned when a channel digest differs between the
// reference and the candidate runs.
type OutputMismatchError struct {
	Reference       CommandSpec
	Candidate       CommandSpec
	Channel         Channel
	ReferenceDigest Digest
	CandidateDigest Digest
}

func (e *OutputMismatchError) Error() string {
	return fmt.Sprintf("differing %s for program comparison: (%s) vs (%s): %s != %s",
		e.Channel, e.Reference, e.Candidate, e.ReferenceDigest, e.CandidateDigest)
}

func (e *OutputMismatchError) Unwrap() error { return ErrOutputMismatch }

// ExitCodeMismatchError is returned when the exit codes differ between the
// reference and the candidate runs.
type ExitCodeMismatchError struct {
	Reference     CommandSpec
	Candidate     CommandSpec
	ReferenceCode int
	CandidateCode int
}

func (e *ExitCodeMismatchError) Error() string {
	return fmt.Sprintf("differing exit codes for program comparison: (%s) returning %d, (%s) returning %d",
		e.Reference, e.ReferenceCode, e.Candidate, e.CandidateCode)
}

func (e *ExitCodeMismatchError) Unwrap() error { return ErrExitCodeMismatch }

// Role identifies which side of a comparison a run belongs to.
type Role string

const (
	RoleReference Role = "reference"
	RoleCandidate Role = "candidate"
)

// RunError wraps a failure of one of the runs of a comparison, naming both
// command lines so the failure can be reproduced manually.
type RunError struct {
	Role      Role
	Reference CommandSpec
	Candidate CommandSpec
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s run failed comparing (%s) to (%s): %s", e.Role, e.Reference, e.Candidate, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
