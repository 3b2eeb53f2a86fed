package model

import (
	"fmt"
	"strings"
	"time"
)

// CommandSpec describes one program invocation. It is treated as immutable
// once built and is consumed once per run.
type CommandSpec struct {
	// Path is the executable path (absolute or $PATH relative).
	Path string
	// Args are the arguments passed to the executable, without the program name.
	Args []string
	// Input is the optional payload delivered on the program's stdin. A nil or
	// empty payload means the program sees an empty (already closed) stdin.
	Input []byte
}

// Validate checks the command can be launched at all.
func (c CommandSpec) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("command path is required: %w", ErrNotValid)
	}
	return nil
}

// WithInput returns a copy of the command that will receive the given input payload.
func (c CommandSpec) WithInput(input []byte) CommandSpec {
	args := make([]string, len(c.Args))
	copy(args, c.Args)

	return CommandSpec{
		Path:  c.Path,
		Args:  args,
		Input: input,
	}
}

// Argv returns the full argument vector, program path first.
func (c CommandSpec) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

// String renders the command line so it can be pasted into a shell to reproduce
// the run manually.
func (c CommandSpec) String() string {
	argv := c.Argv()
	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	safe := true
	for _, c := range s {
		if !isShellSafe(c) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}

	// 'foo'\''bar' -> foo'bar
	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range s {
		if c == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func isShellSafe(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '/' || c == '=' || c == ','
}

// OutputMode is how the output streams of a process are captured.
type OutputMode string

const (
	// OutputModeSeparate captures stdout and stderr independently.
	OutputModeSeparate OutputMode = "separate"
	// OutputModeCombined merges stderr into stdout at process creation time.
	// Mismatches can't be attributed to a specific stream in this mode.
	OutputModeCombined OutputMode = "combined"
)

// Validate checks the mode is a known one.
func (m OutputMode) Validate() error {
	switch m {
	case OutputModeSeparate, OutputModeCombined:
		return nil
	}
	return fmt.Errorf("unknown output mode %q: %w", m, ErrNotValid)
}

// Channels returns the output channels captured by the mode, in comparison order.
func (m OutputMode) Channels() []Channel {
	if m == OutputModeCombined {
		return []Channel{ChannelCombined}
	}
	return []Channel{ChannelStdout, ChannelStderr}
}

// Channel is one distinguishable output stream of a process.
type Channel string

const (
	ChannelStdout   Channel = "stdout"
	ChannelStderr   Channel = "stderr"
	ChannelCombined Channel = "combined"
)

// RunOpts are the options of a single process run.
type RunOpts struct {
	// Timeout bounds every blocking wait of the run. Zero disables the bounds.
	Timeout time.Duration
	// Mode selects how output streams are captured.
	Mode OutputMode
	// Digest selects the checksum algorithm used for the output channels.
	Digest DigestAlgorithm
}
