package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/diffrun/internal/model"
)

// TablePrinter prints comparison information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

var _ Printer = &TablePrinter{}

// PrintRunResult prints the exit code and the channel digests of a run.
func (t *TablePrinter) PrintRunResult(cmd model.CommandSpec, res model.RunResult) error {
	fmt.Fprintf(t.writer, "Command:    %s\n", cmd)
	fmt.Fprintf(t.writer, "Mode:       %s\n", res.Mode)
	fmt.Fprintf(t.writer, "Exit code:  %d\n", res.ExitCode)

	for _, ch := range res.Mode.Channels() {
		d, _ := res.Digest(ch)
		fmt.Fprintf(t.writer, "%-11s %s\n", channelLabel(ch)+":", d)
	}

	return nil
}

// PrintVerdicts prints verdicts in a table format.
func (t *TablePrinter) PrintVerdicts(verdicts []model.Verdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tWORKLOAD\tARCH\tSTATUS\tFAILURE\tDURATION\tCREATED")

	for _, v := range verdicts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			orDash(v.Workload),
			orDash(string(v.Arch)),
			v.Status,
			orDash(failureLabel(v)),
			FormatDuration(v.Duration),
			TimeAgo(v.CreatedAt),
		)
	}

	return nil
}

// PrintVerdict prints a detailed verdict.
func (t *TablePrinter) PrintVerdict(v model.Verdict) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", v.ID)
	if v.Workload != "" {
		fmt.Fprintf(t.writer, "Workload:   %s\n", v.Workload)
	}
	if v.Arch != "" {
		fmt.Fprintf(t.writer, "Arch:       %s\n", v.Arch)
	}
	fmt.Fprintf(t.writer, "Reference:  %s\n", v.Reference)
	fmt.Fprintf(t.writer, "Candidate:  %s\n", v.Candidate)
	fmt.Fprintf(t.writer, "Status:     %s\n", v.Status)
	if !v.Passed() {
		fmt.Fprintf(t.writer, "Failure:    %s\n", failureLabel(v))
		fmt.Fprintf(t.writer, "Detail:     %s\n", v.Detail)
	}
	fmt.Fprintf(t.writer, "Duration:   %s\n", FormatDuration(v.Duration))
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(v.CreatedAt))

	return nil
}

// PrintSummary prints the result of every comparison of a suite and the totals.
func (t *TablePrinter) PrintSummary(s model.SuiteSummary) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "WORKLOAD\tARCH\tSTATUS\tFAILURE\tDURATION")
	for _, v := range s.Verdicts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.Workload,
			v.Arch,
			v.Status,
			orDash(failureLabel(v)),
			FormatDuration(v.Duration),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(t.writer)
	result := "PASS"
	if !s.AllPassed() {
		result = "FAIL"
	}
	fmt.Fprintf(t.writer, "%s: %d passed, %d failed in %s", result, s.Passed, s.Failed, FormatDuration(s.Duration))
	if s.Aborted {
		fmt.Fprint(t.writer, " (stopped on first failure)")
	}
	fmt.Fprintln(t.writer)

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func channelLabel(ch model.Channel) string {
	switch ch {
	case model.ChannelStdout:
		return "Stdout"
	case model.ChannelStderr:
		return "Stderr"
	case model.ChannelCombined:
		return "Combined"
	}
	return string(ch)
}

func failureLabel(v model.Verdict) string {
	if v.Channel != "" {
		return fmt.Sprintf("%s (%s)", v.Failure, v.Channel)
	}
	return string(v.Failure)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
