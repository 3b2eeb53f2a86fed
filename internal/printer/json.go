package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/diffrun/internal/model"
)

// JSONPrinter prints comparison information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

var _ Printer = &JSONPrinter{}

// runResultOutput represents the outcome of a single run.
type runResultOutput struct {
	Command  string            `json:"command"`
	Mode     string            `json:"mode"`
	ExitCode int               `json:"exit_code"`
	Digests  map[string]string `json:"digests"`
}

// verdictOutput represents a verdict.
type verdictOutput struct {
	ID         string    `json:"id"`
	Workload   string    `json:"workload,omitempty"`
	Arch       string    `json:"arch,omitempty"`
	Reference  string    `json:"reference"`
	Candidate  string    `json:"candidate"`
	Status     string    `json:"status"`
	Failure    string    `json:"failure,omitempty"`
	Channel    string    `json:"channel,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// summaryOutput represents the outcome of a suite.
type summaryOutput struct {
	Passed     int             `json:"passed"`
	Failed     int             `json:"failed"`
	Aborted    bool            `json:"aborted"`
	DurationMs int64           `json:"duration_ms"`
	Verdicts   []verdictOutput `json:"verdicts"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunResult prints the outcome of a run in JSON format.
func (j *JSONPrinter) PrintRunResult(cmd model.CommandSpec, res model.RunResult) error {
	output := runResultOutput{
		Command:  cmd.String(),
		Mode:     string(res.Mode),
		ExitCode: res.ExitCode,
		Digests:  make(map[string]string, len(res.Digests)),
	}
	for ch, d := range res.Digests {
		output.Digests[string(ch)] = string(d)
	}

	return j.encode(output)
}

// PrintVerdicts prints verdicts in JSON format.
func (j *JSONPrinter) PrintVerdicts(verdicts []model.Verdict) error {
	items := make([]verdictOutput, len(verdicts))
	for i, v := range verdicts {
		items[i] = mapVerdict(v)
	}

	return j.encode(items)
}

// PrintVerdict prints a verdict in JSON format.
func (j *JSONPrinter) PrintVerdict(v model.Verdict) error {
	return j.encode(mapVerdict(v))
}

// PrintSummary prints the outcome of a suite in JSON format.
func (j *JSONPrinter) PrintSummary(s model.SuiteSummary) error {
	output := summaryOutput{
		Passed:     s.Passed,
		Failed:     s.Failed,
		Aborted:    s.Aborted,
		DurationMs: s.Duration.Milliseconds(),
		Verdicts:   make([]verdictOutput, len(s.Verdicts)),
	}
	for i, v := range s.Verdicts {
		output.Verdicts[i] = mapVerdict(v)
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapVerdict(v model.Verdict) verdictOutput {
	return verdictOutput{
		ID:         v.ID,
		Workload:   v.Workload,
		Arch:       string(v.Arch),
		Reference:  v.Reference,
		Candidate:  v.Candidate,
		Status:     string(v.Status),
		Failure:    string(v.Failure),
		Channel:    string(v.Channel),
		Detail:     v.Detail,
		DurationMs: v.Duration.Milliseconds(),
		CreatedAt:  v.CreatedAt.UTC(),
	}
}
