package printer

import "github.com/slok/diffrun/internal/model"

// Printer knows how to print comparison information in different formats.
type Printer interface {
	PrintRunResult(cmd model.CommandSpec, res model.RunResult) error
	PrintVerdicts(verdicts []model.Verdict) error
	PrintVerdict(v model.Verdict) error
	PrintSummary(s model.SuiteSummary) error
	PrintMessage(msg string) error
}
