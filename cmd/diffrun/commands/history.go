package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/diffrun/internal/app/history"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/storage/sqlite"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id             string
	statusFilter   string
	workloadFilter string
	limit          int
	format         string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List the recorded comparison verdicts.")
	c.Cmd.Arg("id", "Show a single verdict.").StringVar(&c.id)
	c.Cmd.Flag("status", "Filter by status (pass, fail).").StringVar(&c.statusFilter)
	c.Cmd.Flag("workload", "Filter by workload.").StringVar(&c.workloadFilter)
	c.Cmd.Flag("limit", "Maximum number of verdicts, 0 lists all.").Default("50").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var statusFilter *model.VerdictStatus
	if c.statusFilter != "" {
		status := model.VerdictStatus(strings.ToLower(c.statusFilter))
		statusFilter = &status
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	verdicts, err := svc.Run(ctx, history.Request{
		ID:             c.id,
		StatusFilter:   statusFilter,
		WorkloadFilter: c.workloadFilter,
		Limit:          c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list verdicts: %w", err)
	}

	p := c.rootCmd.printer(c.format)
	if c.id != "" {
		err = p.PrintVerdict(verdicts[0])
	} else {
		err = p.PrintVerdicts(verdicts)
	}
	if err != nil {
		return fmt.Errorf("could not print verdicts: %w", err)
	}

	return nil
}
