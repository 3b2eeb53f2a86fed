package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/slok/diffrun/internal/app/compare"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner/local"
	"github.com/slok/diffrun/internal/storage/sqlite"
)

type CompareCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	reference string
	candidate string
	args      []string
	run       runFlags
	selfTest  bool
	record    bool
	workload  string
}

// NewCompareCommand returns the compare command.
func NewCompareCommand(rootCmd *RootCommand, app *kingpin.Application) *CompareCommand {
	c := &CompareCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("compare", "Run a reference and a candidate program with the same arguments and input, and compare their output and exit code.")
	c.Cmd.Arg("reference", "Reference program.").Required().StringVar(&c.reference)
	c.Cmd.Arg("candidate", "Candidate program.").Required().StringVar(&c.candidate)
	c.Cmd.Arg("args", "Arguments for both programs (use -- before them).").StringsVar(&c.args)
	c.run.register(c.Cmd)
	c.Cmd.Flag("self-test", "Compare the reference against itself.").Short('n').BoolVar(&c.selfTest)
	c.Cmd.Flag("record", "Record the verdict in the history database.").BoolVar(&c.record)
	c.Cmd.Flag("workload", "Workload name for the recorded verdict.").StringVar(&c.workload)

	return c
}

func (c CompareCommand) Name() string { return c.Cmd.FullCommand() }

func (c CompareCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	input, err := c.run.loadInput(c.rootCmd.Stdin)
	if err != nil {
		return fmt.Errorf("could not load input: %w", err)
	}
	environ, err := c.run.environ()
	if err != nil {
		return err
	}

	r, err := local.NewEnvRunnerFactory(logger)(environ)
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	svc, err := compare.NewService(compare.ServiceConfig{Runner: r, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ref := model.CommandSpec{Path: c.reference, Args: c.args}
	cand := model.CommandSpec{Path: c.candidate, Args: c.args}
	if c.selfTest {
		cand.Path = c.reference
	}

	start := time.Now()
	cmpErr := svc.Run(ctx, compare.Request{
		Reference: ref,
		Candidate: cand,
		Input:     input,
		Timeout:   c.run.timeout,
		Mode:      model.OutputMode(c.run.mode),
		Digest:    model.DigestAlgorithm(c.run.digest),
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if c.record {
		v := model.NewVerdict(ulid.MustNew(ulid.Timestamp(start), rand.Reader).String(), ref, cand, cmpErr)
		v.Workload = c.workload
		v.Arch = hostArch()
		v.CreatedAt = start.UTC()
		v.Duration = time.Since(start)

		if err := c.recordVerdict(ctx, v); err != nil {
			return err
		}
	}

	// PASS is silent, a FAIL is the command error.
	return cmpErr
}

func (c CompareCommand) recordVerdict(ctx context.Context, v model.Verdict) error {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	if err := repo.CreateVerdict(ctx, v); err != nil {
		return fmt.Errorf("could not record verdict: %w", err)
	}
	c.rootCmd.Logger.Debugf("verdict %s recorded", v.ID)

	return nil
}
