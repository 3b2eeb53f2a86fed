package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/diffrun/internal/app/hash"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner/local"
)

type HashCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	program string
	args    []string
	run     runFlags
	format  string
}

// NewHashCommand returns the hash command.
func NewHashCommand(rootCmd *RootCommand, app *kingpin.Application) *HashCommand {
	c := &HashCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("hash", "Run a program and print its exit code and output digests.")
	c.Cmd.Arg("program", "Program to run.").Required().StringVar(&c.program)
	c.Cmd.Arg("args", "Program arguments (use -- before them).").StringsVar(&c.args)
	c.run.register(c.Cmd)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c HashCommand) Name() string { return c.Cmd.FullCommand() }

func (c HashCommand) Run(ctx context.Context) error {
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

	svc, err := hash.NewService(hash.ServiceConfig{Runner: r, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	cmd := model.CommandSpec{Path: c.program, Args: c.args}
	res, err := svc.Run(ctx, hash.Request{
		Command: cmd,
		Input:   input,
		Timeout: c.run.timeout,
		Mode:    model.OutputMode(c.run.mode),
		Digest:  model.DigestAlgorithm(c.run.digest),
	})
	if err != nil {
		return err
	}

	if err := c.rootCmd.printer(c.format).PrintRunResult(cmd, *res); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
