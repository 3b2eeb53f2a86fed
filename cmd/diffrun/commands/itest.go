package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/diffrun/internal/app/itest"
	"github.com/slok/diffrun/internal/conventions"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner/local"
	"github.com/slok/diffrun/internal/storage"
	storageio "github.com/slok/diffrun/internal/storage/io"
	"github.com/slok/diffrun/internal/storage/sqlite"
	"github.com/slok/diffrun/internal/utils/env"
)

type ITestCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	catalog           string
	tests             []string
	arches            []string
	timeout           time.Duration
	continueOnFailure bool
	selfTest          bool
	noRecord          bool
	envSpecs          []string
	format            string
}

// NewITestCommand returns the itest command.
func NewITestCommand(rootCmd *RootCommand, app *kingpin.Application) *ITestCommand {
	c := &ITestCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("itest", "Run the workload catalog comparing every reference against its candidate.")
	c.Cmd.Flag("catalog", "Workload catalog YAML file.").Short('c').Default(conventions.CatalogFile).StringVar(&c.catalog)
	c.Cmd.Flag("test", "Workloads to run, comma separated or repeated. All by default.").Short('t').StringsVar(&c.tests)
	c.Cmd.Flag("arch", "Architectures to run, overrides the catalog ones. Can be repeated.").StringsVar(&c.arches)
	c.Cmd.Flag("timeout", "Timeout of workloads without one when the catalog has none.").Default(conventions.DefaultTimeout).DurationVar(&c.timeout)
	c.Cmd.Flag("continue-on-failure", "Keep running the remaining workloads after a failure.").Short('f').BoolVar(&c.continueOnFailure)
	c.Cmd.Flag("self-test", "Control run, compare every reference against itself.").Short('n').BoolVar(&c.selfTest)
	c.Cmd.Flag("no-record", "Don't record the verdicts in the history database.").BoolVar(&c.noRecord)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment) set on the programs. Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ITestCommand) Name() string { return c.Cmd.FullCommand() }

func (c ITestCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	arches, err := model.NormalizeArches(splitList(c.arches))
	if err != nil {
		return fmt.Errorf("invalid --arch: %w", err)
	}

	extraEnv, err := env.ParseSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env value: %w", err)
	}
	baseEnv := env.ToList(env.MergeMaps(env.FromList(os.Environ()), extraEnv))

	// Catalogs are read from the root so input files can be anywhere.
	catalogPath, err := filepath.Abs(c.catalog)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	catalogRepo := storageio.NewCatalogYAMLRepository(os.DirFS("/"))
	catalog, err := catalogRepo.GetCatalog(ctx, strings.TrimPrefix(filepath.ToSlash(catalogPath), "/"))
	if err != nil {
		return fmt.Errorf("could not load catalog: %w", err)
	}

	var repo storage.VerdictRepository
	if !c.noRecord {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	}

	svc, err := itest.NewService(itest.ServiceConfig{
		RunnerFactory: local.NewEnvRunnerFactory(logger),
		Repository:    repo,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	summary, err := svc.Run(ctx, itest.Request{
		Catalog:           catalog,
		Workloads:         splitList(c.tests),
		Arches:            arches,
		HostArch:          hostArch(),
		SelfTest:          c.selfTest,
		ContinueOnFailure: c.continueOnFailure,
		Timeout:           c.timeout,
		BaseEnv:           baseEnv,
		Record:            !c.noRecord,
	})
	if err != nil {
		return err
	}

	if err := c.rootCmd.printer(c.format).PrintSummary(*summary); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	if !summary.AllPassed() {
		return fmt.Errorf("%d of %d comparisons failed", summary.Failed, len(summary.Verdicts))
	}

	return nil
}
