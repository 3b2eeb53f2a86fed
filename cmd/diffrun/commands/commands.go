package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/diffrun/internal/conventions"
	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/printer"
	"github.com/slok/diffrun/internal/utils/env"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := conventions.DBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	app.Flag("db-path", "Path to the SQLite verdict history database.").Default(defaultDBPath).StringVar(&c.DBPath)

	return c
}

// printer returns the printer for an output format.
func (c RootCommand) printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout)
}

// runFlags are the flags shared by the commands that run programs.
type runFlags struct {
	timeout   time.Duration
	input     string
	inputFile string
	mode      string
	digest    string
	envSpecs  []string
}

func (f *runFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("timeout", "Readiness and exit bound of every run (e.g 30s, 2m).").Default(conventions.DefaultTimeout).DurationVar(&f.timeout)
	cmd.Flag("input", "Payload delivered on the programs stdin.").StringVar(&f.input)
	cmd.Flag("input-file", "File delivered on the programs stdin, '-' reads it from our stdin.").StringVar(&f.inputFile)
	cmd.Flag("mode", "Output capture mode.").Default(string(model.OutputModeSeparate)).EnumVar(&f.mode, string(model.OutputModeSeparate), string(model.OutputModeCombined))
	cmd.Flag("digest", "Output digest algorithm.").Default(string(model.DefaultDigestAlgorithm)).EnumVar(&f.digest,
		string(model.DigestAlgorithmMD5), string(model.DigestAlgorithmSHA256), string(model.DigestAlgorithmXXHash))
	cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment) set on the programs. Can be repeated.").Short('e').StringsVar(&f.envSpecs)
}

// loadInput returns the stdin payload, nil when none was requested.
func (f runFlags) loadInput(stdin io.Reader) ([]byte, error) {
	switch {
	case f.input != "" && f.inputFile != "":
		return nil, fmt.Errorf("--input and --input-file are exclusive")
	case f.input != "":
		return []byte(f.input), nil
	case f.inputFile == "-":
		return io.ReadAll(stdin)
	case f.inputFile != "":
		return os.ReadFile(f.inputFile)
	}
	return nil, nil
}

// environ returns the explicit environment of the programs: ours plus the --env specs.
func (f runFlags) environ() ([]string, error) {
	extra, err := env.ParseSpecs(f.envSpecs)
	if err != nil {
		return nil, fmt.Errorf("invalid --env value: %w", err)
	}
	return env.ToList(env.MergeMaps(env.FromList(os.Environ()), extra)), nil
}

// splitList splits repeated and comma separated flag values.
func splitList(values []string) []string {
	res := []string{}
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				res = append(res, s)
			}
		}
	}
	return res
}

// hostArch returns the architecture diffrun is running on, empty if unknown.
func hostArch() model.Arch {
	a, err := model.NormalizeArch(runtime.GOARCH)
	if err != nil {
		return ""
	}
	return a
}
