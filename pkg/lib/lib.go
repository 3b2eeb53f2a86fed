package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/diffrun/internal/conventions"
	"github.com/slok/diffrun/internal/runner"
	"github.com/slok/diffrun/internal/runner/local"
	"github.com/slok/diffrun/internal/storage"
	"github.com/slok/diffrun/internal/storage/memory"
	"github.com/slok/diffrun/internal/storage/sqlite"
	"github.com/slok/diffrun/pkg/lib/log"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.diffrun/diffrun.db for the verdict history.
type Config struct {
	// DBPath is the SQLite verdict history database path.
	// Default: ~/.diffrun/diffrun.db.
	DBPath string

	// DataDir is the base directory for diffrun data.
	// Default: ~/.diffrun.
	DataDir string

	// InMemory keeps the verdict history in memory instead of SQLite, it's
	// lost when the client is closed. DBPath and DataDir are ignored.
	InMemory bool

	// Env is the explicit environment of the compared programs.
	// Default: nil, the programs inherit the environment of the current process.
	Env []string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.InMemory {
		return nil
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	return nil
}

// Client is the main SDK entry point for differential testing programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, comparisons don't share any state.
type Client struct {
	repo          storage.VerdictRepository
	env           []string
	runnerFactory func(env []string) (runner.Runner, error)
	logger        log.Logger
	closeFn       func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		env:           cfg.Env,
		runnerFactory: local.NewEnvRunnerFactory(cfg.Logger),
		logger:        cfg.Logger,
	}

	if cfg.InMemory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
		return c, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	c.repo = repo
	c.closeFn = repo.Close

	return c, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func (c *Client) newRunner() (runner.Runner, error) {
	r, err := c.runnerFactory(c.env)
	if err != nil {
		return nil, fmt.Errorf("could not create runner: %w", err)
	}
	return r, nil
}
