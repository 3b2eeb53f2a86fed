package diffrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/diffrun/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "diffrun"
	}

	// go test changes the CWD to the test package directory, relative paths are useless.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("DIFFRUN_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("diffrun binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "DIFFRUN_INTEGRATION"
		envBinary     = "DIFFRUN_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunCmd runs a diffrun command with the given arguments and a specific db path.
// It suppresses logging output for cleaner test output.
func RunCmd(ctx context.Context, config Config, dbPath string, args ...string) (stdout, stderr []byte, err error) {
	args = append([]string{"--no-log", "--db-path", dbPath}, args...)
	return testutils.RunDiffrunArgs(ctx, nil, config.Binary, args, true)
}

// RunCompare compares a reference and a candidate with the same arguments.
func RunCompare(ctx context.Context, config Config, dbPath, reference, candidate string, flags []string, args ...string) (stdout, stderr []byte, err error) {
	cmdArgs := append([]string{"compare"}, flags...)
	cmdArgs = append(cmdArgs, reference, candidate, "--")
	cmdArgs = append(cmdArgs, args...)
	return RunCmd(ctx, config, dbPath, cmdArgs...)
}

// RunHash prints the digests of a program in JSON format.
func RunHash(ctx context.Context, config Config, dbPath, program string, args ...string) (stdout, stderr []byte, err error) {
	cmdArgs := append([]string{"hash", "--format", "json", program, "--"}, args...)
	return RunCmd(ctx, config, dbPath, cmdArgs...)
}

// RunITest runs a workload catalog in JSON format.
func RunITest(ctx context.Context, config Config, dbPath, catalog string, flags ...string) (stdout, stderr []byte, err error) {
	cmdArgs := append([]string{"itest", "--format", "json", "--catalog", catalog}, flags...)
	return RunCmd(ctx, config, dbPath, cmdArgs...)
}

// RunHistory lists the recorded verdicts in JSON format.
func RunHistory(ctx context.Context, config Config, dbPath string, flags ...string) (stdout, stderr []byte, err error) {
	cmdArgs := append([]string{"history", "--format", "json"}, flags...)
	return RunCmd(ctx, config, dbPath, cmdArgs...)
}
