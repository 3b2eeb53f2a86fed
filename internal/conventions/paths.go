package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default diffrun data directory name (relative to home).
	DefaultDataDir = ".diffrun"
	// DBFile is the verdict history database filename.
	DBFile = "diffrun.db"
	// CatalogFile is the workload catalog filename looked up by default.
	CatalogFile = "diffrun.yaml"

	// DefaultTimeout is the default readiness and exit bound of every run.
	DefaultTimeout = "30s"

	// EnvVarPrefix is the prefix of the environment variables that set flags.
	EnvVarPrefix = "DIFFRUN"
)

// DBPath returns the verdict database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
