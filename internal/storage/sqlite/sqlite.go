package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/storage"
	"github.com/slok/diffrun/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.VerdictRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.VerdictRepository = &Repository{}

// NewRepository creates a new SQLite repository, the schema is migrated on creation.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const verdictColumns = `id, workload, arch, reference, candidate, status, failure, channel, detail, duration_ns, created_at`

// CreateVerdict stores a new verdict.
func (r *Repository) CreateVerdict(ctx context.Context, v model.Verdict) error {
	if v.ID == "" {
		return fmt.Errorf("verdict id is required: %w", model.ErrNotValid)
	}

	query := `INSERT INTO verdicts (` + verdictColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		v.ID,
		v.Workload,
		v.Arch,
		v.Reference,
		v.Candidate,
		v.Status,
		v.Failure,
		v.Channel,
		v.Detail,
		v.Duration.Nanoseconds(),
		v.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: verdicts.") {
			return fmt.Errorf("verdict %s: %w", v.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert verdict: %w", err)
	}

	r.logger.Debugf("Created verdict in repository: %s", v.ID)
	return nil
}

// GetVerdict retrieves a verdict by ID.
func (r *Repository) GetVerdict(ctx context.Context, id string) (*model.Verdict, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+verdictColumns+` FROM verdicts WHERE id = ?`, id)
	v, err := scanVerdict(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verdict %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query verdict: %w", err)
	}

	return &v, nil
}

// ListVerdicts returns the verdicts matching the options, newest first.
func (r *Repository) ListVerdicts(ctx context.Context, opts storage.ListVerdictsOpts) ([]model.Verdict, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Workload != "" {
		where = append(where, "workload = ?")
		args = append(args, opts.Workload)
	}

	query := `SELECT ` + verdictColumns + ` FROM verdicts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []model.Verdict{}
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		verdicts = append(verdicts, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return verdicts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerdict(s scanner) (model.Verdict, error) {
	var (
		v                   model.Verdict
		arch, status        string
		failure, channel    string
		durationNs, created int64
	)

	err := s.Scan(
		&v.ID,
		&v.Workload,
		&arch,
		&v.Reference,
		&v.Candidate,
		&status,
		&failure,
		&channel,
		&v.Detail,
		&durationNs,
		&created,
	)
	if err != nil {
		return model.Verdict{}, err
	}

	v.Arch = model.Arch(arch)
	v.Status = model.VerdictStatus(status)
	v.Failure = model.FailureKind(failure)
	v.Channel = model.Channel(channel)
	v.Duration = time.Duration(durationNs)
	v.CreatedAt = time.Unix(0, created).UTC()

	return v, nil
}
