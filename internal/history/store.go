// Package history keeps a ledger of finished runs in a SQL database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one row of the ledger.
type Run struct {
	ID          string    `db:"id"`
	Mode        string    `db:"mode"`
	DryRun      bool      `db:"dry_run"`
	TenantID    string    `db:"tenant_id"`
	Environment string    `db:"environment"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
	Total       int       `db:"total"`
	Created     int       `db:"created"`
	Updated     int       `db:"updated"`
	Deleted     int       `db:"deleted"`
	Skipped     int       `db:"skipped"`
	Failed      int       `db:"failed"`
	Success     bool      `db:"success"`
}

// Record is one persisted result record.
type Record struct {
	RunID      string    `db:"run_id"`
	Seq        int       `db:"seq"`
	Category   string    `db:"category"`
	Name       string    `db:"name"`
	Action     string    `db:"action"`
	Status     string    `db:"status"`
	Type       string    `db:"type"`
	Platform   string    `db:"platform"`
	State      string    `db:"state"`
	ResourceID string    `db:"resource_id"`
	Path       string    `db:"path"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Store persists runs through sqlx.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and applies pending migrations.
func Open(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a finished run and all its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, state *model.RunState) error {
	summary := state.Summary()
	finished := state.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	run := Run{
		ID:          state.RunID,
		Mode:        string(state.Mode),
		DryRun:      state.DryRun,
		TenantID:    state.TenantID,
		Environment: state.Environment,
		StartedAt:   state.StartedAt.UTC(),
		FinishedAt:  finished.UTC(),
		Total:       summary.Total,
		Created:     summary.Created + summary.WouldCreate,
		Updated:     summary.Updated + summary.WouldUpdate,
		Deleted:     summary.Deleted + summary.WouldDelete,
		Skipped:     summary.Skipped,
		Failed:      summary.Failed,
		Success:     summary.Success(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO runs (id, mode, dry_run, tenant_id, environment, started_at, finished_at,
		                   total, created, updated, deleted, skipped, failed, success)
		 VALUES (:id, :mode, :dry_run, :tenant_id, :environment, :started_at, :finished_at,
		         :total, :created, :updated, :deleted, :skipped, :failed, :success)`,
		run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	seq := 0
	for _, category := range state.Categories() {
		for _, r := range state.Results(category) {
			seq++
			rec := Record{
				RunID:      run.ID,
				Seq:        seq,
				Category:   category,
				Name:       r.Name,
				Action:     string(r.Action),
				Status:     r.Status,
				Type:       r.Type,
				Platform:   r.Platform,
				State:      r.State,
				ResourceID: r.ID,
				Path:       r.Path,
				RecordedAt: r.Timestamp.UTC(),
			}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO run_records (run_id, seq, category, name, action, status, type, platform,
				                          state, resource_id, path, recorded_at)
				 VALUES (:run_id, :seq, :category, :name, :action, :status, :type, :platform,
				         :state, :resource_id, :path, :recorded_at)`,
				rec); err != nil {
				return fmt.Errorf("insert record %d: %w", seq, err)
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		s.db.Rebind(`SELECT * FROM runs ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, s.db.Rebind(`SELECT * FROM runs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// Records returns the records of a run in their original order.
func (s *Store) Records(ctx context.Context, runID string) ([]Record, error) {
	var records []Record
	err := s.db.SelectContext(ctx, &records,
		s.db.Rebind(`SELECT * FROM run_records WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, err
	}
	return records, nil
}
