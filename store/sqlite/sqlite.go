/*
Package sqlite provides a SQLite-backed audit store for the refund engine.

PURPOSE:
  Keeps refund policy definitions and the history of evaluation runs so
  that every decision handed to a caller can be looked up later. Trade
  records themselves are not stored; a run keeps only what is needed to
  explain each decision.

KEY TABLES:
  policies:         Policy definitions as JSON (versioned on update)
  evaluation_runs:  One row per batch evaluation, with decision counts
  evaluations:      One row per assessed record, ordered by position

INDEXES:
  - idx_runs_created_at: Listing and retention purges
  - idx_evaluations_run: Loading a run's assessments

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to
  a single connection so every caller sees the same data.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on;
  deleting a run cascades to its evaluations.

USAGE:
  store, err := sqlite.New("./data/refunds.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - api/handlers.go: Writes runs after batch evaluation
  - api/retention.go: Purges old runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
)

// timeLayout sorts lexicographically in the same order as time.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements the audit store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Policies
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Evaluation runs
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id TEXT PRIMARY KEY,
		policy_id TEXT NOT NULL,
		total INTEGER NOT NULL,
		approved INTEGER NOT NULL,
		denied INTEGER NOT NULL,
		indeterminate INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON evaluation_runs(created_at);

	-- Evaluations (one per assessed record)
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES evaluation_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		subject TEXT NOT NULL,
		zone_label TEXT NOT NULL,
		source TEXT NOT NULL,
		decision TEXT NOT NULL,
		reason_code TEXT,
		reason TEXT,
		tos TEXT,
		elapsed_hours TEXT,
		limit_hours TEXT,
		invested_at TEXT,
		refund_registered_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_run
		ON evaluations(run_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POLICY STORE
// =============================================================================

// PolicyRecord is a stored policy with its JSON config.
type PolicyRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavePolicy inserts a policy, or replaces its config and bumps the version.
func (s *Store) SavePolicy(ctx context.Context, policy PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO policies (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, query, policy.ID, policy.Name, policy.ConfigJSON, now, now)
	if err != nil {
		return fmt.Errorf("save policy %s: %w", policy.ID, err)
	}
	return nil
}

// GetPolicy retrieves a policy by ID.
func (s *Store) GetPolicy(ctx context.Context, id string) (*PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p PolicyRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM policies WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &p, nil
}

// ListPolicies returns all policies ordered by name.
func (s *Store) ListPolicies(ctx context.Context) ([]PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM policies ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []PolicyRecord
	for rows.Next() {
		var p PolicyRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// DeletePolicy removes a policy. Past runs keep their policy id.
func (s *Store) DeletePolicy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM policies WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
	}
	return nil
}

// =============================================================================
// EVALUATION RUN STORE
// =============================================================================

// Run is one persisted batch evaluation.
type Run struct {
	ID          string
	PolicyID    string
	Summary     refund.Summary
	CreatedAt   time.Time
	Evaluations []EvaluationRecord // empty when listed
}

// EvaluationRecord is the stored explanation of one decision.
type EvaluationRecord struct {
	ID                 string
	Position           int
	Subject            string
	ZoneLabel          string
	Source             string
	Decision           refund.Decision
	ReasonCode         string
	Reason             string
	TOS                string
	ElapsedHours       *generic.Amount
	LimitHours         *generic.Amount
	InvestedAt         *time.Time
	RefundRegisteredAt *time.Time
}

// NewRun builds a run from batch assessments, in order.
func NewRun(id, policyID string, createdAt time.Time, assessments []refund.Assessment) Run {
	run := Run{
		ID:          id,
		PolicyID:    policyID,
		Summary:     refund.Summarize(assessments),
		CreatedAt:   createdAt.UTC(),
		Evaluations: make([]EvaluationRecord, len(assessments)),
	}
	for i, a := range assessments {
		rec := EvaluationRecord{
			ID:         uuid.NewString(),
			Position:   i,
			Subject:    a.Record.Name,
			ZoneLabel:  a.Record.TimeZone,
			Source:     string(a.Record.Source),
			Decision:   a.Decision,
			ReasonCode: generic.ReasonCode(a.Reason),
			TOS:        string(a.TOS),
		}
		if a.Reason != nil {
			rec.Reason = a.Reason.Error()
		} else {
			elapsed, limit := a.ElapsedHours, a.LimitHours
			invested, registered := a.InvestedAt, a.RefundRegisteredAt
			rec.ElapsedHours, rec.LimitHours = &elapsed, &limit
			rec.InvestedAt, rec.RefundRegisteredAt = &invested, &registered
		}
		run.Evaluations[i] = rec
	}
	return run
}

// SaveRun stores a run and its evaluations atomically.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluation_runs (id, policy_id, total, approved, denied, indeterminate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PolicyID, run.Summary.Total, run.Summary.Approved, run.Summary.Denied,
		run.Summary.Indeterminate, run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluations (id, run_id, position, subject, zone_label, source, decision,
			reason_code, reason, tos, elapsed_hours, limit_hours, invested_at, refund_registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range run.Evaluations {
		_, err := stmt.ExecContext(ctx,
			e.ID, run.ID, e.Position, e.Subject, e.ZoneLabel, e.Source, e.Decision.Label(),
			nullString(e.ReasonCode), nullString(e.Reason), nullString(e.TOS),
			nullAmount(e.ElapsedHours), nullAmount(e.LimitHours),
			nullTime(e.InvestedAt), nullTime(e.RefundRegisteredAt),
		)
		if err != nil {
			return fmt.Errorf("insert evaluation %d of run %s: %w", e.Position, run.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its evaluations.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var run Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, policy_id, total, approved, denied, indeterminate, created_at
		FROM evaluation_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.PolicyID, &run.Summary.Total, &run.Summary.Approved,
		&run.Summary.Denied, &run.Summary.Indeterminate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, subject, zone_label, source, decision, reason_code, reason, tos,
			elapsed_hours, limit_hours, invested_at, refund_registered_at
		FROM evaluations WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		run.Evaluations = append(run.Evaluations, e)
	}
	return &run, rows.Err()
}

// ListRuns returns runs newest first, without evaluations. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, policy_id, total, approved, denied, indeterminate, created_at
		FROM evaluation_runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PolicyID, &r.Summary.Total, &r.Summary.Approved,
			&r.Summary.Denied, &r.Summary.Indeterminate, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PurgeRunsBefore deletes runs created before cutoff and returns how many
// were removed. Their evaluations go with them.
func (s *Store) PurgeRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM evaluation_runs WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"evaluations", "evaluation_runs", "policies"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func scanEvaluation(rows *sql.Rows) (EvaluationRecord, error) {
	var e EvaluationRecord
	var decision string
	var reasonCode, reason, tos, elapsed, limit, investedAt, registeredAt sql.NullString

	if err := rows.Scan(&e.ID, &e.Position, &e.Subject, &e.ZoneLabel, &e.Source, &decision,
		&reasonCode, &reason, &tos, &elapsed, &limit, &investedAt, &registeredAt); err != nil {
		return e, err
	}

	d, err := refund.ParseDecision(decision)
	if err != nil {
		return e, err
	}
	e.Decision = d
	e.ReasonCode = reasonCode.String
	e.Reason = reason.String
	e.TOS = tos.String

	if e.ElapsedHours, err = parseAmount(elapsed); err != nil {
		return e, err
	}
	if e.LimitHours, err = parseAmount(limit); err != nil {
		return e, err
	}
	e.InvestedAt = parseTime(investedAt)
	e.RefundRegisteredAt = parseTime(registeredAt)
	return e, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullAmount(a *generic.Amount) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Value.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseAmount(ns sql.NullString) (*generic.Amount, error) {
	if !ns.Valid {
		return nil, nil
	}
	a, err := generic.ParseAmount(ns.String, generic.UnitHours)
	if err != nil {
		return nil, fmt.Errorf("stored amount %q: %w", ns.String, err)
	}
	return &a, nil
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
