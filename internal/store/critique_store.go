package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/omjain/venture-lens/internal/model"
)

// CritiqueLogStore is the narrow interface the Critique Agent consumes to
// best-effort-append one row per RedFlag. Matches the wire schema in §6:
// (id autoinc, startup_name, red_flag, severity, explanation, category,
// overall_risk_label, summary, created_at default now).
type CritiqueLogStore interface {
	Append(ctx context.Context, startupNameOrEvaluationID string, report model.CritiqueReport) error
}

// PostgresCritiqueLogStore is the production CritiqueLogStore, directly
// grounded on the original Python critique agent's startup_critique table.
type PostgresCritiqueLogStore struct {
	db *sql.DB
}

func NewPostgresCritiqueLogStore(db *sql.DB) *PostgresCritiqueLogStore {
	return &PostgresCritiqueLogStore{db: db}
}

const createCritiqueTableSQL = `
CREATE TABLE IF NOT EXISTS startup_critique (
	id SERIAL PRIMARY KEY,
	startup_name TEXT NOT NULL,
	red_flag TEXT NOT NULL,
	severity TEXT NOT NULL,
	explanation TEXT NOT NULL,
	category TEXT NOT NULL,
	overall_risk_label TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the startup_critique table if it does not exist. A
// nil db (critique log disabled) is a no-op.
func (r *PostgresCritiqueLogStore) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, createCritiqueTableSQL)
	return err
}

// Append writes one row per RedFlag inside a single transaction. Failure is
// the caller's concern to log and swallow per §4.3 ("store failure logs a
// warning and does not fail the operation"); Append itself still returns
// the error so callers can choose how to log it.
func (r *PostgresCritiqueLogStore) Append(ctx context.Context, startupName string, report model.CritiqueReport) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO startup_critique
			(startup_name, red_flag, severity, explanation, category, overall_risk_label, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	createdAt := report.AnalysisTimestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	for _, flag := range report.RedFlags {
		_, err := stmt.ExecContext(ctx,
			startupName, flag.Flag, flag.Severity, flag.Explanation, flag.Category,
			report.OverallRiskLabel, report.Summary, createdAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AppendBestEffort wraps Append, converting any failure into a warning log
// and swallowing it, matching §4.3/§7's StoreUnavailable policy for the
// critique log.
func AppendBestEffort(ctx context.Context, s CritiqueLogStore, startupName string, report model.CritiqueReport) {
	if s == nil {
		return
	}
	if err := s.Append(ctx, startupName, report); err != nil {
		slog.Warn("critique log append failed", "startup_name", startupName, "error", err)
	}
}
