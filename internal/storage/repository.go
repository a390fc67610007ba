package storage

import (
	"database/sql"

	pq "github.com/lib/pq"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// TargetsRepository defines contract for DB operations on the stored
// target dataset. Reports are never persisted; only targets are, so
// operators can load them once and reconcile against them repeatedly.
type TargetsRepository interface {
	ReplaceTargets(entries []models.TargetEntry) error
	ListTargets() ([]models.TargetEntry, error)
	UpsertIngestionLog(filename string, rowCount int) error
	HasTargets() (bool, error)
}

type targetsRepository struct {
	db *sql.DB
}

func NewTargetsRepository(db *sql.DB) TargetsRepository {
	return &targetsRepository{db: db}
}

// ReplaceTargets swaps the stored dataset for the given one in a
// single transaction: existing rows are deleted, then the new set is
// bulk-loaded with COPY.
func (r *targetsRepository) ReplaceTargets(entries []models.TargetEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM merchant_targets`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn("merchant_targets", "mid", "target_volume"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, e := range entries {
		if _, err := stmt.Exec(e.MID, e.TargetVolume); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListTargets returns the stored dataset ordered by MID, so a report
// built from stored targets has a deterministic row order.
func (r *targetsRepository) ListTargets() ([]models.TargetEntry, error) {
	rows, err := r.db.Query(`SELECT mid, target_volume FROM merchant_targets ORDER BY mid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.TargetEntry
	for rows.Next() {
		var e models.TargetEntry
		if err := rows.Scan(&e.MID, &e.TargetVolume); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HasTargets reports whether any dataset has been loaded.
func (r *targetsRepository) HasTargets() (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM merchant_targets)`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) the latest dataset load.
// One row per filename keeps reloads idempotent.
func (r *targetsRepository) UpsertIngestionLog(filename string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO targets_ingestion_log (filename, row_count)
		VALUES ($1, $2)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, rowCount)
	return err
}
