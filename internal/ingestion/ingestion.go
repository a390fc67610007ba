// Package ingestion loads a target dataset file into the target
// store, so the API can reconcile against stored targets when a
// request carries none.
package ingestion

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/logger"
	"github.com/mrankitsharma08/FQL/internal/storage"
	"github.com/mrankitsharma08/FQL/internal/targets"
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.TargetsRepository {
	return storage.NewTargetsRepository(db)
}

// LoadFile parses a targets file (.json or .csv, decided by
// extension) and replaces the stored dataset with it. The load is
// all-or-nothing: a parse or validation failure leaves the stored
// dataset untouched.
//
// Returns the number of loaded entries.
func LoadFile(path string, db *sql.DB) (int, error) {
	entries, err := ParseFile(path)
	if err != nil {
		return 0, err
	}

	repo := repoCtor(db)
	start := time.Now()

	if err := repo.ReplaceTargets(entries); err != nil {
		return 0, fmt.Errorf("replace targets: %w", err)
	}
	base := filepath.Base(path)
	if err := repo.UpsertIngestionLog(base, len(entries)); err != nil {
		return 0, fmt.Errorf("upsert ingestion log: %w", err)
	}

	logger.L().Info().
		Str("file", base).
		Int("rows", len(entries)).
		Dur("elapsed", time.Since(start)).
		Msg("targets loaded")

	return len(entries), nil
}

// ParseFile reads and validates a targets file without touching the
// store. CLI report mode uses it directly.
func ParseFile(path string) ([]models.TargetEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return targets.ParseJSON(f)
	case ".csv":
		return targets.ParseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported targets file extension %q (want .json or .csv)", filepath.Ext(path))
	}
}
