//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "fql",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=fql sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "fql")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/storage → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestTargetsRepository_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	repo := NewTargetsRepository(db)

	// Empty database: no targets yet.
	has, err := repo.HasTargets()
	if err != nil || has {
		t.Fatalf("expected no targets, has=%v err=%v", has, err)
	}

	first := []models.TargetEntry{
		{MID: "SPEELONLINE", TargetVolume: 900000010},
		{MID: "JASYATRATRAINONLINE", TargetVolume: 500000},
	}
	if err := repo.ReplaceTargets(first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.UpsertIngestionLog("targets.json", len(first)); err != nil {
		t.Fatalf("log: %v", err)
	}

	got, err := repo.ListTargets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Ordered by mid: JASYATRATRAINONLINE before SPEELONLINE.
	if len(got) != 2 || got[0].MID != "JASYATRATRAINONLINE" || got[1].MID != "SPEELONLINE" {
		t.Fatalf("unexpected order/content: %+v", got)
	}

	// A reload fully replaces the dataset.
	second := []models.TargetEntry{{MID: "ONLY", TargetVolume: 1}}
	if err := repo.ReplaceTargets(second); err != nil {
		t.Fatalf("replace 2: %v", err)
	}
	if err := repo.UpsertIngestionLog("targets.json", len(second)); err != nil {
		t.Fatalf("log upsert: %v", err)
	}

	got, err = repo.ListTargets()
	if err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if len(got) != 1 || got[0].MID != "ONLY" {
		t.Fatalf("replace did not swap dataset: %+v", got)
	}

	has, err = repo.HasTargets()
	if err != nil || !has {
		t.Fatalf("expected targets present, has=%v err=%v", has, err)
	}
}
