package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/database"
	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// TestDB holds a migrated SQLite database file scoped to one test.
type TestDB struct {
	DB   *database.DB
	Path string
}

// GetTestDB creates a fresh database file under t.TempDir(), applies migrations
// and registers cleanup. Each test gets its own file, so tests may run in parallel.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tickets.db")

	if err := database.RunMigrations(path, zap.NewNop()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return &TestDB{DB: db, Path: path}
}

// SeedTickets recreates the tickets table with rows, bypassing the loader.
func (tdb *TestDB) SeedTickets(t *testing.T, tickets ...models.Ticket) {
	t.Helper()

	ctx := context.Background()
	tx, err := tdb.DB.BeginTxx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin seed transaction: %v", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DROP TABLE IF EXISTS tickets`,
		`CREATE TABLE tickets (
			ticket_id INTEGER PRIMARY KEY,
			created_at TEXT,
			subject TEXT,
			description TEXT,
			status TEXT,
			product TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to create tickets table: %v", err)
		}
	}

	for _, tk := range tickets {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO tickets (ticket_id, created_at, subject, description, status, product)
			VALUES (:ticket_id, :created_at, :subject, :description, :status, :product)`, tk)
		if err != nil {
			t.Fatalf("Failed to seed ticket %d: %v", tk.TicketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit seed tickets: %v", err)
	}
}
