package repositories

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/ekaya-inc/ticket-insights/pkg/database"
	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// insertBatchSize bounds the rows per multi-row INSERT, keeping bound
// parameters well under SQLite's variable limit.
const insertBatchSize = 500

const createTicketsTableSQL = `
	CREATE TABLE tickets (
		ticket_id INTEGER PRIMARY KEY,
		created_at TEXT,
		subject TEXT,
		description TEXT,
		status TEXT,
		product TEXT
	)`

const createTicketsOpenIndexSQL = `
	CREATE INDEX idx_tickets_status_created_at ON tickets (status, created_at)`

// TicketRepository provides access to the tickets table.
type TicketRepository interface {
	// ReplaceAll drops and recreates the tickets table and inserts tickets in one
	// transaction. Returns the number of rows inserted.
	ReplaceAll(ctx context.Context, tickets []models.Ticket) (int, error)

	// ListOpen returns tickets with status Open ordered by created_at, then ticket_id.
	ListOpen(ctx context.Context) ([]models.Ticket, error)

	// List returns every ticket ordered by ticket_id.
	List(ctx context.Context) ([]models.Ticket, error)

	// Count returns the number of rows in the tickets table.
	Count(ctx context.Context) (int, error)
}

type ticketRepository struct {
	db *database.DB
}

// NewTicketRepository creates a TicketRepository backed by db.
func NewTicketRepository(db *database.DB) TicketRepository {
	return &ticketRepository{db: db}
}

var _ TicketRepository = (*ticketRepository)(nil)

func (r *ticketRepository) ReplaceAll(ctx context.Context, tickets []models.Ticket) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DROP TABLE IF EXISTS tickets`, createTicketsTableSQL, createTicketsOpenIndexSQL} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to recreate tickets table: %w", err)
		}
	}

	inserted := 0
	for start := 0; start < len(tickets); start += insertBatchSize {
		end := min(start+insertBatchSize, len(tickets))

		ib := sqlbuilder.SQLite.NewInsertBuilder()
		ib.InsertInto("tickets").Cols(models.TicketColumns...)
		for _, t := range tickets[start:end] {
			ib.Values(t.TicketID, t.CreatedAt, t.Subject, t.Description, t.Status, t.Product)
		}

		query, args := ib.Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert tickets: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted row count: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tickets: %w", err)
	}
	return inserted, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]models.Ticket, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(models.TicketColumns...).
		From("tickets").
		Where(sb.Equal("status", models.TicketStatusOpen)).
		OrderBy("created_at", "ticket_id").Asc()

	query, args := sb.Build()

	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return tickets, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]models.Ticket, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(models.TicketColumns...).From("tickets").OrderBy("ticket_id").Asc()

	query, args := sb.Build()

	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (r *ticketRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets`); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}
