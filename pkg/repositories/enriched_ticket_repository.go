package repositories

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"

	"github.com/ekaya-inc/ticket-insights/pkg/apperrors"
	"github.com/ekaya-inc/ticket-insights/pkg/database"
	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// EnrichedTicketRepository provides access to the enriched_tickets table.
// The table itself is created by migrations.
type EnrichedTicketRepository interface {
	// Upsert inserts the row, replacing any existing row with the same ticket_id.
	// Each call commits on its own.
	Upsert(ctx context.Context, ticket *models.EnrichedTicket) error

	// List returns every enriched row ordered by ticket_id.
	List(ctx context.Context) ([]models.EnrichedTicket, error)

	// GetByID returns the row for ticketID or apperrors.ErrNotFound.
	GetByID(ctx context.Context, ticketID int64) (*models.EnrichedTicket, error)

	// DeleteAll removes every enriched row and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)

	// Count returns the number of enriched rows.
	Count(ctx context.Context) (int, error)
}

type enrichedTicketRepository struct {
	db *database.DB
}

// NewEnrichedTicketRepository creates an EnrichedTicketRepository backed by db.
func NewEnrichedTicketRepository(db *database.DB) EnrichedTicketRepository {
	return &enrichedTicketRepository{db: db}
}

var _ EnrichedTicketRepository = (*enrichedTicketRepository)(nil)

func (r *enrichedTicketRepository) Upsert(ctx context.Context, t *models.EnrichedTicket) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.ReplaceInto("enriched_tickets").
		Cols(models.EnrichedTicketColumns...).
		Values(t.TicketID, t.Description, t.Summary, t.Urgency, t.Category)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert enriched ticket %d: %w", t.TicketID, err)
	}
	return nil
}

func (r *enrichedTicketRepository) List(ctx context.Context) ([]models.EnrichedTicket, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(models.EnrichedTicketColumns...).From("enriched_tickets").OrderBy("ticket_id").Asc()

	query, args := sb.Build()

	var rows []models.EnrichedTicket
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list enriched tickets: %w", err)
	}
	return rows, nil
}

func (r *enrichedTicketRepository) GetByID(ctx context.Context, ticketID int64) (*models.EnrichedTicket, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(models.EnrichedTicketColumns...).
		From("enriched_tickets").
		Where(sb.Equal("ticket_id", ticketID))

	query, args := sb.Build()

	var rows []models.EnrichedTicket
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get enriched ticket %d: %w", ticketID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("enriched ticket %d: %w", ticketID, apperrors.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *enrichedTicketRepository) DeleteAll(ctx context.Context) (int, error) {
	delb := sqlbuilder.SQLite.NewDeleteBuilder()
	delb.DeleteFrom("enriched_tickets")

	query, args := delb.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear enriched tickets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return int(n), nil
}

func (r *enrichedTicketRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enriched_tickets`); err != nil {
		return 0, fmt.Errorf("failed to count enriched tickets: %w", err)
	}
	return count, nil
}
