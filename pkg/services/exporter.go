package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/tabular"
)

// Exporter writes the enriched_tickets table to a tabular file.
type Exporter interface {
	// ExportEnriched writes every enriched row, ordered by ticket_id, to csvPath
	// and returns the number of rows written.
	ExportEnriched(ctx context.Context, csvPath string) (int, error)
}

type exporter struct {
	enrichedRepo repositories.EnrichedTicketRepository
	logger       *zap.Logger
}

func NewExporter(enrichedRepo repositories.EnrichedTicketRepository, logger *zap.Logger) Exporter {
	return &exporter{
		enrichedRepo: enrichedRepo,
		logger:       logger.Named("exporter"),
	}
}

var _ Exporter = (*exporter)(nil)

func (e *exporter) ExportEnriched(ctx context.Context, csvPath string) (int, error) {
	rows, err := e.enrichedRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read enriched tickets: %w", err)
	}

	if err := tabular.WriteEnrichedTicketsFile(csvPath, rows); err != nil {
		e.logger.Error("Failed to write export",
			zap.String("path", csvPath),
			zap.Error(err))
		return 0, fmt.Errorf("failed to export enriched tickets: %w", err)
	}

	e.logger.Info("Exported enriched tickets",
		zap.String("path", csvPath),
		zap.Int("rows", len(rows)))
	return len(rows), nil
}
