package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/tabular"
)

// TicketLoader bulk-loads the generated tickets file into the store.
type TicketLoader interface {
	// LoadTickets replaces the tickets table with the rows of csvPath.
	// Returns the number of rows inserted.
	LoadTickets(ctx context.Context, csvPath string) (int, error)
}

type ticketLoader struct {
	ticketRepo repositories.TicketRepository
	logger     *zap.Logger
}

func NewTicketLoader(ticketRepo repositories.TicketRepository, logger *zap.Logger) TicketLoader {
	return &ticketLoader{
		ticketRepo: ticketRepo,
		logger:     logger.Named("ticket-loader"),
	}
}

var _ TicketLoader = (*ticketLoader)(nil)

func (l *ticketLoader) LoadTickets(ctx context.Context, csvPath string) (int, error) {
	tickets, err := tabular.ReadTicketsFile(csvPath)
	if err != nil {
		l.logger.Error("Failed to read tickets file",
			zap.String("path", csvPath),
			zap.Error(err))
		return 0, fmt.Errorf("failed to read tickets: %w", err)
	}

	n, err := l.ticketRepo.ReplaceAll(ctx, tickets)
	if err != nil {
		l.logger.Error("Failed to load tickets",
			zap.String("path", csvPath),
			zap.Int("rows", len(tickets)),
			zap.Error(err))
		return 0, fmt.Errorf("failed to load tickets: %w", err)
	}

	l.logger.Info("Loaded tickets",
		zap.String("path", csvPath),
		zap.Int("rows", n))
	return n, nil
}
