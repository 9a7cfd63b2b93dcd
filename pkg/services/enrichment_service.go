package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/llm"
	"github.com/ekaya-inc/ticket-insights/pkg/logging"
	"github.com/ekaya-inc/ticket-insights/pkg/models"
	"github.com/ekaya-inc/ticket-insights/pkg/prompts"
	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
)

// DefaultMaxTokens is used when CompletionSettings.MaxTokens is not positive.
const DefaultMaxTokens = 200

// maxLoggedReplyLength bounds how much of an unparseable reply is logged.
const maxLoggedReplyLength = 200

// CompletionSettings controls each completion request.
type CompletionSettings struct {
	Temperature float64
	MaxTokens   int
}

// EnrichmentOptions controls a single run.
type EnrichmentOptions struct {
	// Reset clears enriched_tickets before selecting tickets.
	Reset bool

	// ExportPath receives the full enriched table after the run. Empty skips export.
	ExportPath string
}

// EnrichmentResult summarizes a run. On failure it reflects progress up to the error.
type EnrichmentResult struct {
	RunID           uuid.UUID
	Selected        int // open tickets selected
	Enriched        int // rows upserted
	PartiallyParsed int // replies missing at least one field
	ExportedRows    int
	ExportPath      string
}

// EnrichmentService runs the enrichment pipeline over open tickets.
type EnrichmentService interface {
	// Run enriches every open ticket sequentially, oldest first, upserting one
	// row per ticket, then exports the enriched table. The first completion or
	// store error aborts the run; rows upserted before it stay committed.
	Run(ctx context.Context, opts EnrichmentOptions) (*EnrichmentResult, error)
}

type enrichmentService struct {
	ticketRepo   repositories.TicketRepository
	enrichedRepo repositories.EnrichedTicketRepository
	exporter     Exporter
	llmClient    llm.LLMClient
	settings     CompletionSettings
	logger       *zap.Logger
}

func NewEnrichmentService(
	ticketRepo repositories.TicketRepository,
	enrichedRepo repositories.EnrichedTicketRepository,
	exporter Exporter,
	llmClient llm.LLMClient,
	settings CompletionSettings,
	logger *zap.Logger,
) EnrichmentService {
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultMaxTokens
	}
	return &enrichmentService{
		ticketRepo:   ticketRepo,
		enrichedRepo: enrichedRepo,
		exporter:     exporter,
		llmClient:    llmClient,
		settings:     settings,
		logger:       logger.Named("enrichment"),
	}
}

var _ EnrichmentService = (*enrichmentService)(nil)

func (s *enrichmentService) Run(ctx context.Context, opts EnrichmentOptions) (*EnrichmentResult, error) {
	result := &EnrichmentResult{RunID: uuid.New()}
	logger := s.logger.With(zap.String("run_id", result.RunID.String()))
	ctx = llm.WithRunID(ctx, result.RunID)

	logger.Info("Starting enrichment run",
		zap.String("model", s.llmClient.GetModel()),
		zap.String("endpoint", logging.SanitizeEndpoint(s.llmClient.GetEndpoint())),
		zap.Bool("reset", opts.Reset))

	if opts.Reset {
		cleared, err := s.enrichedRepo.DeleteAll(ctx)
		if err != nil {
			logger.Error("Failed to reset enriched tickets", zap.Error(err))
			return result, fmt.Errorf("failed to reset enriched tickets: %w", err)
		}
		logger.Info("Cleared enriched tickets", zap.Int("rows", cleared))
	}

	tickets, err := s.ticketRepo.ListOpen(ctx)
	if err != nil {
		logger.Error("Failed to select open tickets", zap.Error(err))
		return result, fmt.Errorf("failed to select open tickets: %w", err)
	}
	result.Selected = len(tickets)
	logger.Info("Selected open tickets", zap.Int("count", len(tickets)))

	for i := range tickets {
		if err := ctx.Err(); err != nil {
			logger.Warn("Enrichment run cancelled",
				zap.Int("enriched", result.Enriched),
				zap.Int("remaining", len(tickets)-i))
			return result, fmt.Errorf("enrichment cancelled: %w", err)
		}

		enriched, err := s.enrichTicket(ctx, logger, &tickets[i])
		if err != nil {
			return result, err
		}

		result.Enriched++
		if !enriched {
			result.PartiallyParsed++
		}
	}

	if opts.ExportPath != "" {
		n, err := s.exporter.ExportEnriched(ctx, opts.ExportPath)
		if err != nil {
			logger.Error("Failed to export enriched tickets", zap.Error(err))
			return result, err
		}
		result.ExportedRows = n
		result.ExportPath = opts.ExportPath
	}

	logger.Info("Enrichment run complete",
		zap.Int("selected", result.Selected),
		zap.Int("enriched", result.Enriched),
		zap.Int("partially_parsed", result.PartiallyParsed),
		zap.Int("exported", result.ExportedRows))

	return result, nil
}

// enrichTicket calls the completion service for one ticket and upserts the row.
// Returns false when the reply was missing fields; the row is written regardless.
func (s *enrichmentService) enrichTicket(ctx context.Context, logger *zap.Logger, ticket *models.Ticket) (bool, error) {
	logger = logger.With(zap.Int64("ticket_id", ticket.TicketID))
	ctx = llm.WithTicketID(ctx, ticket.TicketID)

	prompt := prompts.BuildTicketAnalysisPrompt(ticket.Description)

	resp, err := s.llmClient.GenerateResponse(ctx, prompt, "", s.settings.Temperature, s.settings.MaxTokens)
	if err != nil {
		logger.Error("Completion request failed",
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.Bool("retryable", llm.IsRetryable(err)),
			zap.String("error", logging.SanitizeError(err)))
		return false, fmt.Errorf("failed to enrich ticket %d: %w", ticket.TicketID, err)
	}

	enrichment := ParseEnrichment(resp.Content)
	complete := enrichment.IsComplete()
	if !complete {
		logger.Warn("Reply missing fields",
			zap.Bool("summary", enrichment.Summary != ""),
			zap.Bool("urgency", enrichment.Urgency != ""),
			zap.Bool("category", enrichment.Category != ""),
			zap.String("reply", logging.TruncateString(resp.Content, maxLoggedReplyLength)))
	}

	if err := s.enrichedRepo.Upsert(ctx, models.NewEnrichedTicket(ticket, enrichment)); err != nil {
		logger.Error("Failed to store enrichment", zap.Error(err))
		return false, fmt.Errorf("failed to store enrichment for ticket %d: %w", ticket.TicketID, err)
	}

	logger.Info("Enriched ticket",
		zap.String("urgency", enrichment.Urgency),
		zap.String("category", enrichment.Category),
		zap.Int("completion_tokens", resp.CompletionTokens))

	return complete, nil
}
