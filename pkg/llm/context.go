package llm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	llmContextKey contextKey = "llm_context"
)

const (
	runIDKey    = "run_id"
	ticketIDKey = "ticket_id"
)

// WithContext returns a context with LLM request context attached.
// The context map is merged with any existing context.
func WithContext(ctx context.Context, values map[string]any) context.Context {
	existing := GetContext(ctx)
	if existing == nil {
		existing = make(map[string]any)
	}
	for k, v := range values {
		existing[k] = v
	}
	return context.WithValue(ctx, llmContextKey, existing)
}

// GetContext retrieves the LLM request context from context, if present.
func GetContext(ctx context.Context) map[string]any {
	if c, ok := ctx.Value(llmContextKey).(map[string]any); ok {
		// Return a copy to prevent mutation
		copy := make(map[string]any, len(c))
		for k, v := range c {
			copy[k] = v
		}
		return copy
	}
	return nil
}

// WithRunID tags requests with the enrichment run they belong to.
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return WithContext(ctx, map[string]any{runIDKey: runID.String()})
}

// GetRunID returns the run id in ctx, or nil when absent or malformed.
func GetRunID(ctx context.Context) *uuid.UUID {
	s, ok := GetContext(ctx)[runIDKey].(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// WithTicketID tags requests with the ticket being enriched.
func WithTicketID(ctx context.Context, ticketID int64) context.Context {
	return WithContext(ctx, map[string]any{ticketIDKey: ticketID})
}

// GetTicketID returns the ticket id in ctx.
func GetTicketID(ctx context.Context) (int64, bool) {
	id, ok := GetContext(ctx)[ticketIDKey].(int64)
	return id, ok
}

// contextFields converts the request context into log fields.
func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if runID := GetRunID(ctx); runID != nil {
		fields = append(fields, zap.String(runIDKey, runID.String()))
	}
	if ticketID, ok := GetTicketID(ctx); ok {
		fields = append(fields, zap.Int64(ticketIDKey, ticketID))
	}
	return fields
}
