// Package generator produces synthetic support tickets.
package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
	"github.com/ekaya-inc/ticket-insights/pkg/tabular"
)

// DefaultSeed is used when no seed is configured.
const DefaultSeed uint64 = 42

// Bounds of created_at.
var (
	RangeStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	RangeEnd   = time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
)

const descriptionSentences = 3

var (
	statusOptions = []any{models.TicketStatusOpen, models.TicketStatusClosed}
	statusWeights = []float32{0.4, 0.6}
)

// Generator samples tickets from a seeded source. A Generator is not safe for
// concurrent use, and successive calls continue the same random sequence.
type Generator struct {
	faker  *gofakeit.Faker
	logger *zap.Logger
}

// New creates a Generator. Seed 0 makes gofakeit pick a random seed, so output
// is only reproducible for non-zero seeds.
func New(seed uint64, logger *zap.Logger) *Generator {
	return &Generator{
		faker:  gofakeit.New(seed),
		logger: logger.Named("generator"),
	}
}

// Generate returns count tickets with ids 1..count.
func (g *Generator) Generate(count int) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, count)
	for i := 1; i <= count; i++ {
		t, err := g.ticket(int64(i))
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (g *Generator) ticket(id int64) (models.Ticket, error) {
	created := g.faker.DateRange(RangeStart, RangeEnd).UTC().Truncate(time.Second)

	status, err := g.faker.Weighted(statusOptions, statusWeights)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to sample status: %w", err)
	}

	return models.Ticket{
		TicketID:    id,
		CreatedAt:   created.Format(models.TicketTimeLayout),
		Subject:     g.faker.RandomString(models.TicketSubjects),
		Description: g.description(),
		Status:      status.(string),
		Product:     g.faker.RandomString(models.TicketProducts),
	}, nil
}

func (g *Generator) description() string {
	sentences := make([]string, descriptionSentences)
	for i := range sentences {
		sentences[i] = g.faker.LoremIpsumSentence(g.faker.Number(6, 12))
	}
	return strings.Join(sentences, " ")
}

// WriteCSV generates count tickets and writes them to path.
func (g *Generator) WriteCSV(path string, count int) ([]models.Ticket, error) {
	tickets, err := g.Generate(count)
	if err != nil {
		return nil, err
	}

	if err := tabular.WriteTicketsFile(path, tickets); err != nil {
		return nil, err
	}

	open := 0
	for i := range tickets {
		if tickets[i].IsOpen() {
			open++
		}
	}
	g.logger.Info("Generated tickets",
		zap.String("path", path),
		zap.Int("count", len(tickets)),
		zap.Int("open", open))

	return tickets, nil
}
