package models

// Enrichment holds the fields extracted from a completion reply.
// Any field the reply did not contain is the empty string.
type Enrichment struct {
	Summary  string
	Urgency  string
	Category string
}

// IsComplete reports whether all three fields were found.
func (e Enrichment) IsComplete() bool {
	return e.Summary != "" && e.Urgency != "" && e.Category != ""
}

// EnrichedTicket is the derived row written per open ticket, keyed by TicketID.
type EnrichedTicket struct {
	TicketID    int64  `db:"ticket_id" csv:"ticket_id"`
	Description string `db:"description" csv:"description"`
	Summary     string `db:"summary" csv:"summary"`
	Urgency     string `db:"urgency" csv:"urgency"`
	Category    string `db:"category" csv:"category"`
}

// NewEnrichedTicket combines a source ticket with its parsed enrichment.
func NewEnrichedTicket(t *Ticket, e Enrichment) *EnrichedTicket {
	return &EnrichedTicket{
		TicketID:    t.TicketID,
		Description: t.Description,
		Summary:     e.Summary,
		Urgency:     e.Urgency,
		Category:    e.Category,
	}
}

// EnrichedTicketColumns is the column order shared by enriched_tickets and its CSV export.
var EnrichedTicketColumns = []string{"ticket_id", "description", "summary", "urgency", "category"}
