package models

import "time"

// TicketTimeLayout is the textual layout of Ticket.CreatedAt.
const TicketTimeLayout = "2006-01-02 15:04:05"

// Ticket statuses.
const (
	TicketStatusOpen   = "Open"
	TicketStatusClosed = "Closed"
)

// Urgency labels the completion service is asked to choose from.
// Stored values are not validated against this set.
const (
	UrgencyLow    = "Low"
	UrgencyMedium = "Medium"
	UrgencyHigh   = "High"
)

// Ticket is a synthetic support request. Rows are written once by the loader
// and never updated.
type Ticket struct {
	TicketID    int64  `db:"ticket_id" csv:"ticket_id"`
	CreatedAt   string `db:"created_at" csv:"created_at"`
	Subject     string `db:"subject" csv:"subject"`
	Description string `db:"description" csv:"description"`
	Status      string `db:"status" csv:"status"`
	Product     string `db:"product" csv:"product"`
}

// IsOpen reports whether the ticket is eligible for enrichment.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// CreatedTime parses CreatedAt using TicketTimeLayout.
func (t *Ticket) CreatedTime() (time.Time, error) {
	return time.Parse(TicketTimeLayout, t.CreatedAt)
}

// TicketColumns is the column order shared by the tickets table and tickets.csv.
var TicketColumns = []string{"ticket_id", "created_at", "subject", "description", "status", "product"}

// TicketSubjects, TicketProducts and TicketStatuses are the generator vocabularies.
var (
	TicketSubjects = []string{
		"Can't log in",
		"App keeps crashing",
		"Payment issue",
		"Feature request",
		"Data not syncing",
		"Account locked",
		"Error 500",
		"Password reset not working",
	}

	TicketProducts = []string{"CoolApp", "TrackMate", "DataCloud", "Formify"}

	TicketStatuses = []string{TicketStatusOpen, TicketStatusClosed}
)
