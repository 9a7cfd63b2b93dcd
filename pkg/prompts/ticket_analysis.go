package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// Field labels the ticket analysis reply is expected to contain, one per line.
const (
	FieldSummary  = "Summary"
	FieldUrgency  = "Urgency"
	FieldCategory = "Category"
)

// BuildTicketAnalysisPrompt asks for a summary, urgency and category of one
// ticket. The description is embedded verbatim between double quotes.
func BuildTicketAnalysisPrompt(description string) string {
	var prompt strings.Builder

	prompt.WriteString("You're a support assistant. Analyze this ticket:\n\n")
	prompt.WriteString(fmt.Sprintf("\"%s\"\n\n", description))
	prompt.WriteString("Return the following fields:\n")
	prompt.WriteString(fmt.Sprintf("%s: A short summary of the issue in one sentence.\n", FieldSummary))
	prompt.WriteString(fmt.Sprintf("%s: One of [%s, %s, %s]\n", FieldUrgency,
		models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh))
	prompt.WriteString(fmt.Sprintf("%s: A one-word category like Login, Payment, Bug, etc.\n", FieldCategory))

	return prompt.String()
}
