package services

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
	"github.com/ekaya-inc/ticket-insights/pkg/prompts"
)

// enrichmentLinePattern matches "<Label>: value" with any label case and leading indentation.
var enrichmentLinePattern = regexp.MustCompile(`(?i)^\s*(` +
	prompts.FieldSummary + `|` + prompts.FieldUrgency + `|` + prompts.FieldCategory + `):(.*)$`)

// ParseEnrichment extracts the summary, urgency and category lines from a
// completion reply. The first line for each label wins and labels that never
// appear are left empty. Values are not checked against any vocabulary.
func ParseEnrichment(text string) models.Enrichment {
	var e models.Enrichment
	var seenSummary, seenUrgency, seenCategory bool

	for _, line := range strings.Split(text, "\n") {
		m := enrichmentLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])

		switch {
		case strings.EqualFold(m[1], prompts.FieldSummary) && !seenSummary:
			e.Summary, seenSummary = value, true
		case strings.EqualFold(m[1], prompts.FieldUrgency) && !seenUrgency:
			e.Urgency, seenUrgency = value, true
		case strings.EqualFold(m[1], prompts.FieldCategory) && !seenCategory:
			e.Category, seenCategory = value, true
		}
	}

	return e
}
