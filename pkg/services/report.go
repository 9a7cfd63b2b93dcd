package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// ReportFilter restricts a report to the listed urgencies and categories.
// An empty list matches everything. Matching ignores case.
type ReportFilter struct {
	Urgencies  []string
	Categories []string
}

// LabelCount is one bar of a distribution.
type LabelCount struct {
	Label string
	Count int
}

// ReportRow is one line of the detail table.
type ReportRow struct {
	TicketID int64
	Summary  string
	Urgency  string
	Category string
}

// Report summarizes enriched tickets after filtering.
type Report struct {
	TotalOpen        int
	UniqueCategories int
	ByCategory       []LabelCount
	ByUrgency        []LabelCount
	Rows             []ReportRow
}

// BuildReport filters rows and computes the summary metrics and distributions.
// Distributions are sorted by count descending, then label ascending. Empty
// categories are listed in the distribution but not counted as unique categories.
func BuildReport(rows []models.EnrichedTicket, filter ReportFilter) *Report {
	report := &Report{}
	byCategory := make(map[string]int)
	byUrgency := make(map[string]int)

	for _, r := range rows {
		if !matchesAny(r.Urgency, filter.Urgencies) || !matchesAny(r.Category, filter.Categories) {
			continue
		}
		byCategory[r.Category]++
		byUrgency[r.Urgency]++
		report.Rows = append(report.Rows, ReportRow{
			TicketID: r.TicketID,
			Summary:  r.Summary,
			Urgency:  r.Urgency,
			Category: r.Category,
		})
	}

	report.TotalOpen = len(report.Rows)
	for category := range byCategory {
		if category != "" {
			report.UniqueCategories++
		}
	}
	report.ByCategory = sortedCounts(byCategory)
	report.ByUrgency = sortedCounts(byUrgency)
	return report
}

func matchesAny(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), value) {
			return true
		}
	}
	return false
}

func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// RenderReport writes the report as aligned plain text.
func RenderReport(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Ticket Summary")
	fmt.Fprintf(tw, "Total tickets open:\t%d\n", r.TotalOpen)
	fmt.Fprintf(tw, "Unique categories:\t%d\n", r.UniqueCategories)

	writeDistribution(tw, "Open Tickets by Category", r.ByCategory)
	writeDistribution(tw, "Urgency Distribution", r.ByUrgency)

	fmt.Fprintln(tw, "\nTicket Details")
	fmt.Fprintln(tw, "ticket_id\tsummary\turgency\tcategory")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", row.TicketID, row.Summary, row.Urgency, row.Category)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeDistribution(w io.Writer, title string, counts []LabelCount) {
	fmt.Fprintf(w, "\n%s\n", title)
	for _, c := range counts {
		label := c.Label
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", label, c.Count, strings.Repeat("#", c.Count))
	}
}
