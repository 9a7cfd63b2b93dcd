// Package tabular reads and writes the comma-separated files exchanged
// between pipeline stages. Files carry a header row and use the column
// order of the matching database table.
package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
)

// WriteTickets writes tickets with a header row.
func WriteTickets(w io.Writer, tickets []models.Ticket) error {
	if err := gocsv.Marshal(tickets, w); err != nil {
		return fmt.Errorf("failed to encode tickets: %w", err)
	}
	return nil
}

// ReadTickets decodes every ticket row from r.
func ReadTickets(r io.Reader) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := gocsv.Unmarshal(r, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode tickets: %w", err)
	}
	return tickets, nil
}

// WriteEnrichedTickets writes enriched rows with a header row.
func WriteEnrichedTickets(w io.Writer, rows []models.EnrichedTicket) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to encode enriched tickets: %w", err)
	}
	return nil
}

// ReadEnrichedTickets decodes every enriched row from r.
func ReadEnrichedTickets(r io.Reader) ([]models.EnrichedTicket, error) {
	var rows []models.EnrichedTicket
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode enriched tickets: %w", err)
	}
	return rows, nil
}

// WriteTicketsFile writes tickets to path, creating parent directories.
func WriteTicketsFile(path string, tickets []models.Ticket) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteTickets(w, tickets)
	})
}

// ReadTicketsFile reads tickets from path.
func ReadTicketsFile(path string) ([]models.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadTickets(f)
}

// WriteEnrichedTicketsFile writes enriched rows to path, creating parent directories.
func WriteEnrichedTicketsFile(path string, rows []models.EnrichedTicket) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteEnrichedTickets(w, rows)
	})
}

// ReadEnrichedTicketsFile reads enriched rows from path.
func ReadEnrichedTicketsFile(path string) ([]models.EnrichedTicket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadEnrichedTickets(f)
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
