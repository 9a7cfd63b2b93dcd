package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/models"
	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/testhelpers"
)

func TestExporter_ExportEnriched(t *testing.T) {
	ctx := context.Background()
	tdb := testhelpers.GetTestDB(t)
	repo := repositories.NewEnrichedTicketRepository(tdb.DB)

	require.NoError(t, repo.Upsert(ctx, &models.EnrichedTicket{TicketID: 5, Description: "Crash, again", Summary: "App crash", Urgency: "Medium", Category: "Bug"}))
	require.NoError(t, repo.Upsert(ctx, &models.EnrichedTicket{TicketID: 1, Description: "I cannot log in", Summary: "Login failure", Urgency: "High", Category: "Login"}))

	path := filepath.Join(t.TempDir(), "output", "enriched_tickets.csv")
	n, err := NewExporter(repo, zap.NewNop()).ExportEnriched(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"ticket_id,description,summary,urgency,category\n"+
			"1,I cannot log in,Login failure,High,Login\n"+
			"5,\"Crash, again\",App crash,Medium,Bug\n",
		string(data))
}
