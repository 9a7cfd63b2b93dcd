package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/services"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export enriched tickets to a tabular file",
		Long: `Download ` + storage.KeyDatabase + `, write the enriched_tickets table to a file and
upload it as ` + storage.KeyEnrichedCSV + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), root)
		},
	}
}

func runExport(ctx context.Context, root *rootOptions) error {
	a, err := newApp(ctx, root, config.Requirements{Storage: true})
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.download(ctx, storage.KeyDatabase, a.cfg.DBPath()); err != nil {
		return err
	}

	path := a.cfg.EnrichedCSVPath()
	if err := exportEnriched(ctx, a, path); err != nil {
		return err
	}

	return a.upload(ctx, path, storage.KeyEnrichedCSV)
}

func exportEnriched(ctx context.Context, a *app, path string) (err error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { err = closeDB(db, err) }()

	exporter := services.NewExporter(repositories.NewEnrichedTicketRepository(db), a.logger)
	_, err = exporter.ExportEnriched(ctx, path)
	return err
}
