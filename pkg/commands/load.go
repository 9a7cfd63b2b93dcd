package commands

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/services"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
)

func newLoadCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load generated tickets into the database",
		Long: `Download ` + storage.KeyTicketsCSV + `, replace the tickets table with its rows and
upload the database as ` + storage.KeyDatabase + `. The local tickets file is removed after upload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), root)
		},
	}
}

func runLoad(ctx context.Context, root *rootOptions) error {
	a, err := newApp(ctx, root, config.Requirements{Storage: true})
	if err != nil {
		return err
	}
	defer a.close()

	csvPath := a.cfg.TicketsCSVPath()
	if err := a.download(ctx, storage.KeyTicketsCSV, csvPath); err != nil {
		return err
	}

	if err := loadTickets(ctx, a, csvPath); err != nil {
		return err
	}

	if err := a.upload(ctx, a.cfg.DBPath(), storage.KeyDatabase); err != nil {
		return err
	}

	// The object store keeps the source of truth; with --local the file stays.
	if a.store != nil {
		if err := os.Remove(csvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("Failed to remove local tickets file", zap.String("path", csvPath), zap.Error(err))
		}
	}
	return nil
}

func loadTickets(ctx context.Context, a *app, csvPath string) (err error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { err = closeDB(db, err) }()

	loader := services.NewTicketLoader(repositories.NewTicketRepository(db), a.logger)
	_, err = loader.LoadTickets(ctx, csvPath)
	return err
}
