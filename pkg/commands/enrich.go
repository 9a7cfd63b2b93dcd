package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/llm"
	"github.com/ekaya-inc/ticket-insights/pkg/repositories"
	"github.com/ekaya-inc/ticket-insights/pkg/services"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
)

type enrichOptions struct {
	reset bool
}

func newEnrichCommand(root *rootOptions) *cobra.Command {
	opts := &enrichOptions{}

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich open tickets with a language model",
		Long: `Download ` + storage.KeyDatabase + `, ask the completion service for a summary, urgency and
category of every open ticket, store the results in enriched_tickets and export them.
The database and ` + storage.KeyEnrichedCSV + ` are uploaded when the run completes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Clear enriched_tickets before the run")

	return cmd
}

func runEnrich(ctx context.Context, root *rootOptions, opts *enrichOptions) error {
	a, err := newApp(ctx, root, config.Requirements{Storage: true, LLM: true})
	if err != nil {
		return err
	}
	defer a.close()

	client, err := llm.NewClientFromConfig(&a.cfg.LLM, a.logger)
	if err != nil {
		return err
	}

	if err := a.download(ctx, storage.KeyDatabase, a.cfg.DBPath()); err != nil {
		return err
	}

	result, err := enrich(ctx, a, client, opts)
	if err != nil {
		return err
	}

	if err := a.upload(ctx, a.cfg.DBPath(), storage.KeyDatabase); err != nil {
		return err
	}
	if err := a.upload(ctx, result.ExportPath, storage.KeyEnrichedCSV); err != nil {
		return err
	}

	a.logger.Info("Enrichment finished",
		zap.String("run_id", result.RunID.String()),
		zap.Int("enriched", result.Enriched),
		zap.Int("partially_parsed", result.PartiallyParsed),
		zap.String("export_path", result.ExportPath))
	return nil
}

func enrich(ctx context.Context, a *app, client llm.LLMClient, opts *enrichOptions) (result *services.EnrichmentResult, err error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = closeDB(db, err) }()

	ticketRepo := repositories.NewTicketRepository(db)
	enrichedRepo := repositories.NewEnrichedTicketRepository(db)

	svc := services.NewEnrichmentService(
		ticketRepo,
		enrichedRepo,
		services.NewExporter(enrichedRepo, a.logger),
		client,
		services.CompletionSettings{
			Temperature: a.cfg.LLM.Temperature,
			MaxTokens:   a.cfg.LLM.MaxTokens,
		},
		a.logger,
	)

	return svc.Run(ctx, services.EnrichmentOptions{
		Reset:      opts.reset,
		ExportPath: a.cfg.EnrichedCSVPath(),
	})
}
