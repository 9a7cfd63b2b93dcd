// Package commands wires the ticket-insights pipeline stages into a cobra CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/database"
	"github.com/ekaya-inc/ticket-insights/pkg/logging"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
)

// rootOptions holds flags shared by every stage command.
type rootOptions struct {
	version string
	local   bool
}

// NewRootCommand builds the ticket-insights command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	cmd := &cobra.Command{
		Use:   "ticket-insights",
		Short: "Synthetic support ticket ETL with LLM enrichment",
		Long: `ticket-insights generates synthetic support tickets, loads them into SQLite,
enriches open tickets with a language model and reports on the results.
Stages hand files to each other through object storage unless --local is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.local, "local", false, "Keep files on disk and skip the object storage hand-off")

	cmd.AddCommand(
		newGenerateCommand(opts),
		newLoadCommand(opts),
		newEnrichCommand(opts),
		newExportCommand(opts),
		newReportCommand(opts),
		newVersionCommand(opts),
	)

	return cmd
}

// app holds the collaborators a stage command builds once at startup.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  storage.ObjectStore // nil with --local
}

// newApp loads and validates configuration, then builds the logger and object store.
func newApp(ctx context.Context, opts *rootOptions, req config.Requirements) (*app, error) {
	cfg, err := config.Load(opts.version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	req.Storage = req.Storage && !opts.local
	if err := cfg.Validate(req); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("local", opts.local),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	a := &app{cfg: cfg, logger: logger}

	if req.Storage {
		a.store, err = storage.New(ctx, &cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	return a, nil
}

// close flushes the logger.
func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) upload(ctx context.Context, localPath, key string) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Upload(ctx, localPath, key); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (a *app) download(ctx context.Context, key, localPath string) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Download(ctx, key, localPath); err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	return nil
}

// openDB applies migrations and opens the single store connection.
func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	path := a.cfg.DBPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := database.RunMigrations(path, a.logger); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// closeDB closes db and joins any close error into err.
func closeDB(db *database.DB, err error) error {
	if cerr := db.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("failed to close database: %w", cerr))
	}
	return err
}
