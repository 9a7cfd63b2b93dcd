package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/generator"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
)

type generateOptions struct {
	count int
	seed  uint64
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic tickets",
		Long:  `Write a tickets file of synthetic support tickets and upload it as ` + storage.KeyTicketsCSV + `.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 0, "Number of tickets (default GENERATOR_COUNT)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default GENERATOR_SEED)")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, root, config.Requirements{Storage: true})
	if err != nil {
		return err
	}
	defer a.close()

	count := a.cfg.Generator.Count
	if cmd.Flags().Changed("count") {
		count = opts.count
	}
	seed := a.cfg.Generator.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}

	path := a.cfg.TicketsCSVPath()
	a.logger.Info("Generating tickets", zap.Int("count", count), zap.Uint64("seed", seed))

	if _, err := generator.New(seed, a.logger).WriteCSV(path, count); err != nil {
		return err
	}

	return a.upload(ctx, path, storage.KeyTicketsCSV)
}
