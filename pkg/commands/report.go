package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ticket-insights/pkg/config"
	"github.com/ekaya-inc/ticket-insights/pkg/services"
	"github.com/ekaya-inc/ticket-insights/pkg/storage"
	"github.com/ekaya-inc/ticket-insights/pkg/tabular"
)

type reportOptions struct {
	urgencies  []string
	categories []string
}

func newReportCommand(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize enriched tickets",
		Long: `Download ` + storage.KeyEnrichedCSV + ` and print ticket counts by category and urgency
followed by the ticket details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.urgencies, "urgency", nil, "Only include these urgencies (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "Only include these categories (repeatable or comma-separated)")

	return cmd
}

func runReport(ctx context.Context, root *rootOptions, opts *reportOptions, out io.Writer) error {
	a, err := newApp(ctx, root, config.Requirements{Storage: true})
	if err != nil {
		return err
	}
	defer a.close()

	path := a.cfg.EnrichedCSVPath()
	if err := a.download(ctx, storage.KeyEnrichedCSV, path); err != nil {
		return err
	}

	rows, err := tabular.ReadEnrichedTicketsFile(path)
	if err != nil {
		return err
	}

	report := services.BuildReport(rows, services.ReportFilter{
		Urgencies:  opts.urgencies,
		Categories: opts.categories,
	})
	return services.RenderReport(out, report)
}
