package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ticket-insights %s\n", root.version)
			return err
		},
	}
}
