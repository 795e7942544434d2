package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <report-id> <pending|investigating|resolved>",
		Short: "Move a report to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to := domain.Status(strings.ToLower(args[1]))
			if !to.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			b, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			report, err := b.Service.UpdateStatus(cmd.Context(), args[0], to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🔁 %s is now %s\n", report.ID, report.Status)
			return nil
		},
	}
}
