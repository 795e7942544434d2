package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/query"
)

type ExportOptions struct {
	*RootOptions
	Out    string
	Filter query.Filter
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}
	var category, status string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching reports as CSV",
		Long: `Write the reports matching the filters as CSV.

Without --out the file is named after today's date, e.g. billboard-reports-2024-06-01.csv.
Use --out - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Filter.Category = domain.Category(category)
			opts.Filter.Status = domain.Status(status)
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default billboard-reports-<date>.csv)")
	cmd.Flags().StringVar(&opts.Filter.Search, "search", "", "free-text search")
	cmd.Flags().StringVar(&opts.Filter.Country, "country", "", "country name")
	cmd.Flags().StringVar(&opts.Filter.State, "state", "", "state name (needs --country)")
	cmd.Flags().StringVar(&category, "type", "", "violation category")
	cmd.Flags().StringVar(&status, "status", "", "report status")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	b, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	path := opts.Out
	if path == "" {
		path = query.ExportFilename(time.Now())
	}

	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	n, err := b.Service.ExportCSV(cmd.Context(), opts.Filter, w)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "📄 Exported %d reports to %s\n", n, path)
	}
	return nil
}
