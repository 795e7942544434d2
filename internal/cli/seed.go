package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

type SeedOptions struct {
	*RootOptions
	Count int
	Seed  uint64
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load generated demo reports",
		Long: `Generate demo reports for every state of the location catalog and store them.

Example:
  billboard-worker seed --count 200 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			now := time.Now().UTC()
			seed := opts.Seed
			if seed == 0 {
				seed = uint64(now.UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, 0))

			reports := domain.GenerateMockReports(b.Catalog, rng, now, opts.Count)
			n, err := b.Service.ImportReports(cmd.Context(), reports)
			fmt.Fprintf(cmd.OutOrStdout(), "🌱 Seeded %d of %d reports\n", n, len(reports))
			return err
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", domain.MaxMockReports, "number of reports to generate (max 500)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed, 0 uses the clock")

	return cmd
}
