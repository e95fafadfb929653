package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"healthchain/internal/app"
)

var (
	seedFrom   string
	seedTo     string
	seedSeed   int64
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed historical simulated readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFrom == "" || seedTo == "" {
			return fmt.Errorf("--from and --to must be provided")
		}

		from, err := time.Parse(time.RFC3339, seedFrom)
		if err != nil {
			return fmt.Errorf("invalid --from value: %w", err)
		}

		to, err := time.Parse(time.RFC3339, seedTo)
		if err != nil {
			return fmt.Errorf("invalid --to value: %w", err)
		}

		if !from.Before(to) {
			return fmt.Errorf("--from must be before --to")
		}

		opts := app.SeedOptions{
			From:   from,
			To:     to,
			Seed:   seedSeed,
			DryRun: seedDryRun,
		}

		return getApp().Seed(cmd.Context(), opts)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFrom, "from", "", "Start timestamp (RFC3339, inclusive)")
	seedCmd.Flags().StringVar(&seedTo, "to", "", "End timestamp (RFC3339, exclusive)")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "Random seed for reproducible data (0 seeds from the clock)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Run without writing to storage")
}
