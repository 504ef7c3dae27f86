package cmd

import (
	"context"
	"fmt"
	"time"

	"dexscout/client"
	"dexscout/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Fetch recent pools, hot pools, gainers and losers concurrently",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := client.FetchAll(app.ctx, []client.Task{
			{Name: "Recent pools", Run: recentPools},
			{Name: "Hot pools", Run: func(ctx context.Context) ([]models.Record, error) { return ranking(ctx, models.OpHotPools) }},
			{Name: "Top gainers", Run: func(ctx context.Context) ([]models.Record, error) { return ranking(ctx, models.OpGainers) }},
			{Name: "Top losers", Run: func(ctx context.Context) ([]models.Record, error) { return ranking(ctx, models.OpLosers) }},
		})

		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "%s %s: %v\n\n", color.RedString("✗"), r.Name, r.Err)
				continue
			}
			if err := printRecords(out, fmt.Sprintf("%s on %s (%s)", r.Name, chainFlag, r.Duration.Round(time.Millisecond)), r.Records); err != nil {
				return err
			}
		}
		if failed == len(results) {
			return fmt.Errorf("all %d fetches failed", failed)
		}
		return nil
	},
}

func init() {
	overviewCmd.Flags().IntVar(&hoursFlag, "hours", 24, "creation window in hours for recent pools")
	overviewCmd.Flags().Float64Var(&minLiquidityFlag, "min-liquidity", 0, "drop recent pools below this liquidity (USD)")
}
