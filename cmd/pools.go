package cmd

import (
	"context"
	"time"

	"dexscout/client"
	"dexscout/models"

	"github.com/spf13/cobra"
)

var (
	hoursFlag        int
	minLiquidityFlag float64
)

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List recently created pools",
	Long: `List pools created within the last --hours hours, newest first.

Examples:
  dexscout pools
  dexscout pools --hours 48 --min-liquidity 5000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := recentPools(app.ctx)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), "Recent pools on "+chainFlag, recs)
	},
}

func recentPools(ctx context.Context) ([]models.Record, error) {
	return app.client.RecentPools(ctx, chainFlag, client.PoolQuery{
		Limit:        limitFlag,
		From:         time.Now().UTC().Add(-time.Duration(hoursFlag) * time.Hour),
		MinLiquidity: minLiquidityFlag,
	})
}

func rankingCmd(use, short string, op models.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := ranking(app.ctx, op)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), short+" on "+chainFlag, recs)
		},
	}
}

func ranking(ctx context.Context, op models.Operation) ([]models.Record, error) {
	switch op {
	case models.OpHotPools:
		return app.client.HotPools(ctx, chainFlag, limitFlag)
	case models.OpLosers:
		return app.client.Losers(ctx, chainFlag, limitFlag)
	default:
		return app.client.Gainers(ctx, chainFlag, limitFlag)
	}
}

var (
	hotCmd     = rankingCmd("hot", "Hot pools", models.OpHotPools)
	gainersCmd = rankingCmd("gainers", "Top gainers", models.OpGainers)
	losersCmd  = rankingCmd("losers", "Top losers", models.OpLosers)
)

func init() {
	poolsCmd.Flags().IntVar(&hoursFlag, "hours", 24, "creation window in hours")
	poolsCmd.Flags().Float64Var(&minLiquidityFlag, "min-liquidity", 0, "drop pools below this liquidity (USD)")
}
