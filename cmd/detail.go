package cmd

import (
	"time"

	"dexscout/models"

	"github.com/spf13/cobra"
)

var historyHours int

var pairCmd = &cobra.Command{
	Use:   "pair <address>",
	Short: "Show one pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := app.client.PairDetail(app.ctx, chainFlag, args[0])
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), "Pair "+args[0], []models.Record{rec})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Show one token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := app.client.TokenDetail(app.ctx, chainFlag, args[0])
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), "Token "+args[0], []models.Record{rec})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <pool-address>",
	Short: "Show a pool's price over the last --hours hours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := time.Now().UTC()
		from := to.Add(-time.Duration(historyHours) * time.Hour)
		rec, err := app.client.PriceHistory(app.ctx, chainFlag, args[0], from, to)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), "Price of "+args[0], []models.Record{rec})
	},
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the blockchains the API supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := app.client.Blockchains(app.ctx)
		if err != nil {
			return err
		}
		return printChains(cmd.OutOrStdout(), recs)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyHours, "hours", 24, "window in hours")
}
