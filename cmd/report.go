package cmd

import (
	"fmt"
	"strings"
	"time"

	"dexscout/models"
	"dexscout/report"
	"dexscout/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [gainers|losers|hot|pools]",
	Short: "Write a markdown analysis of a ranking",
	Long: `Fetch a ranking and write a markdown report under REPORT_DIR.

The analysis is produced by an OpenAI-compatible service when OPENAI_API_KEY
is set. Without it, or when the service fails, a summary computed from the
data is written instead; the fetched records are always included.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"gainers", "losers", "hot", "pools"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := "gainers"
		if len(args) == 1 {
			kind = strings.ToLower(args[0])
		}

		in := report.Input{Chain: chainFlag, MinLiquidity: minLiquidityFlag}
		var (
			recs []models.Record
			err  error
		)
		switch kind {
		case "gainers":
			in.Operation, in.Title = models.OpGainers, "Top gainers on "+chainFlag
			recs, err = ranking(app.ctx, models.OpGainers)
		case "losers":
			in.Operation, in.Title = models.OpLosers, "Top losers on "+chainFlag
			recs, err = ranking(app.ctx, models.OpLosers)
		case "hot":
			in.Operation, in.Title = models.OpHotPools, "Hot pools on "+chainFlag
			recs, err = ranking(app.ctx, models.OpHotPools)
		case "pools":
			in.Operation, in.Title = models.OpRecentPools, "New pools on "+chainFlag
			in.Window = time.Duration(hoursFlag) * time.Hour
			recs, err = recentPools(app.ctx)
		default:
			return fmt.Errorf("unknown report kind %q", kind)
		}
		if err != nil {
			return err
		}
		in.Records = recs

		var gen report.Generator
		if app.cfg.Report.OpenAIKey != "" {
			gen = report.NewOpenAI(app.cfg.Report.OpenAIKey, app.cfg.Report.OpenAIBaseURL, app.cfg.Report.Model, app.cfg.Report.Timeout)
		}
		res, err := report.NewWriter(gen, app.cfg.Report.OutputDir, utils.Logger).Write(app.ctx, in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Generated {
			fmt.Fprintf(out, "%s report written to %s\n", color.GreenString("✓"), res.Path)
		} else {
			fmt.Fprintf(out, "%s report written to %s using the fallback summary (%v)\n", color.YellowString("!"), res.Path, res.GenErr)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&hoursFlag, "hours", 24, "creation window in hours for the pools report")
	reportCmd.Flags().Float64Var(&minLiquidityFlag, "min-liquidity", 0, "drop pools below this liquidity (USD)")
}
