package cmd

import (
	"errors"
	"fmt"

	"dexscout/client"
	"dexscout/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var probeOp string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Find out which plan tiers accept your API key",
	Long: `Run one logical call per plan tier in the catalog and report which
tiers answered. Working tiers are tried first by later commands in the same
process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op := models.Operation(probeOp)
		if !op.Valid() || op.IsDetail() {
			return fmt.Errorf("cannot probe with operation %q", probeOp)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Probing plan tiers with %s on %s\n\n", op, chainFlag)

		working := 0
		for _, r := range app.client.ProbePlans(app.ctx, op, chainFlag) {
			if r.OK {
				working++
				fmt.Fprintf(out, "%s %-10s %d records via %s\n", color.GreenString("✓"), r.Plan, r.Records, r.Candidate)
				continue
			}
			reason := r.Err.Error()
			var failed *client.AllEndpointsFailedError
			if errors.As(r.Err, &failed) {
				reason = fmt.Sprintf("statuses %v", failed.StatusCodes())
			}
			fmt.Fprintf(out, "%s %-10s %s\n", color.RedString("✗"), r.Plan, reason)
		}

		fmt.Fprintln(out)
		if working == 0 {
			return errors.New("no plan tier accepted the API key")
		}
		fmt.Fprintf(out, "%s plan tier(s) working\n", color.GreenString("%d", working))
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeOp, "op", string(models.OpGainers), "operation used for probing")
}
