package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dexscout/client"
	"dexscout/config"
	"dexscout/ratelimit"
	"dexscout/utils"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

// app holds what the subcommands share for one invocation.
var app struct {
	cfg    *config.Config
	client *client.Client
	ctx    context.Context
	stop   context.CancelFunc
	server *metricsServer
}

var (
	chainFlag string
	limitFlag int
	jsonFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "dexscout",
	Short: "Resilient command-line client for the DexTools API",
	Long: `dexscout queries the DexTools API for pools, rankings and token details.

It discovers which base URL, API version, chain id form and plan tier work
for your key, retries transient failures, falls back across endpoint
variants and normalizes every response into one record shape.

Examples:
  dexscout gainers --chain solana --limit 10
  dexscout pools --hours 48 --min-liquidity 5000
  dexscout pair 8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXNLwxj
  dexscout probe
  dexscout report gainers`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&chainFlag, "chain", "c", "solana", "chain name or id")
	rootCmd.PersistentFlags().IntVarP(&limitFlag, "limit", "n", client.DefaultLimit, "maximum number of records")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print records as JSON")

	rootCmd.AddCommand(poolsCmd)
	rootCmd.AddCommand(hotCmd)
	rootCmd.AddCommand(gainersCmd)
	rootCmd.AddCommand(losersCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Annotations: map[string]string{
		skipSetup: "true",
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("dexscout v%s\n", version)
	},
}

const skipSetup = "skip-setup"

// setup loads configuration before any network call; a missing API key stops
// here.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] == "true" || cmd.Name() == "help" {
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := utils.InitLogger(cfg.App.LogLevel, cfg.App.LogDir); err != nil {
		return err
	}
	utils.Logger.Infow("Starting dexscout",
		"version", version,
		"environment", cfg.App.Environment,
		"api_key", cfg.MaskedKey(),
		"command", cmd.Name())

	limiters := ratelimit.NewRegistry(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	c, err := client.NewFromConfig(cfg, limiters, utils.Logger)
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.client = c
	app.ctx, app.stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if cfg.Metrics.Addr != "" {
		app.server = startMetricsServer(app.ctx, cfg.Metrics.Addr, c.Catalog())
	}
	return nil
}

func teardown() {
	if app.server != nil {
		app.server.shutdown()
	}
	if app.stop != nil {
		app.stop()
	}
	utils.Sync()
}
