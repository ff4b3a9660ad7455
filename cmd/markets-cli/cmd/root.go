package cmd

import (
	"fmt"
	"os"

	"marketdata-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "markets-cli",
	Short: "markets-cli scrapes the configured financial-data sources directly, without a running server.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
