package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantsim",
	Short: "Replay historical bars through trading strategies",
	Long: `Quantsim replays historical price bars through a trading strategy,
simulates order execution, and reports portfolio performance.

It provides:
  - A simulated broker with slippage and commission modeling
  - Multi-instrument synchronized replay for pairs strategies
  - Equity curve tracking with drawdown, Sharpe and Sortino ratios
  - SQLite/CSV journaling of fills and equity
  - A live execution adapter speaking the wire protocol`,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
