package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/awtools/aw-analyzer/cmd/aw-analyzer/commands"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/logger"
)

var rootCmd = &cobra.Command{
	Use:   "aw-analyzer",
	Short: "aw-analyzer - Personal activity analytics on ActivityWatch",
	Long: `aw-analyzer - Personal activity analytics on ActivityWatch.

aw-analyzer reads window and AFK events from a local ActivityWatch
server, turns them into daily and weekly summaries with optional LLM
analysis, and delivers them as desktop toasts and Slack reports.

Available commands:
  tick          - Evaluate all scheduled jobs once and exit
  weekly-report - Build the weekly summary and post it to Slack
  install       - Install the launchd agent that runs tick on an interval
  uninstall     - Unload and remove the launchd agent
  config        - Manage configuration (init, show)
  state         - Show persisted job state
  reset         - Clear persisted job state
  usage         - Show LLM usage statistics
  version       - Show version information

Examples:
  aw-analyzer tick                  # Run all due jobs once
  aw-analyzer weekly-report -d 7    # Post the last week to Slack
  aw-analyzer install --interval 5  # Tick every 5 minutes via launchd
  aw-analyzer config init           # Write a starter config
  aw-analyzer state --json          # Dump job state as JSON`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first so LOG_LEVEL and secrets are visible to everything after
		config.LoadDotEnv()

		verbosity, _ := cmd.Flags().GetCount("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")

		var err error
		if quiet {
			err = logger.InitializeWithLevel(jsonLogs, zapcore.ErrorLevel)
		} else {
			err = logger.InitializeWithVerbosity(jsonLogs, verbosity)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return fmt.Errorf("a command is required")
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (overrides the default locations)")
	rootCmd.PersistentFlags().Bool("no-notify", false, "Suppress desktop notifications")

	rootCmd.AddCommand(commands.TickCmd)
	rootCmd.AddCommand(commands.WeeklyReportCmd)
	rootCmd.AddCommand(commands.InstallCmd)
	rootCmd.AddCommand(commands.UninstallCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.StateCmd)
	rootCmd.AddCommand(commands.ResetCmd)
	rootCmd.AddCommand(commands.UsageCmd)
	rootCmd.AddCommand(commands.VersionCmd)

	allowUnknownFlags(rootCmd)
}

// allowUnknownFlags makes every command tolerate flags it does not
// define, so an older agent plist invoking a newer binary still runs.
func allowUnknownFlags(cmd *cobra.Command) {
	cmd.FParseErrWhitelist.UnknownFlags = true
	for _, sub := range cmd.Commands() {
		allowUnknownFlags(sub)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
