package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/install"
	"github.com/awtools/aw-analyzer/logger"
)

// InstallCmd represents the install command
var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the launchd agent that runs tick on an interval",
	Long: `Install the launchd agent that runs tick on an interval.

Writes a plist under ~/Library/LaunchAgents pointing at this binary and
loads it. Secrets from the environment are baked into the plist so the
agent sees them; use --dry-run to inspect the plan with secrets masked.`,
	RunE: runInstall,
}

// UninstallCmd represents the uninstall command
var UninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Unload and remove the launchd agent",
	RunE:  runUninstall,
}

func init() {
	InstallCmd.Flags().Int("interval", 0, "Tick interval in minutes, 1..1440 (default from config)")
	InstallCmd.Flags().Bool("dry-run", false, "Print the plan without writing or loading anything")
	UninstallCmd.Flags().Bool("dry-run", false, "Print the plan without unloading or removing anything")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if interval, _ := cmd.Flags().GetInt("interval"); interval > 0 {
		cfg.Install.IntervalMinutes = interval
	}

	plan, err := install.NewPlan(cfg)
	if err != nil {
		return fmt.Errorf("failed to build install plan: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if err := install.New(logger.Logger).Install(cmd.Context(), plan, dryRun); err != nil {
		return err
	}
	if !dryRun {
		fmt.Printf("Installed launch agent %s running every %d minutes\n", plan.Label, plan.IntervalSeconds/60)
		fmt.Printf("Logs: %s\n", plan.StdoutLog)
	}
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	plan, err := install.NewPlan(cfg)
	if err != nil {
		return fmt.Errorf("failed to build install plan: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if err := install.New(logger.Logger).Uninstall(cmd.Context(), plan, dryRun); err != nil {
		return err
	}
	if !dryRun {
		fmt.Printf("Removed launch agent %s\n", plan.Label)
	}
	return nil
}
