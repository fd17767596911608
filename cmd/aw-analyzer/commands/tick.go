package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/jobs"
	"github.com/awtools/aw-analyzer/logger"
	"github.com/awtools/aw-analyzer/notify"
	"github.com/awtools/aw-analyzer/state"
	"github.com/awtools/aw-analyzer/tick"
)

// TickCmd represents the tick command
var TickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Evaluate all scheduled jobs once and exit",
	Long: `Evaluate all scheduled jobs once and exit.

Each job decides for itself whether it is due, so ticks are cheap and
safe to run on a short interval. Install the launchd agent (aw-analyzer
install) or a cron entry to run this every few minutes.`,
	RunE: runTick,
}

func runTick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	offset, err := reportOffset(cfg)
	if err != nil {
		return err
	}

	analyzer, closeUsage := buildAnalyzer(cfg)
	defer closeUsage()

	var notifier notify.Notifier = notify.NewDesktop(logger.Logger)
	if noNotify, _ := cmd.Flags().GetBool("no-notify"); noNotify {
		notifier = notify.NewQuiet(logger.Logger)
	}

	deps := jobs.Deps{
		Provider:     newActivityClient(cfg),
		Analyzer:     analyzer,
		Webhook:      buildWebhook(cfg),
		Offset:       offset,
		Jobs:         cfg.Jobs,
		DashboardURL: dashboardURL(cfg),
		Hostname:     cfg.GetHostname(),
		Logger:       logger.Logger,
	}

	tc := &tick.Context{
		Ctx:      cmd.Context(),
		Now:      time.Now(),
		State:    state.Open(cfg.GetStatePath()),
		Notifier: notifier,
	}

	res, err := tick.NewEngine(logger.Logger).Run(tc, jobs.Defaults(deps))
	if err != nil {
		return fmt.Errorf("tick failed: %w", err)
	}

	fmt.Printf("Tick complete: %d executed, %d notified, %d skipped (%s)\n",
		len(res.Executed), len(res.Notified), len(res.Skipped), res.Duration.Round(time.Millisecond))
	return nil
}
