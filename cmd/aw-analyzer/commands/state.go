package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/display"
	"github.com/awtools/aw-analyzer/state"
)

// StateCmd represents the state command
var StateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show persisted job state",
	Long:  `Display the daily markers and cooldown stamps the tick engine has recorded.`,
	RunE:  runState,
}

func init() {
	StateCmd.Flags().BoolP("json", "j", false, "Output state as JSON")
}

func runState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := state.Open(cfg.GetStatePath())
	all, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read state at %s: %w", st.Path(), err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(all)
	}

	fmt.Printf("State file: %s (%d keys)\n", st.Path(), len(all))
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %s = %v\n", key, all[key])
	}
	return nil
}
