package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/state"
)

// ResetCmd represents the reset command
var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all persisted job state",
	Long: `Clear all persisted job state.

Daily markers and cooldown stamps are removed, so the next tick treats
every job as never having run today.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := state.Open(cfg.GetStatePath())
	keys, err := st.Keys()
	if err != nil {
		return fmt.Errorf("failed to read state at %s: %w", st.Path(), err)
	}
	if len(keys) == 0 {
		fmt.Printf("State at %s is already empty\n", st.Path())
		return nil
	}
	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear state at %s: %w", st.Path(), err)
	}

	fmt.Printf("Cleared %d keys from %s:\n", len(keys), st.Path())
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	return nil
}
