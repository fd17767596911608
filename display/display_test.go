package display

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestShouldOutputJSON(t *testing.T) {
	t.Run("flag set", func(t *testing.T) {
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().Bool("json", false, "")
		if err := cmd.Flags().Set("json", "true"); err != nil {
			t.Fatalf("set flag: %v", err)
		}
		if !ShouldOutputJSON(cmd) {
			t.Error("expected JSON output with --json set")
		}
	})

	t.Run("flag unset", func(t *testing.T) {
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().Bool("json", false, "")
		if ShouldOutputJSON(cmd) {
			t.Error("expected terminal output without --json")
		}
	})

	t.Run("flag not defined", func(t *testing.T) {
		cmd := &cobra.Command{Use: "x"}
		if ShouldOutputJSON(cmd) {
			t.Error("expected terminal output when the command has no json flag")
		}
	})

	t.Run("nil command", func(t *testing.T) {
		if ShouldOutputJSON(nil) {
			t.Error("expected terminal output for a nil command")
		}
	})
}
