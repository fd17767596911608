// Package display renders command output for terminal and JSON consumers.
package display

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether the command was invoked with --json.
// Commands that do not define the flag always render for the terminal.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	jsonFlag, err := cmd.Flags().GetBool("json")
	return err == nil && jsonFlag
}

// OutputJSON pretty-prints v to stdout.
func OutputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
