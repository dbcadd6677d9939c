package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <surface-id>",
	Short: "Reset the negotiated override on a surface",
	Long: `Drop the per-window scale override negotiated for a surface. The surface
falls back to the session factors until the next window configure negotiates
a fresh override.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid surface id %q", args[0])
		}

		client := bridgeClient()
		if !client.IsRunning() {
			fmt.Println("waybridge is not running")
			return nil
		}

		resp, err := client.ResetOverride(uint32(id))
		if err != nil {
			return fmt.Errorf("failed to reset override: %w", err)
		}

		if resp.Reset {
			fmt.Printf("Override reset on surface %d\n", id)
		} else {
			fmt.Printf("No override installed on surface %d\n", id)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
