package cmd

import (
	"fmt"

	"github.com/bnema/waybridge/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the status of the running bridge",
	Long:  `Check the status of the running bridge session including the active scaling policy, its factors and object counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bridgeClient()
		if !client.IsRunning() {
			fmt.Println("waybridge is not running")
			return nil
		}

		status, err := client.Status()
		if err != nil {
			return fmt.Errorf("failed to get bridge status: %w", err)
		}

		fmt.Println(ui.StatusText(status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
