package cmd

import (
	"fmt"

	"github.com/bnema/waybridge/internal/ui"
	"github.com/spf13/cobra"
)

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List host outputs and their advertised guest geometry",
	Long: `List the host outputs known to the running bridge together with the
geometry advertised to the guest after scaling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bridgeClient()
		if !client.IsRunning() {
			fmt.Println("waybridge is not running")
			return nil
		}

		resp, err := client.Outputs()
		if err != nil {
			return fmt.Errorf("failed to list outputs: %w", err)
		}

		if len(resp.Outputs) == 0 {
			fmt.Println("No outputs detected")
			return nil
		}

		fmt.Println(ui.FormatOutputTable(resp.Outputs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outputsCmd)
}
