package cmd

import (
	"fmt"

	"github.com/bnema/waybridge/internal/ui"
	"github.com/spf13/cobra"
)

var surfacesCmd = &cobra.Command{
	Use:   "surfaces",
	Short: "List surfaces tracked by the running bridge",
	Long: `List every surface the bridge session is scaling, with its effective
factors, any negotiated per-window override, and the managed guest windows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bridgeClient()
		if !client.IsRunning() {
			fmt.Println("waybridge is not running")
			return nil
		}

		resp, err := client.Surfaces()
		if err != nil {
			return fmt.Errorf("failed to list surfaces: %w", err)
		}

		if len(resp.Surfaces) == 0 {
			fmt.Println("No surfaces tracked")
		} else {
			fmt.Println(ui.FormatSurfaceTable(resp.Surfaces))
		}

		if len(resp.Windows) > 0 {
			fmt.Println()
			fmt.Println(ui.FormatWindowTable(resp.Windows))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(surfacesCmd)
}
