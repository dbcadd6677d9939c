package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/setup"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure scaling",
	Long: `Walk through the scaling configuration interactively.

Pick the scaling policy and factors for the session; the result is written
to the waybridge config file and used by the next 'waybridge bridge' run.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if os.Geteuid() == 0 && os.Getenv("SUDO_USER") == "" {
		logger.Warn("Running setup as root writes the system-wide config")
	}

	saved, err := setup.NewScalingSetup().Run()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	if !saved {
		fmt.Println("Setup cancelled, configuration unchanged")
		return nil
	}

	fmt.Printf("Configuration saved to %s\n", config.GetConfigPath())
	return nil
}
