package cmd

import (
	"os"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage waybridge configuration",
	Long:  `Manage waybridge configuration including scaling factors and console access.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		logger.Info("Current Configuration:")
		logger.Infof("Config file: %s\n", config.GetConfigPath())

		logger.Info("[Scaling]")
		logger.Infof("  Mode: %s", cfg.Scaling.Mode)
		logger.Infof("  Scale: %.4f", cfg.Scaling.Scale)
		logger.Infof("  Scale X: %.4f", cfg.Scaling.ScaleX)
		logger.Infof("  Scale Y: %.4f", cfg.Scaling.ScaleY)

		logger.Info("\n[Bridge]")
		logger.Infof("  Name: %s", cfg.Bridge.Name)
		logger.Infof("  Guest Display: %s", cfg.Bridge.Display)
		logger.Infof("  App ID: %s", cfg.Bridge.AppID)
		logger.Infof("  App ID Property: %s", cfg.Bridge.AppIDProperty)
		logger.Infof("  App ID Template: %s", cfg.Bridge.AppIDTemplate)
		logger.Infof("  Socket Path: %s", cfg.Bridge.SocketPath)
		logger.Infof("  Headless: %v", cfg.Bridge.Headless)

		logger.Info("\n[Outputs]")
		logger.Infof("  Backend: %s", cfg.Outputs.Backend)
		for _, out := range cfg.Outputs.Static {
			logger.Infof("  - %s: %dx%d at (%d,%d) scale=%.1f", out.Name, out.Width, out.Height, out.X, out.Y, out.Scale)
		}

		logger.Info("\n[Console]")
		logger.Infof("  Enabled: %v", cfg.Console.Enabled)
		logger.Infof("  Port: %d", cfg.Console.Port)
		logger.Infof("  Bind Address: %s", cfg.Console.BindAddress)
		logger.Infof("  Host Key: %s", cfg.Console.HostKeyPath)
		logger.Infof("  Whitelist Only: %v", cfg.Console.WhitelistOnly)
		if len(cfg.Console.Whitelist) > 0 {
			logger.Info("  Whitelist:")
			for _, fp := range cfg.Console.Whitelist {
				logger.Infof("    - %s", fp)
			}
		}

		logger.Info("\n[Logging]")
		logger.Infof("  File Logging: %v", cfg.Logging.FileLogging)
		logger.Infof("  Log Level: %s", cfg.Logging.LogLevel)

		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save current configuration to file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", config.GetConfigPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if config already exists
		configPath := config.GetConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			logger.Infof("Configuration file already exists at: %s", configPath)
			logger.Info("Use --force to overwrite")

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return nil
			}
		}

		// Save default configuration
		if err := config.Save(); err != nil {
			return err
		}

		logger.Infof("Configuration initialized at: %s", configPath)
		logger.Info("\nYou can now:")
		logger.Info("  - Edit the configuration file directly")
		logger.Info("  - Use 'waybridge setup' for interactive scaling setup")
		logger.Info("  - Use 'waybridge config show' to view current settings")

		return nil
	},
}

var configKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the console SSH key whitelist",
}

var configKeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted console keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if len(cfg.Console.Whitelist) == 0 {
			logger.Info("No SSH keys in console whitelist")
			if cfg.Console.WhitelistOnly {
				logger.Info("\nWhitelist-only mode is ENABLED")
				logger.Info("The console rejects every key until one is added")
			} else {
				logger.Info("\nWhitelist-only mode is DISABLED")
				logger.Info("All SSH keys are accepted")
			}
			return nil
		}

		logger.Info("Whitelisted console keys:")
		for i, fp := range cfg.Console.Whitelist {
			logger.Infof("%d. %s", i+1, fp)
		}

		if cfg.Console.WhitelistOnly {
			logger.Info("\nWhitelist-only mode is ENABLED")
		} else {
			logger.Info("\nWhitelist-only mode is DISABLED")
		}

		return nil
	},
}

var configKeyAddCmd = &cobra.Command{
	Use:   "add <fingerprint>",
	Short: "Add an SSH key fingerprint to the console whitelist",
	Long: `Add an SSH key fingerprint (SHA256:...) to the console whitelist.
The console has no interactive approval, so keys must be whitelisted here
before they can connect in whitelist-only mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fingerprint := args[0]

		if err := config.AddConsoleKeyToWhitelist(fingerprint); err != nil {
			return err
		}

		logger.Infof("Added console key to whitelist: %s", fingerprint)
		return nil
	},
}

var configKeyRemoveCmd = &cobra.Command{
	Use:   "remove <fingerprint>",
	Short: "Remove an SSH key fingerprint from the console whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fingerprint := args[0]

		if err := config.RemoveConsoleKeyFromWhitelist(fingerprint); err != nil {
			return err
		}

		logger.Infof("Removed console key from whitelist: %s", fingerprint)
		return nil
	},
}

var configKeyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the console whitelist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		count := len(cfg.Console.Whitelist)

		if count == 0 {
			logger.Info("Console whitelist is already empty")
			return nil
		}

		cfg.Console.Whitelist = []string{}
		if err := config.UpdateConsole(cfg.Console); err != nil {
			return err
		}

		logger.Infof("Cleared %d console key(s) from whitelist", count)
		return nil
	},
}

func init() {
	// Add subcommands
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configKeyCmd)

	// Add key subcommands
	configKeyCmd.AddCommand(configKeyListCmd)
	configKeyCmd.AddCommand(configKeyAddCmd)
	configKeyCmd.AddCommand(configKeyRemoveCmd)
	configKeyCmd.AddCommand(configKeyClearCmd)

	// Add flags
	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")

	rootCmd.AddCommand(configCmd)
}
