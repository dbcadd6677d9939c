package cmd

import (
	"fmt"

	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/ipc"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Version info set during build
	Version = "0.1.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "waybridge",
		Short: "Waybridge - guest/host coordinate bridging",
		Long: `Waybridge translates coordinates between a guest pixel space and the host
compositor's logical space. It applies the configured scaling policy to every
surface, negotiates per-window factors for windows that cannot survive the
guest/host round trip, and exposes the running session over a local control
socket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				config.SetConfigPath(configFile)
			}
			if err := config.Init(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.SetLevel(config.Get().Logging.LogLevel)
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default waybridge.toml in the standard locations)")

	rootCmd.AddCommand(bridgeCmd)
}

// bridgeClient dials the control socket of the running bridge, honoring a
// configured socket path.
func bridgeClient() *ipc.Client {
	if path := config.Get().Bridge.SocketPath; path != "" {
		return ipc.NewClientWithPath(path)
	}
	return ipc.NewClient()
}
