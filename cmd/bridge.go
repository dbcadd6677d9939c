package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bnema/waybridge/internal/bridge"
	"github.com/bnema/waybridge/internal/config"
	"github.com/bnema/waybridge/internal/console"
	"github.com/bnema/waybridge/internal/logger"
	"github.com/bnema/waybridge/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	scalingMode  string
	scaleFactor  float64
	scaleFactorX float64
	scaleFactorY float64
	guestDisplay string
	headless     bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the coordinate bridge",
	Long: `Run the bridge between a guest pixel space and the host compositor.
Surfaces picked up by the session are scaled per the configured policy, and
windows that cannot survive the guest/host round trip get per-window factors
negotiated automatically.`,
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().StringVarP(&scalingMode, "mode", "m", "", "Scaling policy: direct or legacy")
	bridgeCmd.Flags().Float64VarP(&scaleFactor, "scale", "s", 0, "Uniform scale factor (guest pixels per host logical unit)")
	bridgeCmd.Flags().Float64Var(&scaleFactorX, "scale-x", 0, "Horizontal scale factor (direct mode)")
	bridgeCmd.Flags().Float64Var(&scaleFactorY, "scale-y", 0, "Vertical scale factor (direct mode)")
	bridgeCmd.Flags().StringVarP(&guestDisplay, "display", "d", "", "Guest X display to manage")
	bridgeCmd.Flags().BoolVar(&headless, "headless", false, "Run without the inline status view")

	// Bind flags to viper
	viper.BindPFlag("scaling.mode", bridgeCmd.Flags().Lookup("mode"))
	viper.BindPFlag("scaling.scale", bridgeCmd.Flags().Lookup("scale"))
	viper.BindPFlag("scaling.scale_x", bridgeCmd.Flags().Lookup("scale-x"))
	viper.BindPFlag("scaling.scale_y", bridgeCmd.Flags().Lookup("scale-y"))
	viper.BindPFlag("bridge.display", bridgeCmd.Flags().Lookup("display"))
	viper.BindPFlag("bridge.headless", bridgeCmd.Flags().Lookup("headless"))
}

func runBridge(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	if err := ensureBridgeConfig(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg := config.Get()

	// Redirect logs to a file before any output happens, the inline status
	// view owns the terminal from here on
	if !cfg.Bridge.Headless && cfg.Logging.FileLogging {
		logFile, err := logger.EnableFile(logFilePath())
		if err != nil {
			logger.Warnf("File logging unavailable: %v", err)
		} else {
			defer logFile.Close()
		}
	}

	session := bridge.New(cfg)

	// Create a context that we'll cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	defer session.Stop()

	// Show host output configuration
	if disp := session.Display(); disp != nil {
		outputs := disp.Outputs()
		logger.Infof("Detected %d output(s):", len(outputs))
		for _, out := range outputs {
			outputInfo := fmt.Sprintf("  %s: %dx%d at (%d,%d)", out.Name, out.Width, out.Height, out.X, out.Y)
			if out.Primary {
				outputInfo += " [PRIMARY]"
			}
			if out.Scale != 1.0 {
				outputInfo += fmt.Sprintf(" scale=%.1f", out.Scale)
			}
			logger.Info(outputInfo)
		}
	}

	if cfg.Console.Enabled {
		consoleSrv := console.NewServer(cfg.Console, session)
		if err := consoleSrv.Start(ctx); err != nil {
			logger.Warnf("Status console unavailable: %v", err)
		} else {
			defer consoleSrv.Stop()
			logger.Infof("Status console listening on %s:%d", cfg.Console.BindAddress, cfg.Console.Port)
		}
	}

	logger.Infof("Control socket: %s", session.SocketPath())

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if cfg.Bridge.Headless {
		logger.Info("Running headless, Ctrl+C to stop")
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		return nil
	}

	model := ui.NewStatusModel(session.HandleStatus)
	p := tea.NewProgram(model)

	// Feed every log line into the status view's tail
	logger.SetUINotifier(func(level, message string) {
		p.Send(ui.LogMsg{Entry: ui.LogEntry{
			Timestamp: time.Now(),
			Level:     level,
			Message:   message,
		}})
	})
	defer logger.SetUINotifier(nil)

	go func() {
		<-sigCh
		// Cancel context first to start shutdown
		cancel()
		// Then tell the status view to quit
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}

// ensureBridgeConfig ensures the config file exists when running the bridge
func ensureBridgeConfig() error {
	configPath := config.GetConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logger.Infof("No config file found. Creating default config at %s", configPath)

		if err := config.Save(); err != nil {
			return err
		}

		logger.Info("Default configuration created successfully")
	}

	return nil
}

// logFilePath returns where the daemon logs once the status view owns the
// terminal.
func logFilePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		path := filepath.Join(dir, "waybridge")
		if err := os.MkdirAll(path, 0o755); err == nil {
			return filepath.Join(path, "waybridge.log")
		}
	}
	return filepath.Join(os.TempDir(), "waybridge.log")
}
