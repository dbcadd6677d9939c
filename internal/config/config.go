// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Scaling policy between guest and host coordinate spaces
	Scaling ScalingConfig `mapstructure:"scaling"`

	// Bridge session settings
	Bridge BridgeConfig `mapstructure:"bridge"`

	// Host output discovery
	Outputs OutputsConfig `mapstructure:"outputs"`

	// Read-only SSH status console
	Console ConsoleConfig `mapstructure:"console"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScalingConfig selects the scaling policy and its factors
type ScalingConfig struct {
	Mode   string  `mapstructure:"mode"`    // "direct" or "legacy"
	Scale  float64 `mapstructure:"scale"`   // uniform multiplier; also backs output advertisement
	ScaleX float64 `mapstructure:"scale_x"` // direct-mode session default, X axis
	ScaleY float64 `mapstructure:"scale_y"` // direct-mode session default, Y axis
}

// BridgeConfig contains session-wide bridge settings
type BridgeConfig struct {
	Name          string `mapstructure:"name"`            // session name, used in generated app IDs
	Display       string `mapstructure:"display"`         // guest X display, empty for $DISPLAY
	AppID         string `mapstructure:"app_id"`          // forced application ID for every window, empty to derive
	AppIDProperty string `mapstructure:"app_id_property"` // window property holding a per-window application ID
	AppIDTemplate string `mapstructure:"app_id_template"` // fallback template, filled with session name and WM_CLASS
	SocketPath    string `mapstructure:"socket_path"`     // control socket path, empty for the per-user default
	Headless      bool   `mapstructure:"headless"`        // disable the inline status view
}

// OutputsConfig selects how host outputs are discovered
type OutputsConfig struct {
	Backend string         `mapstructure:"backend"` // "auto", "wlr" or "static"
	Static  []StaticOutput `mapstructure:"static"`  // used by the static backend and as fallback
}

// StaticOutput describes one host output when discovery is unavailable
type StaticOutput struct {
	Name   string  `mapstructure:"name"`
	X      int32   `mapstructure:"x"`
	Y      int32   `mapstructure:"y"`
	Width  int32   `mapstructure:"width"`
	Height int32   `mapstructure:"height"`
	Scale  float64 `mapstructure:"scale"`
}

// ConsoleConfig contains SSH status console settings
type ConsoleConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Port          int      `mapstructure:"port"`
	BindAddress   string   `mapstructure:"bind_address"`
	HostKeyPath   string   `mapstructure:"host_key_path"`
	Whitelist     []string `mapstructure:"whitelist"`      // allowed SSH key fingerprints
	WhitelistOnly bool     `mapstructure:"whitelist_only"` // only allow whitelisted keys
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogLevel    string `mapstructure:"log_level"`    // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Scaling: ScalingConfig{
			Mode:   "direct",
			Scale:  1.0,
			ScaleX: 1.0,
			ScaleY: 1.0,
		},
		Bridge: BridgeConfig{
			Name:          getHostname(),
			Display:       "",
			AppID:         "",
			AppIDProperty: "",
			AppIDTemplate: "org.waybridge.%s.wmclass.%s",
			SocketPath:    "",
			Headless:      false,
		},
		Outputs: OutputsConfig{
			Backend: "auto",
			Static:  []StaticOutput{},
		},
		Console: ConsoleConfig{
			Enabled:       false,
			Port:          52530,
			BindAddress:   "0.0.0.0",
			HostKeyPath:   "/etc/waybridge/host_key",
			Whitelist:     []string{},
			WhitelistOnly: true,
		},
		Logging: LoggingConfig{
			FileLogging: true,
			LogLevel:    "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("waybridge")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/waybridge") // System config directory (primary)

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			viper.AddConfigPath(fmt.Sprintf("/home/%s/.config/waybridge", sudoUser))
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", "waybridge"))
		}

		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("scaling.mode", DefaultConfig.Scaling.Mode)
	viper.SetDefault("scaling.scale", DefaultConfig.Scaling.Scale)
	viper.SetDefault("scaling.scale_x", DefaultConfig.Scaling.ScaleX)
	viper.SetDefault("scaling.scale_y", DefaultConfig.Scaling.ScaleY)

	viper.SetDefault("bridge.name", DefaultConfig.Bridge.Name)
	viper.SetDefault("bridge.display", DefaultConfig.Bridge.Display)
	viper.SetDefault("bridge.app_id", DefaultConfig.Bridge.AppID)
	viper.SetDefault("bridge.app_id_property", DefaultConfig.Bridge.AppIDProperty)
	viper.SetDefault("bridge.app_id_template", DefaultConfig.Bridge.AppIDTemplate)
	viper.SetDefault("bridge.socket_path", DefaultConfig.Bridge.SocketPath)
	viper.SetDefault("bridge.headless", DefaultConfig.Bridge.Headless)

	viper.SetDefault("outputs.backend", DefaultConfig.Outputs.Backend)
	viper.SetDefault("outputs.static", DefaultConfig.Outputs.Static)

	viper.SetDefault("console.enabled", DefaultConfig.Console.Enabled)
	viper.SetDefault("console.port", DefaultConfig.Console.Port)
	viper.SetDefault("console.bind_address", DefaultConfig.Console.BindAddress)
	viper.SetDefault("console.host_key_path", DefaultConfig.Console.HostKeyPath)
	viper.SetDefault("console.whitelist", DefaultConfig.Console.Whitelist)
	viper.SetDefault("console.whitelist_only", DefaultConfig.Console.WhitelistOnly)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		// An explicit config path that does not exist yet surfaces as a
		// plain not-exist error rather than ConfigFileNotFoundError.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// For root/sudo, prefer system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/waybridge/waybridge.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/waybridge/waybridge.toml"
	}

	return filepath.Join(home, ".config", "waybridge", "waybridge.toml")
}

// UpdateScaling updates the scaling section
func UpdateScaling(scaling ScalingConfig) error {
	viper.Set("scaling", scaling)
	Get().Scaling = scaling
	return Save()
}

// UpdateConsole updates the console section
func UpdateConsole(console ConsoleConfig) error {
	viper.Set("console", console)
	Get().Console = console
	return Save()
}

// AddConsoleKeyToWhitelist adds an SSH key fingerprint to the console whitelist
func AddConsoleKeyToWhitelist(fingerprint string) error {
	cfg := Get()

	for _, fp := range cfg.Console.Whitelist {
		if fp == fingerprint {
			return fmt.Errorf("key already whitelisted")
		}
	}

	cfg.Console.Whitelist = append(cfg.Console.Whitelist, fingerprint)
	viper.Set("console.whitelist", cfg.Console.Whitelist)
	return Save()
}

// RemoveConsoleKeyFromWhitelist removes an SSH key fingerprint from the console whitelist
func RemoveConsoleKeyFromWhitelist(fingerprint string) error {
	cfg := Get()

	for i, fp := range cfg.Console.Whitelist {
		if fp == fingerprint {
			cfg.Console.Whitelist = append(cfg.Console.Whitelist[:i], cfg.Console.Whitelist[i+1:]...)
			viper.Set("console.whitelist", cfg.Console.Whitelist)
			return Save()
		}
	}

	return fmt.Errorf("key not found in whitelist")
}

// IsConsoleKeyWhitelisted checks if an SSH key fingerprint is whitelisted
func IsConsoleKeyWhitelisted(fingerprint string) bool {
	for _, fp := range Get().Console.Whitelist {
		if fp == fingerprint {
			return true
		}
	}
	return false
}

// Helper function to get hostname
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "waybridge"
	}
	return hostname
}
