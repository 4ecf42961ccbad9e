package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/mouse-relay/internal/catalog"
)

// DefaultFile is read when present; a missing file is not an error
const DefaultFile = "config/default.yaml"

// EnvConfigFile names an additional YAML file to overlay
const EnvConfigFile = "MOUSERELAY_CONFIG"

// Config represents the complete configuration for the relay
type Config struct {
	Network NetworkConfig `yaml:"network"`
	Session SessionConfig `yaml:"session"`
	Voice   VoiceConfig   `yaml:"voice"`
	Input   InputConfig   `yaml:"input"`
	Logging LoggingConfig `yaml:"logging"`
}

// NetworkConfig holds network-related settings
type NetworkConfig struct {
	Host      string          `yaml:"host"`
	Command   CommandConfig   `yaml:"command"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// CommandConfig holds command channel settings
type CommandConfig struct {
	Port         int      `yaml:"port"`
	MaxDatagram  int      `yaml:"maxDatagram"`
	AllowedCIDRs []string `yaml:"allowedCidrs"`
}

// DiscoveryConfig holds discovery channel settings
type DiscoveryConfig struct {
	Port  int        `yaml:"port"`
	Probe string     `yaml:"probe"`
	Reply string     `yaml:"reply"`
	MDNS  MDNSConfig `yaml:"mdns"`
}

// MDNSConfig holds optional zeroconf advertisement settings
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
	Service  string `yaml:"service"`
	Domain   string `yaml:"domain"`
}

// SessionConfig holds the starting session parameters
type SessionConfig struct {
	Scale float64 `yaml:"scale"`
}

// VoiceConfig holds voice resolution settings
type VoiceConfig struct {
	Threshold     int                 `yaml:"threshold"`
	ExtraSynonyms map[string][]string `yaml:"extraSynonyms"`
}

// InputConfig holds input backend settings
type InputConfig struct {
	Backend    string `yaml:"backend"`
	ScrollStep int    `yaml:"scrollStep"`
	TimeoutMs  int    `yaml:"timeoutMs"`
	Xdotool    string `yaml:"xdotool"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Load loads configuration from the default file, the file named by path (or
// MOUSERELAY_CONFIG when path is empty) and environment variables
func Load(path string) (*Config, error) {
	// Load default configuration
	cfg := getDefaultConfig()

	// Load from default config file
	if err := loadFromFile(cfg, DefaultFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", DefaultFile, err)
		}
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// Override with environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return getDefaultConfig()
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			Host: "0.0.0.0",
			Command: CommandConfig{
				Port:         5000,
				MaxDatagram:  1024,
				AllowedCIDRs: []string{"0.0.0.0/0", "::/0"},
			},
			Discovery: DiscoveryConfig{
				Port:  5001,
				Probe: "DISCOVER",
				Reply: "MOUSE_SERVER",
				MDNS: MDNSConfig{
					Enabled:  false,
					Instance: "mouserelay",
					Service:  "_mouserelay._udp",
					Domain:   "local.",
				},
			},
		},
		Session: SessionConfig{
			Scale: 1.6667,
		},
		Voice: VoiceConfig{
			Threshold: 60,
		},
		Input: InputConfig{
			Backend:    "xdotool",
			ScrollStep: 5,
			TimeoutMs:  2000,
			Xdotool:    "xdotool",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.UnmarshalStrict(data, cfg)
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) error {
	if host := os.Getenv("MOUSERELAY_HOST"); host != "" {
		cfg.Network.Host = host
	}

	if port := os.Getenv("MOUSERELAY_COMMAND_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("MOUSERELAY_COMMAND_PORT: %w", err)
		}
		cfg.Network.Command.Port = p
	}

	if port := os.Getenv("MOUSERELAY_DISCOVERY_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("MOUSERELAY_DISCOVERY_PORT: %w", err)
		}
		cfg.Network.Discovery.Port = p
	}

	if backend := os.Getenv("MOUSERELAY_BACKEND"); backend != "" {
		cfg.Input.Backend = backend
	}

	if level := os.Getenv("MOUSERELAY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if scale := os.Getenv("MOUSERELAY_SCALE"); scale != "" {
		v, err := strconv.ParseFloat(scale, 64)
		if err != nil {
			return fmt.Errorf("MOUSERELAY_SCALE: %w", err)
		}
		cfg.Session.Scale = v
	}

	return nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	// Both channels are required
	if err := validatePort("command", cfg.Network.Command.Port); err != nil {
		return err
	}
	if err := validatePort("discovery", cfg.Network.Discovery.Port); err != nil {
		return err
	}
	if cfg.Network.Command.Port == cfg.Network.Discovery.Port {
		return fmt.Errorf("command and discovery ports must differ, both are %d", cfg.Network.Command.Port)
	}

	if cfg.Network.Command.MaxDatagram <= 0 {
		return fmt.Errorf("maxDatagram must be positive, got %d", cfg.Network.Command.MaxDatagram)
	}

	for _, cidr := range cfg.Network.Command.AllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid allowed CIDR %q: %w", cidr, err)
		}
	}

	if strings.TrimSpace(cfg.Network.Discovery.Probe) == "" || cfg.Network.Discovery.Reply == "" {
		return fmt.Errorf("discovery probe and reply tokens must be set")
	}

	if cfg.Voice.Threshold < 0 || cfg.Voice.Threshold > 100 {
		return fmt.Errorf("voice threshold %d is outside range [0, 100]", cfg.Voice.Threshold)
	}

	for name := range cfg.Voice.ExtraSynonyms {
		if !catalog.Known(strings.ToUpper(strings.TrimSpace(name))) {
			return fmt.Errorf("extraSynonyms: unknown action %q", name)
		}
	}

	validBackends := []string{"xdotool", "log"}
	if !contains(validBackends, strings.ToLower(cfg.Input.Backend)) {
		return fmt.Errorf("invalid input backend %s, must be one of: %v", cfg.Input.Backend, validBackends)
	}

	if cfg.Input.ScrollStep <= 0 {
		return fmt.Errorf("input scrollStep must be positive, got %d", cfg.Input.ScrollStep)
	}

	if cfg.Input.TimeoutMs <= 0 {
		return fmt.Errorf("input timeout must be positive, got %dms", cfg.Input.TimeoutMs)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		return fmt.Errorf("invalid log level %s, must be one of: %v", cfg.Logging.Level, validLevels)
	}

	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s port %d is outside range [1, 65535]", name, port)
	}
	return nil
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
