package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := getDefaultConfig()

	// Test network defaults
	if cfg.Network.Command.Port != 5000 {
		t.Errorf("Expected command port 5000, got %d", cfg.Network.Command.Port)
	}
	if cfg.Network.Discovery.Port != 5001 {
		t.Errorf("Expected discovery port 5001, got %d", cfg.Network.Discovery.Port)
	}
	if cfg.Network.Discovery.Probe != "DISCOVER" || cfg.Network.Discovery.Reply != "MOUSE_SERVER" {
		t.Errorf("Unexpected discovery tokens %q/%q", cfg.Network.Discovery.Probe, cfg.Network.Discovery.Reply)
	}
	if cfg.Network.Command.MaxDatagram != 1024 {
		t.Errorf("Expected max datagram 1024, got %d", cfg.Network.Command.MaxDatagram)
	}

	// Test session and voice defaults
	if cfg.Session.Scale != 1.6667 {
		t.Errorf("Expected scale 1.6667, got %v", cfg.Session.Scale)
	}
	if cfg.Voice.Threshold != 60 {
		t.Errorf("Expected threshold 60, got %d", cfg.Voice.Threshold)
	}

	if cfg.Network.Discovery.MDNS.Enabled {
		t.Error("Expected mDNS to be disabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestLoadConfigFromNonExistentFile(t *testing.T) {
	cfg := &Config{}
	err := loadFromFile(cfg, "non-existent-file.yaml")
	if err == nil {
		t.Error("Expected error when loading non-existent file")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := []byte(`
network:
  command:
    port: 6000
    allowedCidrs: ["192.168.0.0/16"]
voice:
  threshold: 75
  extraSynonyms:
    HOTKEY_CTRL_V:
      - "insert"
input:
  backend: log
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Network.Command.Port != 6000 {
		t.Errorf("Expected command port 6000, got %d", cfg.Network.Command.Port)
	}
	// Untouched keys keep their defaults
	if cfg.Network.Discovery.Port != 5001 {
		t.Errorf("Expected discovery port 5001, got %d", cfg.Network.Discovery.Port)
	}
	if len(cfg.Network.Command.AllowedCIDRs) != 1 {
		t.Errorf("Expected 1 allowed CIDR, got %v", cfg.Network.Command.AllowedCIDRs)
	}
	if cfg.Voice.Threshold != 75 {
		t.Errorf("Expected threshold 75, got %d", cfg.Voice.Threshold)
	}
	if got := cfg.Voice.ExtraSynonyms["HOTKEY_CTRL_V"]; len(got) != 1 || got[0] != "insert" {
		t.Errorf("Unexpected extra synonyms %v", got)
	}
	if cfg.Input.Backend != "log" {
		t.Errorf("Expected backend log, got %s", cfg.Input.Backend)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte("network:\n  comand:\n    port: 1\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for misspelled key")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte("session:\n  scale: 3.5\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Session.Scale != 3.5 {
		t.Errorf("Expected scale 3.5, got %v", cfg.Session.Scale)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := getDefaultConfig()

	t.Setenv("MOUSERELAY_HOST", "127.0.0.1")
	t.Setenv("MOUSERELAY_COMMAND_PORT", "7000")
	t.Setenv("MOUSERELAY_DISCOVERY_PORT", "7001")
	t.Setenv("MOUSERELAY_BACKEND", "log")
	t.Setenv("MOUSERELAY_LOG_LEVEL", "debug")
	t.Setenv("MOUSERELAY_SCALE", "-2")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() failed: %v", err)
	}

	if cfg.Network.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Network.Host)
	}
	if cfg.Network.Command.Port != 7000 || cfg.Network.Discovery.Port != 7001 {
		t.Errorf("Expected ports 7000/7001, got %d/%d", cfg.Network.Command.Port, cfg.Network.Discovery.Port)
	}
	if cfg.Input.Backend != "log" {
		t.Errorf("Expected backend log, got %s", cfg.Input.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got %s", cfg.Logging.Level)
	}
	// Negative scales are accepted
	if cfg.Session.Scale != -2 {
		t.Errorf("Expected scale -2, got %v", cfg.Session.Scale)
	}
}

func TestApplyEnvOverridesInvalid(t *testing.T) {
	for _, key := range []string{"MOUSERELAY_COMMAND_PORT", "MOUSERELAY_DISCOVERY_PORT", "MOUSERELAY_SCALE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "invalid")
			if err := applyEnvOverrides(getDefaultConfig()); err == nil {
				t.Errorf("Expected error for invalid %s", key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  func() *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: func() *Config {
				return getDefaultConfig()
			},
			wantErr: false,
		},
		{
			name: "port out of range",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Network.Command.Port = 70000
				return cfg
			},
			wantErr: true,
		},
		{
			name: "missing discovery port",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Network.Discovery.Port = 0
				return cfg
			},
			wantErr: true,
		},
		{
			name: "shared port",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Network.Discovery.Port = cfg.Network.Command.Port
				return cfg
			},
			wantErr: true,
		},
		{
			name: "invalid CIDR",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Network.Command.AllowedCIDRs = []string{"10.0.0.0/33"}
				return cfg
			},
			wantErr: true,
		},
		{
			name: "empty probe",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Network.Discovery.Probe = "  "
				return cfg
			},
			wantErr: true,
		},
		{
			name: "threshold above 100",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Voice.Threshold = 101
				return cfg
			},
			wantErr: true,
		},
		{
			name: "synonyms for unknown action",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Voice.ExtraSynonyms = map[string][]string{"TELEPORT": {"beam"}}
				return cfg
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Input.Backend = "uinput"
				return cfg
			},
			wantErr: true,
		},
		{
			name: "zero scroll step",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Input.ScrollStep = 0
				return cfg
			},
			wantErr: true,
		},
		{
			name: "negative scroll step",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Input.ScrollStep = -5
				return cfg
			},
			wantErr: true,
		},
		{
			name: "zero timeout",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Input.TimeoutMs = 0
				return cfg
			},
			wantErr: true,
		},
		{
			name: "bad log level",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Logging.Level = "verbose"
				return cfg
			},
			wantErr: true,
		},
		{
			name: "negative scale is allowed",
			config: func() *Config {
				cfg := getDefaultConfig()
				cfg.Session.Scale = -1
				return cfg
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.config())
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		slice []string
		item  string
		want  bool
	}{
		{[]string{"xdotool", "log"}, "log", true},
		{[]string{"xdotool", "log"}, "invalid", false},
		{[]string{}, "test", false},
		{[]string{"single"}, "single", true},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got := contains(tt.slice, tt.item); got != tt.want {
				t.Errorf("contains() = %v, want %v", got, tt.want)
			}
		})
	}
}
