package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/logger"
)

// DeviceConfig stores per-device settings.
type DeviceConfig struct {
	Nickname string `yaml:"nickname,omitempty"`
	WiFiIP   string `yaml:"wifi_ip,omitempty"`
	WiFiPort int    `yaml:"wifi_port,omitempty"`
}

// NATSConfig configures event publishing. Publishing is off when URL is empty.
type NATSConfig struct {
	URL           string `yaml:"url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	ADBPath    string                  `yaml:"adb_path"`
	ServerAddr string                  `yaml:"server_addr"`
	TrackLong  bool                    `yaml:"track_long"`
	History    bool                    `yaml:"history"`
	Log        logger.Config           `yaml:"log,omitempty"`
	NATS       NATSConfig              `yaml:"nats,omitempty"`
	Devices    map[string]DeviceConfig `yaml:"devices,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ADBPath:    "adb",
		ServerAddr: adb.DefaultAddr,
		TrackLong:  true,
		History:    true,
		Log:        logger.Config{Level: "info", Output: "stderr"},
		NATS:       NATSConfig{SubjectPrefix: "questwatch.devices"},
		Devices:    make(map[string]DeviceConfig),
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "questwatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "questwatch")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Devices == nil {
		cfg.Devices = make(map[string]DeviceConfig)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := ConfigPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Nickname returns the configured nickname for serial, or "".
func (c *Config) Nickname(serial string) string {
	return c.Devices[serial].Nickname
}

// TrackRequest returns the adb request used to follow the device list.
func (c *Config) TrackRequest() string {
	if c.TrackLong {
		return "host:track-devices-l"
	}
	return "host:track-devices"
}
