// Package config loads the toolkit's YAML configuration file into a
// Config struct, the settings cmd/bedrockctl's commands merge with
// their own cobra flags.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a bedrockctl config file.
type Config struct {
	Home    string        `yaml:"home"`
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	CompressionThreshold int    `yaml:"compression_threshold"`
	CompressionMethod    string `yaml:"compression_method"` // "zlib", "snappy", "none"
}

// ClientConfig holds client-side settings. TokenCacheKey is read by
// app.NewWire; the connect command takes its offline name from its own
// --name flag, not from OfflineName.
type ClientConfig struct {
	OfflineName    string `yaml:"offline_name"`
	TokenCacheKey  string `yaml:"token_cache_key"`
	OnlineIdentity bool   `yaml:"online_identity"`
}

// BridgeConfig is parsed from the file; no command reads it yet, and
// the bridge command uses session.DefaultCompressionThreshold.
type BridgeConfig struct {
	CompressionThreshold int `yaml:"compression_threshold"`
}

// LoggingConfig controls internal/logging's Init.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config populated with the same defaults the CLI
// falls back to when no config file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			CompressionThreshold: 256,
			CompressionMethod:    "zlib",
		},
		Client: ClientConfig{
			OfflineName: "Player",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and parses the YAML file at path over top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
