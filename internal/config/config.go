package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when no flag, env var, or config file sets a field.
const (
	DefaultListen   = "127.0.0.1:17872"
	DefaultService  = "pulsedeck"
	DefaultLogLevel = "info"
)

type Config struct {
	Listen   string `yaml:"listen"`
	Token    string `yaml:"token"`
	Service  string `yaml:"service"`
	LogLevel string `yaml:"log_level"`
}

// Load resolves configuration from flags > env > config file.
func Load(flagListen, flagToken, flagService, flagLogLevel string) (*Config, error) {
	cfg := &Config{}

	// 1. Load config file as base
	if cfgPath := configFilePath(); cfgPath != "" {
		if data, err := os.ReadFile(cfgPath); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	// 2. Environment variables override config file
	if v := os.Getenv("PULSEDECK_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PULSEDECK_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("PULSEDECK_SERVICE"); v != "" {
		cfg.Service = v
	}
	if v := os.Getenv("PULSEDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// 3. CLI flags override everything
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}
	if flagService != "" {
		cfg.Service = flagService
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	// Defaults. The token stays empty unless configured: the bridge
	// binds to loopback, and enforcing a token is the shell's choice.
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return cfg, nil
}

func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".pulsedeck", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
