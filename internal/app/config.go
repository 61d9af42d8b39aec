// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/hotunit/internal/unitname"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// SearchPath is the base location unit resources are fetched from.
	SearchPath string `hcl:"search_path,optional" toml:"search_path" yaml:"search_path"`
	// Preload lists the units loaded on startup. Empty means every unit
	// found under SearchPath.
	Preload []string `hcl:"preload,optional" toml:"preload" yaml:"preload"`

	LogFormat       string `hcl:"log_format,optional" toml:"log_format" yaml:"log_format"`
	LogLevel        string `hcl:"log_level,optional" toml:"log_level" yaml:"log_level"`
	HealthcheckPort int    `hcl:"healthcheck_port,optional" toml:"healthcheck_port" yaml:"healthcheck_port"`
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SearchPath == "" {
		return nil, errors.New("SearchPath is a required configuration field and cannot be empty")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	for _, name := range cfg.Preload {
		if err := unitname.Validate(name); err != nil {
			return nil, fmt.Errorf("invalid preload entry: %w", err)
		}
	}

	return &cfg, nil
}
