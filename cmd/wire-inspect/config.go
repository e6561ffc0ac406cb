// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds wire-inspect defaults loaded from a YAML file. Flags
// override config values; config values override built-in defaults.
type Config struct {
	// Format is the default payload rendering: hex, diag, or json.
	Format string `yaml:"format"`

	// MaxPayloadDump caps the number of payload bytes rendered per
	// record in hex and diag output. 0 means no cap.
	MaxPayloadDump int `yaml:"max_payload_dump"`
}

// defaultConfig is used when no config file is given.
func defaultConfig() Config {
	return Config{Format: "hex"}
}

// loadConfig reads the config file named by --config or the
// WIRE_INSPECT_CONFIG environment variable. An empty path with no
// environment variable returns the defaults — there is no fallback
// discovery.
func loadConfig(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("WIRE_INSPECT_CONFIG")
	}
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if config.Format == "" {
		config.Format = "hex"
	}
	switch config.Format {
	case "hex", "diag", "json":
	default:
		return config, fmt.Errorf("config %s: unknown format %q", path, config.Format)
	}
	return config, nil
}
