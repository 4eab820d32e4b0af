package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// dv3kctl config.toml key mapping.
type fileConfig struct {
	Device         string `toml:"device"`
	RateIndex      int    `toml:"rate_index"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Verbose        bool   `toml:"verbose"`
}

// settings is the resolved runtime configuration.
type settings struct {
	// Device is the serial device path; empty means autodetect
	Device string

	// RateIndex selects the RATET table entry
	RateIndex byte

	// Timeout bounds each request/response exchange
	Timeout time.Duration

	Verbose bool
}

func defaultSettings() settings {
	return settings{
		RateIndex: 33, // D-STAR rate table entry
		Timeout:   5 * time.Second,
	}
}

// loadSettings overlays a TOML config file on the defaults; only keys
// present in the file override.
func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("rate_index") {
		if raw.RateIndex < 0 || raw.RateIndex > 0xFF {
			return settings{}, fmt.Errorf("rate_index %d out of range", raw.RateIndex)
		}
		cfg.RateIndex = byte(raw.RateIndex)
	}
	if meta.IsDefined("timeout_seconds") {
		if raw.TimeoutSeconds <= 0 {
			return settings{}, fmt.Errorf("timeout_seconds must be positive, got %d", raw.TimeoutSeconds)
		}
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	return cfg, nil
}
