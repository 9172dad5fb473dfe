// Package config loads lacewing.yaml, the toolchain-wide configuration
// file read by cmd/lacewing (which passes its debug-info setting on to
// the internal/rpc server it starts).
//
// Modeled on funxy's internal/ext.Config (a struct of yaml-tagged fields
// decoded with gopkg.in/yaml.v3) and on its internal/config/constants.go
// (a small set of named defaults a Config falls back to when a field is
// left unset).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults mirror funxy's internal/config/constants.go pattern: named
// constants a zero-value Config field falls back to, rather than
// scattering literal defaults across call sites.
const (
	DefaultCachePath = "lacewing-cache.db"
	DefaultServeAddr = "127.0.0.1:7700"
	DefaultDebugInfo = true
)

// Config is lacewing.yaml's top-level shape.
type Config struct {
	// DebugInfo enables per-chunk line tables and upvalue names (spec
	// §4.2's DebugInfo). Defaults to DefaultDebugInfo when the key is
	// absent from the file.
	DebugInfo *bool `yaml:"debug_info,omitempty"`

	// CachePath is the SQLite file internal/store uses for the
	// compiled-program cache.
	CachePath string `yaml:"cache_path,omitempty"`

	// ServeAddr is the listen address `lacewing serve` binds by default.
	ServeAddr string `yaml:"serve_addr,omitempty"`

	// Color is read from the file and defaults to "auto", but nothing
	// consults it: internal/buildinfo decides colorization from NO_COLOR
	// and whether stdout is a terminal, so "always" and "never" have no
	// effect.
	Color string `yaml:"color,omitempty"`
}

// Load reads and parses the YAML file at path. A missing file is not an
// error: Default() is returned instead, matching a toolchain that works
// with zero configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

// Default returns a Config with every field at its named default.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DebugInfo == nil {
		v := DefaultDebugInfo
		c.DebugInfo = &v
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath
	}
	if c.ServeAddr == "" {
		c.ServeAddr = DefaultServeAddr
	}
	if c.Color == "" {
		c.Color = "auto"
	}
}

// WantsDebugInfo reports whether the compiler should be built with
// debugInfo enabled, per this config.
func (c *Config) WantsDebugInfo() bool {
	return c.DebugInfo == nil || *c.DebugInfo
}
