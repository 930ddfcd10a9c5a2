// Package config loads the staffgrid settings file. Settings live in
// config.yaml inside the data directory; a missing file means defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr  = "127.0.0.1:7420"
	DefaultWeekHorizon = 12
	DefaultColumnWidth = 8
	DefaultOverscan    = 2
	DefaultFlushMS     = 40
)

// Config models config.yaml.
type Config struct {
	// ListenAddr is where `staffgrid serve` binds, and the default server
	// a remote TUI connects to.
	ListenAddr string `yaml:"listen_addr"`

	// Department limits the grid to one team; empty shows everyone.
	Department string `yaml:"department,omitempty"`

	// WeekHorizon is the number of week columns loaded into a session.
	WeekHorizon int `yaml:"week_horizon"`

	// ColumnWidth and Overscan shape the grid's horizontal virtualization.
	ColumnWidth int `yaml:"column_width"`
	Overscan    int `yaml:"overscan"`

	// FlushDelayMS is the coalescing window for incoming change events.
	FlushDelayMS int `yaml:"flush_delay_ms"`
}

func Default() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		WeekHorizon:  DefaultWeekHorizon,
		ColumnWidth:  DefaultColumnWidth,
		Overscan:     DefaultOverscan,
		FlushDelayMS: DefaultFlushMS,
	}
}

// Path returns the on-disk location of the settings file under dir.
func Path(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// Load reads config.yaml from dir. A missing file returns defaults; a
// malformed or invalid file is an error.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to dir/config.yaml, creating dir if needed.
func Save(dir string, cfg Config) error {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// FlushDelay returns the coalescing window as a duration.
func (c Config) FlushDelay() time.Duration {
	return time.Duration(c.FlushDelayMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	c.Department = strings.TrimSpace(c.Department)
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.WeekHorizon == 0 {
		c.WeekHorizon = DefaultWeekHorizon
	}
	if c.ColumnWidth == 0 {
		c.ColumnWidth = DefaultColumnWidth
	}
	if c.Overscan == 0 {
		c.Overscan = DefaultOverscan
	}
	if c.FlushDelayMS == 0 {
		c.FlushDelayMS = DefaultFlushMS
	}
}

func (c Config) validate() error {
	if c.WeekHorizon < 1 {
		return fmt.Errorf("week_horizon must be >= 1")
	}
	if c.ColumnWidth < 4 {
		return fmt.Errorf("column_width must be >= 4")
	}
	if c.Overscan < 0 {
		return fmt.Errorf("overscan must be >= 0")
	}
	if c.FlushDelayMS < 0 {
		return fmt.Errorf("flush_delay_ms must be >= 0")
	}
	return nil
}
