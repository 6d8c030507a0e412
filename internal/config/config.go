// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the configuration of the shadergraph command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables read by Load, e.g.
// SHADERGRAPH_DRY_RUN=true.
const EnvPrefix = "SHADERGRAPH_"

// DefaultFile is the configuration file read when --config is not given.
// A missing default file is not an error.
const DefaultFile = "shadergraph.toml"

// Config holds all configuration for the command.
type Config struct {
	Backend    string   `koanf:"backend"`
	DryRun     bool     `koanf:"dry-run"`
	Programs   []string `koanf:"program"`
	Textures   []string `koanf:"texture"`
	Width      int      `koanf:"width"`
	Height     int      `koanf:"height"`
	Frames     int      `koanf:"frames"`
	FPS        int      `koanf:"fps"`
	VisitLimit int      `koanf:"visit-limit"`
	Watch      bool     `koanf:"watch"`
	Debug      bool     `koanf:"debug"`
	Output     string   `koanf:"output"`
	LogLevel   string   `koanf:"log-level"`
	Config     string   `koanf:"config"`
}

func defaults() map[string]any {
	return map[string]any{
		"backend":     "native",
		"dry-run":     false,
		"program":     []string{},
		"texture":     []string{},
		"width":       1280,
		"height":      720,
		"frames":      60,
		"fps":         60,
		"visit-limit": 0,
		"watch":       false,
		"debug":       false,
		"output":      "",
		"log-level":   "info",
		"config":      DefaultFile,
	}
}

// NewFlagSet returns the command's flags, named after the config keys.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("backend", "native", "backend to run on (native, recording)")
	f.Bool("dry-run", false, "record backend calls instead of touching the GPU")
	f.StringSlice("program", nil, "WGSL program file to chain, in order (repeatable)")
	f.StringSlice("texture", nil, "image file to load into the texture library (repeatable)")
	f.Int("width", 1280, "render width in pixels")
	f.Int("height", 720, "render height in pixels")
	f.Int("frames", 60, "frames to run, 0 runs until interrupted")
	f.Int("fps", 60, "frame rate limit, 0 runs unthrottled")
	f.Int("visit-limit", 0, "program visits per run before a flow cycle is reported (0: node count)")
	f.Bool("watch", false, "recompile programs when their files change")
	f.Bool("debug", false, "panic on structural errors")
	f.String("output", "", "write the last screen frame to this PNG file")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.StringP("config", "c", DefaultFile, "configuration file")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// 2. Config file. Only an explicitly named file must exist.
	path, explicit := DefaultFile, false
	if f != nil && f.Lookup("config") != nil && f.Changed("config") {
		path, _ = f.GetString("config")
		explicit = true
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// 3. Environment variables: SHADERGRAPH_VISIT_LIMIT sets visit-limit.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration values the command cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Width < 1 || c.Height < 1 {
		errs = append(errs, fmt.Errorf("config: render size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("config: frames %d must not be negative", c.Frames))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("config: fps %d must not be negative", c.FPS))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// BackendName is the backend to open: "recording" in dry-run mode, else
// Backend.
func (c *Config) BackendName() string {
	if c.DryRun {
		return "recording"
	}
	return c.Backend
}

// mapProvider serves a map as a koanf provider.
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}
