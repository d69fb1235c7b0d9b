package compiler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/nanotemplates/expr"
	"github.com/byte4ever/nanotemplates/loader"
	"github.com/byte4ever/nanotemplates/runtime"
)

// Cache defaults.
const (
	DefaultCacheSize   = 1000
	DefaultCacheMaxAge = 5 * time.Minute
)

// CacheConfig tunes the compiled template cache. Zero fields
// take the defaults.
type CacheConfig struct {
	// Size is the maximum number of cached templates.
	Size int

	// MaxAge is how long a template stays cached.
	MaxAge time.Duration
}

func (cc *CacheConfig) withDefaults() (int, time.Duration) {
	size, maxAge := cc.Size, cc.MaxAge

	if size <= 0 {
		size = DefaultCacheSize
	}

	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}

	return size, maxAge
}

// Config holds compiler settings.
type Config struct {
	// Basedir is the template root used when Loader is nil.
	Basedir string

	// Loader overrides the default file system loader.
	Loader loader.Loader

	// Cache enables result caching when non-nil.
	Cache *CacheConfig

	// StripComments drops HTML comments from the output.
	StripComments bool

	// Globals are bound under the render data of every
	// template; data keys shadow them.
	Globals map[string]any

	// Engine compiles expressions; HCL when nil.
	Engine expr.Engine

	// Library holds helper functions for expressions;
	// runtime.Stdlib when nil.
	Library *runtime.Library

	// Logger receives debug events; slog.Default when nil.
	Logger *slog.Logger
}

// fileConfig mirrors the YAML configuration file.
type fileConfig struct {
	Basedir       string         `yaml:"basedir"`
	StripComments bool           `yaml:"strip_comments"`
	Globals       map[string]any `yaml:"globals"`
	Cache         cacheSetting   `yaml:"cache"`
}

// cacheSetting accepts either a boolean or a
// {size, max_age} mapping.
type cacheSetting struct {
	enabled bool
	size    int
	maxAge  time.Duration
}

// UnmarshalYAML decodes the boolean or mapping form.
func (cs *cacheSetting) UnmarshalYAML(data []byte) error {
	const errCtx = "decoding cache setting"

	var enabled bool
	if err := yaml.Unmarshal(data, &enabled); err == nil {
		cs.enabled = enabled
		return nil
	}

	var tuning struct {
		Size   int    `yaml:"size"`
		MaxAge string `yaml:"max_age"`
	}

	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cs.enabled = true
	cs.size = tuning.Size

	if tuning.MaxAge != "" {
		maxAge, err := time.ParseDuration(tuning.MaxAge)
		if err != nil {
			return fmt.Errorf("%s: max_age: %w", errCtx, err)
		}

		cs.maxAge = maxAge
	}

	return nil
}

// LoadConfig reads a YAML configuration file. A relative
// basedir is taken relative to the file's directory.
func LoadConfig(path string) (Config, error) {
	const errCtx = "loading config"

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return Config{}, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	cfg := Config{
		Basedir:       fc.Basedir,
		StripComments: fc.StripComments,
		Globals:       fc.Globals,
	}

	if cfg.Basedir != "" && !filepath.IsAbs(cfg.Basedir) {
		cfg.Basedir = filepath.Join(filepath.Dir(path), cfg.Basedir)
	}

	if fc.Cache.enabled {
		cfg.Cache = &CacheConfig{
			Size:   fc.Cache.size,
			MaxAge: fc.Cache.maxAge,
		}
	}

	return cfg, nil
}
