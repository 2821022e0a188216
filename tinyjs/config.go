package tinyjs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of an engine created by NewFromConfig.
type Config struct {
	MemorySize int     `yaml:"memory_size" toml:"memory_size"` // arena bytes
	GCRatio    float64 `yaml:"gc_ratio" toml:"gc_ratio"`       // collect above this fraction of the arena
	MaxDepth   int     `yaml:"max_depth" toml:"max_depth"`     // 0 means unlimited
	TraceLevel string  `yaml:"trace_level" toml:"trace_level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		MemorySize: 64 << 10,
		GCRatio:    0.75,
		MaxDepth:   10000,
		TraceLevel: "Error",
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file. Fields missing
// from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unknown config format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the settings can create an engine.
func (c Config) Validate() error {
	if c.MemorySize < objSize {
		return fmt.Errorf("memory_size %d: %w", c.MemorySize, ErrBufferTooSmall)
	}
	if c.GCRatio <= 0 || c.GCRatio > 1 {
		return fmt.Errorf("gc_ratio %g must be in (0, 1]", c.GCRatio)
	}
	if c.MaxDepth < 0 {
		return errors.New("max_depth must not be negative")
	}
	return nil
}

// Options converts the settings into engine options.
func (c Config) Options() []Option {
	return []Option{WithGCRatio(c.GCRatio), WithMaxDepth(c.MaxDepth)}
}

// NewFromConfig allocates an arena of cfg.MemorySize bytes and creates an
// engine over it.
func NewFromConfig(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(make([]byte, cfg.MemorySize), append(cfg.Options(), opts...)...)
}
