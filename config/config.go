package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/treestore/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI style verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Storage backends
const (
	FileBackend   = "file"
	BoltBackend   = "bolt"
	MemoryBackend = "memory"
)

// Document formats
const (
	JSONFormat = "json"
	YAMLFormat = "yaml"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl     = util.InfoLevel
	DefaultStorageDir = "."
	DefaultFileName   = "repository.json"
	DefaultBackend    = FileBackend
	DefaultBoltBucket = "treestore"
	DefaultIndent     = false
)

// Config contains runtime configuration values for a tree repository.
type Config struct {
	LogLvl     util.LogLevel // Internal log level (Default Info)
	StorageDir string        // Directory holding the persisted document (Default ".")
	FileName   string        // Document file name inside StorageDir (Default "repository.json")
	Backend    string        // One of "file", "bolt" or "memory" (Default "file")
	Format     string        // "json" or "yaml"; empty derives it from FileName's extension
	BoltBucket string        // Bucket used by the bolt backend (Default "treestore")
	Indent     bool          // Pretty print JSON documents (Default false)
}

// StoragePath returns the full path of the persisted document
func (c *Config) StoragePath() string {
	return filepath.Join(c.StorageDir, c.FileName)
}

// DocumentFormat returns Format or, when unset, the format implied by FileName.
// Anything that is not a yaml extension is treated as json.
func (c *Config) DocumentFormat() string {
	if c.Format != "" {
		return c.Format
	}
	switch strings.ToLower(filepath.Ext(c.FileName)) {
	case ".yaml", ".yml":
		return YAMLFormat
	default:
		return JSONFormat
	}
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace); out of range values are clamped
	LogLvl     *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	StorageDir *string `yaml:"storage_dir,omitempty" json:"storage_dir,omitempty"`
	FileName   *string `yaml:"file_name,omitempty" json:"file_name,omitempty"`
	Backend    *string `yaml:"backend,omitempty" json:"backend,omitempty"`
	Format     *string `yaml:"format,omitempty" json:"format,omitempty"`
	BoltBucket *string `yaml:"bolt_bucket,omitempty" json:"bolt_bucket,omitempty"`
	Indent     *bool   `yaml:"indent,omitempty" json:"indent,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:     DefaultLogLvl,
		StorageDir: DefaultStorageDir,
		FileName:   DefaultFileName,
		Backend:    DefaultBackend,
		BoltBucket: DefaultBoltBucket,
		Indent:     DefaultIndent,
	}
}

// NewConfig creates a Config from defaults with override applied.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = verbosityToLevel(*override.LogLvl)
	}
	if override.StorageDir != nil {
		c.StorageDir = *override.StorageDir
	}
	if override.FileName != nil {
		c.FileName = *override.FileName
	}
	if override.Backend != nil {
		c.Backend = *override.Backend
	}
	if override.Format != nil {
		c.Format = *override.Format
	}
	if override.BoltBucket != nil {
		c.BoltBucket = *override.BoltBucket
	}
	if override.Indent != nil {
		c.Indent = *override.Indent
	}
}

// verbosityToLevel maps 1 (error) .. 5 (trace) onto util log levels
func verbosityToLevel(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(verbose, TraceVerbose))
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
