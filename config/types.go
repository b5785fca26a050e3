package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Config is the rnsgit tool configuration.
type Config struct {
	Git      GitConfig      `yaml:"git,omitempty" toml:"git,omitempty"`
	Archiver ArchiverConfig `yaml:"archiver,omitempty" toml:"archiver,omitempty"`
	// Timeout bounds every external tool invocation, as a Go duration.
	Timeout string       `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Pack    PackConfig   `yaml:"pack,omitempty" toml:"pack,omitempty"`
	Commit  CommitConfig `yaml:"commit,omitempty" toml:"commit,omitempty"`

	// Extensions captures all other top-level keys (e.g. logging).
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`
}

// GitConfig selects the version-control binary.
type GitConfig struct {
	Binary string `yaml:"binary,omitempty" toml:"binary,omitempty"`
}

// ArchiverConfig selects how archives are expanded and built.
type ArchiverConfig struct {
	// Kind is "auto", "7z" or "zip".
	Kind   string `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Binary string `yaml:"binary,omitempty" toml:"binary,omitempty"`
}

// PackConfig tunes which working-directory files go into the archive.
type PackConfig struct {
	// Exclude lists patterns excluded on top of hidden entries.
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// CommitConfig holds commit message defaults.
type CommitConfig struct {
	InitialMessage string `yaml:"initial_message,omitempty" toml:"initial_message,omitempty"`
}

// Archiver kinds
const (
	ArchiverAuto     = "auto"
	ArchiverSevenZip = "7z"
	ArchiverZip      = "zip"
)

const (
	DefaultGitBinary      = "git"
	DefaultArchiverBinary = "7z"
	DefaultTimeout        = "2m"
	DefaultInitialMessage = "New"
)

var knownKeys = map[string]bool{
	"git":      true,
	"archiver": true,
	"timeout":  true,
	"pack":     true,
	"commit":   true,
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Git.Binary == "" {
		c.Git.Binary = DefaultGitBinary
	}
	if c.Archiver.Kind == "" {
		c.Archiver.Kind = ArchiverAuto
	}
	if c.Archiver.Binary == "" {
		c.Archiver.Binary = DefaultArchiverBinary
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.Commit.InitialMessage == "" {
		c.Commit.InitialMessage = DefaultInitialMessage
	}
}

// TimeoutDuration parses Timeout, falling back to the default on empty input.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	value := c.Timeout
	if value == "" {
		value = DefaultTimeout
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
	}
	return d, nil
}

// UnmarshalExtension decodes the extension section named key into target,
// which must be a pointer. A missing section leaves target untouched.
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
