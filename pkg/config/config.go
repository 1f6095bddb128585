// Package config loads randomizer settings from TOML.
//
// A settings file looks like:
//
//	seed = 1234
//	attempts = 200
//	workers = 8
//	retain_disabled = false
//
//	[flags]
//	guarantee-magic = true
//	open-world = true
//
//	[values]
//	story = "fast"
//
// [Config] implements [logic.Flags], so a loaded file is passed straight to
// integration.
package config

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/logic"
)

const (
	// DefaultSeed is the seed used when none is given.
	DefaultSeed = uint64(42)

	// DefaultAttempts is the number of fill attempts before giving up.
	DefaultAttempts = 100

	// DefaultWorkers is the number of attempts run concurrently.
	DefaultWorkers = 4

	// MaxAttempts bounds the attempt budget a caller may request.
	MaxAttempts = 100000
)

// Config holds the settings for one generation.
type Config struct {
	Seed           uint64            `toml:"seed" json:"seed,omitempty"`
	Attempts       int               `toml:"attempts" json:"attempts,omitempty"`
	Workers        int               `toml:"workers" json:"workers,omitempty"`
	RetainDisabled bool              `toml:"retain_disabled" json:"retain_disabled,omitempty"`
	Flags          map[string]bool   `toml:"flags" json:"flags,omitempty"`
	Values         map[string]string `toml:"values" json:"values,omitempty"`
}

var _ logic.Flags = (*Config)(nil)

// Enabled implements logic.Flags.
func (c *Config) Enabled(name string) bool { return c.Flags[name] }

// Value implements logic.Flags.
func (c *Config) Value(name string) string { return c.Values[name] }

// SetDefaults fills in zero fields. Calling it twice is harmless.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Attempts == 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.Attempts < 0 || c.Attempts > MaxAttempts {
		return errors.New(errors.ErrCodeInvalidConfig, "attempts must be between 1 and %d, got %d", MaxAttempts, c.Attempts)
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	for name := range c.Flags {
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "flag")
		}
	}
	return nil
}

// EnabledFlags returns the names of the enabled flags, sorted.
func (c *Config) EnabledFlags() []string {
	var out []string
	for _, name := range slices.Sorted(maps.Keys(c.Flags)) {
		if c.Flags[name] {
			out = append(out, name)
		}
	}
	return out
}

// Set turns a flag on or off.
func (c *Config) Set(name string, on bool) {
	if c.Flags == nil {
		c.Flags = make(map[string]bool)
	}
	c.Flags[name] = on
}

// Parse decodes TOML settings, validates them and applies defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown setting %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.SetDefaults()
	return &c, nil
}

// LoadFile reads and parses a TOML settings file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "settings file %s not found", path)
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
