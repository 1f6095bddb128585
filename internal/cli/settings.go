package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/itemshuffle/pkg/config"
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/world"
)

// settingsFlags are the generation settings shared by several commands.
// Command-line values override the settings file.
type settingsFlags struct {
	file           string
	seed           uint64
	attempts       int
	workers        int
	flags          []string
	values         []string
	retainDisabled bool
}

func (s *settingsFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.file, "settings", "", "TOML settings file")
	f.Uint64Var(&s.seed, "seed", 0, "random seed (default from settings, then 42)")
	f.IntVar(&s.attempts, "attempts", 0, "maximum number of fill attempts")
	f.IntVar(&s.workers, "workers", 0, "number of attempts run in parallel")
	f.StringArrayVar(&s.flags, "flag", nil, "enable a flag; name=false disables it (repeatable)")
	f.StringArrayVar(&s.values, "value", nil, "set a named value as key=value (repeatable)")
	f.BoolVar(&s.retainDisabled, "retain-disabled", false, "keep disabled routes as markers instead of dropping them")
}

// load reads the settings file, if any, and applies the command-line
// overrides.
func (s *settingsFlags) load() (config.Config, error) {
	var c config.Config
	if s.file != "" {
		loaded, err := config.LoadFile(s.file)
		if err != nil {
			return c, err
		}
		c = *loaded
	}
	if s.seed != 0 {
		c.Seed = s.seed
	}
	if s.attempts != 0 {
		c.Attempts = s.attempts
	}
	if s.workers != 0 {
		c.Workers = s.workers
	}
	if s.retainDisabled {
		c.RetainDisabled = true
	}
	for _, raw := range s.flags {
		name, on, err := parseFlag(raw)
		if err != nil {
			return c, err
		}
		c.Set(name, on)
	}
	for _, raw := range s.values {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return c, errors.New(errors.ErrCodeInvalidConfig, "value must be key=value: %q", raw)
		}
		if c.Values == nil {
			c.Values = make(map[string]string)
		}
		c.Values[key] = value
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// parseFlag parses "name" or "name=bool".
func parseFlag(raw string) (string, bool, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return name, true, nil
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		return "", false, errors.New(errors.ErrCodeInvalidConfig, "flag %q: value must be a boolean", name)
	}
	return name, on, nil
}

// readWorld validates the path and reads the world file.
func readWorld(path string) (*world.World, []byte, error) {
	if err := errors.ValidateWorldFile(path); err != nil {
		return nil, nil, err
	}
	return world.LoadFile(path)
}
