package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/itemshuffle/pkg/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`
seed = 1234
attempts = 7

[flags]
guarantee-magic = true
open-world = false

[values]
story = "fast"
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 1234 || c.Attempts != 7 {
		t.Errorf("seed/attempts = %d/%d", c.Seed, c.Attempts)
	}
	if c.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want default %d", c.Workers, DefaultWorkers)
	}
	if !c.Enabled("guarantee-magic") || c.Enabled("open-world") || c.Enabled("missing") {
		t.Errorf("Enabled() = %v", c.Flags)
	}
	if got := c.Value("story"); got != "fast" {
		t.Errorf("Value(story) = %q", got)
	}
	if got := c.EnabledFlags(); !slices.Equal(got, []string{"guarantee-magic"}) {
		t.Errorf("EnabledFlags() = %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `seed = `},
		{"unknown key", `speed = 3`},
		{"negative attempts", `attempts = -1`},
		{"too many attempts", `attempts = 1000000`},
		{"negative workers", `workers = -2`},
		{"bad flag name", "[flags]\n\" padded\" = true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.Seed != DefaultSeed || c.Attempts != DefaultAttempts || c.Workers != DefaultWorkers {
		t.Errorf("defaults = %+v", c)
	}
	c.Seed = 9
	c.SetDefaults()
	if c.Seed != 9 {
		t.Error("SetDefaults overwrote an explicit seed")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("seed = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 5 {
		t.Errorf("Seed = %d", c.Seed)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadFile(missing) error = %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := &Config{Seed: 3}
	c.Set("open-world", true)
	c.SetDefaults()
	data, err := c.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(%s): %v", data, err)
	}
	if back.Seed != 3 || !back.Enabled("open-world") {
		t.Errorf("round trip = %+v", back)
	}
}
