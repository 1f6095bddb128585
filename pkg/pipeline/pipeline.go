// Package pipeline runs the generation pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// A run has four stages:
//
//  1. Load: decode the YAML world and build its logic graph under the flags
//  2. Integrate: reduce the graph to per-slot item requirements
//  3. Fill: run placement attempts until one succeeds
//  4. Verify: replay the placement from an empty inventory
//
// Attempts run concurrently. Attempt n uses a seed derived from the base
// seed and n, and the lowest successful attempt wins, so the result depends
// only on the world, the flags and the seed.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{World: data}
//	opts.Seed = 1234
//	result, err := runner.Generate(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := runner.Render(ctx, result, pipeline.FormatText)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/itemshuffle/pkg/cache"
	"github.com/matzehuels/itemshuffle/pkg/config"
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/logic/integrate"
	"github.com/matzehuels/itemshuffle/pkg/reach"
	"github.com/matzehuels/itemshuffle/pkg/spoiler"
)

// Format constants for rendered output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json, dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one generation. The embedded
// settings supply the seed, attempt budget and flags; its fields are
// promoted in JSON.
type Options struct {
	config.Config

	// World is the YAML world description.
	World []byte `json:"world"`

	// Refresh skips the cache lookup.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it again has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.World) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "world is required")
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	o.Config.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// FillKeyOpts returns cache key options for a placement.
func (o *Options) FillKeyOpts() cache.FillKeyOpts {
	return cache.FillKeyOpts{
		Seed:           o.Seed,
		Attempts:       o.Attempts,
		Flags:          o.Flags,
		Values:         o.Values,
		RetainDisabled: o.RetainDisabled,
	}
}

// flags returns the settings as logic flags.
func (o *Options) flags() logic.Flags { return &o.Config }

// =============================================================================
// Results
// =============================================================================

// Prepared is a world that has been loaded and integrated.
type Prepared struct {
	Name      string
	WorldHash string
	Graph     *logic.Graph
	Logic     *integrate.Result
}

// Result contains the outputs of a generation.
type Result struct {
	*Prepared

	// RunID identifies this run in logs and API responses.
	RunID string

	Seed uint64

	// Attempt is the number of the successful attempt; AttemptSeed the
	// seed it ran with.
	Attempt     int
	AttemptSeed uint64

	Filling reach.Filling

	// Placements maps slot to item.
	Placements map[logic.NodeID]logic.NodeID

	Stats    Stats
	CacheHit bool

	key string
}

// Stats contains timing information.
type Stats struct {
	Nodes         int
	Slots         int
	Items         int
	Unreachable   int
	IntegrateTime time.Duration
	FillTime      time.Duration
}

// Spoiler returns the spoiler log of the result, in slot order.
func (r *Result) Spoiler() spoiler.Log {
	return spoiler.Log{
		World:   r.Name,
		Seed:    r.Seed,
		Attempt: r.Attempt,
		Entries: spoiler.Build(r.Logic, r.Filling),
	}
}

// record is the cached form of a result.
type record struct {
	Attempt     int           `json:"attempt"`
	AttemptSeed uint64        `json:"attempt_seed"`
	Filling     reach.Filling `json:"filling"`
}

func (r *Result) String() string {
	return fmt.Sprintf("%s seed=%d attempt=%d", r.Name, r.Seed, r.Attempt)
}
