package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// FillKey identifies one generated placement.
	FillKey(worldHash string, opts FillKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a placement.
	ArtifactKey(fillHash string, opts ArtifactKeyOpts) string
}

// FillKeyOpts holds every input besides the world that shapes a placement.
type FillKeyOpts struct {
	Seed           uint64            `json:"seed"`
	Attempts       int               `json:"attempts"`
	Flags          map[string]bool   `json:"flags,omitempty"`
	Values         map[string]string `json:"values,omitempty"`
	RetainDisabled bool              `json:"retain_disabled,omitempty"`
}

// ArtifactKeyOpts describes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FillKey implements Keyer. Map inputs are hashed in sorted key order, so
// equal flag sets always produce equal keys.
func (DefaultKeyer) FillKey(worldHash string, opts FillKeyOpts) string {
	return hashKey("fill", worldHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(fillHash string, opts ArtifactKeyOpts) string {
	return fmt.Sprintf("artifact:%s:%s", opts.Format, fillHash)
}
