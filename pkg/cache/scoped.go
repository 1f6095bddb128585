package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tools or
// deployments can share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "itemshuffle:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FillKey generates a prefixed placement key.
func (k *ScopedKeyer) FillKey(worldHash string, opts FillKeyOpts) string {
	return k.prefix + k.inner.FillKey(worldHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(fillHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(fillHash, opts)
}
