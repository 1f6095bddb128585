package logic

// Flags exposes the randomizer settings consulted while edges and
// requirements are assembled. The graph never owns its flags; they are
// supplied per call.
type Flags interface {
	// Enabled reports whether the named boolean flag is on.
	Enabled(name string) bool
	// Value returns the named enum setting, or "" when unset.
	Value(name string) string
}

// StaticFlags is a map-backed Flags implementation.
type StaticFlags struct {
	Bools  map[string]bool
	Values map[string]string
}

// Enabled implements Flags.
func (f StaticFlags) Enabled(name string) bool { return f.Bools[name] }

// Value implements Flags.
func (f StaticFlags) Value(name string) string { return f.Values[name] }

// NoFlags has every flag disabled.
var NoFlags Flags = StaticFlags{}
