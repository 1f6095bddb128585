package requirement

// Builder accumulates a requirement incrementally. It is used when one target
// has several independently computed partial requirements that must be
// combined before being frozen into an immutable [Requirement].
//
// The zero value is an empty builder whose frozen form is [Never].
type Builder struct {
	terms Requirement
}

// AddAll ORs r into the accumulated requirement.
func (b *Builder) AddAll(r Requirement) {
	b.terms = append(b.terms, r...)
}

// AddRoute ORs a single conjunction into the accumulated requirement.
func (b *Builder) AddRoute(conds ...Condition) {
	b.terms = append(b.terms, Of(conds...))
}

// Restrict ANDs r against everything accumulated so far. Restricting an empty
// builder leaves it empty.
func (b *Builder) Restrict(r Requirement) {
	if len(b.terms) == 0 {
		return
	}
	b.terms = And(b.terms, r)
}

// Len returns the number of accumulated conjunctions before absorption.
func (b *Builder) Len() int { return len(b.terms) }

// Freeze returns the canonical form of the accumulated requirement.
// The builder remains usable.
func (b *Builder) Freeze() Requirement {
	return Canonicalize(b.terms)
}
