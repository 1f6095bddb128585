package requirement

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Condition is an atomic condition. Positive values name a flag (in practice a
// graph node id); a negative value is the logical negation of its positive
// counterpart. Zero is not a valid condition.
type Condition int32

// Not returns the negation of c.
func (c Condition) Not() Condition { return -c }

// Negated reports whether c is a negated condition.
func (c Condition) Negated() bool { return c < 0 }

// Conjunction is the logical AND of its conditions. A normalized conjunction
// is sorted ascending with no duplicates; [Of] and [Canonicalize] produce
// normalized conjunctions. The empty conjunction is always true.
//
// Conjunctions are treated as immutable: no function in this package modifies
// a conjunction it receives.
type Conjunction []Condition

// Of returns a normalized conjunction of conds. The input is not modified.
func Of(conds ...Condition) Conjunction {
	c := make(Conjunction, len(conds))
	copy(c, conds)
	slices.Sort(c)
	return slices.Compact(c)
}

// Has reports whether the normalized conjunction contains x.
func (c Conjunction) Has(x Condition) bool {
	_, ok := slices.BinarySearch(c, x)
	return ok
}

// Without returns c with x removed.
func (c Conjunction) Without(x Condition) Conjunction {
	out := make(Conjunction, 0, len(c))
	for _, a := range c {
		if a != x {
			out = append(out, a)
		}
	}
	return out
}

// SubsetOf reports whether every condition of c is in o. Both must be normalized.
func (c Conjunction) SubsetOf(o Conjunction) bool {
	if len(c) > len(o) {
		return false
	}
	j := 0
	for _, a := range c {
		for j < len(o) && o[j] < a {
			j++
		}
		if j == len(o) || o[j] != a {
			return false
		}
		j++
	}
	return true
}

// Merge returns the normalized union of two normalized conjunctions.
func Merge(a, b Conjunction) Conjunction {
	out := make(Conjunction, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func compareConj(a, b Conjunction) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return slices.Compare(a, b)
}

// Requirement is a disjunction of conjunctions (DNF). It is satisfied when any
// one of its conjunctions is. A Requirement with no conjunctions can never be
// satisfied; one holding the empty conjunction is always satisfied.
type Requirement []Conjunction

// Always returns the requirement that is always satisfied.
func Always() Requirement { return Requirement{Conjunction{}} }

// Never returns the requirement that can never be satisfied.
func Never() Requirement { return nil }

// Route returns the canonical requirement holding the single conjunction conds.
func Route(conds ...Condition) Requirement { return Requirement{Of(conds...)} }

// Canonicalize normalizes every conjunction and applies absorption: duplicate
// conjunctions and conjunctions that are supersets of another conjunction are
// dropped. The result is sorted by length, then lexicographically, so two
// logically equal inputs built from the same conjunctions produce identical
// output. Canonicalize is idempotent.
func Canonicalize(r Requirement) Requirement {
	if len(r) == 0 {
		return nil
	}
	norm := make(Requirement, len(r))
	for i, c := range r {
		norm[i] = Of(c...)
	}
	slices.SortFunc(norm, compareConj)

	out := norm[:0:0]
	for _, c := range norm {
		absorbed := false
		for _, k := range out {
			if k.SubsetOf(c) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			out = append(out, c)
		}
	}
	return out
}

// And returns the conjunction of the given requirements: the cartesian product
// of their conjunctions, canonicalized. And() is [Always].
func And(rs ...Requirement) Requirement {
	acc := Always()
	for _, r := range rs {
		if len(r) == 0 {
			return nil
		}
		next := make(Requirement, 0, len(acc)*len(r))
		for _, a := range acc {
			for _, b := range r {
				next = append(next, Merge(a, Of(b...)))
			}
		}
		acc = Canonicalize(next)
	}
	return acc
}

// Or returns the disjunction of the given requirements, canonicalized.
// Or() is [Never].
func Or(rs ...Requirement) Requirement {
	var all Requirement
	for _, r := range rs {
		all = append(all, r...)
	}
	return Canonicalize(all)
}

// Substitute replaces every occurrence of x in r by repl: each conjunction
// mentioning x becomes (conjunction without x) AND repl. Conjunctions that do
// not mention x are kept. The result is canonical.
func Substitute(r Requirement, x Condition, repl Requirement) Requirement {
	if !r.Mentions(x) {
		return r
	}
	parts := make([]Requirement, 0, len(r))
	for _, c := range r {
		c = Of(c...)
		if !c.Has(x) {
			parts = append(parts, Requirement{c})
			continue
		}
		parts = append(parts, And(Requirement{c.Without(x)}, repl))
	}
	return Or(parts...)
}

// Drop returns r without the conjunctions that mention x.
func (r Requirement) Drop(x Condition) Requirement {
	var out Requirement
	for _, c := range r {
		if !slices.Contains(c, x) {
			out = append(out, c)
		}
	}
	return out
}

// Mentions reports whether any conjunction of r contains x.
func (r Requirement) Mentions(x Condition) bool {
	for _, c := range r {
		if slices.Contains(c, x) {
			return true
		}
	}
	return false
}

// Atoms returns every condition mentioned by r, sorted and deduplicated.
func (r Requirement) Atoms() []Condition {
	var out []Condition
	for _, c := range r {
		out = append(out, c...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// IsNever reports whether r can never be satisfied.
func (r Requirement) IsNever() bool { return len(r) == 0 }

// IsAlways reports whether r contains the empty conjunction.
func (r Requirement) IsAlways() bool {
	for _, c := range r {
		if len(c) == 0 {
			return true
		}
	}
	return false
}

// Equal reports whether r and o are identical conjunction lists. Compare
// canonical forms to test logical equivalence.
func (r Requirement) Equal(o Requirement) bool {
	return slices.EqualFunc(r, o, func(a, b Conjunction) bool { return slices.Equal(a, b) })
}

// Format renders r as "a & b | c" using name for positive conditions.
// Negated conditions are prefixed with "!". Never renders as "never" and the
// empty conjunction as "always".
func (r Requirement) Format(name func(Condition) string) string {
	if len(r) == 0 {
		return "never"
	}
	terms := make([]string, len(r))
	for i, c := range r {
		if len(c) == 0 {
			terms[i] = "always"
			continue
		}
		atoms := make([]string, len(c))
		for j, a := range c {
			if a.Negated() {
				atoms[j] = "!" + name(a.Not())
			} else {
				atoms[j] = name(a)
			}
		}
		terms[i] = strings.Join(atoms, " & ")
	}
	return strings.Join(terms, " | ")
}

// String renders r with numeric condition names.
func (r Requirement) String() string {
	return r.Format(func(c Condition) string { return strconv.Itoa(int(c)) })
}
