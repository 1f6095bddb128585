// Package requirement implements the requirement algebra: boolean formulas in
// disjunctive normal form over small integer conditions.
//
// # Overview
//
// A [Requirement] reads as "satisfied if ANY of these condition sets is fully
// held". Each [Conjunction] is one such set. Two special values bound the
// algebra:
//
//   - [Always]: a single empty conjunction, the identity of [And]
//   - [Never]: no conjunctions at all, the identity of [Or]
//
// # Canonical Form
//
// [And], [Or] and [Substitute] always return canonical requirements. In
// canonical form every conjunction is sorted and duplicate-free, and no
// conjunction is a superset of another (absorption: OR-ing [A] with [A, B]
// yields [A], since holding A alone already suffices). Canonical output is
// ordered by conjunction length, then lexicographically, so And and Or are
// commutative and associative up to [Requirement.Equal].
//
// # Incremental Assembly
//
// A [Builder] collects OR-alternatives with [Builder.AddAll] and narrows
// everything collected so far with [Builder.Restrict]. Boss requirements are
// assembled this way: the sword alternatives are added first, then restricted
// by guaranteed magic and story prerequisites.
//
//	var b requirement.Builder
//	b.AddRoute(windSword)
//	b.AddRoute(fireSword)
//	b.Restrict(requirement.Route(refresh))
//	combat := b.Freeze() // (wind & refresh) | (fire & refresh)
package requirement
