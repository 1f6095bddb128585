package requirement

import (
	"math/rand/v2"
	"testing"
)

func TestOfNormalizes(t *testing.T) {
	in := []Condition{3, 1, 3, -2}
	c := Of(in...)
	want := Conjunction{-2, 1, 3}
	if !(Requirement{c}).Equal(Requirement{want}) {
		t.Errorf("Of() = %v, want %v", c, want)
	}
	if in[0] != 3 {
		t.Error("Of modified its input")
	}
}

func TestSubsetOf(t *testing.T) {
	tests := []struct {
		a, b Conjunction
		want bool
	}{
		{Of(), Of(1), true},
		{Of(1), Of(1), true},
		{Of(1, 3), Of(1, 2, 3), true},
		{Of(1, 4), Of(1, 2, 3), false},
		{Of(1, 2, 3), Of(1, 3), false},
	}
	for _, tt := range tests {
		if got := tt.a.SubsetOf(tt.b); got != tt.want {
			t.Errorf("%v.SubsetOf(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIdentities(t *testing.T) {
	if !And().IsAlways() {
		t.Errorf("And() = %v, want always", And())
	}
	if !Or().IsNever() {
		t.Errorf("Or() = %v, want never", Or())
	}
	r := Route(1, 2)
	if got := And(r, Always()); !got.Equal(r) {
		t.Errorf("And(r, Always) = %v", got)
	}
	if got := Or(r, Never()); !got.Equal(r) {
		t.Errorf("Or(r, Never) = %v", got)
	}
	if got := And(r, Never()); !got.IsNever() {
		t.Errorf("And(r, Never) = %v", got)
	}
	if got := Or(r, Always()); !got.Equal(Always()) {
		t.Errorf("Or(r, Always) = %v", got)
	}
}

func TestAbsorption(t *testing.T) {
	got := Or(Route(1), Route(1, 2))
	if !got.Equal(Route(1)) {
		t.Errorf("Or([1], [1 2]) = %v, want [1]", got)
	}

	got = Canonicalize(Requirement{{2, 1}, {1, 2, 3}, {1, 2}, {4}})
	want := Requirement{{4}, {1, 2}}
	if !got.Equal(want) {
		t.Errorf("Canonicalize = %v, want %v", got, want)
	}
}

func TestAndDistributes(t *testing.T) {
	// (1 | 2) & (3 | 4) = 1&3 | 1&4 | 2&3 | 2&4
	got := And(Or(Route(1), Route(2)), Or(Route(3), Route(4)))
	want := Requirement{{1, 3}, {1, 4}, {2, 3}, {2, 4}}
	if !got.Equal(want) {
		t.Errorf("And = %v, want %v", got, want)
	}
}

func TestSubstitute(t *testing.T) {
	// r = 5&1 | 2 ; 5 := 3 | 4
	r := Or(Route(5, 1), Route(2))
	got := Substitute(r, 5, Or(Route(3), Route(4)))
	want := Requirement{{2}, {1, 3}, {1, 4}}
	if !got.Equal(want) {
		t.Errorf("Substitute = %v, want %v", got, want)
	}

	// Substituting Never drops the conjunction.
	got = Substitute(r, 5, Never())
	if !got.Equal(Route(2)) {
		t.Errorf("Substitute(never) = %v", got)
	}

	// Substituting Always removes the atom.
	got = Substitute(r, 5, Always())
	if !got.Equal(Requirement{{1}, {2}}) {
		t.Errorf("Substitute(always) = %v", got)
	}
}

func TestDropAndAtoms(t *testing.T) {
	r := Or(Route(1, 2), Route(3))
	if got := r.Drop(2); !got.Equal(Route(3)) {
		t.Errorf("Drop = %v", got)
	}
	atoms := r.Atoms()
	if len(atoms) != 3 || atoms[0] != 1 || atoms[2] != 3 {
		t.Errorf("Atoms = %v", atoms)
	}
}

func TestFormat(t *testing.T) {
	names := map[Condition]string{1: "sword", 2: "key", 3: "boots"}
	name := func(c Condition) string { return names[c] }

	tests := []struct {
		r    Requirement
		want string
	}{
		{Never(), "never"},
		{Always(), "always"},
		{Or(Route(1, 2), Route(3)), "boots | sword & key"},
		{Route(1, Condition(2).Not()), "!key & sword"},
	}
	for _, tt := range tests {
		if got := tt.r.Format(name); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

func TestBuilder(t *testing.T) {
	var b Builder
	if !b.Freeze().IsNever() {
		t.Error("empty builder should freeze to never")
	}
	b.Restrict(Route(9))
	if !b.Freeze().IsNever() {
		t.Error("restricting an empty builder should keep it empty")
	}

	b.AddRoute(1)
	b.AddRoute(2)
	b.AddAll(Route(1, 3))
	b.Restrict(Route(4))
	want := Requirement{{1, 4}, {2, 4}}
	if got := b.Freeze(); !got.Equal(want) {
		t.Errorf("Freeze() = %v, want %v", got, want)
	}

	b.AddAll(Always())
	if !b.Freeze().Equal(Always()) {
		t.Errorf("Freeze() after AddAll(always) = %v", b.Freeze())
	}
}

// randomRequirement builds a small random DNF over conditions 1..6.
func randomRequirement(rng *rand.Rand) Requirement {
	n := rng.IntN(4)
	r := make(Requirement, n)
	for i := range r {
		m := rng.IntN(4)
		c := make(Conjunction, m)
		for j := range c {
			c[j] = Condition(1 + rng.IntN(6))
		}
		r[i] = c
	}
	return r
}

// eval evaluates r under the assignment encoded by bits of held.
func eval(r Requirement, held uint) bool {
	for _, c := range r {
		ok := true
		for _, a := range c {
			if held&(1<<uint(a)) == 0 {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestAlgebraLaws(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 300 {
		a, b, c := randomRequirement(rng), randomRequirement(rng), randomRequirement(rng)

		if !And(a, b).Equal(And(b, a)) {
			t.Fatalf("And not commutative: %v, %v", a, b)
		}
		if !Or(a, b).Equal(Or(b, a)) {
			t.Fatalf("Or not commutative: %v, %v", a, b)
		}
		if !And(And(a, b), c).Equal(And(a, And(b, c))) {
			t.Fatalf("And not associative: %v, %v, %v", a, b, c)
		}
		if !Or(Or(a, b), c).Equal(Or(a, Or(b, c))) {
			t.Fatalf("Or not associative: %v, %v, %v", a, b, c)
		}
		ca := Canonicalize(a)
		if !Canonicalize(ca).Equal(ca) {
			t.Fatalf("Canonicalize not idempotent: %v", a)
		}
		for i, x := range ca {
			for j, y := range ca {
				if i != j && x.SubsetOf(y) {
					t.Fatalf("canonical form %v keeps %v ⊆ %v", ca, x, y)
				}
			}
		}

		// Canonicalization preserves meaning.
		for held := uint(0); held < 1<<7; held += 2 {
			if eval(a, held) != eval(ca, held) {
				t.Fatalf("Canonicalize(%v) changed meaning under %b", a, held)
			}
			if eval(And(a, b), held) != (eval(a, held) && eval(b, held)) {
				t.Fatalf("And(%v, %v) wrong under %b", a, b, held)
			}
			if eval(Or(a, b), held) != (eval(a, held) || eval(b, held)) {
				t.Fatalf("Or(%v, %v) wrong under %b", a, b, held)
			}
		}
	}
}
