// Package bits provides a fixed-width bitset used for held-item sets and
// route requirements.
//
// # Overview
//
// A [Set] is an array of machine words, so it is a plain value: it can be
// copied, compared with ==, and used as a map key without allocation. All
// operations return a new Set and never modify the receiver.
//
// The width is fixed at [Width] bits. Callers that number items or slots
// densely must check their counts against Width before building sets; bit
// indices outside [0, Width) panic.
//
// # Usage
//
//	held := bits.Of(0, 3)
//	need := bits.Of(3)
//	if held.Contains(need) {
//	    held = held.Without(3)
//	}
//	for i := range held.All() {
//	    fmt.Println(i)
//	}
package bits

import (
	"iter"
	"math/bits"
	"strconv"
	"strings"
)

// Words is the number of 64-bit words in a Set.
const Words = 8

// Width is the number of addressable bits in a Set.
const Width = Words * 64

// Set is a fixed-width bitset. The zero value is the empty set.
type Set [Words]uint64

// Of returns a set containing the given bit indices.
func Of(ids ...int) Set {
	var s Set
	for _, id := range ids {
		s[id>>6] |= 1 << (uint(id) & 63)
	}
	return s
}

// Full returns a set with bits [0, n) set.
func Full(n int) Set {
	var s Set
	for i := 0; i < n; i++ {
		s[i>>6] |= 1 << (uint(i) & 63)
	}
	return s
}

// Has reports whether bit id is set.
func (s Set) Has(id int) bool {
	return s[id>>6]&(1<<(uint(id)&63)) != 0
}

// With returns a copy of s with bit id set.
func (s Set) With(id int) Set {
	s[id>>6] |= 1 << (uint(id) & 63)
	return s
}

// Without returns a copy of s with bit id cleared.
func (s Set) Without(id int) Set {
	s[id>>6] &^= 1 << (uint(id) & 63)
	return s
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	for i := range s {
		s[i] |= o[i]
	}
	return s
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	for i := range s {
		s[i] &= o[i]
	}
	return s
}

// Difference returns s \ o.
func (s Set) Difference(o Set) Set {
	for i := range s {
		s[i] &^= o[i]
	}
	return s
}

// Contains reports whether every bit of sub is also set in s.
func (s Set) Contains(sub Set) bool {
	for i := range s {
		if sub[i]&^s[i] != 0 {
			return false
		}
	}
	return true
}

// Empty reports whether no bit is set.
func (s Set) Empty() bool {
	return s == Set{}
}

// Len returns the number of set bits.
func (s Set) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// All iterates over the set bits in ascending order.
func (s Set) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, w := range s {
			for w != 0 {
				b := bits.TrailingZeros64(w)
				if !yield(i*64 + b) {
					return
				}
				w &= w - 1
			}
		}
	}
}

// Slice returns the set bits in ascending order.
func (s Set) Slice() []int {
	out := make([]int, 0, s.Len())
	for id := range s.All() {
		out = append(out, id)
	}
	return out
}

// String formats the set as {1, 4, 9}.
func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for id := range s.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteByte('}')
	return b.String()
}
