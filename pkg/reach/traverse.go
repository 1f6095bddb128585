package reach

import (
	"github.com/matzehuels/itemshuffle/pkg/bits"
)

// Traverse returns the set of slot indices reachable when starting with the
// items in has and collecting every item that fill places in a reached slot.
//
// Every slot is examined at least once, so slots that need no items are found
// on the first pass. When a reached slot yields an item not yet held, only the
// slots whose routes mention that item are examined again. Traverse is a pure
// function of its arguments.
func (x *Index) Traverse(has bits.Set, fill Filling) bits.Set {
	reached, _ := x.traverse(has, fill)
	return reached
}

// Collect is like Traverse but also returns the final held item set.
func (x *Index) Collect(has bits.Set, fill Filling) (reached, held bits.Set) {
	return x.traverse(has, fill)
}

func (x *Index) traverse(has bits.Set, fill Filling) (bits.Set, bits.Set) {
	var reached bits.Set
	n := len(x.slots)
	queue := make([]int, n)
	for i := range queue {
		queue[i] = n - 1 - i
	}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if reached.Has(s) || !x.satisfied(s, has) {
			continue
		}
		reached = reached.With(s)
		if s >= len(fill) {
			continue
		}
		if item := fill[s]; item != Empty && !has.Has(item) {
			has = has.With(item)
			queue = append(queue, x.unlocks[item]...)
		}
	}
	return reached, has
}

// Depths returns, per slot index, the propagation wave at which the slot
// first becomes reachable starting from has, or -1 if it never does. Wave 0
// holds the slots reachable with has alone; wave k+1 the slots unlocked by
// items found in wave k. It is meant for spoiler output only.
func (x *Index) Depths(has bits.Set, fill Filling) []int {
	depth := make([]int, len(x.slots))
	for s := range depth {
		depth[s] = -1
	}
	for wave := 0; ; wave++ {
		var found []int
		for s := range x.slots {
			if depth[s] == -1 && x.satisfied(s, has) {
				found = append(found, s)
			}
		}
		if len(found) == 0 {
			return depth
		}
		for _, s := range found {
			depth[s] = wave
			if s < len(fill) && fill[s] != Empty {
				has = has.With(fill[s])
			}
		}
	}
}

// Missing replays fill from holding nothing and returns the slot indices that
// have routes but are never reached. Slots without any route are not
// reported; see [Index.Unreachable].
func (x *Index) Missing(fill Filling) []int {
	reached := x.Traverse(bits.Set{}, fill)
	var out []int
	for s, rs := range x.routes {
		if len(rs) > 0 && !reached.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Complete reports whether fill is [Index.Valid] and replaying it from
// holding nothing reaches every slot that has a route.
func (x *Index) Complete(fill Filling) bool {
	return x.Valid(fill) && len(x.Missing(fill)) == 0
}
