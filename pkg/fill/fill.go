// Package fill implements assumed-fill item placement.
//
// # Overview
//
// Assumed fill starts by pretending the player already holds every item.
// Items are then taken away one at a time, in shuffled order, and each is put
// into an empty slot that is still reachable with the items not yet taken
// away. Replaying the result from an empty inventory always works: every slot
// was reachable with the items placed after it, and those were placed where
// the earlier items make them reachable.
//
// There is no backtracking. When an item has nowhere to go, [Filler.Fill]
// reports failure and the caller retries with a fresh random draw.
package fill

import (
	"slices"

	"github.com/matzehuels/itemshuffle/pkg/bits"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/random"
	"github.com/matzehuels/itemshuffle/pkg/reach"
)

// Random is the random source consumed by [Filler.Fill]. Implementations
// must be deterministic for a given seed; see [random.Source].
type Random interface {
	Pick(n int) int
	Shuffle(n int, swap func(i, j int))
}

// FitFunc reports whether item may be put into slot.
type FitFunc func(slot, item logic.NodeID) bool

// Filler places the items of an [reach.Index] into its slots.
type Filler struct {
	Index *reach.Index

	// Fit is the domain check applied to every candidate. Nil accepts all.
	Fit FitFunc

	// Priority returns the number of shuffle tokens an item gets. Items with
	// more tokens tend to be placed earlier, while more slots are open.
	// Nil or values below 1 mean one token.
	Priority func(item logic.NodeID) int

	// Win is the slot that receives Terminal once everything else is
	// placed. No other item is ever put there. Zero means no win slot.
	// Fill fails when Win is set and either node is missing from Index.
	Win      logic.NodeID
	Terminal logic.NodeID
}

// Fill produces one completable filling, or reports false when some item
// could not be placed. Fill never modifies the index.
//
// The terminal item is never assumed held: it can only be found in the win
// slot, which must be reachable once every other item is placed.
func (f *Filler) Fill(rnd Random) (reach.Filling, bool) {
	x := f.Index
	win, terminal := reach.Empty, reach.Empty
	if f.Win != 0 {
		s, ok := x.SlotIndex(f.Win)
		if !ok {
			return nil, false
		}
		i, ok := x.ItemIndex(f.Terminal)
		if !ok {
			return nil, false
		}
		win, terminal = s, i
	}

	tokens := f.tokens(terminal)
	random.ShuffleSlice(rnd, tokens)

	held := x.AllItems()
	if terminal != reach.Empty {
		held = held.Without(terminal)
	}
	filling := reach.NewFilling(x.NumSlots())
	var consumed bits.Set
	for _, item := range tokens {
		if consumed.Has(item) {
			continue
		}
		consumed = consumed.With(item)
		held = held.Without(item)

		candidates := f.candidates(held, filling, win)
		random.ShuffleSlice(rnd, candidates)
		placed := false
		for _, s := range candidates {
			if f.fits(s, item) {
				filling[s] = item
				placed = true
				break
			}
		}
		if !placed {
			return nil, false
		}
	}
	if win != reach.Empty {
		if !x.Traverse(bits.Set{}, filling).Has(win) {
			return nil, false
		}
		if terminal != reach.Empty {
			filling[win] = terminal
		}
	}
	return filling, true
}

// tokens lists every item but the terminal one, repeated by priority.
func (f *Filler) tokens(terminal int) []int {
	var out []int
	for i := range f.Index.NumItems() {
		if i == terminal {
			continue
		}
		n := 1
		if f.Priority != nil {
			n = max(n, f.Priority(f.Index.Item(i)))
		}
		for range n {
			out = append(out, i)
		}
	}
	return out
}

// candidates returns the empty slots reachable holding held, in index order.
func (f *Filler) candidates(held bits.Set, filling reach.Filling, win int) []int {
	reached := f.Index.Traverse(held, filling)
	var out []int
	for s := range reached.All() {
		if s != win && filling[s] == reach.Empty {
			out = append(out, s)
		}
	}
	return out
}

func (f *Filler) fits(s, item int) bool {
	if f.Fit == nil {
		return true
	}
	return f.Fit(f.Index.Slot(s), f.Index.Item(item))
}

// ClassFit accepts an item when the slot lists no classes or lists the
// item's class.
func ClassFit(g *logic.Graph) FitFunc {
	return func(slot, item logic.NodeID) bool {
		sn, ok := g.Node(slot)
		if !ok {
			return false
		}
		s, ok := sn.Payload.(*logic.Slot)
		if !ok {
			return false
		}
		if len(s.Accepts) == 0 {
			return true
		}
		in, ok := g.Node(item)
		if !ok {
			return false
		}
		it, ok := in.Payload.(*logic.ItemGet)
		return ok && slices.Contains(s.Accepts, it.Class)
	}
}

// PriorityFrom reads shuffle priorities from the graph's items.
func PriorityFrom(g *logic.Graph) func(logic.NodeID) int {
	return func(item logic.NodeID) int {
		if n, ok := g.Node(item); ok {
			if it, ok := n.Payload.(*logic.ItemGet); ok {
				return it.Priority
			}
		}
		return 1
	}
}
