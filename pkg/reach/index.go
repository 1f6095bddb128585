package reach

import (
	"errors"
	"fmt"

	"github.com/matzehuels/itemshuffle/pkg/bits"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// ErrCapacity is returned when more items or slots are registered than a
// [bits.Set] can address.
var ErrCapacity = errors.New("index capacity exceeded")

// Empty marks a slot that holds no item in a [Filling].
const Empty = -1

// Filling maps slot index to item index, or [Empty].
type Filling []int

// NewFilling returns a filling of n empty slots.
func NewFilling(n int) Filling {
	f := make(Filling, n)
	for i := range f {
		f[i] = Empty
	}
	return f
}

// Clone returns a copy of f.
func (f Filling) Clone() Filling {
	return append(Filling(nil), f...)
}

// Index answers reachability queries over slots given a set of held items.
//
// Items and slots are numbered densely in registration order; every route is
// a [bits.Set] over item indices. For each item the index keeps the slots
// whose routes mention it, so a newly held item only re-examines those slots.
//
// An Index is built by the integrator and read-only afterwards. Queries never
// modify it, so one Index can serve concurrent fill attempts.
type Index struct {
	items     []logic.NodeID
	itemIndex map[logic.NodeID]int
	slots     []logic.NodeID
	slotIndex map[logic.NodeID]int

	routes   [][]bits.Set // per slot, absorbed
	mentions []bits.Set   // per slot, items named by any route
	unlocks  [][]int      // per item, slots whose routes name it
	display  []requirement.Requirement
}

// New returns an empty index.
func New() *Index {
	return &Index{
		itemIndex: make(map[logic.NodeID]int),
		slotIndex: make(map[logic.NodeID]int),
	}
}

// AddItem registers an item and returns its index. Registering an item twice
// returns the existing index.
func (x *Index) AddItem(id logic.NodeID) (int, error) {
	if i, ok := x.itemIndex[id]; ok {
		return i, nil
	}
	if len(x.items) == bits.Width {
		return 0, fmt.Errorf("%w: more than %d items", ErrCapacity, bits.Width)
	}
	i := len(x.items)
	x.items = append(x.items, id)
	x.itemIndex[id] = i
	x.unlocks = append(x.unlocks, nil)
	return i, nil
}

// AddSlot registers a slot and returns its index. Registering a slot twice
// returns the existing index.
func (x *Index) AddSlot(id logic.NodeID) (int, error) {
	if s, ok := x.slotIndex[id]; ok {
		return s, nil
	}
	if len(x.slots) == bits.Width {
		return 0, fmt.Errorf("%w: more than %d slots", ErrCapacity, bits.Width)
	}
	s := len(x.slots)
	x.slots = append(x.slots, id)
	x.slotIndex[id] = s
	x.routes = append(x.routes, nil)
	x.mentions = append(x.mentions, bits.Set{})
	x.display = append(x.display, nil)
	return s, nil
}

// AddRoute registers one sufficient item set for slot. Unknown slots and
// items are numbered on first sight. A route that is a superset of an
// existing route is dropped; existing routes that are supersets of the new
// one are replaced.
func (x *Index) AddRoute(slot logic.NodeID, items ...logic.NodeID) error {
	s, err := x.AddSlot(slot)
	if err != nil {
		return err
	}
	var route bits.Set
	for _, id := range items {
		i, err := x.AddItem(id)
		if err != nil {
			return err
		}
		route = route.With(i)
	}

	for _, r := range x.routes[s] {
		if route.Contains(r) {
			return nil
		}
	}
	kept := x.routes[s][:0]
	for _, r := range x.routes[s] {
		if !r.Contains(route) {
			kept = append(kept, r)
		}
	}
	x.routes[s] = append(kept, route)

	for i := range route.All() {
		if !x.mentions[s].Has(i) {
			x.mentions[s] = x.mentions[s].With(i)
			x.unlocks[i] = append(x.unlocks[i], s)
		}
	}
	return nil
}

// SetRequirement records the human-readable requirement of slot, which may
// mention conditions that take no part in solving.
func (x *Index) SetRequirement(slot logic.NodeID, r requirement.Requirement) error {
	s, err := x.AddSlot(slot)
	if err != nil {
		return err
	}
	x.display[s] = r
	return nil
}

// NumItems returns the number of registered items.
func (x *Index) NumItems() int { return len(x.items) }

// NumSlots returns the number of registered slots.
func (x *Index) NumSlots() int { return len(x.slots) }

// Item returns the node id of item index i.
func (x *Index) Item(i int) logic.NodeID { return x.items[i] }

// Slot returns the node id of slot index s.
func (x *Index) Slot(s int) logic.NodeID { return x.slots[s] }

// ItemIndex returns the index of item id.
func (x *Index) ItemIndex(id logic.NodeID) (int, bool) {
	i, ok := x.itemIndex[id]
	return i, ok
}

// SlotIndex returns the index of slot id.
func (x *Index) SlotIndex(id logic.NodeID) (int, bool) {
	s, ok := x.slotIndex[id]
	return s, ok
}

// Routes returns the item sets sufficient to reach slot index s.
// The returned slice must not be modified.
func (x *Index) Routes(s int) []bits.Set { return x.routes[s] }

// Requirement returns the recorded requirement of slot index s.
func (x *Index) Requirement(s int) requirement.Requirement { return x.display[s] }

// Unlocks returns the slots whose routes mention item index i.
// The returned slice must not be modified.
func (x *Index) Unlocks(i int) []int { return x.unlocks[i] }

// AllItems returns the set of every item index.
func (x *Index) AllItems() bits.Set { return bits.Full(len(x.items)) }

// Unreachable returns the slots that have no route at all. Such slots can
// never be reached and never receive an item.
func (x *Index) Unreachable() []logic.NodeID {
	var out []logic.NodeID
	for s, rs := range x.routes {
		if len(rs) == 0 {
			out = append(out, x.slots[s])
		}
	}
	return out
}

// Placements converts a filling into slot → item node ids, skipping empty slots.
func (x *Index) Placements(f Filling) map[logic.NodeID]logic.NodeID {
	out := make(map[logic.NodeID]logic.NodeID)
	for s, i := range f {
		if i != Empty {
			out[x.slots[s]] = x.items[i]
		}
	}
	return out
}

// Valid reports whether f has one entry per slot, every entry is [Empty] or
// a registered item index, and no item is placed twice.
func (x *Index) Valid(f Filling) bool {
	if len(f) != len(x.slots) {
		return false
	}
	var placed bits.Set
	for _, i := range f {
		if i == Empty {
			continue
		}
		if i < 0 || i >= len(x.items) || placed.Has(i) {
			return false
		}
		placed = placed.With(i)
	}
	return true
}

func (x *Index) satisfied(s int, has bits.Set) bool {
	for _, r := range x.routes[s] {
		if has.Contains(r) {
			return true
		}
	}
	return false
}
