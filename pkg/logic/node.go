package logic

import (
	"fmt"

	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// NodeID identifies a node within one [Graph]. IDs are dense and start at 1,
// so an ID converts directly into a positive [requirement.Condition].
type NodeID int32

// Condition returns the atomic condition "node id is reached".
func (id NodeID) Condition() requirement.Condition { return requirement.Condition(id) }

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindLocation Kind = iota + 1
	KindItemGet
	KindSlot
	KindTrigger
	KindBoss
	KindCondition
	KindOption
	KindArea
	KindDisabledRoute
)

var kindNames = map[Kind]string{
	KindLocation:      "location",
	KindItemGet:       "item",
	KindSlot:          "slot",
	KindTrigger:       "trigger",
	KindBoss:          "boss",
	KindCondition:     "condition",
	KindOption:        "option",
	KindArea:          "area",
	KindDisabledRoute: "disabled-route",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Payload is the kind-specific data carried by a node. The set of
// implementations is closed: *Location, *ItemGet, *Slot, *Trigger, *Boss,
// *Condition, *Option, *Area and *DisabledRoute.
type Payload interface {
	Kind() Kind
	payload()
}

// Node is a graph entity. Nodes are created by the Graph.Add* methods and
// must not be modified once the graph is handed to the integrator.
type Node struct {
	ID      NodeID
	Name    string
	Payload Payload
}

// Kind returns the kind of the node's payload.
func (n *Node) Kind() Kind { return n.Payload.Kind() }

// Connection is one exit from a location to another, gated by Deps.
type Connection struct {
	To   NodeID
	Deps []NodeID
	// Bidirectional connections can also be walked from To back to the owner.
	Bidirectional bool
}

// Location is a place in the world. Locations form the only cycles in the
// graph.
type Location struct {
	Start       bool
	Area        NodeID // optional grouping label
	Boss        NodeID // boss guarding the exits, if any
	Connections []Connection
	Slots       []NodeID
}

// ItemGet is an item the player can obtain. It is a leaf: it has no edges of
// its own and becomes held once a slot containing it is reached.
type ItemGet struct {
	// Class is matched against Slot.Accepts by the placement fit check.
	Class string
	// Priority is the number of shuffle tokens the item receives; values
	// below 1 count as 1.
	Priority int
	Magic    bool
}

// SlotKind distinguishes where an item is handed out.
type SlotKind uint8

const (
	SlotChest SlotKind = iota
	SlotBossDrop
	SlotGift
)

func (k SlotKind) String() string {
	switch k {
	case SlotChest:
		return "chest"
	case SlotBossDrop:
		return "boss-drop"
	case SlotGift:
		return "gift"
	}
	return fmt.Sprintf("slot-kind(%d)", k)
}

// Slot is a place an item can be put.
type Slot struct {
	Type     SlotKind
	Location NodeID // containing location for chests
	Source   NodeID // granting trigger or boss for drops and gifts
	// Accepts lists the item classes allowed here; empty accepts anything.
	Accepts []string
}

// Trigger is a story flag set at some point in the world.
type Trigger struct {
	Slot   NodeID // slot handed out when the trigger fires, if any
	Routes [][]NodeID
}

// Boss is a trigger whose routes are additionally gated by a fixed combat
// requirement.
type Boss struct {
	Slot   NodeID
	Routes [][]NodeID
	Combat requirement.Requirement
}

// Condition is a named requirement whose alternatives are registered from
// outside with Graph.Grant.
type Condition struct {
	Routes [][]NodeID
}

// Option is satisfied when its flag is enabled.
type Option struct {
	Flag string
}

// Area is a grouping label for locations. It never takes part in solving.
type Area struct{}

// DisabledRoute marks a route that is off-logic unless Flag re-enables it.
type DisabledRoute struct {
	Flag string
	Deps []NodeID
}

func (*Location) Kind() Kind      { return KindLocation }
func (*ItemGet) Kind() Kind       { return KindItemGet }
func (*Slot) Kind() Kind          { return KindSlot }
func (*Trigger) Kind() Kind       { return KindTrigger }
func (*Boss) Kind() Kind          { return KindBoss }
func (*Condition) Kind() Kind     { return KindCondition }
func (*Option) Kind() Kind        { return KindOption }
func (*Area) Kind() Kind          { return KindArea }
func (*DisabledRoute) Kind() Kind { return KindDisabledRoute }

func (*Location) payload()      {}
func (*ItemGet) payload()       {}
func (*Slot) payload()          {}
func (*Trigger) payload()       {}
func (*Boss) payload()          {}
func (*Condition) payload()     {}
func (*Option) payload()        {}
func (*Area) payload()          {}
func (*DisabledRoute) payload() {}

// Route is one way to satisfy its target: Route[0] is the target and the
// remaining elements are prerequisites that must all hold. Several routes to
// the same target are alternatives.
type Route []NodeID

// Target returns the node the route reaches.
func (r Route) Target() NodeID { return r[0] }

// Deps returns the prerequisites of the route.
func (r Route) Deps() []NodeID { return r[1:] }

// Conjunction returns the prerequisites as a normalized conjunction.
func (r Route) Conjunction() requirement.Conjunction {
	return Conjunction(r.Deps())
}

// Conjunction converts node ids into a normalized conjunction.
func Conjunction(ids []NodeID) requirement.Conjunction {
	conds := make([]requirement.Condition, len(ids))
	for i, id := range ids {
		conds[i] = id.Condition()
	}
	return requirement.Of(conds...)
}
