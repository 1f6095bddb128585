package logic

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

var (
	// ErrInvalidName is returned by the Add* methods when the node name is empty.
	ErrInvalidName = errors.New("node name must not be empty")

	// ErrDuplicateName is returned by the Add* methods when a node with the
	// same name already exists. Names are unique across all kinds.
	ErrDuplicateName = errors.New("duplicate node name")

	// ErrUnknownNode is returned when an id does not refer to a node of the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrKindMismatch is returned when a node of the wrong kind is passed,
	// e.g. granting a route to an item or connecting a slot.
	ErrKindMismatch = errors.New("node kind mismatch")

	// ErrWinAlreadySet is returned by [Graph.SetWin] when called twice.
	ErrWinAlreadySet = errors.New("win slot already set")
)

// Graph is an arena of nodes addressed by [NodeID]. Every relationship
// between nodes is stored as an id, never as a pointer.
//
// The zero value is not usable - use New. A Graph is built once and is
// read-only afterwards; concurrent readers are safe once building is done.
type Graph struct {
	nodes    []*Node // nodes[id-1]
	byName   map[string]NodeID
	win      NodeID
	terminal NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

func (g *Graph) add(name string, p Payload) (NodeID, error) {
	if name == "" {
		return 0, ErrInvalidName
	}
	if _, exists := g.byName[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	id := NodeID(len(g.nodes) + 1)
	g.nodes = append(g.nodes, &Node{ID: id, Name: name, Payload: p})
	g.byName[name] = id
	return id, nil
}

// AddLocation adds a location. Start locations are reachable with nothing held.
func (g *Graph) AddLocation(name string, start bool) (NodeID, error) {
	return g.add(name, &Location{Start: start})
}

// AddItem adds an obtainable item.
func (g *Graph) AddItem(name string, item ItemGet) (NodeID, error) {
	return g.add(name, &item)
}

// AddChest adds a slot inside location loc.
func (g *Graph) AddChest(name string, loc NodeID, accepts ...string) (NodeID, error) {
	l, err := g.location(loc)
	if err != nil {
		return 0, err
	}
	id, err := g.add(name, &Slot{Type: SlotChest, Location: loc, Accepts: accepts})
	if err != nil {
		return 0, err
	}
	l.Slots = append(l.Slots, id)
	return id, nil
}

// AddReward adds a slot handed out by a trigger or boss. Boss rewards become
// [SlotBossDrop] slots and trigger rewards [SlotGift] slots. A source hands
// out at most one slot.
func (g *Graph) AddReward(name string, source NodeID, accepts ...string) (NodeID, error) {
	n, ok := g.Node(source)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, source)
	}
	var (
		kind SlotKind
		out  *NodeID
	)
	switch p := n.Payload.(type) {
	case *Trigger:
		kind, out = SlotGift, &p.Slot
	case *Boss:
		kind, out = SlotBossDrop, &p.Slot
	default:
		return 0, fmt.Errorf("%w: %s is a %s, want trigger or boss", ErrKindMismatch, n.Name, n.Kind())
	}
	if *out != 0 {
		return 0, fmt.Errorf("%w: %s already hands out %s", ErrKindMismatch, n.Name, g.Name(*out))
	}
	id, err := g.add(name, &Slot{Type: kind, Source: source, Accepts: accepts})
	if err != nil {
		return 0, err
	}
	*out = id
	return id, nil
}

// AddTrigger adds a trigger with no routes yet.
func (g *Graph) AddTrigger(name string) (NodeID, error) {
	return g.add(name, &Trigger{})
}

// AddBoss adds a boss whose routes are gated by combat.
func (g *Graph) AddBoss(name string, combat requirement.Requirement) (NodeID, error) {
	return g.add(name, &Boss{Combat: requirement.Canonicalize(combat)})
}

// AddCondition adds a condition with no routes yet.
func (g *Graph) AddCondition(name string) (NodeID, error) {
	return g.add(name, &Condition{})
}

// AddOption adds an option satisfied when flag is enabled.
func (g *Graph) AddOption(name, flag string) (NodeID, error) {
	return g.add(name, &Option{Flag: flag})
}

// AddArea adds a grouping label.
func (g *Graph) AddArea(name string) (NodeID, error) {
	return g.add(name, &Area{})
}

// AddDisabledRoute adds an off-logic marker that is satisfied by deps only
// when flag is enabled.
func (g *Graph) AddDisabledRoute(name, flag string, deps ...NodeID) (NodeID, error) {
	if err := g.check(deps...); err != nil {
		return 0, err
	}
	return g.add(name, &DisabledRoute{Flag: flag, Deps: slices.Clone(deps)})
}

// Connect adds an exit from one location to another, gated by deps.
func (g *Graph) Connect(from, to NodeID, bidirectional bool, deps ...NodeID) error {
	l, err := g.location(from)
	if err != nil {
		return err
	}
	if _, err := g.location(to); err != nil {
		return err
	}
	if err := g.check(deps...); err != nil {
		return err
	}
	l.Connections = append(l.Connections, Connection{To: to, Deps: slices.Clone(deps), Bidirectional: bidirectional})
	return nil
}

// Guard makes the exits of loc require defeating boss.
func (g *Graph) Guard(loc, boss NodeID) error {
	l, err := g.location(loc)
	if err != nil {
		return err
	}
	n, ok := g.Node(boss)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, boss)
	}
	if n.Kind() != KindBoss {
		return fmt.Errorf("%w: %s is a %s, want boss", ErrKindMismatch, n.Name, n.Kind())
	}
	l.Boss = boss
	return nil
}

// SetArea labels loc as part of area.
func (g *Graph) SetArea(loc, area NodeID) error {
	l, err := g.location(loc)
	if err != nil {
		return err
	}
	n, ok := g.Node(area)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, area)
	}
	if n.Kind() != KindArea {
		return fmt.Errorf("%w: %s is a %s, want area", ErrKindMismatch, n.Name, n.Kind())
	}
	l.Area = area
	return nil
}

// Grant registers one more alternative way to reach target: all of deps.
// The target must be a trigger, boss or condition.
func (g *Graph) Grant(target NodeID, deps ...NodeID) error {
	n, ok := g.Node(target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, target)
	}
	if err := g.check(deps...); err != nil {
		return err
	}
	deps = slices.Clone(deps)
	switch p := n.Payload.(type) {
	case *Trigger:
		p.Routes = append(p.Routes, deps)
	case *Boss:
		p.Routes = append(p.Routes, deps)
	case *Condition:
		p.Routes = append(p.Routes, deps)
	default:
		return fmt.Errorf("%w: cannot grant %s %s", ErrKindMismatch, n.Kind(), n.Name)
	}
	return nil
}

// SetWin designates the win slot and the terminal item delivered there.
// The terminal item is placed last and never shuffled.
func (g *Graph) SetWin(slot, item NodeID) error {
	if g.win != 0 {
		return ErrWinAlreadySet
	}
	s, ok := g.Node(slot)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, slot)
	}
	if s.Kind() != KindSlot {
		return fmt.Errorf("%w: win %s is a %s, want slot", ErrKindMismatch, s.Name, s.Kind())
	}
	i, ok := g.Node(item)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, item)
	}
	if i.Kind() != KindItemGet {
		return fmt.Errorf("%w: terminal %s is a %s, want item", ErrKindMismatch, i.Name, i.Kind())
	}
	g.win, g.terminal = slot, item
	return nil
}

// Win returns the win slot and terminal item, or zeros when unset.
func (g *Graph) Win() (slot, item NodeID) { return g.win, g.terminal }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 1 || int(id) > len(g.nodes) {
		return nil, false
	}
	return g.nodes[id-1], true
}

// Lookup returns the id of the named node.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the node's name, or "#<id>" for unknown ids.
func (g *Graph) Name(id NodeID) string {
	if n, ok := g.Node(id); ok {
		return n.Name
	}
	return fmt.Sprintf("#%d", id)
}

// Kind returns the node's kind, or 0 for unknown ids.
func (g *Graph) Kind(id NodeID) Kind {
	if n, ok := g.Node(id); ok {
		return n.Kind()
	}
	return 0
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns all nodes in id order. The slice is a copy; the nodes are not.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// OfKind returns the ids of all nodes of kind k in ascending order.
func (g *Graph) OfKind(k Kind) []NodeID {
	var out []NodeID
	for _, n := range g.nodes {
		if n.Kind() == k {
			out = append(out, n.ID)
		}
	}
	return out
}

// ConditionName renders a requirement condition using node names.
func (g *Graph) ConditionName(c requirement.Condition) string {
	return g.Name(NodeID(c))
}

func (g *Graph) location(id NodeID) (*Location, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	l, ok := n.Payload.(*Location)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, want location", ErrKindMismatch, n.Name, n.Kind())
	}
	return l, nil
}

func (g *Graph) check(ids ...NodeID) error {
	for _, id := range ids {
		if _, ok := g.Node(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNode, id)
		}
	}
	return nil
}
