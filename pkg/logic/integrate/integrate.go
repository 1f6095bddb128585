package integrate

import (
	"fmt"
	"slices"

	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/reach"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// Phase is one elimination step of the integrator.
type Phase uint8

const (
	// PhaseCollect gathers edges from the graph. It always runs first and
	// cannot be listed in [Options.Phases].
	PhaseCollect Phase = iota + 1
	PhaseOptions
	PhaseDisabled
	PhaseTriggers
	PhaseLocations
	PhaseConditions
	// PhaseVerify checks that nothing but items is left. It always runs
	// last and cannot be listed in [Options.Phases].
	PhaseVerify
)

var phaseNames = map[Phase]string{
	PhaseCollect:    "collect",
	PhaseOptions:    "options",
	PhaseDisabled:   "disabled",
	PhaseTriggers:   "triggers",
	PhaseLocations:  "locations",
	PhaseConditions: "conditions",
	PhaseVerify:     "verify",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", p)
}

// DefaultPhases returns the elimination order: options, disabled-route
// markers, triggers and bosses, the location worklist, then conditions.
//
// The order matters. Connections may be gated by triggers, so triggers must
// be gone before the location worklist runs; conditions may mention
// locations, so they go last.
func DefaultPhases() []Phase {
	return []Phase{PhaseOptions, PhaseDisabled, PhaseTriggers, PhaseLocations, PhaseConditions}
}

// Options configures [Integrate].
type Options struct {
	// RetainDisabled keeps disabled-route markers as atoms instead of
	// eliminating them. Requirements mentioning a retained marker are shown
	// in Result.Slots but take no part in solving.
	RetainDisabled bool

	// Phases overrides the elimination order. Nil means [DefaultPhases].
	Phases []Phase
}

func (o Options) phases() ([]Phase, error) {
	if o.Phases == nil {
		return DefaultPhases(), nil
	}
	seen := make(map[Phase]bool)
	for _, p := range o.Phases {
		if p <= PhaseCollect || p >= PhaseVerify {
			return nil, fmt.Errorf("integrate: invalid phase %s", p)
		}
		if seen[p] {
			return nil, fmt.Errorf("integrate: duplicate phase %s", p)
		}
		seen[p] = true
	}
	return o.Phases, nil
}

// Result is the output of [Integrate].
type Result struct {
	Graph *logic.Graph

	// Index holds, per slot, the item sets sufficient to reach it.
	Index *reach.Index

	// Slots maps every slot to its final requirement over items (and
	// retained markers).
	Slots map[logic.NodeID]requirement.Requirement

	// Locations maps every location to the requirement found by the
	// location worklist, before conditions were eliminated.
	Locations map[logic.NodeID]requirement.Requirement

	// Unreachable lists slots left without any solvable route, in id order.
	Unreachable []logic.NodeID

	// Retained lists the disabled-route markers kept as atoms.
	Retained []logic.NodeID
}

// Format renders r using node names.
func (r *Result) Format(req requirement.Requirement) string {
	return req.Format(r.Graph.ConditionName)
}

// Integrate reduces g under flags to per-slot item requirements.
//
// Every node kind other than items and slots is eliminated by substituting
// its requirement into every route that mentions it. Locations are solved by
// a worklist over (location, dependency set) pairs since they are the only
// nodes that form cycles. A node that survives its phase, or that a route
// still mentions when it can no longer be resolved, yields a
// [*StructuralError].
func Integrate(g *logic.Graph, flags logic.Flags, opts Options) (*Result, error) {
	phases, err := opts.phases()
	if err != nil {
		return nil, err
	}
	s, err := collect(g, flags, opts.RetainDisabled)
	if err != nil {
		return nil, err
	}
	for _, p := range phases {
		if err := s.run(p); err != nil {
			return nil, err
		}
	}
	if err := s.verify(); err != nil {
		return nil, err
	}
	return s.result()
}

// system is the set of routes still being reduced. Routes into locations are
// kept per connection; all other routes are merged per target.
type system struct {
	g        *logic.Graph
	retain   bool
	reqs     map[logic.NodeID]requirement.Requirement
	conns    []connection
	starts   []logic.NodeID
	locs     map[logic.NodeID]requirement.Requirement
	done     map[logic.NodeID]bool
	retained map[logic.NodeID]bool
}

type connection struct {
	from, to logic.NodeID
	req      requirement.Requirement
}

func collect(g *logic.Graph, flags logic.Flags, retain bool) (*system, error) {
	s := &system{
		g:        g,
		retain:   retain,
		reqs:     make(map[logic.NodeID]requirement.Requirement),
		locs:     make(map[logic.NodeID]requirement.Requirement),
		done:     make(map[logic.NodeID]bool),
		retained: make(map[logic.NodeID]bool),
	}
	for _, n := range g.Nodes() {
		switch n.Kind() {
		case logic.KindArea:
			s.done[n.ID] = true
		case logic.KindDisabledRoute:
			if retain {
				s.retained[n.ID] = true
			}
		}
		for _, r := range g.Edges(n.ID, flags) {
			for _, id := range r {
				if id < 1 {
					return nil, s.structural(n.ID, PhaseCollect, "edge mentions negated or invalid condition %d", id)
				}
			}
			to := r.Target()
			if g.Kind(to) != logic.KindLocation {
				s.reqs[to] = append(s.reqs[to], r.Conjunction())
				continue
			}
			if len(r) == 1 {
				s.starts = append(s.starts, to)
				continue
			}
			s.conns = append(s.conns, connection{
				from: r[1],
				to:   to,
				req:  requirement.Requirement{logic.Conjunction(r[2:])},
			})
		}
	}
	for id, r := range s.reqs {
		s.reqs[id] = requirement.Canonicalize(r)
	}
	return s, nil
}

func (s *system) run(p Phase) error {
	switch p {
	case PhaseOptions:
		return s.eliminateAll(p, logic.KindOption)
	case PhaseDisabled:
		if s.retain {
			return nil
		}
		return s.eliminateAll(p, logic.KindDisabledRoute)
	case PhaseTriggers:
		return s.eliminateAll(p, logic.KindTrigger, logic.KindBoss)
	case PhaseLocations:
		return s.solveLocations()
	case PhaseConditions:
		return s.eliminateAll(p, logic.KindCondition)
	}
	return fmt.Errorf("integrate: invalid phase %s", p)
}

func (s *system) eliminateAll(p Phase, kinds ...logic.Kind) error {
	for _, n := range s.g.Nodes() {
		if !slices.Contains(kinds, n.Kind()) {
			continue
		}
		if err := s.eliminate(n.ID, p); err != nil {
			return err
		}
	}
	return nil
}

// eliminate replaces id by its own requirement everywhere. Routes through id
// that need id itself are dropped: a node cannot be its own prerequisite.
func (s *system) eliminate(id logic.NodeID, p Phase) error {
	c := id.Condition()
	r := s.reqs[id].Drop(c)
	for _, a := range r.Atoms() {
		if s.done[logic.NodeID(a)] {
			return s.structural(id, p, "requirement mentions finalized %s %q", s.g.Kind(logic.NodeID(a)), s.g.ConditionName(a))
		}
	}
	delete(s.reqs, id)
	s.substitute(c, r)
	s.done[id] = true
	return nil
}

func (s *system) substitute(x requirement.Condition, repl requirement.Requirement) {
	for id, r := range s.reqs {
		if r.Mentions(x) {
			s.reqs[id] = requirement.Substitute(r, x, repl)
		}
	}
	for i := range s.conns {
		if s.conns[i].req.Mentions(x) {
			s.conns[i].req = requirement.Substitute(s.conns[i].req, x, repl)
		}
	}
}

func (s *system) solveLocations() error {
	w := newWorklist(s)
	if err := w.run(); err != nil {
		return err
	}
	locs := s.g.OfKind(logic.KindLocation)
	for _, id := range locs {
		s.locs[id] = requirement.Canonicalize(w.reached[id])
	}
	for _, id := range locs {
		s.substitute(id.Condition(), s.locs[id])
		s.done[id] = true
	}
	s.conns, s.starts = nil, nil
	return nil
}

// verify asserts that every node other than items, slots and retained
// markers was eliminated, and that slot requirements mention items only.
func (s *system) verify() error {
	for _, n := range s.g.Nodes() {
		switch n.Kind() {
		case logic.KindItemGet, logic.KindSlot:
			continue
		case logic.KindDisabledRoute:
			if s.retained[n.ID] {
				continue
			}
		}
		if !s.done[n.ID] {
			return s.structural(n.ID, PhaseVerify, "not eliminated")
		}
	}
	for _, slot := range s.g.OfKind(logic.KindSlot) {
		for _, a := range s.reqs[slot].Atoms() {
			id := logic.NodeID(a)
			if s.g.Kind(id) == logic.KindItemGet || s.retained[id] {
				continue
			}
			return s.structural(slot, PhaseVerify, "requirement still mentions %s %q", s.g.Kind(id), s.g.Name(id))
		}
	}
	return nil
}

func (s *system) result() (*Result, error) {
	res := &Result{
		Graph:     s.g,
		Index:     reach.New(),
		Slots:     make(map[logic.NodeID]requirement.Requirement),
		Locations: s.locs,
	}
	for _, id := range s.g.OfKind(logic.KindItemGet) {
		if _, err := res.Index.AddItem(id); err != nil {
			return nil, fmt.Errorf("integrate: %w", err)
		}
	}
	for _, slot := range s.g.OfKind(logic.KindSlot) {
		idx, err := res.Index.AddSlot(slot)
		if err != nil {
			return nil, fmt.Errorf("integrate: %w", err)
		}
		req := s.reqs[slot]
		res.Slots[slot] = req
		if err := res.Index.SetRequirement(slot, req); err != nil {
			return nil, fmt.Errorf("integrate: %w", err)
		}
		for _, c := range req {
			if s.mentionsRetained(c) {
				continue
			}
			items := make([]logic.NodeID, len(c))
			for i, a := range c {
				items[i] = logic.NodeID(a)
			}
			if err := res.Index.AddRoute(slot, items...); err != nil {
				return nil, fmt.Errorf("integrate: %w", err)
			}
		}
		if len(res.Index.Routes(idx)) == 0 {
			res.Unreachable = append(res.Unreachable, slot)
		}
	}
	for _, n := range s.g.Nodes() {
		if s.retained[n.ID] {
			res.Retained = append(res.Retained, n.ID)
		}
	}
	return res, nil
}

func (s *system) mentionsRetained(c requirement.Conjunction) bool {
	for _, a := range c {
		if s.retained[logic.NodeID(a)] {
			return true
		}
	}
	return false
}
