package integrate

import (
	"slices"

	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// route is one way into a location: the dependency set held on arrival.
type route struct {
	loc  logic.NodeID
	deps requirement.Conjunction
}

// worklist propagates routes from the start locations through every
// connection until no location gains a new dependency set.
//
// Dependency sets may only hold items, conditions and retained markers.
// A candidate that still names another location is parked until that
// location is reached, then resumed once per dependency set it gains.
type worklist struct {
	s       *system
	out     map[logic.NodeID][]connection
	reached map[logic.NodeID]requirement.Requirement
	waiting map[logic.NodeID][]route
	queue   []route
}

func newWorklist(s *system) *worklist {
	w := &worklist{
		s:       s,
		out:     make(map[logic.NodeID][]connection),
		reached: make(map[logic.NodeID]requirement.Requirement),
		waiting: make(map[logic.NodeID][]route),
	}
	for _, c := range s.conns {
		w.out[c.from] = append(w.out[c.from], c)
	}
	return w
}

func (w *worklist) run() error {
	for _, start := range w.s.starts {
		if err := w.offer(start, requirement.Conjunction{}); err != nil {
			return err
		}
	}
	for len(w.queue) > 0 {
		r := w.queue[0]
		w.queue = w.queue[1:]
		if !w.current(r) {
			continue
		}
		self := r.loc.Condition()
		for _, c := range w.out[r.loc] {
			for _, k := range c.req {
				if err := w.offer(c.to, requirement.Merge(r.deps, k.Without(self))); err != nil {
					return err
				}
			}
		}
		for _, p := range w.waiting[r.loc] {
			if err := w.offer(p.loc, requirement.Merge(p.deps.Without(self), r.deps)); err != nil {
				return err
			}
		}
	}
	return nil
}

// offer registers deps as a way into loc, parking it first when it still
// names another location.
func (w *worklist) offer(loc logic.NodeID, deps requirement.Conjunction) error {
	var wait logic.NodeID
	for _, a := range deps {
		id := logic.NodeID(a)
		switch k := w.s.g.Kind(id); {
		case k == logic.KindItemGet, k == logic.KindCondition:
		case k == logic.KindDisabledRoute && w.s.retained[id]:
		case k == logic.KindLocation:
			if id == loc {
				return nil
			}
			if wait == 0 {
				wait = id
			}
		default:
			return w.s.structural(id, PhaseLocations, "unresolved in route into location %q", w.s.g.Name(loc))
		}
	}
	if wait == 0 {
		w.add(loc, deps)
		return nil
	}
	w.waiting[wait] = append(w.waiting[wait], route{loc: loc, deps: deps})
	rest := deps.Without(wait.Condition())
	for _, d := range slices.Clone(w.reached[wait]) {
		if err := w.offer(loc, requirement.Merge(rest, d)); err != nil {
			return err
		}
	}
	return nil
}

// add records deps for loc unless an existing set is a subset of it, drops
// the existing supersets, and enqueues the new route.
func (w *worklist) add(loc logic.NodeID, deps requirement.Conjunction) {
	cur := w.reached[loc]
	for _, c := range cur {
		if c.SubsetOf(deps) {
			return
		}
	}
	kept := make(requirement.Requirement, 0, len(cur)+1)
	for _, c := range cur {
		if !deps.SubsetOf(c) {
			kept = append(kept, c)
		}
	}
	w.reached[loc] = append(kept, deps)
	w.queue = append(w.queue, route{loc: loc, deps: deps})
}

// current reports whether r has not been absorbed since it was queued.
func (w *worklist) current(r route) bool {
	return slices.ContainsFunc(w.reached[r.loc], func(c requirement.Conjunction) bool {
		return slices.Equal(c, r.deps)
	})
}
