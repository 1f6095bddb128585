package logic

import (
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// Edges returns the routes contributed by node id under flags. Most routes
// target the node itself; locations, triggers and bosses also contribute
// routes into the slots and locations they lead to.
//
// A nil flags value behaves like [NoFlags].
func (g *Graph) Edges(id NodeID, flags Flags) []Route {
	if flags == nil {
		flags = NoFlags
	}
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	switch p := n.Payload.(type) {
	case *Location:
		return g.locationEdges(id, p)
	case *ItemGet, *Area:
		return nil
	case *Slot:
		if p.Location == 0 {
			return nil
		}
		return []Route{{id, p.Location}}
	case *Trigger:
		out := routesTo(id, p.Routes)
		if p.Slot != 0 {
			out = append(out, Route{p.Slot, id})
		}
		return out
	case *Boss:
		return bossEdges(id, p)
	case *Condition:
		return routesTo(id, p.Routes)
	case *Option:
		if flags.Enabled(p.Flag) {
			return []Route{{id}}
		}
		return nil
	case *DisabledRoute:
		if flags.Enabled(p.Flag) {
			return []Route{append(Route{id}, p.Deps...)}
		}
		return nil
	}
	return nil
}

// AllEdges returns the edges of every node in id order.
func (g *Graph) AllEdges(flags Flags) []Route {
	var out []Route
	for _, n := range g.nodes {
		out = append(out, g.Edges(n.ID, flags)...)
	}
	return out
}

func (g *Graph) locationEdges(id NodeID, l *Location) []Route {
	var out []Route
	if l.Start {
		out = append(out, Route{id})
	}
	for _, c := range l.Connections {
		out = append(out, connectionRoute(c.To, id, l.Boss, c.Deps))
		if c.Bidirectional {
			var guard NodeID
			if back, ok := g.Node(c.To); ok {
				if bl, ok := back.Payload.(*Location); ok {
					guard = bl.Boss
				}
			}
			out = append(out, connectionRoute(id, c.To, guard, c.Deps))
		}
	}
	for _, s := range l.Slots {
		out = append(out, Route{s, id})
	}
	return out
}

func connectionRoute(to, from, guard NodeID, deps []NodeID) Route {
	r := make(Route, 0, len(deps)+3)
	r = append(r, to, from)
	r = append(r, deps...)
	if guard != 0 {
		r = append(r, guard)
	}
	return r
}

func routesTo(target NodeID, routes [][]NodeID) []Route {
	out := make([]Route, 0, len(routes))
	for _, deps := range routes {
		out = append(out, append(Route{target}, deps...))
	}
	return out
}

// BossRequirement returns the requirement to defeat a boss: any registered
// route, combined with its combat requirement.
func BossRequirement(b *Boss) requirement.Requirement {
	var reach requirement.Builder
	for _, deps := range b.Routes {
		reach.AddAll(requirement.Requirement{Conjunction(deps)})
	}
	reach.Restrict(b.Combat)
	return reach.Freeze()
}

func bossEdges(id NodeID, b *Boss) []Route {
	var out []Route
	for _, c := range BossRequirement(b) {
		r := make(Route, 0, len(c)+1)
		r = append(r, id)
		for _, a := range c {
			r = append(r, NodeID(a))
		}
		out = append(out, r)
	}
	if b.Slot != 0 {
		out = append(out, Route{b.Slot, id})
	}
	return out
}
