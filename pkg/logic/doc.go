// Package logic provides the node model of a randomizer world: an arena of
// typed nodes whose prerequisite edges drive item placement.
//
// # Overview
//
// A [Graph] holds every entity the logic cares about, each addressed by a
// dense [NodeID]. The set of node kinds is closed; each node carries exactly
// one [Payload] variant:
//
//   - [Location]: a place, connected to other places by gated exits
//   - [ItemGet]: an obtainable item (a leaf, with no edges of its own)
//   - [Slot]: somewhere an item can be put (chest, boss drop, gift)
//   - [Trigger]: a story flag granted at one or more places
//   - [Boss]: a trigger additionally gated by a combat requirement
//   - [Condition]: a named requirement with externally registered alternatives
//   - [Option]: satisfied when a settings flag is on
//   - [Area]: a grouping label, never part of solving
//   - [DisabledRoute]: an off-logic route kept for tracking
//
// Relationships (connections, rewards, guards, areas) are ids, so the graph
// contains no reference cycles even though the world it describes does.
//
// # Edges
//
// [Graph.Edges] produces a node's prerequisite edges as [Route] values: the
// first element is the target, the rest must all hold. Several routes into
// the same target are alternatives. Edges depend on runtime [Flags], which
// the graph consults but never stores.
//
// # Building
//
//	g := logic.New()
//	start, _ := g.AddLocation("Village", true)
//	cave, _ := g.AddLocation("Cave", false)
//	key, _ := g.AddItem("Key", logic.ItemGet{Class: "key"})
//	_ = g.Connect(start, cave, true, key)
//	_, _ = g.AddChest("Cave Chest", cave)
//
// The graph is read-only once built and can then be handed to the
// integrator in the [integrate] subpackage.
//
// [integrate]: github.com/matzehuels/itemshuffle/pkg/logic/integrate
package logic
