// Package integrate reduces a node graph to per-slot item requirements.
//
// # Overview
//
// A [logic.Graph] describes reachability in terms of every node kind:
// locations, triggers, bosses, conditions, options and so on. Item placement
// only cares about items and slots, so [Integrate] eliminates everything else
// and hands back a [reach.Index] whose routes mention items only.
//
// # Phases
//
// Elimination runs in a fixed order (see [DefaultPhases]):
//
//  1. Options become "always" or "never" depending on the flags.
//  2. Disabled-route markers are eliminated unless [Options.RetainDisabled].
//  3. Triggers and bosses are substituted into every route naming them.
//  4. Locations are solved by a worklist that propagates dependency sets
//     from the start locations through every connection.
//  5. Conditions are substituted last.
//
// Each step replaces a node by its own requirement everywhere it is named,
// so later phases never see an earlier phase's nodes. The worklist refuses
// any dependency that is not an item, a condition, a retained marker or a
// location, so running it before triggers are gone fails loudly.
//
// # Errors
//
// Anything left over after the last phase is a [*StructuralError] naming the
// node. Slots that end without a route are not errors; they are listed in
// [Result.Unreachable].
//
// [logic.Graph]: github.com/matzehuels/itemshuffle/pkg/logic.Graph
// [reach.Index]: github.com/matzehuels/itemshuffle/pkg/reach.Index
package integrate
