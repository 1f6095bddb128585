// Package nodelink renders world graphs as node-link diagrams.
//
// # Overview
//
// Locations become boxes, grouped by area. Slots hang off the location,
// trigger or boss that hands them out. Exits carry their prerequisites as
// edge labels, which makes a quick visual check of a world description
// possible before it is shuffled.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// With [Options.Detailed] and [Options.Requirements] set, each slot label
// also shows its integrated requirement; [Options.Placements] adds the item
// placed there by a generated filling.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package nodelink
