package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// Options configures world diagram rendering.
type Options struct {
	// Detailed adds each slot's integrated requirement to its label.
	Detailed bool

	// Requirements holds the integrated requirement per slot. Used when
	// Detailed is set.
	Requirements map[logic.NodeID]requirement.Requirement

	// Placements labels slots with the item put there.
	Placements map[logic.NodeID]logic.NodeID
}

// ToDOT converts a world graph to Graphviz DOT. Locations are boxes grouped
// into one cluster per area, slots are ellipses attached to where they are
// found, and story nodes are diamonds. Exits are labeled with their
// prerequisites.
func ToDOT(g *logic.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	areas := make(map[logic.NodeID][]logic.NodeID)
	for _, id := range g.OfKind(logic.KindLocation) {
		n, _ := g.Node(id)
		area := n.Payload.(*logic.Location).Area
		areas[area] = append(areas[area], id)
	}
	for _, area := range append([]logic.NodeID{0}, g.OfKind(logic.KindArea)...) {
		locs := areas[area]
		if len(locs) == 0 {
			continue
		}
		indent := "  "
		if area != 0 {
			fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", area)
			fmt.Fprintf(&buf, "    label=%q;\n", g.Name(area))
			buf.WriteString("    style=dashed;\n")
			indent = "    "
		}
		for _, id := range locs {
			fmt.Fprintf(&buf, "%s%q [%s];\n", indent, g.Name(id), strings.Join(locationAttrs(g, id), ", "))
		}
		if area != 0 {
			buf.WriteString("  }\n")
		}
	}

	for _, n := range g.Nodes() {
		switch p := n.Payload.(type) {
		case *logic.Slot:
			fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(slotAttrs(g, n, opts), ", "))
		case *logic.Trigger, *logic.Boss:
			fmt.Fprintf(&buf, "  %q [shape=diamond, style=filled, fillcolor=%s];\n", n.Name, storyColor(p))
		}
	}

	buf.WriteString("\n")
	for _, r := range g.AllEdges(logic.NoFlags) {
		writeEdge(&buf, g, r)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func locationAttrs(g *logic.Graph, id logic.NodeID) []string {
	n, _ := g.Node(id)
	l := n.Payload.(*logic.Location)
	attrs := []string{fmt.Sprintf("label=%q", n.Name)}
	if l.Start {
		attrs = append(attrs, "penwidth=3")
	}
	if l.Boss != 0 {
		attrs = append(attrs, "fillcolor=mistyrose")
	}
	return attrs
}

func slotAttrs(g *logic.Graph, n *logic.Node, opts Options) []string {
	lines := []string{n.Name}
	if item, ok := opts.Placements[n.ID]; ok {
		lines = append(lines, "["+g.Name(item)+"]")
	}
	if opts.Detailed {
		if r, ok := opts.Requirements[n.ID]; ok {
			lines = append(lines, r.Format(g.ConditionName))
		}
	}
	attrs := []string{
		fmt.Sprintf("label=%q", strings.Join(lines, "\n")),
		"shape=ellipse",
	}
	if win, _ := g.Win(); win == n.ID {
		attrs = append(attrs, "fillcolor=gold")
	}
	return attrs
}

func storyColor(p logic.Payload) string {
	if _, ok := p.(*logic.Boss); ok {
		return "salmon"
	}
	return "lightblue"
}

// writeEdge draws one route. Routes into locations come from the location
// in Route[1]; everything else is drawn from each prerequisite that is a
// drawn node.
func writeEdge(buf *bytes.Buffer, g *logic.Graph, r logic.Route) {
	target := r.Target()
	if !drawn(g, target) {
		return
	}
	deps := r.Deps()
	if g.Kind(target) == logic.KindLocation && len(deps) > 0 {
		from, rest := deps[0], deps[1:]
		attrs := ""
		if len(rest) > 0 {
			names := make([]string, len(rest))
			for i, d := range rest {
				names[i] = g.Name(d)
			}
			attrs = fmt.Sprintf(" [label=%q]", strings.Join(names, " & "))
		}
		fmt.Fprintf(buf, "  %q -> %q%s;\n", g.Name(from), g.Name(target), attrs)
		return
	}
	for _, d := range deps {
		if drawn(g, d) {
			fmt.Fprintf(buf, "  %q -> %q [style=dotted];\n", g.Name(d), g.Name(target))
		}
	}
}

func drawn(g *logic.Graph, id logic.NodeID) bool {
	switch g.Kind(id) {
	case logic.KindLocation, logic.KindSlot, logic.KindTrigger, logic.KindBoss:
		return true
	}
	return false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales from the
// origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
