// Package spoiler writes the log of a generated placement: where each item
// went, what it takes to reach that slot, and in which sphere of play it is
// found.
//
// Two formats are supported. [WriteText] produces an aligned table for
// people; [WriteJSON] produces the placement list the patcher consumes.
package spoiler

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/itemshuffle/pkg/bits"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/logic/integrate"
	"github.com/matzehuels/itemshuffle/pkg/reach"
)

// Entry is one line of the log.
type Entry struct {
	Slot        string `json:"slot"`
	Kind        string `json:"kind"`
	Location    string `json:"location,omitempty"`
	Item        string `json:"item,omitempty"`
	Sphere      int    `json:"sphere"`
	Requirement string `json:"requirement"`
}

// Log is a complete spoiler log.
type Log struct {
	World   string  `json:"world"`
	Seed    uint64  `json:"seed"`
	Attempt int     `json:"attempt"`
	Entries []Entry `json:"placements"`
}

// Build collects one entry per slot of res, in slot id order. Sphere is the
// wave of forward play in which the slot is first reached, or -1 for slots
// that are never reached.
func Build(res *integrate.Result, f reach.Filling) []Entry {
	x, g := res.Index, res.Graph
	spheres := x.Depths(bits.Set{}, f)
	out := make([]Entry, 0, x.NumSlots())
	for s := range x.NumSlots() {
		id := x.Slot(s)
		e := Entry{
			Slot:        g.Name(id),
			Sphere:      spheres[s],
			Requirement: res.Format(x.Requirement(s)),
		}
		if n, ok := g.Node(id); ok {
			slot := n.Payload.(*logic.Slot)
			e.Kind = slot.Type.String()
			switch {
			case slot.Location != 0:
				e.Location = g.Name(slot.Location)
			case slot.Source != 0:
				e.Location = g.Name(slot.Source)
			}
		}
		if s < len(f) && f[s] != reach.Empty {
			e.Item = g.Name(x.Item(f[s]))
		}
		out = append(out, e)
	}
	return out
}

// SortBySphere orders entries by sphere, then by slot name. Unreached slots
// go last.
func SortBySphere(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(sortKey(a), sortKey(b)), cmp.Compare(a.Slot, b.Slot))
	})
}

func sortKey(e Entry) int {
	if e.Sphere < 0 {
		return math.MaxInt
	}
	return e.Sphere
}

// WriteJSON writes l as indented JSON.
func WriteJSON(w io.Writer, l Log) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// WriteText writes l as an aligned table. Styling follows the color
// profile of w, so a file or buffer receives plain text.
func WriteText(w io.Writer, l Log) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	head := r.NewStyle().Bold(true).Underline(true)
	dim := r.NewStyle().Faint(true)

	widths := [3]int{len("Slot"), len("Item"), len("Sphere")}
	for _, e := range l.Entries {
		widths[0] = max(widths[0], lipgloss.Width(e.Slot))
		widths[1] = max(widths[1], lipgloss.Width(e.Item))
	}
	cell := func(s lipgloss.Style, i int, v string) string {
		return s.Width(widths[i] + 2).Render(v)
	}

	if _, err := fmt.Fprintf(w, "%s  seed %d  attempt %d\n\n", title.Render(l.World), l.Seed, l.Attempt); err != nil {
		return err
	}
	plain := r.NewStyle()
	line := cell(head, 0, "Slot") + cell(head, 1, "Item") + cell(head, 2, "Sphere") + head.Render("Requires")
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, e := range l.Entries {
		item := e.Item
		if item == "" {
			item = "-"
		}
		sphere := fmt.Sprint(e.Sphere)
		if e.Sphere < 0 {
			sphere = "-"
		}
		line := cell(plain, 0, e.Slot) + cell(plain, 1, item) + cell(plain, 2, sphere) + dim.Render(e.Requirement)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
