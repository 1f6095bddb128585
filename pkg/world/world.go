// Package world reads world descriptions from YAML and builds the logic
// graph the integrator solves.
//
// # Format
//
// A world file lists items, locations and the story nodes that connect
// them. Prerequisites are given by name and may refer to any other node:
//
//	name: Crystal Tower
//	win: {slot: Throne, item: Crown}
//	items:
//	  - {name: Sword, class: weapon}
//	  - {name: Fire, class: spell, magic: true}
//	  - {name: Crown}
//	locations:
//	  - name: Village
//	    start: true
//	    chests: [{name: Village Chest}]
//	    exits:
//	      - {to: Tower, requires: [Sword], bidirectional: true}
//	  - name: Tower
//	    guard: Dragon
//	    chests: [{name: Throne}]
//	bosses:
//	  - name: Dragon
//	    routes: [[Tower]]
//	    combat: {weapons: [Sword], magic: true}
//
// # Boss combat
//
// A boss's combat requirement is any one of its weapons, or nothing at all
// when the "story-mode" flag is on. When the boss needs magic and the
// "guarantee-magic" flag is on, some magic item is also required; otherwise
// magic items count as weapons.
package world

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/itemshuffle/pkg/errors"
)

// Flag names consulted while building combat requirements.
const (
	FlagStoryMode      = "story-mode"
	FlagGuaranteeMagic = "guarantee-magic"
)

// World is a decoded world file.
type World struct {
	Name       string      `yaml:"name" json:"name"`
	Win        *Win        `yaml:"win,omitempty" json:"win,omitempty"`
	Items      []Item      `yaml:"items" json:"items"`
	Areas      []string    `yaml:"areas,omitempty" json:"areas,omitempty"`
	Options    []Option    `yaml:"options,omitempty" json:"options,omitempty"`
	Locations  []Location  `yaml:"locations" json:"locations"`
	Triggers   []Trigger   `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Bosses     []Boss      `yaml:"bosses,omitempty" json:"bosses,omitempty"`
	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Disabled   []Disabled  `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// Win names the win slot and the item always delivered there.
type Win struct {
	Slot string `yaml:"slot"`
	Item string `yaml:"item"`
}

// Item is an obtainable item.
type Item struct {
	Name     string `yaml:"name"`
	Class    string `yaml:"class,omitempty"`
	Priority int    `yaml:"priority,omitempty"`
	Magic    bool   `yaml:"magic,omitempty"`
}

// Option is a node satisfied when Flag is on.
type Option struct {
	Name string `yaml:"name"`
	Flag string `yaml:"flag"`
}

// Location is a place with chests and exits.
type Location struct {
	Name   string  `yaml:"name"`
	Start  bool    `yaml:"start,omitempty"`
	Area   string  `yaml:"area,omitempty"`
	Guard  string  `yaml:"guard,omitempty"`
	Chests []Chest `yaml:"chests,omitempty"`
	Exits  []Exit  `yaml:"exits,omitempty"`
}

// Chest is a slot inside a location.
type Chest struct {
	Name    string   `yaml:"name"`
	Accepts []string `yaml:"accepts,omitempty"`
}

// Exit connects a location to another one.
type Exit struct {
	To            string   `yaml:"to"`
	Requires      []string `yaml:"requires,omitempty"`
	Bidirectional bool     `yaml:"bidirectional,omitempty"`
}

// Trigger is a story event, optionally handing out a reward slot.
type Trigger struct {
	Name   string     `yaml:"name"`
	Routes [][]string `yaml:"routes"`
	Reward *Chest     `yaml:"reward,omitempty"`
}

// Boss is a fight gated by its routes and its combat requirement.
type Boss struct {
	Name   string     `yaml:"name"`
	Routes [][]string `yaml:"routes"`
	Combat Combat     `yaml:"combat,omitempty"`
	Reward *Chest     `yaml:"reward,omitempty"`
}

// Combat describes what it takes to win a fight.
type Combat struct {
	Weapons []string `yaml:"weapons,omitempty"`
	Magic   bool     `yaml:"magic,omitempty"`
}

// Condition is a named requirement with alternative routes.
type Condition struct {
	Name   string     `yaml:"name"`
	Routes [][]string `yaml:"routes"`
}

// Disabled is an off-logic route, satisfied by Requires when Flag is on.
type Disabled struct {
	Name     string   `yaml:"name"`
	Flag     string   `yaml:"flag"`
	Requires []string `yaml:"requires,omitempty"`
}

// Parse decodes a world file. Unknown fields are rejected.
func Parse(data []byte) (*World, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var w World
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWorld, err, "decode world")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadFile reads and decodes a world file.
func LoadFile(path string) (*World, []byte, error) {
	if err := errors.ValidateWorldFile(path); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeFileNotFound, "world file %s not found", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "read world")
	}
	w, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return w, data, nil
}

// Validate checks names and the presence of the required sections. Name
// resolution happens in [World.Build].
func (w *World) Validate() error {
	if len(w.Locations) == 0 {
		return errors.New(errors.ErrCodeInvalidWorld, "world has no locations")
	}
	var names []string
	for _, it := range w.Items {
		names = append(names, it.Name)
	}
	names = append(names, w.Areas...)
	for _, o := range w.Options {
		names = append(names, o.Name)
	}
	for _, l := range w.Locations {
		names = append(names, l.Name)
		for _, c := range l.Chests {
			names = append(names, c.Name)
		}
	}
	for _, t := range w.Triggers {
		names = append(names, t.Name)
		if t.Reward != nil {
			names = append(names, t.Reward.Name)
		}
	}
	for _, b := range w.Bosses {
		names = append(names, b.Name)
		if b.Reward != nil {
			names = append(names, b.Reward.Name)
		}
	}
	for _, c := range w.Conditions {
		names = append(names, c.Name)
	}
	for _, d := range w.Disabled {
		names = append(names, d.Name)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if err := errors.ValidateName(n); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidWorld, err, "node name")
		}
		if seen[n] {
			return errors.New(errors.ErrCodeInvalidWorld, "duplicate node name %q", n)
		}
		seen[n] = true
	}
	return nil
}
