package world

import (
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

// builder resolves names while a graph is assembled.
type builder struct {
	w     *World
	g     *logic.Graph
	flags logic.Flags
	magic []logic.NodeID
}

// Build assembles the logic graph for w. Flags are consulted for combat
// requirements only; everything else flag-dependent is decided during
// integration.
func (w *World) Build(flags logic.Flags) (*logic.Graph, error) {
	if flags == nil {
		flags = logic.NoFlags
	}
	b := &builder{w: w, g: logic.New(), flags: flags}
	steps := []func() error{
		b.addItems,
		b.addLabels,
		b.addBosses,
		b.addLocations,
		b.addDisabled,
		b.link,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.g, nil
}

func (b *builder) addItems() error {
	for _, it := range b.w.Items {
		id, err := b.g.AddItem(it.Name, logic.ItemGet{Class: it.Class, Priority: it.Priority, Magic: it.Magic})
		if err != nil {
			return b.fail(err, "item %q", it.Name)
		}
		if it.Magic {
			b.magic = append(b.magic, id)
		}
	}
	return nil
}

// addLabels adds areas, options, conditions and triggers, none of which
// needs another node to exist first.
func (b *builder) addLabels() error {
	for _, a := range b.w.Areas {
		if _, err := b.g.AddArea(a); err != nil {
			return b.fail(err, "area %q", a)
		}
	}
	for _, o := range b.w.Options {
		if _, err := b.g.AddOption(o.Name, o.Flag); err != nil {
			return b.fail(err, "option %q", o.Name)
		}
	}
	for _, c := range b.w.Conditions {
		if _, err := b.g.AddCondition(c.Name); err != nil {
			return b.fail(err, "condition %q", c.Name)
		}
	}
	for _, t := range b.w.Triggers {
		if _, err := b.g.AddTrigger(t.Name); err != nil {
			return b.fail(err, "trigger %q", t.Name)
		}
	}
	return nil
}

func (b *builder) addBosses() error {
	for _, boss := range b.w.Bosses {
		combat, err := b.combat(boss)
		if err != nil {
			return err
		}
		if _, err := b.g.AddBoss(boss.Name, combat); err != nil {
			return b.fail(err, "boss %q", boss.Name)
		}
	}
	return nil
}

// combat assembles the requirement to win a fight.
func (b *builder) combat(boss Boss) (requirement.Requirement, error) {
	guarantee := boss.Combat.Magic && b.flags.Enabled(FlagGuaranteeMagic)
	if guarantee && len(b.magic) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWorld, "boss %q needs magic but no item is magic", boss.Name)
	}

	var r requirement.Builder
	switch {
	case b.flags.Enabled(FlagStoryMode):
		r.AddRoute()
	case len(boss.Combat.Weapons) == 0 && !boss.Combat.Magic:
		r.AddRoute()
	default:
		for _, name := range boss.Combat.Weapons {
			id, err := b.lookup(name, "weapon of boss %q", boss.Name)
			if err != nil {
				return nil, err
			}
			r.AddRoute(id.Condition())
		}
		if boss.Combat.Magic && !guarantee {
			for _, m := range b.magic {
				r.AddRoute(m.Condition())
			}
		}
		if r.Len() == 0 {
			r.AddRoute()
		}
	}
	if guarantee {
		var spells requirement.Builder
		for _, m := range b.magic {
			spells.AddRoute(m.Condition())
		}
		r.Restrict(spells.Freeze())
	}
	return r.Freeze(), nil
}

func (b *builder) addLocations() error {
	for _, l := range b.w.Locations {
		if _, err := b.g.AddLocation(l.Name, l.Start); err != nil {
			return b.fail(err, "location %q", l.Name)
		}
	}
	return nil
}

func (b *builder) addDisabled() error {
	for _, d := range b.w.Disabled {
		deps, err := b.resolve(d.Requires, "disabled route %q", d.Name)
		if err != nil {
			return err
		}
		if _, err := b.g.AddDisabledRoute(d.Name, d.Flag, deps...); err != nil {
			return b.fail(err, "disabled route %q", d.Name)
		}
	}
	return nil
}

// link adds everything that refers to other nodes by name.
func (b *builder) link() error {
	for _, l := range b.w.Locations {
		if err := b.linkLocation(l); err != nil {
			return err
		}
	}
	for _, t := range b.w.Triggers {
		if err := b.grant(t.Name, t.Routes, t.Reward); err != nil {
			return err
		}
	}
	for _, boss := range b.w.Bosses {
		if err := b.grant(boss.Name, boss.Routes, boss.Reward); err != nil {
			return err
		}
	}
	for _, c := range b.w.Conditions {
		if err := b.grant(c.Name, c.Routes, nil); err != nil {
			return err
		}
	}
	if b.w.Win != nil {
		slot, err := b.lookup(b.w.Win.Slot, "win slot")
		if err != nil {
			return err
		}
		item, err := b.lookup(b.w.Win.Item, "win item")
		if err != nil {
			return err
		}
		if err := b.g.SetWin(slot, item); err != nil {
			return b.fail(err, "win")
		}
	}
	return nil
}

func (b *builder) linkLocation(l Location) error {
	id, _ := b.g.Lookup(l.Name)
	for _, c := range l.Chests {
		if _, err := b.g.AddChest(c.Name, id, c.Accepts...); err != nil {
			return b.fail(err, "chest %q", c.Name)
		}
	}
	if l.Area != "" {
		area, err := b.lookup(l.Area, "area of %q", l.Name)
		if err != nil {
			return err
		}
		if err := b.g.SetArea(id, area); err != nil {
			return b.fail(err, "location %q", l.Name)
		}
	}
	if l.Guard != "" {
		boss, err := b.lookup(l.Guard, "guard of %q", l.Name)
		if err != nil {
			return err
		}
		if err := b.g.Guard(id, boss); err != nil {
			return b.fail(err, "location %q", l.Name)
		}
	}
	for _, e := range l.Exits {
		to, err := b.lookup(e.To, "exit of %q", l.Name)
		if err != nil {
			return err
		}
		deps, err := b.resolve(e.Requires, "exit %q -> %q", l.Name, e.To)
		if err != nil {
			return err
		}
		if err := b.g.Connect(id, to, e.Bidirectional, deps...); err != nil {
			return b.fail(err, "exit %q -> %q", l.Name, e.To)
		}
	}
	return nil
}

func (b *builder) grant(name string, routes [][]string, reward *Chest) error {
	id, _ := b.g.Lookup(name)
	for _, route := range routes {
		deps, err := b.resolve(route, "route of %q", name)
		if err != nil {
			return err
		}
		if err := b.g.Grant(id, deps...); err != nil {
			return b.fail(err, "route of %q", name)
		}
	}
	if reward != nil {
		if _, err := b.g.AddReward(reward.Name, id, reward.Accepts...); err != nil {
			return b.fail(err, "reward of %q", name)
		}
	}
	return nil
}

func (b *builder) lookup(name, format string, args ...any) (logic.NodeID, error) {
	id, ok := b.g.Lookup(name)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidWorld, "unknown node %q in "+format, append([]any{name}, args...)...)
	}
	return id, nil
}

func (b *builder) resolve(names []string, format string, args ...any) ([]logic.NodeID, error) {
	ids := make([]logic.NodeID, 0, len(names))
	for _, n := range names {
		id, err := b.lookup(n, format, args...)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *builder) fail(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvalidWorld, err, format, args...)
}
