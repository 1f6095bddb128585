package integrate

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/itemshuffle/pkg/bits"
	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/reach"
	"github.com/matzehuels/itemshuffle/pkg/requirement"
)

func must(t *testing.T) func(logic.NodeID, error) logic.NodeID {
	return func(id logic.NodeID, err error) logic.NodeID {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// req builds the canonical requirement "any of routes".
func req(routes ...[]logic.NodeID) requirement.Requirement {
	var r requirement.Requirement
	for _, ids := range routes {
		r = append(r, logic.Conjunction(ids))
	}
	return requirement.Canonicalize(r)
}

func ids(v ...logic.NodeID) []logic.NodeID { return v }

func assertSlot(t *testing.T, res *Result, slot logic.NodeID, want requirement.Requirement) {
	t.Helper()
	if got := res.Slots[slot]; !got.Equal(want) {
		t.Errorf("%s: got %s, want %s", res.Graph.Name(slot), res.Format(got), res.Format(want))
	}
}

func TestAcyclicCuts(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Start", true))
	a := must(t)(g.AddLocation("A", false))
	b := must(t)(g.AddLocation("B", false))
	x := must(t)(g.AddItem("X", logic.ItemGet{}))
	y := must(t)(g.AddItem("Y", logic.ItemGet{}))
	z := must(t)(g.AddItem("Z", logic.ItemGet{}))
	c0 := must(t)(g.AddChest("Start Chest", s))
	c1 := must(t)(g.AddChest("A Chest", a))
	c2 := must(t)(g.AddChest("B Chest", b))
	check(t, g.Connect(s, a, false, x))
	check(t, g.Connect(a, b, false, y))
	check(t, g.Connect(s, b, false, z))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, c0, requirement.Always())
	assertSlot(t, res, c1, req(ids(x)))
	assertSlot(t, res, c2, req(ids(x, y), ids(z)))
	if len(res.Unreachable) != 0 {
		t.Errorf("Unreachable = %v", res.Unreachable)
	}

	// Every route in the index is one of the minimal cuts.
	i, _ := res.Index.SlotIndex(c2)
	ix, _ := res.Index.ItemIndex(x)
	iy, _ := res.Index.ItemIndex(y)
	iz, _ := res.Index.ItemIndex(z)
	routes := res.Index.Routes(i)
	if len(routes) != 2 || !slices.Contains(routes, bits.Of(ix, iy)) || !slices.Contains(routes, bits.Of(iz)) {
		t.Errorf("index routes = %v", routes)
	}
}

func TestOrphanedSlot(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Start", true))
	island := must(t)(g.AddLocation("Island", false))
	must(t)(g.AddChest("Shore", s))
	lost := must(t)(g.AddChest("Lost Chest", island))
	trig := must(t)(g.AddTrigger("Never Happens"))
	gift := must(t)(g.AddReward("Never Given", trig))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := ids(lost, gift); !slices.Equal(res.Unreachable, want) {
		t.Errorf("Unreachable = %v, want %v", res.Unreachable, want)
	}
	if !res.Slots[lost].IsNever() {
		t.Errorf("lost chest requirement = %s", res.Format(res.Slots[lost]))
	}
	if got := res.Index.Unreachable(); !slices.Equal(got, res.Unreachable) {
		t.Errorf("Index.Unreachable = %v", got)
	}
}

// gatedByTrigger has a connection that opens only after a trigger fires.
func gatedByTrigger(t *testing.T) (g *logic.Graph, trig, chest, key logic.NodeID) {
	t.Helper()
	g = logic.New()
	s := must(t)(g.AddLocation("Village", true))
	cave := must(t)(g.AddLocation("Cave", false))
	key = must(t)(g.AddItem("Key", logic.ItemGet{}))
	trig = must(t)(g.AddTrigger("Opened Gate"))
	check(t, g.Grant(trig, s, key))
	check(t, g.Connect(s, cave, false, trig))
	chest = must(t)(g.AddChest("Cave Chest", cave))
	return g, trig, chest, key
}

func TestPhaseOrderIsLoadBearing(t *testing.T) {
	g, trig, chest, key := gatedByTrigger(t)

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, chest, req(ids(key)))

	_, err = Integrate(g, nil, Options{Phases: []Phase{
		PhaseOptions, PhaseDisabled, PhaseLocations, PhaseTriggers, PhaseConditions,
	}})
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("reordered phases: err = %v, want *StructuralError", err)
	}
	if se.Node != trig || se.Phase != PhaseLocations || se.Kind != logic.KindTrigger {
		t.Errorf("StructuralError = %+v", se)
	}
}

func TestMissingPhase(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Start", true))
	c := must(t)(g.AddCondition("Can Swim"))
	check(t, g.Grant(c, s))

	_, err := Integrate(g, nil, Options{Phases: []Phase{
		PhaseOptions, PhaseDisabled, PhaseTriggers, PhaseLocations,
	}})
	var se *StructuralError
	if !errors.As(err, &se) || se.Node != c || se.Phase != PhaseVerify {
		t.Fatalf("err = %v, want StructuralError for condition in verify phase", err)
	}
}

func TestInvalidPhases(t *testing.T) {
	for _, phases := range [][]Phase{
		{PhaseCollect},
		{PhaseVerify},
		{PhaseOptions, PhaseOptions},
		{Phase(42)},
	} {
		if _, err := Integrate(logic.New(), nil, Options{Phases: phases}); err == nil {
			t.Errorf("phases %v: expected error", phases)
		}
	}
}

func TestOptions(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Start", true))
	shop := must(t)(g.AddLocation("Shop", false))
	coin := must(t)(g.AddItem("Coin", logic.ItemGet{}))
	free := must(t)(g.AddOption("Free Shop", "free-shop"))
	check(t, g.Connect(s, shop, false, free))
	check(t, g.Connect(s, shop, false, coin))
	counter := must(t)(g.AddChest("Counter", shop))

	res, err := Integrate(g, logic.NoFlags, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, counter, req(ids(coin)))

	on := logic.StaticFlags{Bools: map[string]bool{"free-shop": true}}
	res, err = Integrate(g, on, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, counter, requirement.Always())
}

func TestDisabledRoutes(t *testing.T) {
	build := func(t *testing.T) (*logic.Graph, logic.NodeID, logic.NodeID, logic.NodeID) {
		g := logic.New()
		s := must(t)(g.AddLocation("Start", true))
		ledge := must(t)(g.AddLocation("Ledge", false))
		boots := must(t)(g.AddItem("Boots", logic.ItemGet{}))
		glitch := must(t)(g.AddDisabledRoute("Wall Clip", "allow-glitches", boots))
		check(t, g.Connect(s, ledge, false, glitch))
		chest := must(t)(g.AddChest("Ledge Chest", ledge))
		return g, chest, glitch, boots
	}

	t.Run("disabled", func(t *testing.T) {
		g, chest, _, _ := build(t)
		res, err := Integrate(g, nil, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(res.Unreachable, chest) {
			t.Errorf("Unreachable = %v", res.Unreachable)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		g, chest, _, boots := build(t)
		on := logic.StaticFlags{Bools: map[string]bool{"allow-glitches": true}}
		res, err := Integrate(g, on, Options{})
		if err != nil {
			t.Fatal(err)
		}
		assertSlot(t, res, chest, req(ids(boots)))
	})

	t.Run("retained", func(t *testing.T) {
		g, chest, glitch, _ := build(t)
		res, err := Integrate(g, nil, Options{RetainDisabled: true})
		if err != nil {
			t.Fatal(err)
		}
		assertSlot(t, res, chest, req(ids(glitch)))
		if !slices.Equal(res.Retained, ids(glitch)) {
			t.Errorf("Retained = %v", res.Retained)
		}
		if !slices.Contains(res.Unreachable, chest) {
			t.Errorf("retained marker took part in solving: Unreachable = %v", res.Unreachable)
		}
	})
}

func TestTriggerCycle(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Town", true))
	x := must(t)(g.AddItem("Letter", logic.ItemGet{}))
	y := must(t)(g.AddItem("Seal", logic.ItemGet{}))
	t1 := must(t)(g.AddTrigger("Delivered Letter"))
	t2 := must(t)(g.AddTrigger("Sealed Pact"))
	check(t, g.Grant(t1, s, x))
	check(t, g.Grant(t1, t2))
	check(t, g.Grant(t2, t1, y))
	g1 := must(t)(g.AddReward("Letter Reward", t1))
	g2 := must(t)(g.AddReward("Pact Reward", t2))

	loopA := must(t)(g.AddTrigger("Chicken"))
	loopB := must(t)(g.AddTrigger("Egg"))
	check(t, g.Grant(loopA, loopB))
	check(t, g.Grant(loopB, loopA))
	g3 := must(t)(g.AddReward("Omelette", loopB))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, g1, req(ids(x)))
	assertSlot(t, res, g2, req(ids(x, y)))
	assertSlot(t, res, g3, requirement.Never())
}

func TestLocationCycleAndLocationDeps(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Start", true))
	a := must(t)(g.AddLocation("A", false))
	b := must(t)(g.AddLocation("B", false))
	x := must(t)(g.AddItem("X", logic.ItemGet{}))
	y := must(t)(g.AddItem("Y", logic.ItemGet{}))
	check(t, g.Connect(s, a, true, x))
	check(t, g.Connect(a, s, false, y)) // redundant loop back
	// B opens from Start once A has been visited, e.g. a switch in A.
	check(t, g.Connect(s, b, false, a))
	cb := must(t)(g.AddChest("B Chest", b))
	cs := must(t)(g.AddChest("Start Chest", s))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, cs, requirement.Always())
	assertSlot(t, res, cb, req(ids(x)))
	if got := res.Locations[a]; !got.Equal(req(ids(x))) {
		t.Errorf("A = %s", res.Format(got))
	}
}

func TestBossGuardAndCombat(t *testing.T) {
	g := logic.New()
	lair := must(t)(g.AddLocation("Lair", true))
	beyond := must(t)(g.AddLocation("Beyond", false))
	wind := must(t)(g.AddItem("Wind Sword", logic.ItemGet{}))
	fire := must(t)(g.AddItem("Fire Sword", logic.ItemGet{}))
	refresh := must(t)(g.AddItem("Refresh", logic.ItemGet{Magic: true}))

	var combat requirement.Builder
	combat.AddRoute(wind.Condition())
	combat.AddRoute(fire.Condition())
	combat.Restrict(requirement.Route(refresh.Condition()))
	boss := must(t)(g.AddBoss("Vampire", combat.Freeze()))
	check(t, g.Grant(boss, lair))
	check(t, g.Guard(lair, boss))
	check(t, g.Connect(lair, beyond, false))
	drop := must(t)(g.AddReward("Vampire Drop", boss))
	chest := must(t)(g.AddChest("Beyond Chest", beyond))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := req(ids(wind, refresh), ids(fire, refresh))
	assertSlot(t, res, drop, want)
	assertSlot(t, res, chest, want)
}

func TestConditions(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Shore", true))
	sea := must(t)(g.AddLocation("Sea", false))
	boat := must(t)(g.AddItem("Boat", logic.ItemGet{}))
	fins := must(t)(g.AddItem("Fins", logic.ItemGet{}))
	oar := must(t)(g.AddItem("Oar", logic.ItemGet{}))
	rowing := must(t)(g.AddCondition("Can Row"))
	crossing := must(t)(g.AddCondition("Can Cross"))
	check(t, g.Grant(rowing, boat, oar))
	check(t, g.Grant(crossing, rowing))
	check(t, g.Grant(crossing, fins))
	check(t, g.Connect(s, sea, false, crossing))
	chest := must(t)(g.AddChest("Wreck", sea))

	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertSlot(t, res, chest, req(ids(fins), ids(boat, oar)))
	if got := res.Locations[sea]; !got.Equal(req(ids(crossing))) {
		t.Errorf("Sea before conditions = %s", res.Format(got))
	}
}

func TestNegatedCombatRejected(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Arena", true))
	curse := must(t)(g.AddItem("Curse", logic.ItemGet{}))
	boss := must(t)(g.AddBoss("Knight", requirement.Route(curse.Condition().Not())))
	check(t, g.Grant(boss, s))

	_, err := Integrate(g, nil, Options{})
	var se *StructuralError
	if !errors.As(err, &se) || se.Phase != PhaseCollect || se.Node != boss {
		t.Fatalf("err = %v, want collect-phase StructuralError for boss", err)
	}
}

func TestSlotDependencyRejected(t *testing.T) {
	g := logic.New()
	s := must(t)(g.AddLocation("Hall", true))
	c1 := must(t)(g.AddChest("First", s))
	cond := must(t)(g.AddCondition("Opened First"))
	check(t, g.Grant(cond, c1))
	trig := must(t)(g.AddTrigger("Bell"))
	check(t, g.Grant(trig, cond))
	gift := must(t)(g.AddReward("Bell Gift", trig))

	_, err := Integrate(g, nil, Options{})
	var se *StructuralError
	if !errors.As(err, &se) || se.Node != gift || se.Phase != PhaseVerify {
		t.Fatalf("err = %v, want verify-phase StructuralError for %d", err, gift)
	}
}

func TestIndexReplaysIntegratedWorld(t *testing.T) {
	g, _, chest, key := gatedByTrigger(t)
	start := must(t)(g.AddChest("Village Chest", 1))
	res, err := Integrate(g, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	x := res.Index
	fill := reach.NewFilling(x.NumSlots())
	si, _ := x.SlotIndex(start)
	ki, _ := x.ItemIndex(key)
	fill[si] = ki
	if !x.Complete(fill) {
		t.Errorf("Missing = %v", x.Missing(fill))
	}
	ci, _ := x.SlotIndex(chest)
	if got := x.Depths(bits.Set{}, fill)[ci]; got != 1 {
		t.Errorf("depth of cave chest = %d, want 1", got)
	}
}
