package fill

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/itemshuffle/pkg/logic"
	"github.com/matzehuels/itemshuffle/pkg/logic/integrate"
	"github.com/matzehuels/itemshuffle/pkg/random"
	"github.com/matzehuels/itemshuffle/pkg/reach"
)

// scripted is a Random whose Shuffle calls either keep or reverse the
// order, consuming one entry of reverse per call. Once the script runs out,
// shuffles keep the order.
type scripted struct {
	reverse []bool
}

func (s *scripted) Pick(int) int { return 0 }

func (s *scripted) Shuffle(n int, swap func(i, j int)) {
	if len(s.reverse) == 0 {
		return
	}
	rev := s.reverse[0]
	s.reverse = s.reverse[1:]
	if rev {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
}

type chainWorld struct {
	g                  *logic.Graph
	x, y, crown        logic.NodeID
	startChest, aChest logic.NodeID
	throne             logic.NodeID
	filler             *Filler
}

// chain builds Start -> A (needs X) -> B (needs Y), a chest in Start and in
// A, and the win slot in B.
func chain(t *testing.T) *chainWorld {
	t.Helper()
	w := &chainWorld{g: logic.New()}
	g := w.g
	id := func(id logic.NodeID, err error) logic.NodeID {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	start := id(g.AddLocation("Start", true))
	a := id(g.AddLocation("A", false))
	b := id(g.AddLocation("B", false))
	w.x = id(g.AddItem("X", logic.ItemGet{}))
	w.y = id(g.AddItem("Y", logic.ItemGet{}))
	w.crown = id(g.AddItem("Crown", logic.ItemGet{}))
	w.startChest = id(g.AddChest("Start Chest", start))
	w.aChest = id(g.AddChest("A Chest", a))
	w.throne = id(g.AddChest("Throne", b))
	if err := g.Connect(start, a, false, w.x); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(a, b, false, w.y); err != nil {
		t.Fatal(err)
	}
	if err := g.SetWin(w.throne, w.crown); err != nil {
		t.Fatal(err)
	}
	res, err := integrate.Integrate(g, nil, integrate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	w.filler = &Filler{Index: res.Index, Win: w.throne, Terminal: w.crown}
	return w
}

func (w *chainWorld) placed(f reach.Filling) map[logic.NodeID]logic.NodeID {
	return w.filler.Index.Placements(f)
}

func TestChainScenario(t *testing.T) {
	tests := []struct {
		name   string
		script []bool
		ok     bool
	}{
		// Tokens X, Y. X only fits the start chest, then Y the A chest.
		{"x first", []bool{false}, true},
		// Tokens Y, X. Y sees both chests; the A chest leaves room for X.
		{"y first into a", []bool{true, true}, true},
		// Tokens Y, X. Y takes the start chest, stranding X.
		{"y first into start", []bool{true, false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := chain(t)
			f, ok := w.filler.Fill(&scripted{reverse: tt.script})
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if f != nil {
					t.Errorf("failed fill returned %v", f)
				}
				return
			}
			got := w.placed(f)
			if got[w.startChest] != w.x || got[w.aChest] != w.y || got[w.throne] != w.crown {
				t.Errorf("placements = %v", got)
			}
			if !w.filler.Index.Complete(f) {
				t.Errorf("Missing = %v", w.filler.Index.Missing(f))
			}
		})
	}
}

func TestUnknownWin(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Filler)
	}{
		{"unknown slot", func(f *Filler) { f.Win = 999 }},
		{"unknown terminal", func(f *Filler) { f.Terminal = 999 }},
		{"no terminal", func(f *Filler) { f.Terminal = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := *chain(t).filler
			tt.mutate(&f)
			if got, ok := f.Fill(random.New(1)); ok || got != nil {
				t.Errorf("Fill = %v, %v; want nil, false", got, ok)
			}
		})
	}
}

func TestChainAlwaysPutsXInStart(t *testing.T) {
	w := chain(t)
	successes := 0
	for seed := range uint64(64) {
		f, ok := w.filler.Fill(random.New(seed))
		if !ok {
			continue
		}
		successes++
		if got := w.placed(f)[w.startChest]; got != w.x {
			t.Fatalf("seed %d: start chest holds %s", seed, w.g.Name(got))
		}
	}
	if successes == 0 {
		t.Fatal("no seed succeeded")
	}
}

func TestDeterministic(t *testing.T) {
	w := chain(t)
	for seed := range uint64(16) {
		f1, ok1 := w.filler.Fill(random.New(seed))
		f2, ok2 := w.filler.Fill(random.New(seed))
		if ok1 != ok2 || !slices.Equal(f1, f2) {
			t.Fatalf("seed %d: %v/%v vs %v/%v", seed, f1, ok1, f2, ok2)
		}
	}
}

func TestTooFewSlots(t *testing.T) {
	x := reach.New()
	for id := logic.NodeID(1); id <= 3; id++ {
		if _, err := x.AddItem(id); err != nil {
			t.Fatal(err)
		}
	}
	for _, slot := range []logic.NodeID{10, 11} {
		if err := x.AddRoute(slot); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := (&Filler{Index: x}).Fill(random.New(1)); ok {
		t.Error("placed three items into two slots")
	}
}

func TestOrphanNeverChosen(t *testing.T) {
	x := reach.New()
	for id := logic.NodeID(1); id <= 4; id++ {
		if _, err := x.AddItem(id); err != nil {
			t.Fatal(err)
		}
	}
	for slot := logic.NodeID(10); slot < 16; slot++ {
		if err := x.AddRoute(slot); err != nil {
			t.Fatal(err)
		}
	}
	orphan, err := x.AddSlot(99)
	if err != nil {
		t.Fatal(err)
	}
	filler := &Filler{Index: x}
	for seed := range uint64(50) {
		f, ok := filler.Fill(random.New(seed))
		if !ok {
			t.Fatalf("seed %d failed", seed)
		}
		if f[orphan] != reach.Empty {
			t.Fatalf("seed %d: orphan holds item %d", seed, f[orphan])
		}
	}
}

func TestFitRespected(t *testing.T) {
	g := logic.New()
	loc, _ := g.AddLocation("Shop", true)
	sword, _ := g.AddItem("Sword", logic.ItemGet{Class: "weapon"})
	herb, _ := g.AddItem("Herb", logic.ItemGet{Class: "consumable"})
	rack, _ := g.AddChest("Weapon Rack", loc, "weapon")
	shelf, _ := g.AddChest("Shelf", loc)
	res, err := integrate.Integrate(g, nil, integrate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	filler := &Filler{Index: res.Index, Fit: ClassFit(g)}
	for seed := range uint64(20) {
		f, ok := filler.Fill(random.New(seed))
		if !ok {
			// Sword on the shelf strands Herb.
			continue
		}
		got := res.Index.Placements(f)
		if got[rack] == herb {
			t.Fatalf("seed %d: herb on the weapon rack", seed)
		}
		if got[rack] != sword || got[shelf] != herb {
			t.Fatalf("seed %d: placements = %v", seed, got)
		}
	}
}

func TestPriorityTokens(t *testing.T) {
	x := reach.New()
	for id := logic.NodeID(1); id <= 3; id++ {
		if _, err := x.AddItem(id); err != nil {
			t.Fatal(err)
		}
	}
	f := &Filler{Index: x, Priority: func(id logic.NodeID) int { return int(id) - 1 }}
	got := f.tokens(2)
	if want := []int{0, 1}; !slices.Equal(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}
	f.Priority = func(id logic.NodeID) int { return int(id) }
	if got := f.tokens(reach.Empty); len(got) != 6 {
		t.Errorf("len(tokens) = %d, want 6", len(got))
	}
}

func TestSoundOnRandomWorlds(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))
	for world := range 100 {
		x := reach.New()
		const nItems, nSlots = 6, 12
		for i := range nItems {
			_, _ = x.AddItem(logic.NodeID(i + 1))
		}
		for s := range nSlots {
			slot := logic.NodeID(100 + s)
			if s < 2 {
				_ = x.AddRoute(slot)
				continue
			}
			for range 1 + rng.IntN(2) {
				var items []logic.NodeID
				for range rng.IntN(3) {
					items = append(items, logic.NodeID(1+rng.IntN(nItems-1)))
				}
				_ = x.AddRoute(slot, items...)
			}
		}
		filler := &Filler{Index: x, Win: 100 + nSlots - 1, Terminal: nItems}
		for seed := range uint64(5) {
			f, ok := filler.Fill(random.New(seed))
			if !ok {
				continue
			}
			if !x.Complete(f) {
				t.Fatalf("world %d seed %d: Missing = %v", world, seed, x.Missing(f))
			}
			seen := make(map[int]bool)
			for _, item := range f {
				if item == reach.Empty {
					continue
				}
				if seen[item] {
					t.Fatalf("world %d seed %d: item %d placed twice", world, seed, item)
				}
				seen[item] = true
			}
			if len(seen) != nItems {
				t.Fatalf("world %d seed %d: placed %d items", world, seed, len(seen))
			}
			win, _ := x.SlotIndex(filler.Win)
			term, _ := x.ItemIndex(filler.Terminal)
			if f[win] != term {
				t.Fatalf("world %d seed %d: win slot holds %d", world, seed, f[win])
			}
		}
	}
}
