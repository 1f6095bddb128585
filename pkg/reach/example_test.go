package reach_test

import (
	"fmt"

	"github.com/matzehuels/itemshuffle/pkg/bits"
	"github.com/matzehuels/itemshuffle/pkg/reach"
)

func ExampleIndex_Traverse() {
	x := reach.New()
	sword, _ := x.AddItem(1)
	_, _ = x.AddItem(2)
	_ = x.AddRoute(10)    // open chest
	_ = x.AddRoute(11, 1) // needs the sword
	_ = x.AddRoute(12, 2) // needs the key

	f := reach.NewFilling(x.NumSlots())
	f[0] = sword
	fmt.Println(x.Traverse(bits.Set{}, f).Slice())
	fmt.Println(x.Depths(bits.Set{}, f))
	fmt.Println(x.Complete(f))
	// Output:
	// [0 1]
	// [0 1 -1]
	// false
}
