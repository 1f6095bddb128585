// Package pkg provides the libraries behind itemshuffle, an item placement
// randomizer that only produces completable worlds.
//
// # Overview
//
// A world is a graph of locations, slots, items and the events between them.
// Itemshuffle reduces that graph to one requirement per slot, a set of item
// combinations any of which makes the slot reachable, and then shuffles the
// items with assumed fill so that a player starting with nothing can always
// collect everything.
//
// # Architecture
//
//	world.yaml
//	     ↓
//	[world]        parse and build the logic graph
//	     ↓
//	[logic]        nodes, edges and flags
//	     ↓
//	[integrate]    reduce every slot to a requirement over items
//	     ↓
//	[reach]        bitset index of the requirements
//	     ↓
//	[fill]         assumed fill, driven by [random]
//	     ↓
//	[spoiler]      placements by sphere, as text, JSON or a [nodelink] graph
//
// [pipeline] runs these steps with caching ([cache]) and parallel attempts,
// and is shared by the CLI and the HTTP API.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.Options{
//	    Config: config.Config{Seed: 7},
//	    World:  data,
//	})
//	if err != nil {
//	    return err
//	}
//	out, err := runner.Render(ctx, res, pipeline.FormatText)
//
// [world]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/world
// [logic]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/logic
// [integrate]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/logic/integrate
// [reach]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/reach
// [fill]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/fill
// [random]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/random
// [spoiler]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/spoiler
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/itemshuffle/pkg/cache
package pkg
