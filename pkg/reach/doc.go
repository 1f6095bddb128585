// Package reach provides the reachability index: a compact, bitset-based
// answer to "which slots can be reached holding these items?".
//
// # Overview
//
// The integrator reduces a world to, for every slot, a list of item sets each
// sufficient to reach it. An [Index] stores those sets as [bits.Set] values
// over densely numbered items, plus an inverted index from each item to the
// slots that mention it.
//
// [Index.Traverse] is the workhorse of item placement. Given the held items
// and a partial [Filling], it repeatedly marks reachable slots and picks up
// whatever those slots contain, re-examining only the slots a newly held item
// could unlock, until nothing changes.
//
// # Diagnostics
//
// [Index.Unreachable] lists orphaned slots that have no route at all.
// [Index.Depths] reports the wave in which each slot first opens up, and
// [Index.Missing] replays a filling from scratch to find slots a player could
// never reach. Neither is needed for placement itself.
//
// # Concurrency
//
// The index is read-only after construction. Every query allocates its own
// working state, so concurrent queries are safe.
//
// [bits.Set]: github.com/matzehuels/itemshuffle/pkg/bits
package reach
