// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry coordinates hot reloading of code units.
//
// A Registry owns a chain of generations. Each generation wraps one
// definer.Definer and remembers the units it defined. The registry also
// keeps two name sets:
//
//   - loaded: names defined in the current generation. Loading a name that
//     is already in this set rotates the registry: a new generation is
//     chained to the current one and the set is cleared in full.
//   - unloaded: names hidden from LoadByName. Explicit loads always clear
//     the mark before defining.
//
// Superseded generations are never mutated again; units they defined stay
// reachable by name through the parent chain until a newer generation
// shadows them.
//
// # Concurrency
//
// A single mutex serializes the loaded-set check, rotation, both set
// mutations and the dispatch to the current definer. The resource fetch
// therefore runs while the lock is held, so a slow fetch stalls every other
// caller. This keeps rotation exact: N loads of one name always produce
// N-1 rotations, never more.
package registry
