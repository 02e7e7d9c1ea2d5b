// Package registry provides a thread-safe, insertion-ordered registry for
// values indexed by key.
//
// Ordered backs every handler scope in funcreg: names keep the order they
// were registered in, duplicates can be rejected with Insert, and a scope
// can be stably re-sorted with SortStableFunc.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	r.Keys() // [one two]
//
//	if !r.Insert("one", 10) {
//	    // "one" already registered, value unchanged
//	}
//
// # Ordering
//
// Register on an existing key replaces the value in place. Delete removes
// the key from the order. SortStableFunc reorders keys by their values:
//
//	r.SortStableFunc(func(a, b int) int { return a - b })
//
// # Thread Safety
//
// All methods are safe for concurrent use. Range iterates over a snapshot,
// so the callback may mutate the registry.
package registry
