// Package engine implements the settlement and balance calculations for
// FairSplit: exact cent arithmetic, split strategies, currency normalization,
// itemized expense resolution, balance aggregation, debt settlement
// suggestions, and member identity merge.
//
// Every entry point is a pure function over an in-memory snapshot supplied by
// the caller, except Merge which rewrites the passed-in group in place. The
// package holds no state and performs no I/O; callers are responsible for
// serializing writes to a group's collections.
//
// All splitting math runs in integer cents. A decimal amount enters cent
// arithmetic exactly once (rounded half away from zero) and leaves it exactly
// once (divided by 100 with no floating error), so no computation can lose or
// invent a cent.
package engine
