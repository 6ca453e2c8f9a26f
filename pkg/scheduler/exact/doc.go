// Package exact implements the exact register-pressure-minimizing
// scheduler: branch-and-bound search over topological orders of a DAG,
// with memoization keyed by the bitmap of already-scheduled units.
//
// # Algorithm
//
// The search explores, at each state, every ready unit (all
// predecessors scheduled) as the next emission, tracking the running
// peak register pressure and pruning any branch whose running peak
// already meets or exceeds the best complete schedule found so far.
//
// States are memoized by the "scheduled" bitmap: the design's
// correctness note observes that two different prefixes reaching the
// same scheduled subset induce the same live-register state and the
// same ready set, making the best achievable tail peak from that point
// a pure function of the subset - so results are safely cachable and
// reusable regardless of how the subset was reached.
//
// # Timeout
//
// A wall-clock budget bounds the search (checked every ~100 expansions
// to avoid a clock read in the hot path, following the same
// countdown-then-check pattern the teacher's OptimalSearch branch-and-bound
// orderer uses for its own timeout). On timeout, the best complete
// schedule found so far is used; if none was found, [Scheduler.Fallback]
// (normally the list scheduler) is invoked on the original DAG instead.
//
// # Progress and shared memoization
//
// [Scheduler.Progress] and [Scheduler.Debug] mirror the hooks the
// teacher's CLI layer wires into its optimal ordering search, letting a
// caller log heartbeats during a long search. [Scheduler.Store], if set,
// persists (peak, order) results for whole sub-DAGs across separate
// Schedule calls, keyed by a structural [Signature] - worthwhile when
// the same small sub-DAG shape recurs often (e.g. the same basic-block
// skeleton appearing repeatedly across a compilation unit).
package exact
