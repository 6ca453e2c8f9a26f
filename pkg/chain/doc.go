// Package chain implements the schedule chain: an ordered sequence of
// schedule units produced by a scheduler, and the sink interface
// schedulers and transformations append to.
//
// A [Chain] supports position-indexed insert/remove/expand/set in
// addition to append, validates itself against a [dag.DAG] with
// [Chain.CheckAgainstDAG], and computes peak register pressure against a
// DAG with [Chain.ComputeRPAgainstDAG] by simulating liveness as it walks
// the chain in order.
package chain
