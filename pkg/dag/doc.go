// Package dag implements the mutable dependence graph over which the
// scheduler operates.
//
// # Overview
//
// A [DAG] is a directed acyclic graph whose nodes are [Unit] values
// (instructions, or synthetic chain-units introduced by a transformation)
// and whose edges are [Dep] values carrying either a data register or a
// pure ordering constraint. The graph owns its topology (the edge list and
// the per-node predecessor/successor indexes); it does not own the units
// themselves, which are shared handles that may appear in several DAGs at
// once (see [DAG.DeepDup]).
//
// # Invariants
//
// After every public mutation the following hold (checked by
// [DAG.Consistent]):
//
//   - every node referenced by an edge is present in the node set;
//   - the global edge list and each node's predecessor/successor lists
//     agree;
//   - roots are exactly the nodes with no predecessors, leaves exactly
//     the nodes with no successors.
//
// Acyclicity is the caller's responsibility for input graphs; every
// transformation in the sibling transform package is required to
// preserve it, but the DAG itself does not check for cycles on every
// mutation.
//
// # Derived queries
//
// Reachability, register-liveness sets, the all-pairs path matrix, and
// node fusion/collapse are implemented in queries.go; they are pure with
// respect to the graph they inspect except for [Fuse] and
// [CollapseSubgraph], which mutate and document exactly what they
// change.
//
// # Registers
//
// [Reg] zero means "no register" (an order-only dependency, or a
// not-yet-assigned data dependency before the transform package's
// unique_reg_ids renumbering has run). Once registers have been made unique, zero never
// appears on a [Data] dependency.
package dag
