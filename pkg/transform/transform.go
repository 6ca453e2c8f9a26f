// Package transform implements the rewrite pipeline that sits between the
// raw input DAG and the register-pressure schedulers in
// pkg/scheduler/list and pkg/scheduler/exact.
//
// # Overview
//
// A scheduler alone only orders an already-nice DAG well; most of the
// register-pressure wins come from rewriting the graph first: collapsing
// fused chains, breaking symmetric branch-merges that would otherwise
// force the exact search to explore equivalent subtrees twice, splitting
// a DAG along an order-dependency cut into independently schedulable
// halves, and so on. Each rewrite is a [Transformation]; [Pack],
// [Pipeline] and [Loop] compose them into the single top-level
// [Transformation] [BuildPipeline] returns.
//
// # Status propagation
//
// [Status] carries three booleans threaded through a chain of composed
// transformations: ModifiedGraph, Junction (a sub-DAG split occurred) and
// Deadlock (the transformation fully scheduled the DAG itself, without
// calling the inner scheduler at all). Deadlock and Junction are mutually
// exclusive - setting one clears the other, enforced by [Status.SetJunction]
// and [Status.SetDeadlock].
package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// Status carries the three flags a transformation reports to its caller.
// The zero value ("nothing happened yet") is what a fresh pass starts
// with.
type Status struct {
	ModifiedGraph bool
	Junction      bool
	Deadlock      bool
}

// SetModified records that the transformation rewrote the DAG in place.
func (s *Status) SetModified() { s.ModifiedGraph = true }

// SetJunction records a sub-DAG split, clearing Deadlock.
func (s *Status) SetJunction() {
	s.Junction = true
	s.Deadlock = false
}

// SetDeadlock records that the transformation scheduled the DAG directly
// without needing the inner scheduler, clearing Junction.
func (s *Status) SetDeadlock() {
	s.Deadlock = true
	s.Junction = false
}

// Transformation is a single rewrite/scheduling step in the pipeline. It
// may rewrite d in place, split it into independently-schedulable
// sub-DAGs (scheduling each into sink itself and reporting Junction), or
// emit a schedule directly into sink without consulting inner at all
// (reporting Deadlock) - see collapse_chains for the latter. Otherwise it
// delegates to inner, the next stage in the pipeline.
type Transformation interface {
	// Name identifies the transformation for logging and error messages.
	Name() string
	// Transform applies the rewrite. inner is the scheduler (or the next
	// pipeline stage, wrapped via Glue) to consult once this stage is
	// done rewriting; sink is where a final unit order is appended;
	// status accumulates this call's (and any nested calls') flags.
	Transform(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error
}

// Func adapts a plain function to the Transformation interface, the way
// scheduler.Func does for schedulers.
type Func struct {
	FuncName string
	Fn       func(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error
}

// Name implements Transformation.
func (f *Func) Name() string { return f.FuncName }

// Transform implements Transformation.
func (f *Func) Transform(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	return f.Fn(d, inner, sink, status)
}
