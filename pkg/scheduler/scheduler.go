// Package scheduler defines the scheduler interface shared by the list
// and exact implementations, and by every transformation that needs to
// invoke an inner scheduler on a (sub-)DAG.
package scheduler

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
)

// Scheduler is a pure function (DAG, ChainSink) -> () that appends a
// legal total order of d's units to sink. Implementations must not
// retain d or sink past the call.
type Scheduler interface {
	Schedule(d *dag.DAG, sink chain.Sink) error
}

// Func adapts a plain function to a [Scheduler].
type Func func(d *dag.DAG, sink chain.Sink) error

// Schedule calls f(d, sink).
func (f Func) Schedule(d *dag.DAG, sink chain.Sink) error { return f(d, sink) }
