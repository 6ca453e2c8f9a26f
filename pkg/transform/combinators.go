package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// Glue adapts a Transformation plus the status it should observe into a
// scheduler.Scheduler: calling Schedule on the result invokes
// t.Transform(d, next, sink, status). This is how Pack threads the next
// pipeline stage through as a later stage's inner_scheduler.
func Glue(t Transformation, next scheduler.Scheduler, status *Status) scheduler.Scheduler {
	return scheduler.Func(func(d *dag.DAG, sink chain.Sink) error {
		return t.Transform(d, next, sink, status)
	})
}

// packed is the Transformation returned by Pack.
type packed struct {
	t1, t2 Transformation
}

// Pack sequences t1 then t2: t1 runs first, and whatever it treats as its
// inner scheduler is actually t2 glued onto the caller's own inner
// scheduler. Both stages observe and mutate the same status, so flags set
// by either are visible to the caller - only the top-level entry point
// (PipelineScheduler.Schedule) brackets the whole composed call with begin/end observability
// hooks, so an arbitrarily deep Pack nesting still reports exactly one
// begin/end pair.
func Pack(t1, t2 Transformation) Transformation {
	return &packed{t1: t1, t2: t2}
}

func (p *packed) Name() string { return p.t1.Name() + "+" + p.t2.Name() }

func (p *packed) Transform(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	return p.t1.Transform(d, Glue(p.t2, inner, status), sink, status)
}

// Pipeline left-folds Pack over ts: Pipeline(T1, T2, T3) is
// Pack(Pack(T1, T2), T3). It panics if ts is empty.
func Pipeline(ts ...Transformation) Transformation {
	if len(ts) == 0 {
		panic("transform: Pipeline requires at least one transformation")
	}
	result := ts[0]
	for _, t := range ts[1:] {
		result = Pack(result, t)
	}
	return result
}

// auxLoop is the "A" from the design's Loop combinator: once invoked with
// a status reporting no change and no junction, it hands off to the
// caller's inner scheduler; otherwise it re-runs body with a fresh
// status, so that a later no-op iteration can be told apart from the one
// that just made progress.
type auxLoop struct {
	body Transformation
}

func (a *auxLoop) Name() string { return "loop-aux" }

func (a *auxLoop) Transform(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	if !status.ModifiedGraph && !status.Junction {
		return inner.Schedule(d, sink)
	}
	fresh := &Status{}
	return a.body.Transform(d, inner, sink, fresh)
}

// Loop builds a fixed-point loop around t: t runs, and if it reported any
// change or a junction, the whole pack(t, loop) recurses with a fresh
// status; once an iteration reports neither, the loop hands off to the
// inner scheduler. Termination follows from every non-final iteration
// being forced to set ModifiedGraph or Junction - see the design note in
// §4.5.
func Loop(t Transformation) Transformation {
	a := &auxLoop{}
	a.body = Pack(t, a)
	return a.body
}
