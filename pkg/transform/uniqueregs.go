package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/schederr"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// UniqueRegIDs renumbers every (producer, original register) pair onto a
// fresh register, so that downstream passes - and the exact scheduler's
// live-set bookkeeping, which is keyed by Reg alone - can assume a
// register has exactly one producer. It always reports ModifiedGraph,
// even when the input already happened to be unique, matching the
// design's "always reports modified" note: a pass that conditionally
// skipped renumbering would make the pipeline's fixed-point loop
// termination depend on whether the input was already unique, which the
// design does not want callers to have to reason about.
//
// Physical-register dependencies are left untouched: a physical Reg
// deliberately identifies a hardware register class shared across
// unrelated producer/consumer pairs (see pkg/scheduler/list's
// physical-conflict check), and renumbering it would erase that shared
// identity.
func UniqueRegIDs() Transformation {
	return &Func{FuncName: "unique_reg_ids", Fn: uniqueRegIDs}
}

func uniqueRegIDs(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	type pairKey struct {
		from dag.Unit
		reg  dag.Reg
	}

	var candidates []dag.Dep
	for _, e := range d.Deps() {
		if e.Kind == dag.Data && e.Reg != 0 && !e.Physical {
			candidates = append(candidates, e)
		}
	}

	assigned := make(map[pairKey]dag.Reg, len(candidates))
	gen := newRegGen(d)
	for _, e := range candidates {
		k := pairKey{e.From, e.Reg}
		if _, ok := assigned[k]; !ok {
			assigned[k] = gen.fresh()
		}
	}

	for _, e := range candidates {
		nr := assigned[pairKey{e.From, e.Reg}]
		d.RemoveDep(e)
		e.Reg = nr
		if err := d.AddDep(e); err != nil {
			return schederr.Wrap(schederr.ErrCodeTransformInconsistency, err,
				"unique_reg_ids: failed to re-add dependency %s", e)
		}
	}

	status.SetModified()
	return inner.Schedule(d, sink)
}
