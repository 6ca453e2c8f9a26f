package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// CollapseChains checks whether the DAG is already a simple chain - a
// single root and every unit having at most one successor (of any kind).
// A chain has exactly one valid schedule order, so searching for it is
// wasted work: CollapseChains walks it directly and emits it into sink,
// reporting Deadlock so the pipeline stops here instead of handing an
// already-solved problem to the inner scheduler.
func CollapseChains() Transformation {
	return &Func{FuncName: "collapse_chains", Fn: collapseChains}
}

func collapseChains(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	units := d.Units()
	if len(units) == 0 {
		return inner.Schedule(d, sink)
	}

	order, ok := chainOrder(d, units)
	if !ok {
		return inner.Schedule(d, sink)
	}

	status.SetDeadlock()
	for _, u := range order {
		sink.Append(u)
	}
	return nil
}

// chainOrder returns units in schedule order if d is a simple chain: every
// unit has at most one successor, and the chain has a single root.
func chainOrder(d *dag.DAG, units []dag.Unit) ([]dag.Unit, bool) {
	var root dag.Unit
	roots := 0
	for _, u := range units {
		if len(d.Succs(u)) > 1 {
			return nil, false
		}
		if len(d.Preds(u)) == 0 {
			root = u
			roots++
		}
	}
	if roots != 1 {
		return nil, false
	}

	order := make([]dag.Unit, 0, len(units))
	cur := root
	seen := make(map[dag.Unit]struct{}, len(units))
	for {
		if _, dup := seen[cur]; dup {
			return nil, false
		}
		seen[cur] = struct{}{}
		order = append(order, cur)
		succs := d.Succs(cur)
		if len(succs) == 0 {
			break
		}
		cur = succs[0].To
	}
	if len(order) != len(units) {
		return nil, false
	}
	return order, true
}
