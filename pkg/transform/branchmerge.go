package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// SplitMergeBranchUnits looks for a unit u whose ancestors P and
// descendants S partition every other unit in the DAG, with no edge
// directly connecting a P unit to an S unit (every P-S relationship runs
// through u). When found, P ∪ {u} and S have nothing left to coordinate
// on once u has executed, so they can be scheduled as two independent
// problems: P ∪ {u} first, then S.
func SplitMergeBranchUnits() Transformation {
	return &Func{FuncName: "split_merge_branch_units", Fn: splitMergeBranchUnits}
}

func splitMergeBranchUnits(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	units := d.Units()
	if len(units) == 0 {
		return inner.Schedule(d, sink)
	}
	pm := dag.BuildPathMap(d)

	for _, u := range units {
		pred, succ, ok := branchPartition(d, pm, units, u)
		if !ok {
			continue
		}

		status.SetJunction()
		firstSet := make(map[dag.Unit]struct{}, len(pred)+1)
		for p := range pred {
			firstSet[p] = struct{}{}
		}
		firstSet[u] = struct{}{}

		first := dag.DupSubgraph(d, firstSet)
		second := dag.DupSubgraph(d, succ)

		if err := inner.Schedule(first, sink); err != nil {
			return err
		}
		return inner.Schedule(second, sink)
	}

	return inner.Schedule(d, sink)
}

// branchPartition reports whether u's ancestors and descendants (per pm)
// partition every other unit with no direct P-S edge.
func branchPartition(d *dag.DAG, pm dag.PathMap, units []dag.Unit, u dag.Unit) (pred, succ map[dag.Unit]struct{}, ok bool) {
	pred = make(map[dag.Unit]struct{})
	succ = make(map[dag.Unit]struct{})
	for _, v := range units {
		if v == u {
			continue
		}
		switch {
		case pm.Has(v, u):
			pred[v] = struct{}{}
		case pm.Has(u, v):
			succ[v] = struct{}{}
		default:
			return nil, nil, false
		}
	}
	for _, e := range d.Deps() {
		_, pFrom := pred[e.From]
		_, sFrom := succ[e.From]
		_, pTo := pred[e.To]
		_, sTo := succ[e.To]
		if (pFrom && sTo) || (sFrom && pTo) {
			return nil, nil, false
		}
	}
	return pred, succ, true
}
