package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// SimplifyOrderCuts looks for a proper subset C of the DAG that is closed
// under "predecessor via any edge" and "successor via data edges" -
// meaning nothing outside C points into C, and nothing in C reaches
// outside it via a data (register-carrying) edge. When found, C and the
// remainder can be scheduled independently: C first (order edges leaving
// C into the remainder are satisfied once every C unit precedes every
// remainder unit in the sink), then the remainder. This is typically a
// cheap way to shrink the exact search's sub-DAG size well below
// pkg/scheduler/exact's MaxNodes cap.
func SimplifyOrderCuts() Transformation {
	return &Func{FuncName: "simplify_order_cuts", Fn: simplifyOrderCuts}
}

func simplifyOrderCuts(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	units := d.Units()
	if len(units) == 0 {
		return inner.Schedule(d, sink)
	}

	var cut map[dag.Unit]struct{}
	for _, seed := range units {
		c := orderCutClosure(d, seed)
		if len(c) < len(units) {
			cut = c
			break
		}
	}
	if cut == nil {
		return inner.Schedule(d, sink)
	}
	status.SetJunction()

	remainderSet := make(map[dag.Unit]struct{}, len(units)-len(cut))
	for _, u := range units {
		if _, ok := cut[u]; !ok {
			remainderSet[u] = struct{}{}
		}
	}

	extracted := dag.DupSubgraph(d, cut)
	remainder := dag.DupSubgraph(d, remainderSet)

	if err := simplifyOrderCuts(extracted, inner, sink, &Status{}); err != nil {
		return err
	}
	return simplifyOrderCuts(remainder, inner, sink, &Status{})
}

func orderCutClosure(d *dag.DAG, seed dag.Unit) map[dag.Unit]struct{} {
	inSet := map[dag.Unit]struct{}{seed: {}}
	queue := []dag.Unit{seed}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, p := range d.PredUnits(u) {
			if _, ok := inSet[p]; !ok {
				inSet[p] = struct{}{}
				queue = append(queue, p)
			}
		}
		for _, e := range d.Succs(u) {
			if e.Kind != dag.Data {
				continue
			}
			if _, ok := inSet[e.To]; !ok {
				inSet[e.To] = struct{}{}
				queue = append(queue, e.To)
			}
		}
	}
	return inSet
}
