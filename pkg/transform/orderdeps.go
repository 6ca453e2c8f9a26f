package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// StripUselessOrderDeps removes duplicate (u, v, Order) edges, then
// removes any (a, u, Order) edge for which some other predecessor b of u
// already forces a before u transitively (path[a][b] holds) - the order
// edge adds no constraint that scheduling doesn't already guarantee.
// Reports ModifiedGraph iff at least one edge was removed.
func StripUselessOrderDeps() Transformation {
	return &Func{FuncName: "strip_useless_order_deps", Fn: stripUselessOrderDeps}
}

type unitPair struct{ from, to dag.Unit }

func stripUselessOrderDeps(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	removed := false

	seenPairs := make(map[unitPair]bool)
	var dups []dag.Dep
	for _, e := range d.Deps() {
		if e.Kind != dag.Order {
			continue
		}
		p := unitPair{e.From, e.To}
		if seenPairs[p] {
			dups = append(dups, e)
			continue
		}
		seenPairs[p] = true
	}
	for _, e := range dups {
		d.RemoveDep(e)
		removed = true
	}

	pm := dag.BuildPathMap(d)
	for _, u := range d.Units() {
		preds := d.Preds(u)
		var orderPreds []dag.Dep
		var predUnits []dag.Unit
		for _, e := range preds {
			if e.Kind == dag.Order {
				orderPreds = append(orderPreds, e)
			}
			predUnits = append(predUnits, e.From)
		}
		for _, e := range orderPreds {
			a := e.From
			redundant := false
			for _, b := range predUnits {
				if b == a {
					continue
				}
				if pm.Has(a, b) {
					redundant = true
					break
				}
			}
			if redundant {
				d.RemoveDep(e)
				removed = true
			}
		}
	}

	if removed {
		status.SetModified()
	}
	return inner.Schedule(d, sink)
}
