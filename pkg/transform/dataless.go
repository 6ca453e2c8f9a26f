package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// StripDatalessUnits iteratively removes any unit with zero internal
// register pressure and no data predecessors or successors - a pure
// ordering constraint with nothing live to schedule around - splicing a
// transitive order edge between each of its order neighbors so their
// relative ordering survives the removal. Removed units are remembered
// and spliced back into the chain once the reduced DAG has been
// scheduled: just before the first surviving unit among its original
// successors, or failing that just after the last surviving unit among
// its original predecessors, or at the end if it had neither.
//
// Grounded on the teacher's layering.go Kahn-queue traversal style (walk
// units, mutate in place, repeat until no progress), generalized from
// "assign a row" to "remove and bridge".
func StripDatalessUnits() Transformation {
	return &Func{FuncName: "strip_dataless_units", Fn: stripDatalessUnits}
}

type removedUnit struct {
	u     dag.Unit
	preds []dag.Unit
	succs []dag.Unit
}

func stripDatalessUnits(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	var removed []removedUnit

	for {
		progressed := false
		for _, u := range d.Units() {
			if u.InternalRegisterPressure() != 0 || hasDataEdge(d, u) {
				continue
			}

			preds := d.PredUnits(u)
			succs := d.SuccUnits(u)
			for _, a := range preds {
				for _, b := range succs {
					_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Order})
				}
			}
			removed = append(removed, removedUnit{u: u, preds: preds, succs: succs})
			d.RemoveUnit(u)
			progressed = true
			status.SetModified()
		}
		if !progressed {
			break
		}
	}

	if len(removed) == 0 {
		return inner.Schedule(d, sink)
	}

	tmp := chain.New()
	if err := inner.Schedule(d, tmp); err != nil {
		return err
	}
	for _, r := range removed {
		tmp.Insert(reinsertPosition(tmp, r), r.u)
	}
	for i := 0; i < tmp.Len(); i++ {
		sink.Append(tmp.At(i))
	}
	return nil
}

func hasDataEdge(d *dag.DAG, u dag.Unit) bool {
	for _, e := range d.Preds(u) {
		if e.Kind == dag.Data {
			return true
		}
	}
	for _, e := range d.Succs(u) {
		if e.Kind == dag.Data {
			return true
		}
	}
	return false
}

func reinsertPosition(tmp *chain.Chain, r removedUnit) int {
	for i := 0; i < tmp.Len(); i++ {
		for _, s := range r.succs {
			if tmp.At(i) == s {
				return i
			}
		}
	}
	last := -1
	for i := 0; i < tmp.Len(); i++ {
		for _, p := range r.preds {
			if tmp.At(i) == p && i > last {
				last = i
			}
		}
	}
	if last >= 0 {
		return last + 1
	}
	return tmp.Len()
}
