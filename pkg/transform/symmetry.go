package transform

import (
	"sort"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// BreakSymmetricalBranchMerge looks for a dominator unit u with two or more
// children that are structurally interchangeable - each has u as its only
// predecessor, the same single successor c (their merge point), identical
// internal register pressure, and no dependency among themselves - and
// imposes an arbitrary but fixed order among them via Order deps.
//
// Such children are symmetric under permutation: any schedule that runs
// them in one order has a mirror schedule running them in another with
// identical register pressure, so without a tie-break the exact search
// explores every permutation of the group for no benefit - the classic
// K(2,2) tangle, fixed here by routing through a fixed total order instead
// of leaving the choice open. Fixing one order prunes all the others from
// the search space.
func BreakSymmetricalBranchMerge() Transformation {
	return &Func{FuncName: "break_symmetrical_branch_merge", Fn: breakSymmetricalBranchMerge}
}

func breakSymmetricalBranchMerge(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	modified := false
	for _, u := range d.Units() {
		if !d.Has(u) {
			continue
		}
		group := symmetricGroup(d, u)
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].String() < group[j].String() })
		for i := 0; i+1 < len(group); i++ {
			if err := d.AddDep(dag.Dep{From: group[i], To: group[i+1], Kind: dag.Order}); err != nil {
				return err
			}
		}
		modified = true
	}

	if modified {
		status.SetModified()
	}
	return inner.Schedule(d, sink)
}

// edgeShape describes an edge's kind and physical flag, ignoring its
// endpoints and its specific register id (which by construction differs
// per branch even when the branches are otherwise structurally identical),
// so two edges with the same shape are interchangeable.
type edgeShape struct {
	kind     dag.DepKind
	physical bool
}

func shapeOf(e dag.Dep) edgeShape {
	return edgeShape{kind: e.Kind, physical: e.Physical}
}

// symmetricGroup returns u's children that are structurally interchangeable:
// u is each child's only predecessor, every child in the group has the same
// single successor (the collector), the same incoming-edge shape from u, the
// same outgoing-edge shape to the collector, the same internal register
// pressure, and no dependency already exists between any two of them.
func symmetricGroup(d *dag.DAG, u dag.Unit) []dag.Unit {
	type candidate struct {
		unit       dag.Unit
		collector  dag.Unit
		inShape    edgeShape
		outShape   edgeShape
		irp        uint
	}

	var candidates []candidate
	for _, e := range d.Succs(u) {
		c := e.To
		if len(d.Preds(c)) != 1 {
			continue
		}
		succs := d.Succs(c)
		if len(succs) != 1 {
			continue
		}
		candidates = append(candidates, candidate{
			unit:      c,
			collector: succs[0].To,
			inShape:   shapeOf(e),
			outShape:  shapeOf(succs[0]),
			irp:       c.InternalRegisterPressure(),
		})
	}
	if len(candidates) < 2 {
		return nil
	}

	best := candidates[0]
	var group []dag.Unit
	for _, cand := range candidates {
		if cand.collector == best.collector && cand.inShape == best.inShape &&
			cand.outShape == best.outShape && cand.irp == best.irp {
			group = append(group, cand.unit)
		}
	}
	if len(group) < 2 {
		return nil
	}

	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if dependsDirectly(d, group[i], group[j]) || dependsDirectly(d, group[j], group[i]) {
				return nil
			}
		}
	}
	return group
}

func dependsDirectly(d *dag.DAG, a, b dag.Unit) bool {
	for _, e := range d.Succs(a) {
		if e.To == b {
			return true
		}
	}
	return false
}
