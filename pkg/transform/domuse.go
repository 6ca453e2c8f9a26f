package transform

import (
	"sort"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/schederr"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// SplitDefUseDomUseDeps looks for a producer u and one of its data
// consumers that dominates every other consumer of the same register
// (every other consumer is reachable from it), and rewires the other
// consumers to read through the dominator instead of directly from u.
// The dominator is wrapped in a chain unit with IRP+1 to account for the
// register now being live inside it rather than just passing through its
// boundary. This turns one register with several live consumers into one
// short-lived register (u to the dominator) plus several freshly
// generated ones (dominator to each consumer), which the exact search can
// often schedule more tightly. Expands chain-unit wrappers after
// scheduling.
func SplitDefUseDomUseDeps() Transformation {
	return &Func{FuncName: "split_def_use_dom_use_deps", Fn: splitDefUseDomUseDeps}
}

type producerReg struct {
	u dag.Unit
	r dag.Reg
}

func splitDefUseDomUseDeps(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	pm := dag.BuildPathMap(d)
	gen := newRegGen(d)

	groups := make(map[producerReg][]dag.Dep)
	for _, e := range d.Deps() {
		if e.Kind == dag.Data && e.Reg != 0 {
			k := producerReg{e.From, e.Reg}
			groups[k] = append(groups[k], e)
		}
	}
	keys := make([]producerReg, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].u.String() != keys[j].u.String() {
			return keys[i].u.String() < keys[j].u.String()
		}
		return keys[i].r < keys[j].r
	})

	modified := false
	for _, k := range keys {
		edges := groups[k]
		if len(edges) < 2 || !d.Has(k.u) {
			continue
		}

		dominator := findDominator(pm, edges)
		if dominator == nil {
			continue
		}

		valid := true
		for _, e := range edges {
			if !d.Has(e.From) || !d.Has(e.To) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		for _, e := range edges {
			if e.To == dominator {
				continue
			}
			d.RemoveDep(e)
			nr := gen.fresh()
			if err := d.AddDep(dag.Dep{From: dominator, To: e.To, Kind: dag.Data, Reg: nr, Physical: e.Physical}); err != nil {
				return schederr.Wrap(schederr.ErrCodeTransformInconsistency, err,
					"split_def_use_dom_use_deps: failed to rewire dependency through dominator")
			}
		}

		wrapped := dag.NewChainUnit([]dag.Unit{dominator}, dominator.InternalRegisterPressure()+1)
		dag.CollapseSubgraph(d, map[dag.Unit]struct{}{dominator: {}}, wrapped)
		modified = true
	}

	if modified {
		status.SetModified()
	}

	tmp := chain.New()
	if err := inner.Schedule(d, tmp); err != nil {
		return err
	}
	for i := 0; i < tmp.Len(); i++ {
		expandChainUnit(tmp.At(i), sink)
	}
	return nil
}

// findDominator returns the consumer that can reach every other consumer
// in edges, or nil if none does.
func findDominator(pm dag.PathMap, edges []dag.Dep) dag.Unit {
	for _, cand := range edges {
		dominatesAll := true
		for _, other := range edges {
			if other.To == cand.To {
				continue
			}
			if !pm.Has(cand.To, other.To) {
				dominatesAll = false
				break
			}
		}
		if dominatesAll {
			return cand.To
		}
	}
	return nil
}
