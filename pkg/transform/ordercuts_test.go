package transform_test

import (
	"testing"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/transform"
)

func TestSimplifyOrderCutsSplitsIndependentSubgraphs(t *testing.T) {
	d := dag.New()
	a, b, x, y := u("a"), u("b"), u("x"), u("y")
	for _, n := range []*instr{a, b, x, y} {
		_ = d.AddUnit(n)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: x, To: y, Kind: dag.Data, Reg: 2})
	// Only an order edge links the two halves, so {a,b} and {x,y} can be
	// scheduled independently.
	_ = d.AddDep(dag.Dep{From: b, To: x, Kind: dag.Order})

	_, status, rec := passThrough(transform.SimplifyOrderCuts(), d)
	if !status.Junction {
		t.Fatalf("expected Junction, got %+v", status)
	}
	total := 0
	for _, c := range rec.calls {
		if c == 4 {
			t.Fatalf("inner scheduler saw the whole graph at once; expected a split")
		}
		total += c
	}
	if total != 4 {
		t.Fatalf("total scheduled node count = %d, want 4", total)
	}
}

func TestSimplifyOrderCutsNoopOnFullyConnectedGraph(t *testing.T) {
	d := dag.New()
	a, b, c := u("a"), u("b"), u("c")
	for _, n := range []*instr{a, b, c} {
		_ = d.AddUnit(n)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: b, To: c, Kind: dag.Data, Reg: 2})

	_, status, rec := passThrough(transform.SimplifyOrderCuts(), d)
	if status.Junction {
		t.Fatalf("expected no split for a single connected chain, got %+v", status)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 3 {
		t.Fatalf("expected one inner call over all 3 units, got %v", rec.calls)
	}
}
