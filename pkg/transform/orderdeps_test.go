package transform_test

import (
	"testing"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/transform"
)

func TestStripUselessOrderDepsRemovesDuplicates(t *testing.T) {
	d := dag.New()
	a, b := u("a"), u("b")
	_ = d.AddUnit(a)
	_ = d.AddUnit(b)
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Order})
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Order})

	_, status, _ := passThrough(transform.StripUselessOrderDeps(), d)
	if !status.ModifiedGraph {
		t.Fatalf("expected ModifiedGraph, got %+v", status)
	}

	count := 0
	for _, e := range d.Deps() {
		if e.Kind == dag.Order && e.From == dag.Unit(a) && e.To == dag.Unit(b) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("order edge count = %d, want 1", count)
	}
}

func TestStripUselessOrderDepsRemovesTransitiveRedundancy(t *testing.T) {
	d := dag.New()
	a, b, c := u("a"), u("b"), u("c")
	for _, n := range []*instr{a, b, c} {
		_ = d.AddUnit(n)
	}
	// a -> b -> c already forces a before c; a -> c adds nothing.
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Order})
	_ = d.AddDep(dag.Dep{From: b, To: c, Kind: dag.Order})
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Order})

	_, status, _ := passThrough(transform.StripUselessOrderDeps(), d)
	if !status.ModifiedGraph {
		t.Fatalf("expected ModifiedGraph, got %+v", status)
	}

	for _, e := range d.Deps() {
		if e.From == dag.Unit(a) && e.To == dag.Unit(c) {
			t.Fatalf("redundant a->c order edge survived")
		}
	}
}
