package transform_test

import (
	"testing"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/transform"
)

func TestCollapseChainsEmitsDirectlyAndSetsDeadlock(t *testing.T) {
	d := dag.New()
	a, b, c := u("a"), u("b"), u("c")
	for _, n := range []*instr{a, b, c} {
		_ = d.AddUnit(n)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: b, To: c, Kind: dag.Data, Reg: 2})

	sink, status, rec := passThrough(transform.CollapseChains(), d)
	if !status.Deadlock {
		t.Fatalf("expected Deadlock for a simple chain, got %+v", status)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("inner scheduler should never be consulted for a simple chain, got %v", rec.calls)
	}
	if sink.Len() != 3 {
		t.Fatalf("sink length = %d, want 3", sink.Len())
	}
	order := []string{sink.At(0).String(), sink.At(1).String(), sink.At(2).String()}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v, want [a b c]", order)
	}
}

func TestCollapseChainsNoopOnBranchingGraph(t *testing.T) {
	d := dag.New()
	root, c1, c2 := u("root"), u("c1"), u("c2")
	for _, n := range []*instr{root, c1, c2} {
		_ = d.AddUnit(n)
	}
	_ = d.AddDep(dag.Dep{From: root, To: c1, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: root, To: c2, Kind: dag.Data, Reg: 2})

	_, status, rec := passThrough(transform.CollapseChains(), d)
	if status.Deadlock {
		t.Fatalf("expected no Deadlock for a branching graph, got %+v", status)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 3 {
		t.Fatalf("expected the inner scheduler to be consulted once over 3 units, got %v", rec.calls)
	}
}
