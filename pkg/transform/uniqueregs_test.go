package transform_test

import (
	"testing"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/transform"
)

func TestUniqueRegIDsRenumbersDuplicates(t *testing.T) {
	d := dag.New()
	a, b, c, e1, e2 := u("a"), u("b"), u("c"), u("e1"), u("e2")
	for _, n := range []*instr{a, b, c, e1, e2} {
		_ = d.AddUnit(n)
	}
	// a and b coincidentally both produce a register numbered 1 - unrelated
	// pairs colliding on a reg number, exactly what unique_reg_ids must fix.
	_ = d.AddDep(dag.Dep{From: a, To: e1, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: b, To: e2, Kind: dag.Data, Reg: 1})
	// a also feeds both c and e1 off its own register - a single producer
	// with two consumers, which must end up on the SAME new register.
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 1})

	_, status, _ := passThrough(transform.UniqueRegIDs(), d)
	if !status.ModifiedGraph {
		t.Fatalf("expected ModifiedGraph, got %+v", status)
	}

	regOf := make(map[[2]string]dag.Reg)
	for _, e := range d.Deps() {
		if e.Kind != dag.Data {
			continue
		}
		regOf[[2]string{e.From.String(), e.To.String()}] = e.Reg
	}
	aToE1 := regOf[[2]string{"a", "e1"}]
	aToC := regOf[[2]string{"a", "c"}]
	bToE2 := regOf[[2]string{"b", "e2"}]
	if aToE1 != aToC {
		t.Fatalf("a's two consumers ended up on different registers: %d vs %d", aToE1, aToC)
	}
	if aToE1 == bToE2 {
		t.Fatalf("unrelated producers a and b still share a register after renumbering: %d", aToE1)
	}
}

func TestUniqueRegIDsSkipsPhysicalRegs(t *testing.T) {
	d := dag.New()
	a, b, c := u("a"), u("b"), u("c")
	for _, n := range []*instr{a, b, c} {
		_ = d.AddUnit(n)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 7, Physical: true})
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 7, Physical: true})

	passThrough(transform.UniqueRegIDs(), d)

	for _, e := range d.Deps() {
		if e.Physical && e.Reg != 7 {
			t.Fatalf("physical register was renumbered: %+v", e)
		}
	}
}
