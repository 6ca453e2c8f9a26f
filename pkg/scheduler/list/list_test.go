package list_test

import (
	"testing"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
)

type instr struct {
	name string
	irp  uint
}

func (i *instr) String() string                { return i.name }
func (i *instr) Dup() dag.Unit                  { return &instr{name: i.name, irp: i.irp} }
func (i *instr) InternalRegisterPressure() uint { return i.irp }

// TestScheduleDiamond builds: a<-; b<-a; c<-a; d<-b,c (S2 in the design doc).
func TestScheduleDiamond(t *testing.T) {
	d := dag.New()
	a, b, c, e := &instr{name: "a"}, &instr{name: "b"}, &instr{name: "c"}, &instr{name: "e"}
	for _, u := range []*instr{a, b, c, e} {
		_ = d.AddUnit(u)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 2})
	_ = d.AddDep(dag.Dep{From: b, To: e, Kind: dag.Data, Reg: 3})
	_ = d.AddDep(dag.Dep{From: c, To: e, Kind: dag.Data, Reg: 4})

	c2 := chain.New()
	sched := list.New()
	if err := sched.Schedule(d, c2); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if c2.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c2.Len())
	}
	if !c2.CheckAgainstDAG(d) {
		t.Fatalf("CheckAgainstDAG() = false")
	}
	if rp := c2.ComputeRPAgainstDAG(d, false); rp != 2 {
		t.Fatalf("ComputeRPAgainstDAG() = %d, want 2", rp)
	}
	if sched.PeakRP != 2 {
		t.Fatalf("PeakRP = %d, want 2 (should match ComputeRPAgainstDAG)", sched.PeakRP)
	}
}

func TestScheduleEmptyDAG(t *testing.T) {
	d := dag.New()
	c := chain.New()
	sched := list.New()
	if err := sched.Schedule(d, c); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
	if sched.PeakRP != 0 {
		t.Fatalf("PeakRP = %d, want 0", sched.PeakRP)
	}
}

func TestScheduleRejectsPhysicalConflict(t *testing.T) {
	// p1 and p2 both produce physical register 9; p1's value must die
	// (all its consumers fire) before p2 may be scheduled.
	d := dag.New()
	p1, c1, p2, c2u := &instr{name: "p1"}, &instr{name: "c1"}, &instr{name: "p2"}, &instr{name: "c2"}
	for _, u := range []*instr{p1, c1, p2, c2u} {
		_ = d.AddUnit(u)
	}
	_ = d.AddDep(dag.Dep{From: p1, To: c1, Kind: dag.Data, Reg: 9, Physical: true})
	_ = d.AddDep(dag.Dep{From: p2, To: c2u, Kind: dag.Data, Reg: 9, Physical: true})

	out := chain.New()
	if err := list.New().Schedule(d, out); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	units := out.Units()
	pos := make(map[dag.Unit]int, len(units))
	for i, u := range units {
		pos[u] = i
	}
	if !(pos[c1] < pos[p2] || pos[c2u] < pos[p1]) {
		t.Fatalf("expected p1's consumer to fire before p2 (or vice versa) to avoid a physical conflict, got order %v", units)
	}
}
