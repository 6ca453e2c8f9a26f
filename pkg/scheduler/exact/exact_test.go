package exact_test

import (
	"testing"
	"time"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
)

type instr struct {
	name string
	irp  uint
}

func (i *instr) String() string                { return i.name }
func (i *instr) Dup() dag.Unit                  { return &instr{name: i.name, irp: i.irp} }
func (i *instr) InternalRegisterPressure() uint { return i.irp }

// bruteForcePeak enumerates every permutation of d's units and returns the
// minimal register pressure among the legal (topologically valid) ones, for
// comparison against the branch-and-bound search on small graphs.
func bruteForcePeak(t *testing.T, d *dag.DAG) int {
	t.Helper()
	units := d.Units()
	best := -1
	var perm func(remaining []dag.Unit, chosen []dag.Unit)
	perm = func(remaining []dag.Unit, chosen []dag.Unit) {
		if len(remaining) == 0 {
			c := chain.New()
			for _, u := range chosen {
				c.Append(u)
			}
			if !c.CheckAgainstDAG(d) {
				return
			}
			peak := c.ComputeRPAgainstDAG(d, true)
			if best == -1 || peak < best {
				best = peak
			}
			return
		}
		for i := range remaining {
			next := append(append([]dag.Unit(nil), remaining[:i]...), remaining[i+1:]...)
			perm(next, append(chosen, remaining[i]))
		}
	}
	perm(units, nil)
	return best
}

func newDiamond() (*dag.DAG, *instr, *instr, *instr, *instr) {
	d := dag.New()
	a := &instr{name: "a"}
	b := &instr{name: "b"}
	c := &instr{name: "c"}
	e := &instr{name: "e"}
	for _, u := range []*instr{a, b, c, e} {
		_ = d.AddUnit(u)
	}
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 2})
	_ = d.AddDep(dag.Dep{From: b, To: e, Kind: dag.Data, Reg: 3})
	_ = d.AddDep(dag.Dep{From: c, To: e, Kind: dag.Data, Reg: 4})
	return d, a, b, c, e
}

func TestScheduleDiamondMatchesBruteForce(t *testing.T) {
	d, _, _, _, _ := newDiamond()
	want := bruteForcePeak(t, d)

	s := &exact.Scheduler{Timeout: time.Second, Fallback: list.New()}
	ch := chain.New()
	if err := s.Schedule(d, ch); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !ch.CheckAgainstDAG(d) {
		t.Fatalf("Schedule produced an invalid order: %v", ch.Units())
	}
	got := ch.ComputeRPAgainstDAG(d, true)
	if got != want {
		t.Fatalf("peak = %d, want brute-force optimum %d", got, want)
	}
}

// TestScheduleLinearChain builds a-b-c-d-e, a plain sequential dependency with no
// sharing, whose only legal order is itself - a minimal sanity check that
// the search doesn't need to branch at all.
func TestScheduleLinearChain(t *testing.T) {
	d := dag.New()
	var units []*instr
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		u := &instr{name: name}
		units = append(units, u)
		_ = d.AddUnit(u)
	}
	for i := 0; i < len(units)-1; i++ {
		_ = d.AddDep(dag.Dep{From: units[i], To: units[i+1], Kind: dag.Data, Reg: dag.Reg(i + 1)})
	}

	s := &exact.Scheduler{Timeout: time.Second, Fallback: list.New()}
	ch := chain.New()
	if err := s.Schedule(d, ch); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	for i, u := range units {
		if ch.At(i) != dag.Unit(u) {
			t.Fatalf("position %d = %v, want %v", i, ch.At(i), u)
		}
	}
}

// TestScheduleWiderGraphMatchesBruteForce exercises a wider fan-out/fan-in
// shape (two independent producers feeding a shared consumer through a
// register-heavy middle unit) where the greedy list scheduler and the exact
// search can legitimately disagree.
func TestScheduleWiderGraphMatchesBruteForce(t *testing.T) {
	d := dag.New()
	p1 := &instr{name: "p1"}
	p2 := &instr{name: "p2"}
	mid := &instr{name: "mid", irp: 1}
	c1 := &instr{name: "c1"}
	c2 := &instr{name: "c2"}
	sink := &instr{name: "sink"}
	for _, u := range []*instr{p1, p2, mid, c1, c2, sink} {
		_ = d.AddUnit(u)
	}
	_ = d.AddDep(dag.Dep{From: p1, To: mid, Kind: dag.Data, Reg: 1})
	_ = d.AddDep(dag.Dep{From: p2, To: mid, Kind: dag.Data, Reg: 2})
	_ = d.AddDep(dag.Dep{From: mid, To: c1, Kind: dag.Data, Reg: 3})
	_ = d.AddDep(dag.Dep{From: mid, To: c2, Kind: dag.Data, Reg: 4})
	_ = d.AddDep(dag.Dep{From: c1, To: sink, Kind: dag.Data, Reg: 5})
	_ = d.AddDep(dag.Dep{From: c2, To: sink, Kind: dag.Data, Reg: 6})

	want := bruteForcePeak(t, d)

	s := &exact.Scheduler{Timeout: time.Second, Fallback: list.New()}
	ch := chain.New()
	if err := s.Schedule(d, ch); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got := ch.ComputeRPAgainstDAG(d, true); got != want {
		t.Fatalf("peak = %d, want brute-force optimum %d", got, want)
	}
}

func TestScheduleEmptyDAG(t *testing.T) {
	d := dag.New()
	s := &exact.Scheduler{Timeout: time.Second, Fallback: list.New()}
	ch := chain.New()
	if err := s.Schedule(d, ch); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if ch.Len() != 0 {
		t.Fatalf("expected empty chain, got %v", ch.Units())
	}
}

func TestScheduleTinyTimeoutStillYieldsLegalOrder(t *testing.T) {
	d, _, _, _, _ := newDiamond()
	s := &exact.Scheduler{Timeout: 0, Fallback: list.New()}
	// A one-nanosecond budget: the clock is only read every checkInterval
	// expansions, so a search this small may finish before any check.
	// Whichever path produces the order (search or fallback), it must be
	// legal.
	s.Timeout = time.Nanosecond
	ch := chain.New()
	if err := s.Schedule(d, ch); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !ch.CheckAgainstDAG(d) {
		t.Fatalf("produced an invalid order: %v", ch.Units())
	}
}

func TestScheduleDeterministic(t *testing.T) {
	d, _, _, _, _ := newDiamond()
	s := &exact.Scheduler{Timeout: time.Second, Fallback: list.New()}

	ch1 := chain.New()
	if err := s.Schedule(d, ch1); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	ch2 := chain.New()
	if err := s.Schedule(d, ch2); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if ch1.Len() != ch2.Len() {
		t.Fatalf("non-deterministic lengths")
	}
	for i := 0; i < ch1.Len(); i++ {
		if ch1.At(i) != ch2.At(i) {
			t.Fatalf("non-deterministic order at %d: %v vs %v", i, ch1.At(i), ch2.At(i))
		}
	}
}
