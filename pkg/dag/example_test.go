package dag_test

import (
	"fmt"

	"github.com/schedcore/rpsched/pkg/dag"
)

func ExampleDAG_basic() {
	g := dag.New()
	a, b, c := newInstr("a"), newInstr("b"), newInstr("c")
	_ = g.AddUnit(a)
	_ = g.AddUnit(b)
	_ = g.AddUnit(c)
	_ = g.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = g.AddDep(dag.Dep{From: b, To: c, Kind: dag.Order})

	fmt.Println("Units:", g.NodeCount())
	fmt.Println("Deps:", g.EdgeCount())
	fmt.Println("Roots:", g.Roots())
	fmt.Println("Leaves:", g.Leaves())
	// Output:
	// Units: 3
	// Deps: 2
	// Roots: [a]
	// Leaves: [c]
}

func ExampleReachable() {
	g, a, _, _, e := buildDiamondExample()
	reached := dag.Reachable(g, a, dag.FollowSuccsData|dag.FollowSuccsOrder)
	_, hasE := reached[e]
	fmt.Println("e reachable from a:", hasE)
	// Output:
	// e reachable from a: true
}

func buildDiamondExample() (*dag.DAG, dag.Unit, dag.Unit, dag.Unit, dag.Unit) {
	g := dag.New()
	a, b, c, e := newInstr("a"), newInstr("b"), newInstr("c"), newInstr("e")
	for _, u := range []*instr{a, b, c, e} {
		_ = g.AddUnit(u)
	}
	_ = g.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})
	_ = g.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 2})
	_ = g.AddDep(dag.Dep{From: b, To: e, Kind: dag.Data, Reg: 3})
	_ = g.AddDep(dag.Dep{From: c, To: e, Kind: dag.Data, Reg: 4})
	return g, a, b, c, e
}
