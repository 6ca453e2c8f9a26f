package transform

import "github.com/schedcore/rpsched/pkg/dag"

// regGen hands out fresh, collision-free register ids during a single
// transformation pass. It is seeded once from the DAG's current maximum
// rather than calling dag.GenerateUniqueRegID (an O(|E|) rescan) for
// every fresh id a pass needs.
type regGen struct {
	next dag.Reg
}

func newRegGen(d *dag.DAG) *regGen {
	return &regGen{next: dag.GenerateUniqueRegID(d)}
}

func (g *regGen) fresh() dag.Reg {
	r := g.next
	g.next++
	return r
}
