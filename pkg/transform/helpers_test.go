package transform_test

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/transform"
)

// instr is a minimal dag.Unit used across this package's tests.
type instr struct {
	name string
	irp  uint
}

func (i *instr) String() string                { return i.name }
func (i *instr) Dup() dag.Unit                  { return &instr{name: i.name, irp: i.irp} }
func (i *instr) InternalRegisterPressure() uint { return i.irp }

func u(name string) *instr { return &instr{name: name} }

// recordingScheduler appends whatever order d.Units() is already in
// (callers that care about order build d so that Units() already reflects
// it, e.g. via dag.DupSubgraph preserving insertion order) and records how
// many times and on what node counts it was invoked.
type recordingScheduler struct {
	calls []int
}

func (r *recordingScheduler) Schedule(d *dag.DAG, sink chain.Sink) error {
	r.calls = append(r.calls, d.NodeCount())
	for _, unit := range d.Units() {
		sink.Append(unit)
	}
	return nil
}

// passThrough runs t once against d with a fresh status and a recording
// inner scheduler, returning the resulting sink and status.
func passThrough(tr transform.Transformation, d *dag.DAG) (*chain.Chain, *transform.Status, *recordingScheduler) {
	sink := chain.New()
	status := &transform.Status{}
	rec := &recordingScheduler{}
	_ = tr.Transform(d, rec, sink, status)
	return sink, status, rec
}
