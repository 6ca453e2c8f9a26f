package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
)

type instr struct {
	name string
}

func (i *instr) String() string                { return i.name }
func (i *instr) Dup() dag.Unit                  { return &instr{name: i.name} }
func (i *instr) InternalRegisterPressure() uint { return 0 }

func TestWriteAnalysis(t *testing.T) {
	d := dag.New()
	a, b := &instr{name: "a"}, &instr{name: "b"}
	if err := d.AddUnit(a); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	if err := d.AddUnit(b); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	if err := d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1}); err != nil {
		t.Fatalf("AddDep: %v", err)
	}

	c := chain.New()
	c.Append(a)
	c.Append(b)

	var buf bytes.Buffer
	if err := writeAnalysis(&buf, c, d); err != nil {
		t.Fatalf("writeAnalysis: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "peak register pressure:") {
		t.Errorf("output missing peak summary line: %q", out)
	}
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("output missing unit labels: %q", out)
	}
}
