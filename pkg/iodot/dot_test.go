package iodot_test

import (
	"strings"
	"testing"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/iodot"
)

type unit struct{ name string }

func (u *unit) String() string                 { return u.name }
func (u *unit) Dup() dag.Unit                   { return &unit{u.name} }
func (u *unit) InternalRegisterPressure() uint { return 0 }

func TestToDOTPlainNodeShape(t *testing.T) {
	d := dag.New()
	a := &unit{"a"}
	_ = d.AddUnit(a)

	out := iodot.ToDOT(d, iodot.Options{})
	if !strings.Contains(out, `shape=box`) || !strings.Contains(out, `label="a"`) {
		t.Fatalf("expected a plain boxed node, got:\n%s", out)
	}
}

func TestToDOTMultilineNodeUsesRecordShape(t *testing.T) {
	d := dag.New()
	a := &unit{"line1\nline2"}
	_ = d.AddUnit(a)

	out := iodot.ToDOT(d, iodot.Options{})
	if !strings.Contains(out, `shape=record`) || !strings.Contains(out, `label="line1|line2"`) {
		t.Fatalf("expected a record-shaped node with | separated lines, got:\n%s", out)
	}
}

func TestToDOTEdgeStyling(t *testing.T) {
	d := dag.New()
	a, b, c := &unit{"a"}, &unit{"b"}, &unit{"c"}
	_ = d.AddUnit(a)
	_ = d.AddUnit(b)
	_ = d.AddUnit(c)
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Order})
	_ = d.AddDep(dag.Dep{From: a, To: c, Kind: dag.Data, Reg: 3, Physical: true})

	out := iodot.ToDOT(d, iodot.Options{})
	if !strings.Contains(out, `style=dashed`) || !strings.Contains(out, `color=blue`) || !strings.Contains(out, `label="order"`) {
		t.Fatalf("expected dashed blue order edge labeled \"order\", got:\n%s", out)
	}
	if !strings.Contains(out, `arrowhead=odiamond`) || !strings.Contains(out, `color=red`) || !strings.Contains(out, `label="p3"`) {
		t.Fatalf("expected red odiamond physical edge labeled \"p3\", got:\n%s", out)
	}
}

func TestToDOTVirtualRegLabel(t *testing.T) {
	d := dag.New()
	a, b := &unit{"a"}, &unit{"b"}
	_ = d.AddUnit(a)
	_ = d.AddUnit(b)
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 5})

	out := iodot.ToDOT(d, iodot.Options{})
	if !strings.Contains(out, `label="r5"`) {
		t.Fatalf("expected virtual register edge labeled \"r5\", got:\n%s", out)
	}
}

func TestToDOTHidesLabelsWhenRequested(t *testing.T) {
	d := dag.New()
	a, b := &unit{"a"}, &unit{"b"}
	_ = d.AddUnit(a)
	_ = d.AddUnit(b)
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 5})

	out := iodot.ToDOT(d, iodot.Options{HideNodeLabels: true, HideEdgeLabels: true})
	if strings.Contains(out, `label="a"`) || strings.Contains(out, `label="r5"`) {
		t.Fatalf("expected labels hidden, got:\n%s", out)
	}
}

func TestToDOTPerNodeAndDepOverrides(t *testing.T) {
	d := dag.New()
	a, b := &unit{"a"}, &unit{"b"}
	_ = d.AddUnit(a)
	_ = d.AddUnit(b)
	_ = d.AddDep(dag.Dep{From: a, To: b, Kind: dag.Data, Reg: 1})

	out := iodot.ToDOT(d, iodot.Options{
		NodeAttrs: func(u dag.Unit) string {
			if u.String() == "a" {
				return "fillcolor=lightyellow"
			}
			return ""
		},
		DepAttrs: func(e dag.Dep) string { return "penwidth=2" },
	})
	if !strings.Contains(out, "fillcolor=lightyellow") || !strings.Contains(out, "penwidth=2") {
		t.Fatalf("expected decorative overrides to appear, got:\n%s", out)
	}
}
