// Package iodot renders a scheduled or unscheduled DAG as Graphviz DOT
// text per spec §6, and rasterizes that text to SVG/PDF via
// goccy/go-graphviz for the driver tool's "-dotsvg"/"-dotpdf" formats.
package iodot

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/schedcore/rpsched/pkg/dag"
)

// Options configures decorative overrides on top of the default DOT
// styling: order deps dashed blue, physical data deps red with an
// odiamond arrowhead, edge labels "rN"/"pN"/"order".
type Options struct {
	// NodeAttrs returns extra comma-separated Graphviz attributes for a
	// node (e.g. "fillcolor=lightyellow"), or "" for none.
	NodeAttrs func(u dag.Unit) string
	// DepAttrs returns extra comma-separated Graphviz attributes for a
	// dependency edge, or "" for none.
	DepAttrs func(e dag.Dep) string
	// HideNodeLabels omits node labels entirely (shape only).
	HideNodeLabels bool
	// HideEdgeLabels omits the "rN"/"pN"/"order" edge label.
	HideEdgeLabels bool
}

// Write renders d as Graphviz DOT text to w.
func Write(d *dag.DAG, w io.Writer, opts Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "  rankdir=TB;")
	fmt.Fprintln(bw, `  node [fontsize=12];`)
	fmt.Fprintln(bw)

	ids := make(map[dag.Unit]string, d.NodeCount())
	for i, u := range d.Units() {
		ids[u] = fmt.Sprintf("n%d", i)
	}

	for _, u := range d.Units() {
		attrs := nodeAttrs(u, opts)
		fmt.Fprintf(bw, "  %s [%s];\n", ids[u], strings.Join(attrs, ", "))
	}

	fmt.Fprintln(bw)
	for _, e := range d.Deps() {
		attrs := depAttrs(e, opts)
		fmt.Fprintf(bw, "  %s -> %s [%s];\n", ids[e.From], ids[e.To], strings.Join(attrs, ", "))
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// ToDOT renders d as a DOT text string, per [Write].
func ToDOT(d *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	_ = Write(d, &buf, opts)
	return buf.String()
}

func nodeAttrs(u dag.Unit, opts Options) []string {
	var attrs []string
	if opts.HideNodeLabels {
		attrs = append(attrs, `label=""`)
	} else {
		label, record := escapeLabel(u.String())
		if record {
			attrs = append(attrs, "shape=record", fmt.Sprintf("label=%q", label))
		} else {
			attrs = append(attrs, "shape=box", fmt.Sprintf("label=%q", label))
		}
	}
	if opts.NodeAttrs != nil {
		if extra := opts.NodeAttrs(u); extra != "" {
			attrs = append(attrs, extra)
		}
	}
	return attrs
}

// escapeLabel escapes a unit's raw label for use inside a DOT quoted
// string. Multi-line labels (chain units, LSD continuations) are
// rendered in Graphviz's record shape - each line becomes a "|"
// separated field - rather than as literal embedded newlines.
func escapeLabel(raw string) (label string, record bool) {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = escapeDOTString(l)
	}
	if len(lines) == 1 {
		return lines[0], false
	}
	return strings.Join(lines, "|"), true
}

func escapeDOTString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return s
}

func depAttrs(e dag.Dep, opts Options) []string {
	var attrs []string
	switch {
	case e.Kind == dag.Order:
		attrs = append(attrs, `style=dashed`, `color=blue`)
	case e.Physical:
		attrs = append(attrs, `color=red`, `arrowhead=odiamond`)
	}
	if !opts.HideEdgeLabels {
		attrs = append(attrs, fmt.Sprintf("label=%q", edgeLabel(e)))
	}
	if opts.DepAttrs != nil {
		if extra := opts.DepAttrs(e); extra != "" {
			attrs = append(attrs, extra)
		}
	}
	return attrs
}

// edgeLabel returns "rN" for a virtual register, "pN" for a physical
// one, or "order" for an order dependency, per spec §6.
func edgeLabel(e dag.Dep) string {
	if e.Kind == dag.Order {
		return "order"
	}
	prefix := "r"
	if e.Physical {
		prefix = "p"
	}
	return fmt.Sprintf("%s%d", prefix, e.Reg)
}

// RenderSVG rasterizes DOT text to SVG via Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPDF rasterizes DOT text to PDF via Graphviz.
func RenderPDF(dot string) ([]byte, error) {
	return render(dot, graphviz.PDF)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("iodot: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("iodot: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("iodot: render: %w", err)
	}
	return buf.Bytes(), nil
}
