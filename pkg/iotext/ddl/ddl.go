// Package ddl reads the "DDL" text format: one instruction per line,
// declaring which names it defines and which it consumes, per spec §6.
//
//	out1, out2, … <- in1, in2, …
//
// A semicolon starts a comment to end of line; blank lines are ignored.
// Each line instantiates exactly one unit. Every name on its left side
// becomes a fresh, independently-registered output of that unit; every
// name on its right side must already be defined by an earlier line and
// contributes a data dependency from that name's last definer, carrying
// the stable register id assigned when the name was defined.
package ddl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/iotext"
	"github.com/schedcore/rpsched/pkg/schederr"
)

type binding struct {
	producer dag.Unit
	reg      dag.Reg
}

// Parse reads a DDL program from r and returns the DAG it describes.
func Parse(r io.Reader) (*dag.DAG, error) {
	d := dag.New()
	defs := make(map[string]binding)
	declared := make(map[string]struct{}) // for schederr.ValidateDefined's existence check
	var nextReg dag.Reg = 1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		outs, ins, err := splitInstruction(line, lineNo)
		if err != nil {
			return nil, err
		}

		label := strings.Join(outs, ",")
		if label == "" {
			label = line
		}
		u := iotext.NewUnit(label)
		if err := d.AddUnit(u); err != nil {
			return nil, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: failed to add unit", lineNo)
		}

		for _, in := range ins {
			if err := schederr.ValidateDefined(declared, in, lineNo); err != nil {
				return nil, err
			}
			b := defs[in]
			if err := d.AddDep(dag.Dep{From: b.producer, To: u, Kind: dag.Data, Reg: b.reg}); err != nil {
				return nil, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: failed to add dependency on %q", lineNo, in)
			}
		}

		for _, out := range outs {
			defs[out] = binding{producer: u, reg: nextReg}
			declared[out] = struct{}{}
			nextReg++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, schederr.Wrap(schederr.ErrCodeParse, err, "reading DDL input")
	}
	return d, nil
}

// Write renders d in DDL form to w, one instruction per node in
// d.Units() order. See [WriteOrdered] for writing a specific (e.g.
// scheduled) order instead.
func Write(d *dag.DAG, w io.Writer) error {
	return WriteOrdered(d.Units(), d, w)
}

// WriteOrdered renders order in DDL form to w: one instruction per unit,
// synthesizing an "rN" name for each register it defines and for each
// register its incoming data deps carry, per spec §6's
// "out1, out2, … <- in1, in2, …" grammar. Order-kind deps have no DDL
// representation - the format only encodes def/use through a shared
// register name - so they are silently dropped; re-parsing the output
// recovers the same data edges, not the same order edges.
func WriteOrdered(order []dag.Unit, d *dag.DAG, w io.Writer) error {
	bw := bufio.NewWriter(w)
	defined := make(map[dag.Reg]bool)
	for _, u := range order {
		var ins []string
		seenIn := make(map[dag.Reg]bool)
		for _, e := range d.Preds(u) {
			if e.Kind != dag.Data || seenIn[e.Reg] {
				continue
			}
			seenIn[e.Reg] = true
			ins = append(ins, regName(e.Reg))
		}

		var outs []string
		for _, e := range d.Succs(u) {
			if e.Kind != dag.Data || defined[e.Reg] {
				continue
			}
			defined[e.Reg] = true
			outs = append(outs, regName(e.Reg))
		}

		if _, err := fmt.Fprintf(bw, "%s <- %s\n", strings.Join(outs, ", "), strings.Join(ins, ", ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func regName(r dag.Reg) string { return fmt.Sprintf("r%d", r) }

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// splitInstruction parses "out1, out2 <- in1, in2" (either side may be
// empty) into its output and input name lists, validating every name.
func splitInstruction(line string, lineNo int) (outs, ins []string, err error) {
	parts := strings.SplitN(line, "<-", 2)
	if len(parts) != 2 {
		return nil, nil, schederr.New(schederr.ErrCodeParse, "line %d: missing '<-' separator", lineNo)
	}
	outs, err = splitNames(parts[0], lineNo)
	if err != nil {
		return nil, nil, err
	}
	ins, err = splitNames(parts[1], lineNo)
	if err != nil {
		return nil, nil, err
	}
	return outs, ins, nil
}

func splitNames(field string, lineNo int) ([]string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	var names []string
	for _, tok := range strings.Split(field, ",") {
		name := strings.TrimSpace(tok)
		if err := schederr.ValidateIdentifier(name); err != nil {
			return nil, schederr.Wrap(schederr.ErrCodeParse, err, "line %d", lineNo)
		}
		names = append(names, name)
	}
	return names, nil
}
