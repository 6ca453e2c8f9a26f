// Package lsd reads and writes the "LSD" text format, the one text
// format usable on both sides of the driver tool's I/O per spec §6.
//
//	Unit <id> Name <free-form, may continue on next line if previous ends with \>
//	To <id> Latency <n> Kind data Reg <r>
//	To <id> Latency <n> Kind order
//
// A "Unit" line introduces a node and makes it current; each following
// "To" line, until the next "Unit" line, appends a successor edge from
// the current unit to the named id. Latency is parsed for shape only and
// discarded - the scheduler has no notion of instruction latency.
package lsd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/iotext"
	"github.com/schedcore/rpsched/pkg/schederr"
)

// Parse reads an LSD program from r and returns the DAG it describes. It
// scans twice: a first pass registers every "Unit" id (so a "To" line may
// reference a unit declared later in the file, as a topologically-ordered
// dump naturally does for forward dependencies), and a second pass adds
// the successor edges.
func Parse(r io.Reader) (*dag.DAG, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, schederr.Wrap(schederr.ErrCodeParse, err, "reading LSD input")
	}

	d := dag.New()
	units := make(map[string]*iotext.Unit)

	var currentID string
	continuing := false
	for lineNo, raw := range lines {
		if continuing {
			text, more := continuationText(raw)
			units[currentID].Name += "\n" + text
			continuing = more
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 || fields[0] != "Unit" {
			continue
		}
		u, more, err := parseUnitLine(raw, lineNo+1)
		if err != nil {
			return nil, err
		}
		if _, dup := units[u.id]; dup {
			return nil, schederr.New(schederr.ErrCodeParse, "line %d: duplicate unit id %q", lineNo+1, u.id)
		}
		unit := iotext.NewUnit(u.name)
		units[u.id] = unit
		if err := d.AddUnit(unit); err != nil {
			return nil, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: failed to add unit %q", lineNo+1, u.id)
		}
		currentID = u.id
		continuing = more
	}

	var current *iotext.Unit
	continuing = false
	for lineNo, raw := range lines {
		if continuing {
			_, more := continuationText(raw)
			continuing = more
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "Unit":
			u, more, err := parseUnitLine(raw, lineNo+1)
			if err != nil {
				return nil, err
			}
			current = units[u.id]
			continuing = more

		case "To":
			if current == nil {
				return nil, schederr.New(schederr.ErrCodeParse, "line %d: \"To\" line before any \"Unit\" line", lineNo+1)
			}
			dep, err := parseToLine(fields, lineNo+1)
			if err != nil {
				return nil, err
			}
			target, ok := units[dep.targetID]
			if !ok {
				return nil, schederr.New(schederr.ErrCodeUndefinedName, "line %d: \"To\" references undefined unit id %q", lineNo+1, dep.targetID)
			}
			e := dag.Dep{From: current, To: target, Kind: dep.kind}
			if dep.kind == dag.Data {
				e.Reg = dep.reg
			}
			if err := d.AddDep(e); err != nil {
				return nil, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: failed to add dependency", lineNo+1)
			}

		default:
			return nil, schederr.New(schederr.ErrCodeParse, "line %d: expected \"Unit\" or \"To\", got %q", lineNo+1, fields[0])
		}
	}
	return d, nil
}

// readLines reads r into a slice of raw lines, blank lines included -
// [Parse] needs stable line numbers across its two passes.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// continuationText strips a trailing "\" from raw, reporting whether
// another continuation line is expected to follow.
func continuationText(raw string) (text string, more bool) {
	if strings.HasSuffix(raw, `\`) {
		return strings.TrimSuffix(raw, `\`), true
	}
	return raw, false
}

type unitLine struct {
	id   string
	name string
}

// parseUnitLine parses "Unit <id> Name <rest of line>" from the raw line
// text rather than from whitespace-split fields, so the name text keeps
// its original spacing (significant when a trailing "\" continuation
// marker is itself preceded by a single space that must not end up part
// of the stored name).
func parseUnitLine(raw string, lineNo int) (unitLine, bool, error) {
	tok := strings.SplitN(raw, " ", 4)
	if len(tok) < 4 || tok[0] != "Unit" || tok[2] != "Name" {
		return unitLine{}, false, schederr.New(schederr.ErrCodeParse, "line %d: malformed \"Unit\" line", lineNo)
	}
	id := tok[1]
	if err := schederr.ValidateIdentifier(id); err != nil {
		return unitLine{}, false, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: unit id", lineNo)
	}
	text, more := continuationText(tok[3])
	text = strings.TrimSuffix(text, " ")
	return unitLine{id: id, name: text}, more, nil
}

type toLine struct {
	targetID string
	kind     dag.DepKind
	reg      dag.Reg
}

func parseToLine(fields []string, lineNo int) (toLine, error) {
	// To <id> Latency <n> Kind data Reg <r>
	// To <id> Latency <n> Kind order
	if len(fields) < 5 || fields[2] != "Latency" || fields[4] != "Kind" {
		return toLine{}, schederr.New(schederr.ErrCodeParse, "line %d: malformed \"To\" line", lineNo)
	}
	latency, err := strconv.Atoi(fields[3])
	if err != nil {
		return toLine{}, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: latency", lineNo)
	}
	if err := schederr.ValidateNonNegativeInt("latency", latency, lineNo); err != nil {
		return toLine{}, err
	}
	// latency is parsed for shape only and discarded, per spec §6.

	if len(fields) < 6 {
		return toLine{}, schederr.New(schederr.ErrCodeParse, "line %d: missing \"Kind\" value", lineNo)
	}
	kindTok := fields[5]
	if err := schederr.ValidateKindToken(kindTok, lineNo); err != nil {
		return toLine{}, err
	}

	tl := toLine{targetID: fields[1]}
	switch kindTok {
	case "order":
		tl.kind = dag.Order
		return tl, nil
	case "data":
		tl.kind = dag.Data
		if len(fields) < 8 || fields[6] != "Reg" {
			return toLine{}, schederr.New(schederr.ErrCodeParse, "line %d: \"Kind data\" requires a \"Reg\" field", lineNo)
		}
		reg, err := strconv.ParseUint(fields[7], 10, 64)
		if err != nil {
			return toLine{}, schederr.Wrap(schederr.ErrCodeParse, err, "line %d: register id", lineNo)
		}
		tl.reg = dag.Reg(reg)
		return tl, nil
	default:
		return toLine{}, schederr.New(schederr.ErrCodeParse, "line %d: unreachable dep kind %q", lineNo, kindTok)
	}
}

// Write renders d in LSD form to w: one "Unit" line per node (its label
// split across continuation lines on internal newlines), followed by a
// "To" line per outgoing dependency. Latency is always written as 0 -
// the in-memory model carries none, and LSD readers discard it anyway.
func Write(d *dag.DAG, w io.Writer) error {
	return WriteOrdered(d.Units(), d, w)
}

// WriteOrdered is [Write] generalized to an explicit unit order - the
// driver CLI uses this to write out a schedule in the order the
// scheduler produced, rather than the DAG's internal node order.
func WriteOrdered(order []dag.Unit, d *dag.DAG, w io.Writer) error {
	ids := make(map[dag.Unit]string, d.NodeCount())
	for i, u := range d.Units() {
		ids[u] = strconv.Itoa(i + 1)
	}

	bw := bufio.NewWriter(w)
	for _, u := range order {
		lines := strings.Split(u.String(), "\n")
		for i, line := range lines {
			suffix := ""
			if i < len(lines)-1 {
				suffix = ` \`
			}
			if i == 0 {
				fmt.Fprintf(bw, "Unit %s Name %s%s\n", ids[u], line, suffix)
			} else {
				fmt.Fprintf(bw, "%s%s\n", line, suffix)
			}
		}
		for _, e := range d.Succs(u) {
			switch e.Kind {
			case dag.Order:
				fmt.Fprintf(bw, "To %s Latency 0 Kind order\n", ids[e.To])
			default:
				fmt.Fprintf(bw, "To %s Latency 0 Kind data Reg %d\n", ids[e.To], e.Reg)
			}
		}
	}
	return bw.Flush()
}
