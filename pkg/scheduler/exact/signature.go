package exact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schedcore/rpsched/pkg/dag"
)

// Signature returns a structural fingerprint of d, suitable as a
// [github.com/schedcore/rpsched/pkg/memo] key for a whole-DAG result:
// unit labels, canonically sorted, plus the dependency shape with
// registers renumbered by first appearance so that two DAGs with the
// same shape but differently-numbered registers still match.
func Signature(d *dag.DAG) string {
	units := d.Units()
	sort.Slice(units, func(i, j int) bool { return units[i].String() < units[j].String() })

	index := make(map[dag.Unit]int, len(units))
	var labels []string
	for i, u := range units {
		index[u] = i
		labels = append(labels, u.String())
	}

	regIDs := make(map[dag.Reg]int)
	nextReg := 0
	canonReg := func(r dag.Reg) int {
		if r == 0 {
			return 0
		}
		if id, ok := regIDs[r]; ok {
			return id
		}
		nextReg++
		regIDs[r] = nextReg
		return nextReg
	}

	deps := d.Deps()
	edgeStrs := make([]string, 0, len(deps))
	for _, e := range deps {
		fi, fok := index[e.From]
		ti, tok := index[e.To]
		if !fok || !tok {
			continue
		}
		edgeStrs = append(edgeStrs, fmt.Sprintf("%d>%d:%d:%d:%v", fi, ti, e.Kind, canonReg(e.Reg), e.Physical))
	}
	sort.Strings(edgeStrs)

	var b strings.Builder
	b.WriteString(strings.Join(labels, "|"))
	b.WriteByte('\n')
	b.WriteString(strings.Join(edgeStrs, "|"))
	return b.String()
}
