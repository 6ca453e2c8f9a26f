package dag

// ReachFlags selects which edges a [Reachable] traversal follows and how.
type ReachFlags uint8

const (
	FollowPredsData ReachFlags = 1 << iota
	FollowPredsOrder
	FollowSuccsData
	FollowSuccsOrder
	IncludeSelf
	Immediate // do not recurse past the immediate neighbors of the start unit
)

// Reachable performs a breadth-first traversal from u following the
// edges selected by flags, returning the set of units reached. With
// [Immediate] set, only u's direct neighbors (per the selected edge
// kinds) are visited - the traversal does not recurse further.
func Reachable(d *DAG, u Unit, flags ReachFlags) map[Unit]struct{} {
	visited := make(map[Unit]struct{})
	if flags&IncludeSelf != 0 {
		visited[u] = struct{}{}
	}

	neighbors := func(n Unit) []Unit {
		var out []Unit
		if flags&FollowPredsData != 0 || flags&FollowPredsOrder != 0 {
			for _, e := range d.Preds(n) {
				if (e.Kind == Data && flags&FollowPredsData != 0) || (e.Kind == Order && flags&FollowPredsOrder != 0) {
					out = append(out, e.From)
				}
			}
		}
		if flags&FollowSuccsData != 0 || flags&FollowSuccsOrder != 0 {
			for _, e := range d.Succs(n) {
				if (e.Kind == Data && flags&FollowSuccsData != 0) || (e.Kind == Order && flags&FollowSuccsOrder != 0) {
					out = append(out, e.To)
				}
			}
		}
		return out
	}

	queue := neighbors(u)
	for _, n := range queue {
		visited[n] = struct{}{}
	}
	if flags&Immediate != 0 {
		return visited
	}
	for i := 0; i < len(queue); i++ {
		for _, n := range neighbors(queue[i]) {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return visited
}

// RegCreate returns the registers u produces, i.e. those on outgoing Data
// dependencies. Duplicates are collapsed; Reg(0) is never included.
func RegCreate(d *DAG, u Unit) []Reg { return dataRegs(d.Succs(u)) }

// RegUse returns the registers u consumes, i.e. those on incoming Data
// dependencies. Duplicates are collapsed; Reg(0) is never included.
func RegUse(d *DAG, u Unit) []Reg { return dataRegs(d.Preds(u)) }

func dataRegs(deps []Dep) []Reg {
	seen := make(map[Reg]struct{}, len(deps))
	var out []Reg
	for _, e := range deps {
		if e.Kind != Data || e.Reg == 0 {
			continue
		}
		if _, ok := seen[e.Reg]; ok {
			continue
		}
		seen[e.Reg] = struct{}{}
		out = append(out, e.Reg)
	}
	return out
}

// RegDestroy returns an UNDER-APPROXIMATION of the registers whose last
// use is at u: a register in RegUse(u) is included only if no OTHER Data
// dependency anywhere in the graph carries the same register. This is
// cheaper than [RegDestroyExact] but can miss last uses when a register
// has more than one producer (e.g. after split_def_use_dom_use_deps
// rewires some but not all consumers). Some transformations deliberately
// use this approximation rather than the exact form - see §9 of the
// design notes - and callers must not silently switch between the two.
func RegDestroy(d *DAG, u Unit) []Reg {
	total := make(map[Reg]int)
	for _, e := range d.Deps() {
		if e.Kind == Data && e.Reg != 0 {
			total[e.Reg]++
		}
	}
	var out []Reg
	for _, r := range RegUse(d, u) {
		if total[r] == 1 {
			out = append(out, r)
		}
	}
	return out
}

// RegDestroyExact returns the exact last-use set for u: for every
// incoming Data dependency (p, u, r), r is included iff no sibling edge
// (p, v, r) exists with v != u - i.e. no other consumer of the same
// producer/register pair remains.
func RegDestroyExact(d *DAG, u Unit) []Reg {
	seen := make(map[Reg]struct{})
	var out []Reg
	for _, e := range d.Preds(u) {
		if e.Kind != Data || e.Reg == 0 {
			continue
		}
		if _, ok := seen[e.Reg]; ok {
			continue
		}
		destroyed := true
		for _, sib := range d.Succs(e.From) {
			if sib.Kind == Data && sib.Reg == e.Reg && sib.To != u {
				destroyed = false
				break
			}
		}
		if destroyed {
			seen[e.Reg] = struct{}{}
			out = append(out, e.Reg)
		}
	}
	return out
}

// GenerateUniqueRegID returns a Reg guaranteed not to appear on any
// dependency currently in the graph.
func GenerateUniqueRegID(d *DAG) Reg {
	var max Reg
	for _, e := range d.Deps() {
		if e.Reg > max {
			max = e.Reg
		}
	}
	return max + 1
}

// PathMap is the dense transitive-closure matrix produced by
// [BuildPathMap]: Matrix[i][j] is true iff there is a directed path
// (following only [Data] and [Order] successor edges) from the unit at
// index i to the unit at index j. Index looks up a unit's row/column.
type PathMap struct {
	Matrix [][]bool
	Index  map[Unit]int
}

// Has reports whether there is a directed path from 'from' to 'to'.
func (p PathMap) Has(from, to Unit) bool {
	i, ok := p.Index[from]
	if !ok {
		return false
	}
	j, ok := p.Index[to]
	if !ok {
		return false
	}
	return p.Matrix[i][j]
}

// BuildPathMap computes the all-pairs reachability matrix in
// O(|U|*(|U|+|E|)) time by running one BFS per unit along successor
// edges. Once built, [PathMap.Has] answers any single reachability
// question in O(1), which is what the cut- and dominance-based
// transformations (simplify_order_cuts, split_def_use_dom_use_deps,
// strip_useless_order_deps) need to avoid repeated traversals.
func BuildPathMap(d *DAG) PathMap {
	units := d.Units()
	index := make(map[Unit]int, len(units))
	for i, u := range units {
		index[u] = i
	}
	matrix := make([][]bool, len(units))
	for i, u := range units {
		row := make([]bool, len(units))
		for n := range Reachable(d, u, FollowSuccsData|FollowSuccsOrder) {
			row[index[n]] = true
		}
		matrix[i] = row
	}
	return PathMap{Matrix: matrix, Index: index}
}

// DupSubgraph returns an independent DAG containing exactly the units in
// keep and the dependencies (with multiplicity) whose endpoints are both
// in keep. Units are shared references, not duplicated.
func DupSubgraph(d *DAG, keep map[Unit]struct{}) *DAG {
	out := New()
	for _, u := range d.Units() {
		if _, ok := keep[u]; ok {
			_ = out.AddUnit(u)
		}
	}
	for _, e := range d.Deps() {
		_, okFrom := keep[e.From]
		_, okTo := keep[e.To]
		if okFrom && okTo {
			_ = out.AddDep(e)
		}
	}
	return out
}

// CollapseSubgraph replaces the induced subgraph on set with a single
// unit w: every dependency crossing the boundary of set becomes an
// equivalent dependency touching w instead of its endpoint inside set;
// dependencies with both endpoints inside set are dropped. w must not
// already be a member of d. Mutates d in place.
func CollapseSubgraph(d *DAG, set map[Unit]struct{}, w Unit) {
	var crossing []Dep
	for _, e := range d.Deps() {
		_, fromIn := set[e.From]
		_, toIn := set[e.To]
		switch {
		case fromIn && toIn:
			continue // internal, dropped
		case fromIn:
			e.From = w
			crossing = append(crossing, e)
		case toIn:
			e.To = w
			crossing = append(crossing, e)
		}
	}
	for u := range set {
		d.RemoveUnit(u)
	}
	_ = d.AddUnit(w)
	for _, e := range crossing {
		_ = d.AddDep(e)
	}
}

// Fuse merges a with b into a [ChainUnit] when one is the other's sole
// successor/predecessor (the symmetric case: a has exactly one successor
// unit and it is b, or b has exactly one predecessor unit and it is a).
// Successor and predecessor units are counted over Data and Order
// dependencies alike, so an extra Order neighbor prevents the fusion.
// It returns the new chain unit and true on success.
//
// The chain's internal register pressure is computed to preserve the
// pair's contribution to peak RP exactly when possible: the registers
// a creates that b immediately consumes and destroys become internal
// (not visible on the chain's boundary), while anything else stays on
// the boundary. When an exact computation is not available and
// simulateIfApprox is true, Fuse refuses (returns (nil, false)) rather
// than guess; otherwise it falls back to a safe upper bound
// (sum of both units' own IRP plus the shared-register count).
//
// On success, d is mutated: a and b are replaced by the returned chain
// unit, with crossing dependencies rewired exactly as in
// [CollapseSubgraph].
func Fuse(d *DAG, a, b Unit, simulateIfApprox bool) (*ChainUnit, bool) {
	succA := d.SuccUnits(a)
	predB := d.PredUnits(b)
	aSoleSuccIsB := len(succA) == 1 && succA[0] == b
	bSolePredIsA := len(predB) == 1 && predB[0] == a
	if !aSoleSuccIsB && !bSolePredIsA {
		return nil, false
	}

	shared := make(map[Reg]struct{})
	for _, e := range d.Succs(a) {
		if e.Kind == Data && e.To == b {
			shared[e.Reg] = struct{}{}
		}
	}

	exact := aSoleSuccIsB && bSolePredIsA
	var irp uint
	switch {
	case exact:
		internal := 0
		for r := range shared {
			destroyed := true
			for _, e := range d.Succs(a) {
				if e.Kind == Data && e.Reg == r && e.To != b {
					destroyed = false
					break
				}
			}
			if destroyed {
				internal++
			}
		}
		irp = a.InternalRegisterPressure() + b.InternalRegisterPressure() + uint(internal)
	case simulateIfApprox:
		return nil, false
	default:
		irp = a.InternalRegisterPressure() + b.InternalRegisterPressure() + uint(len(shared))
	}

	chain := NewChainUnit([]Unit{a, b}, irp)
	CollapseSubgraph(d, map[Unit]struct{}{a: {}, b: {}}, chain)
	return chain, true
}
