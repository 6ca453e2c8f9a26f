package dag

import (
	"errors"
	"fmt"
)

var (
	// ErrNilUnit is returned by [DAG.AddUnit] when the unit is nil.
	ErrNilUnit = errors.New("unit must not be nil")

	// ErrDuplicateUnit is returned by [DAG.AddUnit] when the unit is
	// already present in the graph.
	ErrDuplicateUnit = errors.New("duplicate unit")

	// ErrUnknownEndpoint is returned by [DAG.AddDep] when either endpoint
	// of the dependency is not a member of the graph.
	ErrUnknownEndpoint = errors.New("dependency endpoint not in graph")

	// ErrInconsistentDAG is returned by [DAG.Consistent] when an internal
	// invariant does not hold. Per the error taxonomy this indicates a
	// bug in the library or in a caller that bypassed the public API.
	ErrInconsistentDAG = errors.New("inconsistent DAG")
)

// Reg identifies a register (a live value) flowing along a [Data]
// dependency. Reg(0) means "no register" - it marks an [Order] dependency,
// or a [Data] dependency whose register has not yet been assigned a
// unique identity by the unique_reg_ids transformation. Once that
// transformation has run, Reg(0) never appears on a Data dependency.
type Reg uint64

// DepKind distinguishes the two dependency flavors the scheduler reasons
// about. A third "physical register" flavor is acknowledged by the
// specification but modeled here as [Data] plus [Dep.Physical], rather
// than as a distinct kind - it behaves exactly like Data except where the
// list scheduler's physical-register conflict check says otherwise.
type DepKind int

const (
	// Data dependencies carry a register: From produces it, To consumes
	// it, and From must be scheduled before To.
	Data DepKind = iota
	// Order dependencies carry no register; they express a pure
	// ordering constraint (e.g. must-not-reorder side effects).
	Order
)

func (k DepKind) String() string {
	switch k {
	case Data:
		return "data"
	case Order:
		return "order"
	default:
		return "unknown"
	}
}

// Unit is the narrow capability every schedulable node must provide. A
// primitive instruction and a [ChainUnit] (a fused sequence of
// instructions produced by a transformation) both satisfy it; the
// scheduler and the graph model never need to know which.
//
// Unit values are shared, non-owned references: the same Unit may appear
// in several DAGs (e.g. a sub-DAG produced by [DAG.DupSubgraph]) at once.
// Implementations should be pointer types so identity comparison with ==
// is meaningful, since the DAG uses Unit directly as a map key.
type Unit interface {
	// String returns a textual label for the unit. It may contain
	// newlines (used by multi-instruction chain units).
	String() string
	// Dup produces an independent, equivalent unit. Ownership of the
	// result transfers to the caller.
	Dup() Unit
	// InternalRegisterPressure returns the count of values live
	// strictly inside the unit, not observable on its boundary. Zero
	// for ordinary primitive instructions.
	InternalRegisterPressure() uint
}

// ChainUnit is a composite [Unit] whose payload is a non-empty, ordered
// sequence of sub-units plus an explicit internal-register-pressure
// override. Transformations such as smart_fuse_two_units and
// split_def_use_dom_use_deps introduce chain units to represent a fused
// or wrapped group of original units; the unit participates in the DAG
// exactly like a primitive node until the chain is expanded back out
// during the post-scheduling cleanup pass.
type ChainUnit struct {
	members []Unit
	irp     uint
	label   string
}

// NewChainUnit builds a chain unit from members (in execution order) with
// an explicit internal register pressure irp. It panics if members is
// empty - a chain unit always wraps at least one original unit.
// NewChainUnit builds a chain unit from members (in execution order) with
// an explicit internal register pressure irp. Its rendered label is the
// members' labels newline-joined plus a short uuid-derived suffix: a plain
// join collides whenever a transformation fuses or collapses two
// structurally identical subgraphs produced by [DupSubgraph] (the
// duplicate's member labels are byte-identical to the original's), leaving
// DOT renders and run-history records unable to tell the two chain units
// apart. It panics if members is empty - a chain unit always wraps at
// least one original unit.
func NewChainUnit(members []Unit, irp uint) *ChainUnit {
	if len(members) == 0 {
		panic("dag: NewChainUnit requires at least one member")
	}
	return &ChainUnit{
		members: append([]Unit(nil), members...),
		irp:     irp,
		label:   chainLabel(members),
	}
}

// NewLabeledChainUnit is like [NewChainUnit] but overrides the rendered
// label outright instead of deriving one from the members, for callers that
// already have a stable synthetic identity to assign.
func NewLabeledChainUnit(members []Unit, irp uint, label string) *ChainUnit {
	c := NewChainUnit(members, irp)
	c.label = label
	return c
}

// Members returns the wrapped sub-units in execution order. The returned
// slice must not be modified.
func (c *ChainUnit) Members() []Unit { return c.members }

// String implements [Unit].
func (c *ChainUnit) String() string { return c.label }

// Dup duplicates every member and returns a new chain unit wrapping the
// copies, preserving irp and any synthetic label.
func (c *ChainUnit) Dup() Unit {
	members := make([]Unit, len(c.members))
	for i, m := range c.members {
		members[i] = m.Dup()
	}
	dup := NewChainUnit(members, c.irp)
	dup.label = c.label
	return dup
}

// InternalRegisterPressure returns the chain's explicit IRP override.
func (c *ChainUnit) InternalRegisterPressure() uint { return c.irp }

// Dep is a single dependency edge. Multiplicity is permitted: the same
// (From, To, Kind, Reg) tuple may appear more than once between the same
// endpoints, and [DAG.RemoveDep] removes exactly one instance.
type Dep struct {
	From     Unit
	To       Unit
	Kind     DepKind
	Reg      Reg
	Physical bool // true for a physical-register-carrying Data dependency
}

func (d Dep) String() string {
	if d.Kind == Order {
		return fmt.Sprintf("%s -order-> %s", d.From, d.To)
	}
	prefix := "r"
	if d.Physical {
		prefix = "p"
	}
	return fmt.Sprintf("%s -%s%d-> %s", d.From, prefix, d.Reg, d.To)
}

// DAG is a mutable directed acyclic graph of [Unit] nodes connected by
// [Dep] edges. The zero value is not usable; use [New].
//
// Acyclicity is not checked on mutation - see the package doc. DAG is not
// safe for concurrent use.
type DAG struct {
	units    map[Unit]struct{}
	order    []Unit // insertion order, for deterministic iteration
	edges    []Dep
	preds    map[Unit][]Dep // incoming deps, keyed by To
	succs    map[Unit][]Dep // outgoing deps, keyed by From
	modified bool
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		units: make(map[Unit]struct{}),
		preds: make(map[Unit][]Dep),
		succs: make(map[Unit][]Dep),
	}
}

// AddUnit adds a unit to the graph. Returns [ErrNilUnit] if u is nil, or
// [ErrDuplicateUnit] if u is already present.
func (d *DAG) AddUnit(u Unit) error {
	if u == nil {
		return ErrNilUnit
	}
	if _, ok := d.units[u]; ok {
		return ErrDuplicateUnit
	}
	d.units[u] = struct{}{}
	d.order = append(d.order, u)
	d.modified = true
	return nil
}

// RemoveUnit removes u and every dependency incident to it. It is a no-op
// if u is not present.
func (d *DAG) RemoveUnit(u Unit) {
	if _, ok := d.units[u]; !ok {
		return
	}
	for _, p := range append([]Unit(nil), d.predUnitsRaw(u)...) {
		d.removeAllBetween(p, u)
	}
	for _, s := range append([]Unit(nil), d.succUnitsRaw(u)...) {
		d.removeAllBetween(u, s)
	}
	delete(d.units, u)
	for i, n := range d.order {
		if n == u {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	delete(d.preds, u)
	delete(d.succs, u)
	d.modified = true
}

func (d *DAG) removeAllBetween(from, to Unit) {
	for {
		found := false
		for _, e := range d.succs[from] {
			if e.To == to {
				d.removeDepUnlocked(e)
				found = true
				break
			}
		}
		if !found {
			return
		}
	}
}

// AddDep adds a dependency edge. Returns [ErrUnknownEndpoint] if either
// endpoint is not a member of the graph.
func (d *DAG) AddDep(dep Dep) error {
	if _, ok := d.units[dep.From]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := d.units[dep.To]; !ok {
		return ErrUnknownEndpoint
	}
	d.edges = append(d.edges, dep)
	d.succs[dep.From] = append(d.succs[dep.From], dep)
	d.preds[dep.To] = append(d.preds[dep.To], dep)
	d.modified = true
	return nil
}

// RemoveDep removes one instance matching dep (componentwise equality).
// It is a no-op if no matching dependency exists.
func (d *DAG) RemoveDep(dep Dep) {
	for _, e := range d.edges {
		if e == dep {
			d.removeDepUnlocked(e)
			return
		}
	}
}

func (d *DAG) removeDepUnlocked(dep Dep) {
	d.edges = removeFirst(d.edges, dep)
	d.succs[dep.From] = removeFirst(d.succs[dep.From], dep)
	d.preds[dep.To] = removeFirst(d.preds[dep.To], dep)
	d.modified = true
}

func removeFirst(deps []Dep, target Dep) []Dep {
	for i, e := range deps {
		if e == target {
			return append(deps[:i:i], deps[i+1:]...)
		}
	}
	return deps
}

// Units returns all units in the graph in insertion order.
func (d *DAG) Units() []Unit {
	return append([]Unit(nil), d.order...)
}

// Deps returns a copy of every dependency edge, in insertion order.
func (d *DAG) Deps() []Dep { return append([]Dep(nil), d.edges...) }

// NodeCount returns the number of units in the graph.
func (d *DAG) NodeCount() int { return len(d.units) }

// EdgeCount returns the number of dependency edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Has reports whether u is a member of the graph.
func (d *DAG) Has(u Unit) bool {
	_, ok := d.units[u]
	return ok
}

// Preds returns the incoming dependency edges of u (both Data and Order).
func (d *DAG) Preds(u Unit) []Dep { return append([]Dep(nil), d.preds[u]...) }

// Succs returns the outgoing dependency edges of u (both Data and Order).
func (d *DAG) Succs(u Unit) []Dep { return append([]Dep(nil), d.succs[u]...) }

func (d *DAG) predUnitsRaw(u Unit) []Unit {
	deps := d.preds[u]
	out := make([]Unit, len(deps))
	for i, e := range deps {
		out[i] = e.From
	}
	return out
}

func (d *DAG) succUnitsRaw(u Unit) []Unit {
	deps := d.succs[u]
	out := make([]Unit, len(deps))
	for i, e := range deps {
		out[i] = e.To
	}
	return out
}

// PredUnits returns the distinct predecessor units of u.
func (d *DAG) PredUnits(u Unit) []Unit { return dedupUnits(d.predUnitsRaw(u)) }

// SuccUnits returns the distinct successor units of u.
func (d *DAG) SuccUnits(u Unit) []Unit { return dedupUnits(d.succUnitsRaw(u)) }

func dedupUnits(units []Unit) []Unit {
	seen := make(map[Unit]struct{}, len(units))
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// InDegree returns the number of incoming dependency edges of u.
func (d *DAG) InDegree(u Unit) int { return len(d.preds[u]) }

// OutDegree returns the number of outgoing dependency edges of u.
func (d *DAG) OutDegree(u Unit) int { return len(d.succs[u]) }

// Roots returns every unit with no predecessors, in insertion order.
func (d *DAG) Roots() []Unit {
	var roots []Unit
	for _, u := range d.order {
		if len(d.preds[u]) == 0 {
			roots = append(roots, u)
		}
	}
	return roots
}

// Leaves returns every unit with no successors, in insertion order.
func (d *DAG) Leaves() []Unit {
	var leaves []Unit
	for _, u := range d.order {
		if len(d.succs[u]) == 0 {
			leaves = append(leaves, u)
		}
	}
	return leaves
}

// Modified reports whether any mutation has occurred since the graph was
// created or since [DAG.ClearModified] was last called.
func (d *DAG) Modified() bool { return d.modified }

// ClearModified resets the modified flag to false.
func (d *DAG) ClearModified() { d.modified = false }

// Consistent checks the invariants documented on [DAG] and returns
// [ErrInconsistentDAG] (wrapped with detail) if any is violated. This is
// a diagnostic for tests and for callers who bypassed AddUnit/AddDep; the
// public mutators never leave the graph in a state that would fail it.
func (d *DAG) Consistent() error {
	for _, e := range d.edges {
		if _, ok := d.units[e.From]; !ok {
			return fmt.Errorf("%w: edge %v has unknown From", ErrInconsistentDAG, e)
		}
		if _, ok := d.units[e.To]; !ok {
			return fmt.Errorf("%w: edge %v has unknown To", ErrInconsistentDAG, e)
		}
	}
	for u, deps := range d.succs {
		for _, e := range deps {
			if e.From != u {
				return fmt.Errorf("%w: succs[%v] contains edge not rooted at u", ErrInconsistentDAG, u)
			}
			if !containsDep(d.edges, e) {
				return fmt.Errorf("%w: succs entry missing from global edge list", ErrInconsistentDAG)
			}
		}
	}
	for u, deps := range d.preds {
		for _, e := range deps {
			if e.To != u {
				return fmt.Errorf("%w: preds[%v] contains edge not terminating at u", ErrInconsistentDAG, u)
			}
			if !containsDep(d.edges, e) {
				return fmt.Errorf("%w: preds entry missing from global edge list", ErrInconsistentDAG)
			}
		}
	}
	if len(d.edges) != sumLens(d.succs) || len(d.edges) != sumLens(d.preds) {
		return fmt.Errorf("%w: edge list length disagrees with index totals", ErrInconsistentDAG)
	}
	return nil
}

func containsDep(edges []Dep, target Dep) bool {
	for _, e := range edges {
		if e == target {
			return true
		}
	}
	return false
}

func sumLens(m map[Unit][]Dep) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}

// Dup returns a new DAG with the same unit references and the same
// topology. Units are NOT duplicated - this is a shallow copy of the
// graph's structure, useful when a transformation needs to try a
// speculative edit without disturbing the original.
func (d *DAG) Dup() *DAG {
	out := New()
	for _, u := range d.order {
		_ = out.AddUnit(u)
	}
	for _, e := range d.edges {
		_ = out.AddDep(e)
	}
	return out
}

// DeepDup returns a new DAG that also duplicates every unit (via
// [Unit.Dup]), producing a fully independent copy whose nodes can be
// mutated without affecting the original graph.
func (d *DAG) DeepDup() *DAG {
	mapping := make(map[Unit]Unit, len(d.order))
	out := New()
	for _, u := range d.order {
		cp := u.Dup()
		mapping[u] = cp
		_ = out.AddUnit(cp)
	}
	for _, e := range d.edges {
		e.From = mapping[e.From]
		e.To = mapping[e.To]
		_ = out.AddDep(e)
	}
	return out
}
