package chain

import "github.com/schedcore/rpsched/pkg/dag"

// Sink is what a scheduler or a transformation appends a legal total
// order to. [Chain] implements it; callers that only need to observe
// emission (e.g. a progress reporter) can wrap one.
type Sink interface {
	Append(u dag.Unit)
}

// Chain is an ordered sequence of schedule-unit references.
type Chain struct {
	units []dag.Unit
}

// New creates an empty chain.
func New() *Chain { return &Chain{} }

// Append adds u to the end of the chain. Implements [Sink].
func (c *Chain) Append(u dag.Unit) { c.units = append(c.units, u) }

// Len returns the number of units in the chain.
func (c *Chain) Len() int { return len(c.units) }

// At returns the unit at position i.
func (c *Chain) At(i int) dag.Unit { return c.units[i] }

// Units returns a copy of the chain's contents in order.
func (c *Chain) Units() []dag.Unit { return append([]dag.Unit(nil), c.units...) }

// IndexOf returns the position of the first occurrence of u, or
// (-1, false) if it is not present.
func (c *Chain) IndexOf(u dag.Unit) (int, bool) {
	for i, v := range c.units {
		if v == u {
			return i, true
		}
	}
	return -1, false
}

// Insert places u at position i, shifting subsequent elements right.
func (c *Chain) Insert(i int, u dag.Unit) {
	c.units = append(c.units, nil)
	copy(c.units[i+1:], c.units[i:])
	c.units[i] = u
}

// Remove deletes and returns the unit at position i.
func (c *Chain) Remove(i int) dag.Unit {
	u := c.units[i]
	c.units = append(c.units[:i:i], c.units[i+1:]...)
	return u
}

// Set overwrites position i with u.
func (c *Chain) Set(i int, u dag.Unit) { c.units[i] = u }

// Expand replaces position i in place with seq (which may have any
// length, including zero). This is how a transformation's chain-unit
// wrapper (e.g. from smart_fuse_two_units or split_def_use_dom_use_deps)
// is expanded back into its constituent units once the inner scheduler
// has run.
func (c *Chain) Expand(i int, seq []dag.Unit) {
	tail := append([]dag.Unit(nil), c.units[i+1:]...)
	c.units = append(c.units[:i], seq...)
	c.units = append(c.units, tail...)
}

// CheckAgainstDAG reports whether the chain contains exactly the units
// of d and, for every dependency (x -> y) in d, x appears strictly
// before y in the chain.
func (c *Chain) CheckAgainstDAG(d *dag.DAG) bool {
	pos := make(map[dag.Unit]int, len(c.units))
	for i, u := range c.units {
		if _, dup := pos[u]; dup {
			return false
		}
		pos[u] = i
	}
	dagUnits := d.Units()
	if len(pos) != len(dagUnits) {
		return false
	}
	for _, u := range dagUnits {
		if _, ok := pos[u]; !ok {
			return false
		}
	}
	for _, e := range d.Deps() {
		if pos[e.From] >= pos[e.To] {
			return false
		}
	}
	return true
}

// ComputeRPAgainstDAG simulates register liveness by walking the chain
// in order and returns the observed peak register pressure.
//
// At each step, the executing unit's incoming Data dependencies
// (restricted to predecessors already scheduled earlier in the chain)
// are considered: a register is decremented and, once all of its
// consumers inside the chain have executed, freed. Outgoing Data
// dependencies bring new registers alive. The unit's own
// InternalRegisterPressure is added on top of the live count while it
// executes, then the registers it creates join the live set.
//
// If ignoreExternal is false, registers with a consumer outside the
// chain (a Data successor present in d but not in the chain) remain live
// until the end of the chain, inflating the peak; if true, such registers
// are excluded from the live count as soon as every IN-chain consumer has
// fired, and a register with no in-chain consumer never joins it.
func (c *Chain) ComputeRPAgainstDAG(d *dag.DAG, ignoreExternal bool) int {
	trace := c.ComputeRPTrace(d, ignoreExternal)
	peak := 0
	for _, step := range trace {
		if step.Peak > peak {
			peak = step.Peak
		}
	}
	return peak
}

// RPStep is one unit's contribution to a [Chain.ComputeRPTrace] walk:
// its position, its own internal register pressure, how many registers
// are live once it has executed, and the running peak up to and
// including this step.
type RPStep struct {
	Position int
	Unit     dag.Unit
	IRP      uint
	Live     int
	Peak     int
}

// ComputeRPTrace is [Chain.ComputeRPAgainstDAG] generalized to return
// the full step-by-step walk instead of only the final peak - the
// textual basis for the driver CLI's "analysis" output format.
func (c *Chain) ComputeRPTrace(d *dag.DAG, ignoreExternal bool) []RPStep {
	remaining := make(map[dag.Reg]int)
	external := make(map[dag.Reg]struct{})
	inChain := make(map[dag.Unit]struct{}, len(c.units))
	for _, u := range c.units {
		inChain[u] = struct{}{}
	}

	for _, u := range c.units {
		for _, e := range d.Succs(u) {
			if e.Kind != dag.Data || e.Reg == 0 {
				continue
			}
			if _, ok := inChain[e.To]; ok {
				remaining[e.Reg]++
			} else {
				external[e.Reg] = struct{}{}
			}
		}
	}

	live := make(map[dag.Reg]struct{})
	peak := 0
	trace := make([]RPStep, 0, len(c.units))
	for i, u := range c.units {
		for _, e := range d.Preds(u) {
			if e.Kind != dag.Data || e.Reg == 0 {
				continue
			}
			if _, ok := inChain[e.From]; !ok {
				continue
			}
			remaining[e.Reg]--
			if remaining[e.Reg] <= 0 {
				if _, isExternal := external[e.Reg]; !isExternal || ignoreExternal {
					delete(live, e.Reg)
				}
			}
		}

		instantPeak := len(live) + int(u.InternalRegisterPressure())
		for _, e := range d.Succs(u) {
			if e.Kind == dag.Data && e.Reg != 0 {
				if ignoreExternal && remaining[e.Reg] <= 0 {
					continue
				}
				live[e.Reg] = struct{}{}
			}
		}
		if len(live) > instantPeak {
			instantPeak = len(live)
		}
		if instantPeak > peak {
			peak = instantPeak
		}

		trace = append(trace, RPStep{
			Position: i,
			Unit:     u,
			IRP:      u.InternalRegisterPressure(),
			Live:     len(live),
			Peak:     peak,
		})
	}
	return trace
}
