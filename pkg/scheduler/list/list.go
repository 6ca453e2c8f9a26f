// Package list implements the deterministic greedy list scheduler: the
// fallback used when the exact search scheduler times out, and the
// scheduler plugged into transformations that do not need optimality
// (e.g. scheduling the extracted side of a simplify_order_cuts split).
package list

import (
	"sort"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/schederr"
)

// Scheduler is the greedy list scheduler described in the design's
// §4.3: repeatedly picks the ready unit that minimizes
//
//	score(u) = max(IRP(u), |reg_create(u)|) - |{r in reg_use(u): remaining_uses[r] == 1}|
//
// breaking ties by position in the ready queue, and rejects a choice
// that would create a physical register conflict (two live values
// mapped onto the same physical slot), forcing selection of another
// ready unit instead.
type Scheduler struct {
	// PeakRP holds the peak |live| + IRP(u) observed by the most recent
	// Schedule call, per §4.3's own running-peak tracking (mirrors the
	// pack's simple_rp_scheduler, which maintains max_rp alongside its
	// live_regs map rather than only leaving that to a later pass).
	PeakRP int
}

// New creates a list scheduler.
func New() *Scheduler { return &Scheduler{} }

// Schedule implements scheduler.Scheduler.
func (s *Scheduler) Schedule(d *dag.DAG, sink chain.Sink) error {
	units := d.Units()
	n := len(units)
	if n == 0 {
		return nil
	}

	unresolved := make(map[dag.Unit]int, n)
	for _, u := range units {
		unresolved[u] = len(d.Preds(u))
	}

	remainingUses := make(map[dag.Reg]int)
	// physOwner/physPending track physical-slot occupancy independently
	// of remainingUses: a physical Reg id is reused across unrelated
	// producer/consumer pairs over the DAG's lifetime, so the pending
	// count must be scoped to whichever producer currently owns the
	// slot, not to the reg id's total use count.
	physOwner := make(map[dag.Reg]dag.Unit)
	physPending := make(map[dag.Reg]int)
	for _, e := range d.Deps() {
		if e.Kind == dag.Data && e.Reg != 0 {
			remainingUses[e.Reg]++
		}
	}

	// ready is kept in stable insertion order; ties in score are broken
	// by earlier position here.
	var ready []dag.Unit
	seen := make(map[dag.Unit]struct{}, n)
	enqueue := func(u dag.Unit) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		ready = append(ready, u)
	}
	for _, u := range units {
		if unresolved[u] == 0 {
			enqueue(u)
		}
	}

	live := make(map[dag.Reg]struct{})
	scheduled := make(map[dag.Unit]struct{}, n)
	peakRP := 0

	for len(scheduled) < n {
		if len(ready) == 0 {
			return schederr.New(schederr.ErrCodeInconsistentDAG,
				"list scheduler: ready set empty with %d/%d units scheduled", len(scheduled), n)
		}

		order := make([]int, len(ready))
		for i := range order {
			order[i] = i
		}
		score := make([]int, len(ready))
		for i, u := range ready {
			create := dag.RegCreate(d, u)
			use := dag.RegUse(d, u)
			base := int(u.InternalRegisterPressure())
			if len(create) > base {
				base = len(create)
			}
			lastUse := 0
			for _, r := range use {
				if remainingUses[r] == 1 {
					lastUse++
				}
			}
			score[i] = base - lastUse
		}
		sort.SliceStable(order, func(a, b int) bool {
			return score[order[a]] < score[order[b]]
		})

		picked := -1
		for _, idx := range order {
			u := ready[idx]
			if physicalConflict(d, u, physOwner) {
				continue
			}
			picked = idx
			break
		}
		if picked < 0 {
			return schederr.New(schederr.ErrCodeInconsistentDAG,
				"list scheduler: all ready units blocked by a physical register conflict")
		}

		u := ready[picked]
		ready = append(ready[:picked:picked], ready[picked+1:]...)

		for _, r := range dag.RegUse(d, u) {
			remainingUses[r]--
			if remainingUses[r] <= 0 {
				delete(live, r)
			}
		}
		for _, e := range d.Preds(u) {
			if e.Kind != dag.Data || !e.Physical || e.Reg == 0 {
				continue
			}
			physPending[e.Reg]--
			if physPending[e.Reg] <= 0 {
				delete(physOwner, e.Reg)
				delete(physPending, e.Reg)
			}
		}

		instantPeak := len(live) + int(u.InternalRegisterPressure())

		for _, e := range d.Succs(u) {
			if e.Kind != dag.Data || e.Reg == 0 {
				continue
			}
			live[e.Reg] = struct{}{}
			if e.Physical {
				physOwner[e.Reg] = u
				physPending[e.Reg]++
			}
		}
		if len(live) > instantPeak {
			instantPeak = len(live)
		}
		if instantPeak > peakRP {
			peakRP = instantPeak
		}

		sink.Append(u)
		scheduled[u] = struct{}{}

		for _, e := range d.Succs(u) {
			v := e.To
			unresolved[v]--
			if unresolved[v] == 0 {
				enqueue(v)
			}
		}
	}
	s.PeakRP = peakRP
	return nil
}

// physicalConflict reports whether scheduling u would require a
// physical register to be live while another node's value still
// occupies that physical slot.
func physicalConflict(d *dag.DAG, u dag.Unit, physOwner map[dag.Reg]dag.Unit) bool {
	for _, e := range d.Succs(u) {
		if e.Kind != dag.Data || !e.Physical || e.Reg == 0 {
			continue
		}
		if owner, ok := physOwner[e.Reg]; ok && owner != u {
			return true
		}
	}
	return false
}
