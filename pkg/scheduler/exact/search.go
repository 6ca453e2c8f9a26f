package exact

import (
	"time"

	"github.com/schedcore/rpsched/pkg/dag"
)

// memoEntry caches the minimal achievable register-pressure contribution
// of everything scheduled after a given "scheduled" bitmap state, plus
// the dense id of the unit that achieves it (nextUnit), so a later memo
// hit can rebuild the actual completion instead of only its numeric
// peak. Only exact entries are ever stored - see search.explore for why
// a result touched by incumbent-based pruning must not be cached.
type memoEntry struct {
	tailPeak int
	nextUnit int
}

// search holds one Schedule call's mutable branch-and-bound state: the
// DAG's dense-indexed static shape, plus the live register/readiness
// state that emit/undo mutate and unwind as the recursion backtracks.
type search struct {
	d     *dag.DAG
	units []dag.Unit
	n     int

	predUnits [][]int // deduped predecessor dense ids, per unit
	succUnits [][]int // deduped successor dense ids, per unit
	createReg [][]dag.Reg
	irp       []uint

	// per-unit incoming Data-register edges (with multiplicity, one
	// entry per qualifying predecessor edge), matching how remaining's
	// initial per-reg counts were tallied in newSearch.
	predRegEdges [][]dag.Reg

	deadline  time.Time
	timedOut  bool
	expanded  int
	sinceCheck int

	memoTable map[string]memoEntry
	memoHits  int

	bestFound    bool
	bestPeak     int
	bestSchedule []dag.Unit

	scheduled  bitmap
	unresolved []int
	remaining  map[dag.Reg]int
	live       map[dag.Reg]struct{}
	liveCount  int
	path       []int

	progressFn func(expanded, bestPeak int)
}

func newSearch(d *dag.DAG, units []dag.Unit, timeout time.Duration) *search {
	n := len(units)
	idx := make(map[dag.Unit]int, n)
	for i, u := range units {
		idx[u] = i
	}

	s := &search{
		d:            d,
		units:        units,
		n:            n,
		predUnits:    make([][]int, n),
		succUnits:    make([][]int, n),
		createReg:    make([][]dag.Reg, n),
		irp:          make([]uint, n),
		predRegEdges: make([][]dag.Reg, n),
		deadline:     time.Now().Add(timeout),
		memoTable:    make(map[string]memoEntry),
		scheduled:    newBitmap(n),
		unresolved:   make([]int, n),
		remaining:    make(map[dag.Reg]int),
		live:         make(map[dag.Reg]struct{}),
	}

	for i, u := range units {
		s.irp[i] = u.InternalRegisterPressure()
		s.createReg[i] = dag.RegCreate(d, u)
		for _, p := range d.PredUnits(u) {
			s.predUnits[i] = append(s.predUnits[i], idx[p])
		}
		for _, c := range d.SuccUnits(u) {
			s.succUnits[i] = append(s.succUnits[i], idx[c])
		}
		for _, e := range d.Preds(u) {
			if e.Kind == dag.Data && e.Reg != 0 {
				s.predRegEdges[i] = append(s.predRegEdges[i], e.Reg)
				s.remaining[e.Reg]++
			}
		}
		s.unresolved[i] = len(s.predUnits[i])
	}

	return s
}

// run performs the full branch-and-bound search, leaving the result in
// bestPeak/bestSchedule (nil bestSchedule if the search timed out before
// any complete schedule was found).
func (s *search) run(progress func(expanded, bestPeak int)) {
	s.progressFn = progress
	s.explore(0)
}

// emit commits unit i as the next scheduled unit given the search's
// current live-register state, returning the regs that left/joined the
// live set (for undo) and the instant register pressure observed while i
// executes. Mirrors chain.Chain.ComputeRPAgainstDAG's per-step formula.
func (s *search) emit(i int) (deleted, added []dag.Reg, peak int) {
	for _, r := range s.predRegEdges[i] {
		s.remaining[r]--
		if s.remaining[r] == 0 {
			delete(s.live, r)
			s.liveCount--
			deleted = append(deleted, r)
		}
	}
	peak = s.liveCount + int(s.irp[i])
	for _, r := range s.createReg[i] {
		s.live[r] = struct{}{}
		s.liveCount++
		added = append(added, r)
	}
	if s.liveCount > peak {
		peak = s.liveCount
	}
	return deleted, added, peak
}

// undo reverses exactly one emit(i) call.
func (s *search) undo(i int, deleted, added []dag.Reg) {
	for _, r := range added {
		delete(s.live, r)
		s.liveCount--
	}
	for _, r := range s.predRegEdges[i] {
		s.remaining[r]++
	}
	for _, r := range deleted {
		s.live[r] = struct{}{}
		s.liveCount++
	}
}

func (s *search) readyUnits() []int {
	var ready []int
	for i := 0; i < s.n; i++ {
		if !s.scheduled.has(i) && s.unresolved[i] == 0 {
			ready = append(ready, i)
		}
	}
	return ready
}

func (s *search) snapshotPath() []dag.Unit {
	out := make([]dag.Unit, len(s.path))
	for i, idx := range s.path {
		out[i] = s.units[idx]
	}
	return out
}

// explore searches the subtree rooted at the search's current bitmap
// state, given curPeak (the peak already reached by the path leading
// here). It returns the minimal tailPeak achievable from here, whether
// that value is exact (see below), and whether any complete schedule was
// found in this subtree at all (false only on pruning or timeout).
//
// A result is exact only when no descendant call was skipped by
// incumbent-based pruning: the design's correctness note says the best
// tail peak for a bitmap is a pure function of that bitmap, which lets
// memoized results be reused across different paths reaching the same
// state - but only when the cached value was not itself shaped by a
// path-dependent bound. An inexact result (some sibling was pruned
// before being explored) is therefore never written to memoTable, since
// a cheaper completion might have been skipped.
func (s *search) explore(curPeak int) (tailPeak int, exact bool, ok bool) {
	if s.timedOut {
		return 0, false, false
	}
	if s.bestFound && curPeak >= s.bestPeak {
		return 0, false, false
	}
	if s.scheduled.popcount() == s.n {
		if !s.bestFound || curPeak < s.bestPeak {
			s.bestFound = true
			s.bestPeak = curPeak
			s.bestSchedule = s.snapshotPath()
		}
		return 0, true, true
	}

	key := s.scheduled.key()
	if entry, hit := s.memoTable[key]; hit {
		s.memoHits++
		s.recordMemoCompletion(curPeak, entry)
		return entry.tailPeak, true, true
	}

	s.expanded++
	s.sinceCheck++
	if s.sinceCheck >= checkInterval {
		s.sinceCheck = 0
		if time.Now().After(s.deadline) {
			s.timedOut = true
		}
		if s.progressFn != nil {
			best := -1
			if s.bestFound {
				best = s.bestPeak
			}
			s.progressFn(s.expanded, best)
		}
	}
	if s.timedOut {
		return 0, false, false
	}

	ready := s.readyUnits()
	bestLocalTail := -1
	bestLocalUnit := -1
	allExact := true

	for _, i := range ready {
		deleted, added, peakThisStep := s.emit(i)
		newPeak := curPeak
		if peakThisStep > newPeak {
			newPeak = peakThisStep
		}

		s.scheduled.set(i)
		s.path = append(s.path, i)
		for _, v := range s.succUnits[i] {
			s.unresolved[v]--
		}

		childTail, childExact, childOK := s.explore(newPeak)

		for _, v := range s.succUnits[i] {
			s.unresolved[v]++
		}
		s.path = s.path[:len(s.path)-1]
		s.scheduled.clear(i)
		s.undo(i, deleted, added)

		if s.timedOut {
			return 0, false, false
		}
		if !childOK {
			allExact = false
			continue
		}
		if !childExact {
			allExact = false
		}
		candidate := peakThisStep
		if childTail > candidate {
			candidate = childTail
		}
		if bestLocalTail == -1 || candidate < bestLocalTail {
			bestLocalTail = candidate
			bestLocalUnit = i
		}
	}

	if bestLocalTail == -1 {
		return 0, false, false
	}
	if allExact {
		entry := memoEntry{tailPeak: bestLocalTail, nextUnit: bestLocalUnit}
		s.memoTable[key] = entry
		s.recordMemoCompletion(curPeak, entry)
	}
	return bestLocalTail, allExact, true
}

// recordMemoCompletion considers the full completion a memo entry
// describes from the search's current bitmap state (curPeak, the peak
// already reached along the path leading here, combined with entry's
// cached tail) and, if it beats the best complete schedule found so
// far, rebuilds and records it by chasing nextUnit pointers forward
// from the current state to a full schedule (design §4.4: "the full
// schedule is rebuilt by chasing best_next_unit pointers from the
// cached states"). Without this, a memo hit would only ever report its
// numeric tailPeak upward for an ancestor's own bound, and a cheaper
// completion discovered by revisiting an already-memoized state would
// never reach bestSchedule/bestPeak.
func (s *search) recordMemoCompletion(curPeak int, entry memoEntry) {
	completion := curPeak
	if entry.tailPeak > completion {
		completion = entry.tailPeak
	}
	if s.bestFound && completion >= s.bestPeak {
		return
	}

	full := make([]dag.Unit, len(s.path), len(s.path)+(s.n-s.scheduled.popcount()))
	for i, idx := range s.path {
		full[i] = s.units[idx]
	}

	cur := s.scheduled.clone()
	next := entry
	for {
		full = append(full, s.units[next.nextUnit])
		cur.set(next.nextUnit)
		if cur.popcount() == s.n {
			break
		}
		e, hit := s.memoTable[cur.key()]
		if !hit {
			// Every bitmap on an exact tail path was written to
			// memoTable by the recursion that established it; this
			// would only happen on a logic error, not a real run.
			return
		}
		next = e
	}

	s.bestFound = true
	s.bestPeak = completion
	s.bestSchedule = full
}
