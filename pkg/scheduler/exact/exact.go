package exact

import (
	"context"
	"encoding/json"
	"time"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/memo"
	"github.com/schedcore/rpsched/pkg/obs"
	"github.com/schedcore/rpsched/pkg/schederr"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// checkInterval is the expansion countdown before the wall clock is
// consulted, avoiding a clock read on every branch-and-bound step.
const checkInterval = 100

// Quality presets mirror the teacher's ordering.Quality trade-off
// between search time and result quality.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityOptimal
)

// Default timeouts per quality preset.
const (
	DefaultTimeoutFast     = 100 * time.Millisecond
	DefaultTimeoutBalanced = 5 * time.Second
	DefaultTimeoutOptimal  = 60 * time.Second
)

// TimeoutFor returns the default timeout for q.
func TimeoutFor(q Quality) time.Duration {
	switch q {
	case QualityOptimal:
		return DefaultTimeoutOptimal
	case QualityBalanced:
		return DefaultTimeoutBalanced
	default:
		return DefaultTimeoutFast
	}
}

// DebugInfo summarizes one completed (or timed-out) search, echoed via
// [Scheduler.Debug] the way the teacher's OptimalSearch reports row
// bottlenecks for its own branch-and-bound pass.
type DebugInfo struct {
	NodeCount   int
	Expanded    int
	MemoHits    int
	MemoEntries int
	TimedOut    bool
}

// Scheduler is the exact, register-pressure-minimizing branch-and-bound
// scheduler with bitmap memoization (design §4.4).
type Scheduler struct {
	// Timeout bounds the search; zero means QualityBalanced's default.
	Timeout time.Duration
	// Fallback is invoked on timeout with no schedule found yet, and
	// whenever the sub-DAG exceeds MaxNodes. Typically the list scheduler.
	Fallback scheduler.Scheduler
	// Progress, if set, is called periodically during the search with
	// the number of expansions so far and the best complete peak found
	// (-1 if none yet).
	Progress func(expanded, bestPeak int)
	// Debug, if set, is called once after the search completes.
	Debug func(DebugInfo)
	// Store, if set, persists whole-DAG results across Schedule calls
	// keyed by a structural Signature (see signature.go). A shared
	// Store does not change correctness, only whether the search reruns.
	Store memo.Store
}

// storedResult is the JSON payload cached in Store, keyed by Signature.
type storedResult struct {
	Peak   int      `json:"peak"`
	Labels []string `json:"labels"`
}

// Schedule implements scheduler.Scheduler.
func (s *Scheduler) Schedule(d *dag.DAG, sink chain.Sink) error {
	units := d.Units()
	n := len(units)
	if n == 0 {
		return nil
	}
	if n > MaxNodes {
		return s.fallback(d, sink)
	}

	ctx := context.Background()
	if s.Store != nil {
		if order, ok := s.tryStore(ctx, d, units); ok {
			for _, u := range order {
				sink.Append(u)
			}
			return nil
		}
	}

	sc := newSearch(d, units, s.timeout())
	obs.Schedule().OnScheduleStart(ctx, "exact", n)
	start := time.Now()

	sc.run(s.Progress)

	obs.Schedule().OnScheduleComplete(ctx, "exact", sc.bestPeak, time.Since(start), nil)
	if s.Debug != nil {
		s.Debug(DebugInfo{
			NodeCount:   n,
			Expanded:    sc.expanded,
			MemoHits:    sc.memoHits,
			MemoEntries: len(sc.memoTable),
			TimedOut:    sc.timedOut,
		})
	}

	if sc.bestSchedule == nil {
		return s.fallback(d, sink)
	}

	for _, u := range sc.bestSchedule {
		sink.Append(u)
	}

	if s.Store != nil {
		s.saveStore(ctx, d, sc.bestSchedule, sc.bestPeak)
	}
	return nil
}

func (s *Scheduler) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeoutBalanced
}

func (s *Scheduler) fallback(d *dag.DAG, sink chain.Sink) error {
	if s.Fallback == nil {
		return schederr.New(schederr.ErrCodeInternal, "exact scheduler: no fallback configured for a graph of %d units", d.NodeCount())
	}
	return s.Fallback.Schedule(d, sink)
}

func (s *Scheduler) tryStore(ctx context.Context, d *dag.DAG, units []dag.Unit) ([]dag.Unit, bool) {
	key := memo.Key(Signature(d), nil)
	data, hit, err := s.Store.Get(ctx, key)
	if err != nil || !hit {
		obs.Cache().OnCacheMiss(ctx, "exact-result")
		return nil, false
	}
	var res storedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	byLabel := make(map[string][]dag.Unit, len(units))
	for _, u := range units {
		byLabel[u.String()] = append(byLabel[u.String()], u)
	}
	order := make([]dag.Unit, 0, len(res.Labels))
	for _, lbl := range res.Labels {
		candidates := byLabel[lbl]
		if len(candidates) == 0 {
			return nil, false // label set doesn't match this call's units; treat as a miss
		}
		order = append(order, candidates[0])
		byLabel[lbl] = candidates[1:]
	}
	if len(order) != len(units) {
		return nil, false
	}
	obs.Cache().OnCacheHit(ctx, "exact-result")
	return order, true
}

func (s *Scheduler) saveStore(ctx context.Context, d *dag.DAG, order []dag.Unit, peak int) {
	labels := make([]string, len(order))
	for i, u := range order {
		labels[i] = u.String()
	}
	data, err := json.Marshal(storedResult{Peak: peak, Labels: labels})
	if err != nil {
		return
	}
	key := memo.Key(Signature(d), nil)
	_ = s.Store.Set(ctx, key, data, 0)
	obs.Cache().OnCacheSet(ctx, "exact-result", len(data))
}
