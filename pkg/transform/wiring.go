package transform

import (
	"context"
	"time"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/obs"
	"github.com/schedcore/rpsched/pkg/scheduler"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
)

// BuildPipeline assembles the full rewrite pipeline in the order the
// design prescribes: unique_reg_ids runs once up front (every later
// transformation that introduces a fresh register relies on the DAG
// already having no duplicate register ids to collide with), then the
// remaining eight transformations repeat to a fixed point - each round
// may expose an opportunity for an earlier one (stripping a dataless
// unit can turn an approximate fusion into an exact one, an exact fusion
// can turn a cut candidate into a cleanly separable subgraph, and so
// on), so the inner loop keeps re-running the whole set until a full
// pass changes nothing.
func BuildPipeline() Transformation {
	return BuildPipelineNamed(DefaultTransformNames)
}

// DefaultTransformNames lists every loop-stage transformation (i.e.
// everything [BuildPipeline] runs besides the mandatory leading
// unique_reg_ids pass) in its default order.
var DefaultTransformNames = []string{
	"strip_dataless_units",
	"strip_useless_order_deps",
	"simplify_order_cuts",
	"split_def_use_dom_use_deps",
	"smart_fuse_two_units",
	"break_symmetrical_branch_merge",
	"collapse_chains",
	"split_merge_branch_units",
}

// transformByName builds a fresh Transformation instance for a stage
// name, for config-driven selection (internal/config's "transforms"
// list) of which of the eight loop-stage passes actually run.
// unique_reg_ids itself is not selectable - it is not idempotent to skip
// once, since later stages rely on having run it - so it is not in this
// registry.
func transformByName(name string) (Transformation, bool) {
	switch name {
	case "strip_dataless_units":
		return StripDatalessUnits(), true
	case "strip_useless_order_deps":
		return StripUselessOrderDeps(), true
	case "simplify_order_cuts":
		return SimplifyOrderCuts(), true
	case "split_def_use_dom_use_deps":
		return SplitDefUseDomUseDeps(), true
	case "smart_fuse_two_units":
		return SmartFuseTwoUnits(), true
	case "break_symmetrical_branch_merge":
		return BreakSymmetricalBranchMerge(), true
	case "collapse_chains":
		return CollapseChains(), true
	case "split_merge_branch_units":
		return SplitMergeBranchUnits(), true
	default:
		return nil, false
	}
}

// BuildPipelineNamed is [BuildPipeline] generalized to an explicit,
// ordered subset of the eight loop-stage transformations - the shape
// internal/config's "transforms" list needs to enable or disable
// individual passes without recompiling. Unknown names are skipped
// rather than rejected: a config written against a future stage name
// should not break older binaries.
func BuildPipelineNamed(names []string) Transformation {
	stages := make([]Transformation, 0, len(names))
	for _, n := range names {
		if t, ok := transformByName(n); ok {
			stages = append(stages, t)
		}
	}
	if len(stages) == 0 {
		return UniqueRegIDs()
	}
	return Pipeline(UniqueRegIDs(), Loop(Pipeline(stages...)))
}

// PipelineScheduler runs BuildPipeline ahead of an inner scheduler,
// bracketing the whole run with a single pair of obs transform hooks
// (individual stages do not report to obs themselves, so nested
// Pack/Glue composition never double-counts a single pipeline
// invocation).
type PipelineScheduler struct {
	Pipeline Transformation
	Inner    scheduler.Scheduler
}

// NewPipelineScheduler returns a PipelineScheduler running BuildPipeline
// over an exact scheduler that falls back to the list scheduler on
// timeout or when a sub-DAG exceeds the exact search's node cap.
func NewPipelineScheduler(timeout time.Duration) *PipelineScheduler {
	return &PipelineScheduler{
		Pipeline: BuildPipeline(),
		Inner: &exact.Scheduler{
			Timeout:  timeout,
			Fallback: list.New(),
		},
	}
}

// Schedule implements scheduler.Scheduler.
func (p *PipelineScheduler) Schedule(d *dag.DAG, sink chain.Sink) error {
	ctx := context.Background()
	name := "pipeline"
	start := time.Now()
	obs.Transform().OnTransformStart(ctx, name, len(d.Units()))

	status := &Status{}
	err := p.Pipeline.Transform(d, p.Inner, sink, status)

	obs.Transform().OnTransformEnd(ctx, name, status.ModifiedGraph, status.Junction, status.Deadlock, time.Since(start))
	return err
}
