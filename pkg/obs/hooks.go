// Package obs provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about transformation runs,
// scheduler invocations, and memo-store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by the core)
//   - Keeps pkg/transform and pkg/scheduler dependency-free from any
//     observability backend
//   - Allows different backends (OpenTelemetry, Prometheus, a bare
//     charmbracelet/log sink) to be swapped at the CLI boundary
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    obs.SetTransformHooks(&myTransformHooks{})
//	    obs.SetScheduleHooks(&myScheduleHooks{})
//	    // ... run the pipeline
//	}
//
// The core calls hooks to emit events:
//
//	obs.Transform().OnTransformStart(ctx, name)
//	// ... run the transformation ...
//	obs.Transform().OnTransformEnd(ctx, name, modified, junction, deadlock, duration)
package obs

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Transform Hooks
// =============================================================================

// TransformHooks receives events bracketing each transformation
// invocation (see pkg/transform's begin_transformation/end_transformation
// protocol).
type TransformHooks interface {
	// OnTransformStart fires when a transformation begins.
	OnTransformStart(ctx context.Context, name string, nodeCount int)
	// OnTransformEnd fires when a transformation returns, reporting the
	// resulting status flags.
	OnTransformEnd(ctx context.Context, name string, modified, junction, deadlock bool, duration time.Duration)
}

// =============================================================================
// Schedule Hooks
// =============================================================================

// ScheduleHooks receives events from scheduler invocations (list or exact).
type ScheduleHooks interface {
	// OnScheduleStart fires when a scheduler begins on a sub-DAG.
	OnScheduleStart(ctx context.Context, kind string, nodeCount int)
	// OnScheduleComplete fires when a scheduler returns, reporting the
	// achieved peak register pressure (or -1 if err != nil).
	OnScheduleComplete(ctx context.Context, kind string, peak int, duration time.Duration, err error)
	// OnSearchProgress fires periodically during the exact scheduler's
	// branch-and-bound search (grounded in the optimalOrderer Progress
	// callback): reports nodes expanded and the best peak found so far.
	OnSearchProgress(ctx context.Context, expanded int, bestPeak int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from memo-store operations.
type CacheHooks interface {
	// OnCacheHit records a memo-store hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a memo-store miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a memo-store write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTransformHooks is a no-op implementation of TransformHooks.
type NoopTransformHooks struct{}

func (NoopTransformHooks) OnTransformStart(context.Context, string, int)                     {}
func (NoopTransformHooks) OnTransformEnd(context.Context, string, bool, bool, bool, time.Duration) {
}

// NoopScheduleHooks is a no-op implementation of ScheduleHooks.
type NoopScheduleHooks struct{}

func (NoopScheduleHooks) OnScheduleStart(context.Context, string, int)                    {}
func (NoopScheduleHooks) OnScheduleComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopScheduleHooks) OnSearchProgress(context.Context, int, int) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	transformHooks TransformHooks = NoopTransformHooks{}
	scheduleHooks  ScheduleHooks  = NoopScheduleHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetTransformHooks registers custom transform hooks.
// This should be called once at application startup before running any pipeline.
func SetTransformHooks(h TransformHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transformHooks = h
	}
}

// SetScheduleHooks registers custom schedule hooks.
func SetScheduleHooks(h ScheduleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scheduleHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Transform returns the registered transform hooks.
func Transform() TransformHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transformHooks
}

// Schedule returns the registered schedule hooks.
func Schedule() ScheduleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scheduleHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	transformHooks = NoopTransformHooks{}
	scheduleHooks = NoopScheduleHooks{}
	cacheHooks = NoopCacheHooks{}
}
