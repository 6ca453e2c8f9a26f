package obs

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	tr := NoopTransformHooks{}
	tr.OnTransformStart(ctx, "unique_reg_ids", 10)
	tr.OnTransformEnd(ctx, "unique_reg_ids", true, false, false, time.Second)

	s := NoopScheduleHooks{}
	s.OnScheduleStart(ctx, "exact", 10)
	s.OnScheduleComplete(ctx, "exact", 2, time.Second, nil)
	s.OnSearchProgress(ctx, 100, 3)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "memo")
	c.OnCacheMiss(ctx, "memo")
	c.OnCacheSet(ctx, "memo", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Transform().(NoopTransformHooks); !ok {
		t.Error("Transform() should return NoopTransformHooks by default")
	}
	if _, ok := Schedule().(NoopScheduleHooks); !ok {
		t.Error("Schedule() should return NoopScheduleHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customTransform := &testTransformHooks{}
	SetTransformHooks(customTransform)
	if Transform() != customTransform {
		t.Error("SetTransformHooks should set custom hooks")
	}

	customSchedule := &testScheduleHooks{}
	SetScheduleHooks(customSchedule)
	if Schedule() != customSchedule {
		t.Error("SetScheduleHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Transform().(NoopTransformHooks); !ok {
		t.Error("Reset() should restore NoopTransformHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testTransformHooks{}
	SetTransformHooks(custom)

	SetTransformHooks(nil)

	if Transform() != custom {
		t.Error("SetTransformHooks(nil) should be ignored")
	}

	Reset()
}

type testTransformHooks struct{ NoopTransformHooks }
type testScheduleHooks struct{ NoopScheduleHooks }
type testCacheHooks struct{ NoopCacheHooks }
