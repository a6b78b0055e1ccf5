package core

import (
	"testing"

	"github.com/gogpu/webgpu/hal"
)

type inflightFence struct{ id int }

func (*inflightFence) Destroy() {}

func TestInflightTracker_AddAndQuery(t *testing.T) {
	tr := NewInflightTracker()
	fence := &inflightFence{id: 1}
	obj := &struct{ name string }{"texture"}

	if tr.IsInflight(obj) {
		t.Error("object should not be inflight before Add")
	}

	tr.Add(fence, []any{obj})
	if !tr.IsInflight(obj) {
		t.Error("object should be inflight after Add")
	}

	if !tr.Clear(fence) {
		t.Error("Clear should report the fence was tracked")
	}
	if tr.IsInflight(obj) {
		t.Error("object should not be inflight after Clear")
	}
	if tr.Clear(fence) {
		t.Error("second Clear should report nothing tracked")
	}
}

func TestInflightTracker_MergesSubmissionsUnderOneFence(t *testing.T) {
	tr := NewInflightTracker()
	fence := &inflightFence{}
	a, b := &struct{ n int }{1}, &struct{ n int }{2}

	tr.Add(fence, []any{a})
	tr.Add(fence, []any{b})

	if !tr.IsInflight(a) || !tr.IsInflight(b) {
		t.Error("both submissions' objects should be tracked under the fence")
	}

	tr.Clear(fence)
	if tr.IsInflight(a) || tr.IsInflight(b) {
		t.Error("all objects should retire together")
	}
}

func TestInflightTracker_ObjectUnderTwoFences(t *testing.T) {
	tr := NewInflightTracker()
	f1, f2 := &inflightFence{id: 1}, &inflightFence{id: 2}
	obj := &struct{}{}

	tr.Add(f1, []any{obj})
	tr.Add(f2, []any{obj})

	tr.Clear(f1)
	if !tr.IsInflight(obj) {
		t.Error("object referenced by a second fence must stay inflight")
	}
	tr.Clear(f2)
	if tr.IsInflight(obj) {
		t.Error("object should retire with its last fence")
	}
}

// Subscribers run after the entry is removed: a reentrant IsInflight inside
// the callback must not see the retiring objects.
func TestInflightTracker_ClearRemovesBeforeNotify(t *testing.T) {
	tr := NewInflightTracker()
	fence := &inflightFence{}
	obj := &struct{}{}
	tr.Add(fence, []any{obj})

	var sawInflight bool
	var gotEntry *InflightEntry
	tr.Subscribe("test", func(f hal.Fence, entry *InflightEntry) {
		sawInflight = tr.IsInflight(obj)
		gotEntry = entry
	})

	tr.Clear(fence)
	if sawInflight {
		t.Error("callback observed the retiring object as still inflight")
	}
	if gotEntry == nil || !gotEntry.Contains(obj) {
		t.Error("callback should receive the retired entry with its objects")
	}
}

func TestInflightTracker_Unsubscribe(t *testing.T) {
	tr := NewInflightTracker()
	fence := &inflightFence{}
	tr.Add(fence, []any{&struct{}{}})

	calls := 0
	tr.Subscribe("s", func(hal.Fence, *InflightEntry) { calls++ })
	tr.Unsubscribe("s")

	tr.Clear(fence)
	if calls != 0 {
		t.Errorf("unsubscribed callback ran %d times", calls)
	}
}

func TestInflightTracker_PendingFences(t *testing.T) {
	tr := NewInflightTracker()
	f1, f2 := &inflightFence{id: 1}, &inflightFence{id: 2}
	tr.Add(f1, []any{&struct{}{}})
	tr.Add(f2, []any{&struct{}{}})

	if got := len(tr.PendingFences()); got != 2 {
		t.Fatalf("expected 2 pending fences, got %d", got)
	}
	tr.Clear(f1)
	if got := len(tr.PendingFences()); got != 1 {
		t.Fatalf("expected 1 pending fence, got %d", got)
	}
}
