// Package core provides the inflight object tracker: the record of which GPU
// objects are still referenced by a submission whose fence has not yet
// retired. The deferred deleter consults it before releasing any handle.

package core

import (
	"sync"

	"github.com/gogpu/webgpu/hal"
)

// InflightSubscriber is notified when a fence retires, after its entry has
// already been removed from the tracker. A callback that itself calls
// IsInflight will therefore never observe the objects it is being notified
// about as still inflight.
type InflightSubscriber func(fence hal.Fence, entry *InflightEntry)

// InflightEntry is the set of every GPU object referenced by the
// submissions batched under one fence.
type InflightEntry struct {
	handles map[any]struct{}
}

func newInflightEntry() *InflightEntry {
	return &InflightEntry{handles: make(map[any]struct{})}
}

func (e *InflightEntry) add(h any) {
	if h == nil {
		return
	}
	e.handles[h] = struct{}{}
}

// Contains reports whether h is referenced by this entry.
func (e *InflightEntry) Contains(h any) bool {
	if e == nil || h == nil {
		return false
	}
	_, ok := e.handles[h]
	return ok
}

// Handles returns every handle referenced by this entry. The returned slice
// is a snapshot; mutating it does not affect the entry.
func (e *InflightEntry) Handles() []any {
	out := make([]any, 0, len(e.handles))
	for h := range e.handles {
		out = append(out, h)
	}
	return out
}

// InflightTracker maps a submission fence to every GPU object referenced by
// that submission, so the deferred deleter can tell whether destroying a
// handle right now would race the GPU.
//
// Grounded on the retained-objects-per-fence model: objects referenced by a
// batch of command buffers are kept alive until the fence that guards their
// execution signals, at which point Clear removes the entry and notifies
// subscribers (the deferred deleter chief among them) so anything queued
// behind that fence can finally be destroyed.
type InflightTracker struct {
	mu      sync.RWMutex
	entries map[hal.Fence]*InflightEntry
	subs    map[any]InflightSubscriber
}

// NewInflightTracker creates an empty tracker.
func NewInflightTracker() *InflightTracker {
	return &InflightTracker{
		entries: make(map[hal.Fence]*InflightEntry),
		subs:    make(map[any]InflightSubscriber),
	}
}

// Add merges the handles referenced by a submission into the entry tracked
// for fence, creating the entry if this is the first submission under it.
func (t *InflightTracker) Add(fence hal.Fence, handles []any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[fence]
	if !ok {
		entry = newInflightEntry()
		t.entries[fence] = entry
	}
	for _, h := range handles {
		entry.add(h)
	}
}

// Clear removes the entry tracked for fence and notifies every subscriber
// with it. The entry is removed from the map before any subscriber runs, so
// a subscriber that calls IsInflight on one of the entry's handles during
// its callback will not see it as still inflight — this is what makes it
// safe for the deferred deleter to destroy those handles from the callback.
//
// Returns false if fence had no tracked entry.
func (t *InflightTracker) Clear(fence hal.Fence) bool {
	t.mu.Lock()
	entry, ok := t.entries[fence]
	if !ok {
		t.mu.Unlock()
		return false
	}
	delete(t.entries, fence)

	subs := make([]InflightSubscriber, 0, len(t.subs))
	for _, s := range t.subs {
		subs = append(subs, s)
	}
	t.mu.Unlock()

	for _, sub := range subs {
		sub(fence, entry)
	}
	return true
}

// IsInflight reports whether h is referenced by any fence's entry.
func (t *InflightTracker) IsInflight(h any) bool {
	if h == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, entry := range t.entries {
		if entry.Contains(h) {
			return true
		}
	}
	return false
}

// Subscribe registers sub to be called whenever Clear retires a fence. id
// identifies the subscriber for a later Unsubscribe and is otherwise opaque.
func (t *InflightTracker) Subscribe(id any, sub InflightSubscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs[id] = sub
}

// Unsubscribe removes the subscriber previously registered under id.
func (t *InflightTracker) Unsubscribe(id any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subs, id)
}

// PendingFences returns every fence currently tracked. Used by Device.Destroy
// to drain outstanding work before tearing down the HAL device.
func (t *InflightTracker) PendingFences() []hal.Fence {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]hal.Fence, 0, len(t.entries))
	for f := range t.entries {
		out = append(out, f)
	}
	return out
}
