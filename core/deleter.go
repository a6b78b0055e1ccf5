// Package core provides the deferred deleter: the component responsible for
// destroying GPU objects without racing work the GPU has not finished yet.

package core

import (
	"sync"

	"github.com/gogpu/webgpu/hal"
)

// DeferredDeleter destroys GPU objects immediately when they are idle, and
// defers destruction until the owning fence retires when they are not.
//
// Each handle type ultimately returns to its owning pool or allocator
// (command buffers to the command pool, semaphores to the semaphore pool,
// buffers and textures to the device), but only once the handle is no
// longer referenced by any inflight fence. SafeDestroy takes the actual
// release closure from its caller — the caller supplies the "how", the
// deleter supplies the "when".
type DeferredDeleter struct {
	device *Device

	mu     sync.Mutex
	queued map[any]func()
}

// NewDeferredDeleter creates a deleter bound to d and subscribes it to d's
// inflight tracker so queued handles are released as their fences retire.
func NewDeferredDeleter(d *Device) *DeferredDeleter {
	del := &DeferredDeleter{
		device: d,
		queued: make(map[any]func()),
	}
	if d != nil && d.inflight != nil {
		d.inflight.Subscribe(del, del.onRetire)
	}
	return del
}

// SafeDestroy destroys h by calling destroy, unless h is still referenced by
// an inflight fence, in which case destroy is queued and runs later when
// that fence retires. destroy is called exactly once either way. h must be
// the same handle value that was registered with the device's inflight
// tracker so identity comparisons line up.
func (d *DeferredDeleter) SafeDestroy(h any, destroy func()) {
	if h == nil || destroy == nil {
		return
	}
	if d.device != nil && d.device.inflight != nil && d.device.inflight.IsInflight(h) {
		d.mu.Lock()
		d.queued[h] = destroy
		d.mu.Unlock()
		return
	}

	d.mu.Lock()
	delete(d.queued, h)
	d.mu.Unlock()
	destroy()
}

// onRetire is the inflight tracker's fence-retire callback. Every handle in
// entry that is still queued here is destroyed now that it is safe.
func (d *DeferredDeleter) onRetire(_ hal.Fence, entry *InflightEntry) {
	d.mu.Lock()
	var fns []func()
	for _, h := range entry.Handles() {
		if fn, ok := d.queued[h]; ok {
			fns = append(fns, fn)
			delete(d.queued, h)
		}
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close unsubscribes from the inflight tracker and destroys every handle
// still queued, regardless of inflight status. Call only once the device is
// known idle (e.g. from Device.Destroy after WaitIdle), since after this the
// deleter no longer checks inflight status for anything.
func (d *DeferredDeleter) Close() {
	if d.device != nil && d.device.inflight != nil {
		d.device.inflight.Unsubscribe(d)
	}

	d.mu.Lock()
	queued := d.queued
	d.queued = make(map[any]func())
	d.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
}

// Pending reports how many handles are currently queued for deferred
// destruction. Exposed for tests and diagnostics.
func (d *DeferredDeleter) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queued)
}
