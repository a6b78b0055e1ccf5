package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// deviceIdleTimeout bounds the fence waits Destroy issues while draining
// outstanding submissions.
const deviceIdleTimeout = 30 * time.Second

// Resource placeholder types - will be properly defined later.
// These types represent the actual WebGPU resources managed by the hub.

// Adapter represents a physical GPU adapter.
type Adapter struct {
	// Info contains information about the adapter.
	Info gputypes.AdapterInfo
	// Features contains the features supported by the adapter.
	Features gputypes.Features
	// Limits contains the resource limits of the adapter.
	Limits gputypes.Limits
	// Backend identifies which graphics backend this adapter uses.
	Backend gputypes.Backend
}

// Device represents a logical GPU device.
//
// A Device value doubles as the handle for both generations of the device
// API living in this package: the ID-based façade (Adapter/Queue fields,
// registered in the Hub) used by CreateDevice/GetDevice, and the
// HAL-integrated encoder path (raw/snatchLock/inflight/deleter fields)
// used by CoreCommandEncoder and the queue submission pipeline. NewDevice
// constructs the latter.
type Device struct {
	// Adapter is the adapter this device was created from.
	Adapter AdapterID
	// Label is a debug label for the device.
	Label string
	// Features contains the features enabled on this device.
	Features gputypes.Features
	// Limits contains the resource limits of this device.
	Limits gputypes.Limits
	// Queue is the device's default queue.
	Queue QueueID

	// adapterRef is the adapter this device was created from, by reference.
	// Populated only for HAL-integrated devices created via NewDevice.
	adapterRef *Adapter

	// raw is the HAL device, wrapped for safe destruction under concurrent access.
	raw *Snatchable[hal.Device]

	// snatchLock coordinates reads of raw against Destroy snatching it away.
	snatchLock *SnatchLock

	// destroyed is set once Destroy has run to completion.
	destroyed atomic.Bool

	// associatedQueue is the default queue bound to this device.
	associatedQueue *Queue

	// inflight maps submission fences to every GPU object they reference.
	inflight *InflightTracker

	// deleter defers destruction of objects still referenced by an inflight fence.
	deleter *DeferredDeleter

	// halQueue is the HAL queue submissions are issued through. Set via
	// SetHALQueue once the adapter's OpenDevice result is available (Device
	// and Queue are opened atomically by hal.Adapter.Open).
	halQueue hal.Queue

	// semOnce guards the lazy creation of semPool: the pool needs the HAL
	// device's semaphore support, which is only probed on first submission.
	semOnce sync.Once
	semPool *SemaphorePool
}

// SetHALQueue binds the HAL queue this device submits work through.
func (d *Device) SetHALQueue(q hal.Queue) { d.halQueue = q }

// HALQueue returns the HAL queue bound via SetHALQueue, or nil.
func (d *Device) HALQueue() hal.Queue { return d.halQueue }

// NewDevice creates a HAL-integrated Device wrapping an already-created
// hal.Device. This is the constructor used by the command-recording and
// queue-submission pipeline, as opposed to CreateDevice's ID/Hub-based
// façade constructor.
func NewDevice(halDevice hal.Device, adapter *Adapter, features gputypes.Features, limits gputypes.Limits, label string) *Device {
	d := &Device{
		Features:   features,
		Limits:     limits,
		Label:      label,
		adapterRef: adapter,
		raw:        NewSnatchable(halDevice),
		snatchLock: NewSnatchLock(),
	}
	d.inflight = NewInflightTracker()
	d.deleter = NewDeferredDeleter(d)
	return d
}

// IsValid reports whether the device has not yet been destroyed.
func (d *Device) IsValid() bool {
	if d == nil {
		return false
	}
	return !d.destroyed.Load()
}

// HasHAL reports whether this Device wraps a HAL device (was created via NewDevice).
func (d *Device) HasHAL() bool {
	return d != nil && d.raw != nil
}

// SnatchLock returns the device's snatch lock, or nil for a non-HAL device.
func (d *Device) SnatchLock() *SnatchLock {
	if d == nil || d.snatchLock == nil {
		return nil
	}
	return d.snatchLock
}

// Raw returns the underlying HAL device. Requires a SnatchGuard obtained
// from SnatchLock().Read(). Returns nil if the device has been destroyed
// or has no HAL backing.
func (d *Device) Raw(guard *SnatchGuard) *hal.Device {
	if d == nil || d.raw == nil {
		return nil
	}
	return d.raw.Get(guard)
}

// Inflight returns the device's inflight object tracker.
func (d *Device) Inflight() *InflightTracker {
	return d.inflight
}

// Deleter returns the device's deferred deleter.
func (d *Device) Deleter() *DeferredDeleter {
	return d.deleter
}

// AssociatedQueue returns the queue bound to this device via SetAssociatedQueue, or nil.
func (d *Device) AssociatedQueue() *Queue {
	return d.associatedQueue
}

// SetAssociatedQueue binds the device's default queue reference.
func (d *Device) SetAssociatedQueue(q *Queue) {
	d.associatedQueue = q
}

// semaphorePool returns the device's semaphore pool, creating it on first
// use. Returns nil when the HAL device cannot create semaphores; the
// submission path then falls back to plain in-order submits. Pooled
// semaphores ride along in each submission's inflight entry and return to
// the free list as the fences retire.
func (d *Device) semaphorePool() *SemaphorePool {
	d.semOnce.Do(func() {
		if !d.HasHAL() {
			return
		}
		guard := d.snatchLock.Read()
		halDevice := d.Raw(guard)
		guard.Release()
		if halDevice == nil {
			return
		}
		provider, ok := (*halDevice).(hal.SemaphoreProvider)
		if !ok {
			return
		}
		d.semPool = NewSemaphorePool(provider)
		d.inflight.Subscribe(d.semPool, func(_ hal.Fence, entry *InflightEntry) {
			for _, h := range entry.Handles() {
				if s, ok := h.(hal.Semaphore); ok {
					d.semPool.Release(s)
				}
			}
		})
	})
	return d.semPool
}

// WaitIdle blocks until every tracked submission fence has signaled, then
// retires them through the inflight tracker so queued destructions run.
func (d *Device) WaitIdle(timeout time.Duration) error {
	if !d.HasHAL() {
		return nil
	}
	guard := d.snatchLock.Read()
	halDevicePtr := d.Raw(guard)
	guard.Release()
	if halDevicePtr == nil {
		return ErrDeviceDestroyed
	}
	halDevice := *halDevicePtr

	const fenceValue = 1
	for _, fence := range d.inflight.PendingFences() {
		if _, err := halDevice.Wait(fence, fenceValue, timeout); err != nil {
			return fmt.Errorf("wait for submission fence: %w", err)
		}
		d.inflight.Clear(fence)
		halDevice.DestroyFence(fence)
	}
	return nil
}

// checkValid returns ErrDeviceDestroyed if the device has been destroyed, else nil.
func (d *Device) checkValid() error {
	if !d.IsValid() {
		return ErrDeviceDestroyed
	}
	return nil
}

// Destroy waits for the device to go idle, destroys the underlying HAL
// device, and marks this Device permanently invalid. Safe to call more
// than once; only the first call has effect.
func (d *Device) Destroy() {
	if !d.destroyed.CompareAndSwap(false, true) {
		return
	}
	if d.raw == nil {
		return
	}
	// Drain outstanding GPU work first: queued destructions cannot run
	// while their fences are pending, and the semaphore pool cannot be
	// drained while submissions still reference its semaphores.
	_ = d.WaitIdle(deviceIdleTimeout)
	if d.deleter != nil {
		d.deleter.Close()
	}
	if d.semPool != nil {
		d.inflight.Unsubscribe(d.semPool)
		d.semPool.Drain()
		d.semPool = nil
	}
	guard := d.snatchLock.Write()
	halDevice := d.raw.Snatch(guard)
	guard.Release()
	if halDevice != nil {
		(*halDevice).Destroy()
	}
}

// Queue represents a command queue for a device.
type Queue struct {
	// Device is the device this queue belongs to.
	Device DeviceID
	// Label is a debug label for the queue.
	Label string
}

// Sampler represents a texture sampler.
type Sampler struct{}

// BindGroupLayout represents the layout of a bind group.
type BindGroupLayout struct{}

// PipelineLayout represents the layout of a pipeline.
type PipelineLayout struct{}

// ShaderModule represents a compiled shader module.
type ShaderModule struct{}

// RenderPipeline represents a render pipeline.
type RenderPipeline struct{}

// ComputePipeline represents a compute pipeline.
type ComputePipeline struct{}

// CommandEncoder represents a command encoder.
type CommandEncoder struct{}

// CommandBuffer represents a recorded command buffer.
type CommandBuffer struct{}

// QuerySet represents a set of queries.
type QuerySet struct{}

// Surface represents a rendering surface.
type Surface struct{}
