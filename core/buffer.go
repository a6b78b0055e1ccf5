package core

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/core/track"
	"github.com/gogpu/webgpu/hal"
)

// TrackerIndex and InvalidTrackerIndex are re-exported from the track
// package so resource-tracking call sites in this package don't need to
// import it directly alongside everything else here.
type TrackerIndex = track.TrackerIndex

// InvalidTrackerIndex marks a resource that has not been assigned a tracker
// index (or whose tracking data has been released).
const InvalidTrackerIndex = track.InvalidTrackerIndex

// bufferInitChunkSize is the granularity at which lazy buffer-zeroing state
// is tracked. A whole chunk is considered initialized once any write touches
// part of it, trading precision for a small, fixed-size bitmap per buffer.
const bufferInitChunkSize = 4096

// BufferInitTracker records which regions of a buffer have been written,
// so the queue can lazily zero-fill the rest right before first use instead
// of clearing the whole buffer up front.
type BufferInitTracker struct {
	size   uint64
	chunks []bool
}

// NewBufferInitTracker creates a tracker for a buffer of the given size.
func NewBufferInitTracker(size uint64) *BufferInitTracker {
	n := (size + bufferInitChunkSize - 1) / bufferInitChunkSize
	return &BufferInitTracker{
		size:   size,
		chunks: make([]bool, n),
	}
}

func (t *BufferInitTracker) chunkRange(offset, size uint64) (int, int) {
	first := int(offset / bufferInitChunkSize)
	last := int((offset + size + bufferInitChunkSize - 1) / bufferInitChunkSize)
	if last > len(t.chunks) {
		last = len(t.chunks)
	}
	return first, last
}

// IsInitialized reports whether every chunk touching [offset, offset+size)
// has been marked initialized. A nil tracker, or a zero-length range,
// is always considered initialized.
func (t *BufferInitTracker) IsInitialized(offset, size uint64) bool {
	if t == nil || size == 0 {
		return true
	}
	first, last := t.chunkRange(offset, size)
	for i := first; i < last; i++ {
		if !t.chunks[i] {
			return false
		}
	}
	return true
}

// MarkInitialized marks every chunk touching [offset, offset+size) as
// initialized. A nil tracker, or a zero-length range, is a no-op.
func (t *BufferInitTracker) MarkInitialized(offset, size uint64) {
	if t == nil || size == 0 {
		return
	}
	first, last := t.chunkRange(offset, size)
	for i := first; i < last; i++ {
		t.chunks[i] = true
	}
}

// BufferMapState is the lifecycle state of a buffer's CPU mapping.
type BufferMapState int

const (
	// BufferMapStateIdle means the buffer is not mapped and has no pending map request.
	BufferMapStateIdle BufferMapState = iota
	// BufferMapStatePending means a MapAsync request is in flight.
	BufferMapStatePending
	// BufferMapStateMapped means the buffer is currently mapped for CPU access.
	BufferMapStateMapped
)

// Buffer is a GPU buffer, HAL-backed and safe for concurrent use by the
// command-recording and queue-submission pipeline.
type Buffer struct {
	device *Device
	raw    *Snatchable[hal.Buffer]

	usage gputypes.BufferUsage
	size  uint64
	label string

	destroyed atomic.Bool
	mapState  atomic.Int32

	initTracker  *BufferInitTracker
	trackingData *track.TrackingData
}

// NewBuffer wraps an already-created hal.Buffer as a core Buffer owned by device.
func NewBuffer(halBuffer hal.Buffer, device *Device, usage gputypes.BufferUsage, size uint64, label string) *Buffer {
	b := &Buffer{
		device:      device,
		raw:         NewSnatchable(halBuffer),
		usage:       usage,
		size:        size,
		label:       label,
		initTracker: NewBufferInitTracker(size),
	}
	b.trackingData = track.NewTrackingData(nil)
	return b
}

// HasHAL reports whether this Buffer wraps a HAL buffer.
func (b *Buffer) HasHAL() bool {
	return b != nil && b.raw != nil
}

// Device returns the device that owns this buffer, or nil.
func (b *Buffer) Device() *Device {
	if b == nil {
		return nil
	}
	return b.device
}

// Usage returns the buffer's usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage {
	if b == nil {
		return 0
	}
	return b.usage
}

// Size returns the buffer's size in bytes, as requested at creation.
func (b *Buffer) Size() uint64 {
	if b == nil {
		return 0
	}
	return b.size
}

// Label returns the buffer's debug label.
func (b *Buffer) Label() string {
	if b == nil {
		return ""
	}
	return b.label
}

// Raw returns the underlying HAL buffer. Requires a SnatchGuard obtained
// from the owning device's SnatchLock. Returns nil once the buffer has
// been destroyed.
func (b *Buffer) Raw(guard *SnatchGuard) *hal.Buffer {
	if b == nil || b.raw == nil {
		return nil
	}
	return b.raw.Get(guard)
}

// IsDestroyed reports whether Destroy has completed on this buffer. A
// buffer with no HAL backing (the zero value) is always considered destroyed.
func (b *Buffer) IsDestroyed() bool {
	if b == nil || b.raw == nil {
		return true
	}
	return b.destroyed.Load()
}

// Destroy releases the underlying HAL buffer through the owning device's
// deferred deleter, so destruction waits for any inflight submission still
// referencing it. Safe to call more than once.
func (b *Buffer) Destroy() {
	if b == nil || b.raw == nil {
		return
	}
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	if b.trackingData != nil {
		b.trackingData.Release()
	}

	destroy := func() {
		lock := b.device.SnatchLock()
		if lock == nil {
			return
		}
		guard := lock.Write()
		raw := b.raw.Snatch(guard)
		guard.Release()
		if raw != nil && b.device.HasHAL() {
			readGuard := lock.Read()
			halDevice := b.device.Raw(readGuard)
			readGuard.Release()
			if halDevice != nil {
				(*halDevice).DestroyBuffer(*raw)
			}
		}
	}

	if b.device != nil && b.device.deleter != nil {
		b.device.deleter.SafeDestroy(b, destroy)
	} else {
		destroy()
	}
}

// MapState returns the buffer's current CPU-mapping state.
func (b *Buffer) MapState() BufferMapState {
	return BufferMapState(b.mapState.Load())
}

// SetMapState transitions the buffer's CPU-mapping state.
func (b *Buffer) SetMapState(state BufferMapState) {
	b.mapState.Store(int32(state))
}

// IsInitialized reports whether [offset, offset+size) has been written.
func (b *Buffer) IsInitialized(offset, size uint64) bool {
	if b == nil {
		return true
	}
	return b.initTracker.IsInitialized(offset, size)
}

// MarkInitialized records [offset, offset+size) as written.
func (b *Buffer) MarkInitialized(offset, size uint64) {
	if b == nil {
		return
	}
	b.initTracker.MarkInitialized(offset, size)
}

// TrackingData returns the buffer's resource-tracker index allocation.
func (b *Buffer) TrackingData() *track.TrackingData {
	return b.trackingData
}

// alignBufferSize rounds size up to the next multiple of 4, the minimum
// alignment WebGPU buffers must satisfy.
func alignBufferSize(size uint64) uint64 {
	const align = 4
	return (size + align - 1) &^ (align - 1)
}

// validateBufferUsage checks a requested usage mask for internal
// consistency, independent of any device limits.
func validateBufferUsage(usage gputypes.BufferUsage) error {
	if usage == 0 {
		return &CreateBufferError{Kind: CreateBufferErrorEmptyUsage}
	}
	const known = gputypes.BufferUsageMapRead | gputypes.BufferUsageMapWrite |
		gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst |
		gputypes.BufferUsageIndex | gputypes.BufferUsageVertex |
		gputypes.BufferUsageUniform | gputypes.BufferUsageStorage |
		gputypes.BufferUsageIndirect | gputypes.BufferUsageQueryResolve
	if usage&^known != 0 {
		return &CreateBufferError{Kind: CreateBufferErrorInvalidUsage}
	}
	if usage&gputypes.BufferUsageMapRead != 0 && usage&gputypes.BufferUsageMapWrite != 0 {
		return &CreateBufferError{Kind: CreateBufferErrorMapReadWriteExclusive}
	}
	return nil
}

// CreateBuffer creates a buffer on this device, validating the descriptor
// against device limits before asking the HAL to allocate it.
//
// Grounded on the resource-creation validation pipeline: usage/size checks
// run first (cheap, backend-independent), and only a descriptor that passes
// them reaches the HAL, where a failure is wrapped as CreateBufferErrorHAL
// rather than surfaced raw.
func (d *Device) CreateBuffer(desc *gputypes.BufferDescriptor) (*Buffer, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateBufferError{Kind: CreateBufferErrorInvalidUsage, HALError: fmt.Errorf("nil descriptor")}
	}
	if desc.Size == 0 {
		return nil, &CreateBufferError{Kind: CreateBufferErrorZeroSize, Label: desc.Label}
	}
	if desc.Size > d.Limits.MaxBufferSize {
		return nil, &CreateBufferError{
			Kind:          CreateBufferErrorMaxBufferSize,
			Label:         desc.Label,
			RequestedSize: desc.Size,
			MaxSize:       d.Limits.MaxBufferSize,
		}
	}
	if err := validateBufferUsage(desc.Usage); err != nil {
		var cbe *CreateBufferError
		if errors.As(err, &cbe) {
			cbe.Label = desc.Label
		}
		return nil, err
	}

	halSize := alignBufferSize(desc.Size)

	var halBuffer hal.Buffer
	if d.HasHAL() {
		lock := d.SnatchLock()
		guard := lock.Read()
		halDevice := d.Raw(guard)
		var err error
		if halDevice != nil {
			halBuffer, err = (*halDevice).CreateBuffer(&hal.BufferDescriptor{
				Label: desc.Label,
				Size:  halSize,
				Usage: desc.Usage,
			})
		}
		guard.Release()
		if err != nil {
			return nil, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label, HALError: err}
		}
	}

	buffer := NewBuffer(halBuffer, d, desc.Usage, desc.Size, desc.Label)
	if desc.MappedAtCreation {
		buffer.SetMapState(BufferMapStateMapped)
		buffer.MarkInitialized(0, desc.Size)
	}
	return buffer, nil
}
