package wgpu

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/webgpu/core"
	"github.com/gogpu/webgpu/hal"
)

// defaultSubmitTimeout is the maximum time to wait for GPU work to complete
// after submitting command buffers. 30 seconds accommodates heavy compute workloads.
const defaultSubmitTimeout = 30 * time.Second

// Queue handles command submission and data transfers.
type Queue struct {
	hal        hal.Queue
	halDevice  hal.Device
	fence      hal.Fence
	fenceValue atomic.Uint64
	device     *Device
}

// Submit submits command buffers for execution.
// This is a synchronous operation - it blocks until the GPU has completed
// all submitted work. The buffers are compiled into submission groups with
// their cross-buffer dependencies resolved by semaphores, then drained so
// deferred destructions queued behind this work can run.
func (q *Queue) Submit(commandBuffers ...*CommandBuffer) error {
	if q.hal == nil {
		return fmt.Errorf("wgpu: queue not available")
	}
	if q.device == nil || q.device.core == nil {
		return fmt.Errorf("wgpu: queue has no device")
	}

	coreBuffers := make([]*core.CoreCommandBuffer, len(commandBuffers))
	for i, cb := range commandBuffers {
		if cb == nil || cb.core == nil {
			return fmt.Errorf("wgpu: nil command buffer at index %d", i)
		}
		coreBuffers[i] = cb.core
	}

	if _, err := q.device.core.SubmitCommandBuffers(core.NewSubmitCompiler(), coreBuffers, nil); err != nil {
		return fmt.Errorf("wgpu: submit failed: %w", err)
	}

	if err := q.device.core.WaitIdle(defaultSubmitTimeout); err != nil {
		return fmt.Errorf("wgpu: wait failed: %w", err)
	}

	// Return the command buffers to the pool on backends that recycle them.
	if freer, ok := q.halDevice.(interface{ FreeCommandBuffer(hal.CommandBuffer) }); ok {
		for _, cb := range commandBuffers {
			if raw := cb.halBuffer(); raw != nil {
				freer.FreeCommandBuffer(raw)
			}
		}
	}

	return nil
}

// WriteBuffer writes data to a buffer.
func (q *Queue) WriteBuffer(buffer *Buffer, offset uint64, data []byte) error {
	if q.hal == nil || buffer == nil {
		return fmt.Errorf("wgpu: WriteBuffer: queue or buffer is nil")
	}

	halBuffer := buffer.halBuffer()
	if halBuffer == nil {
		return fmt.Errorf("wgpu: WriteBuffer: no HAL buffer")
	}

	return q.hal.WriteBuffer(halBuffer, offset, data)
}

// ReadBuffer reads data from a GPU buffer.
func (q *Queue) ReadBuffer(buffer *Buffer, offset uint64, data []byte) error {
	if q.hal == nil {
		return fmt.Errorf("wgpu: queue not available")
	}
	if buffer == nil {
		return fmt.Errorf("wgpu: buffer is nil")
	}

	halBuffer := buffer.halBuffer()
	if halBuffer == nil {
		return ErrReleased
	}

	reader, ok := q.hal.(interface {
		ReadBuffer(hal.Buffer, uint64, []byte) error
	})
	if !ok {
		return fmt.Errorf("wgpu: backend queue does not support buffer readback")
	}
	return reader.ReadBuffer(halBuffer, offset, data)
}

// WriteTexture writes data to a texture subresource through the backend's
// staging path.
func (q *Queue) WriteTexture(dst *Texture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if q.hal == nil || dst == nil {
		return fmt.Errorf("wgpu: WriteTexture: queue or texture is nil")
	}
	if dst.hal == nil {
		return fmt.Errorf("wgpu: WriteTexture: no HAL texture")
	}
	q.hal.WriteTexture(&hal.ImageCopyTexture{Texture: dst.hal}, data, layout, size)
	return nil
}

// OnSubmittedWorkDone invokes callback once all work submitted so far has
// completed on the GPU.
func (q *Queue) OnSubmittedWorkDone(callback func()) {
	if q.device == nil || q.device.core == nil {
		return
	}
	q.device.core.OnSubmittedWorkDone(callback)
}

// release cleans up queue resources.
func (q *Queue) release() {
	if q.fence != nil && q.halDevice != nil {
		q.halDevice.DestroyFence(q.fence)
		q.fence = nil
	}
}
