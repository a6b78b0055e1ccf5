package core

import (
	"fmt"
	"sync"

	"github.com/gogpu/webgpu/hal"
	"github.com/gogpu/webgpu/types"
)

// PresentFunc presents an acquired swapchain image. The queue submission
// path calls it synchronously right after a Present-kind group is issued.
type PresentFunc func(imageIndex uint32) error

// SubmitCommandBuffers runs buffers through a SubmitCompiler and issues
// each resulting group to the device's HAL queue in order. Every group gets
// its own fence; the fence and the group's referenced-object set are
// registered with the device's inflight tracker immediately after Submit
// returns, before the next group is issued, so a caller destroying a
// resource concurrently always sees it as inflight until its fence retires.
//
// Cross-group semaphores compiled as opaque handles are mapped to pooled
// backend semaphores here; a backend whose queue does not accept semaphores
// falls back to plain in-order submission, which on a single queue
// preserves execution order (though not the explicit wait stages).
//
// A SubmitKindPresent group's acquired image is presented through present,
// synchronously, right after the group is submitted. A nil present leaves
// the Present-kind group to the caller: the device has no reference to the
// Surface the image was acquired from.
func (d *Device) SubmitCommandBuffers(compiler *SubmitCompiler, buffers []*CoreCommandBuffer, present PresentFunc) ([]*CompiledSubmit, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if d.halQueue == nil {
		return nil, fmt.Errorf("device %q has no associated HAL queue", d.Label)
	}

	guard := d.snatchLock.Read()
	halDevicePtr := d.Raw(guard)
	guard.Release()
	if halDevicePtr == nil {
		return nil, ErrDeviceDestroyed
	}
	halDevice := *halDevicePtr

	pool := d.semaphorePool()
	semQueue, hasSemQueue := d.halQueue.(hal.SemaphoreQueue)

	compiled := compiler.Compile(buffers)
	semaphores := make(map[SemaphoreHandle]hal.Semaphore)

	for _, submit := range compiled {
		if len(submit.CommandBuffers) == 0 {
			continue
		}

		fence, err := halDevice.CreateFence()
		if err != nil {
			return compiled, fmt.Errorf("create submit fence: %w", err)
		}

		raw := make([]hal.CommandBuffer, len(submit.CommandBuffers))
		for i, cb := range submit.CommandBuffers {
			raw[i] = cb.Raw()
		}

		var waits []hal.SemaphoreWait
		var signals []hal.Semaphore
		if pool != nil && hasSemQueue {
			for _, w := range submit.WaitSemaphores {
				var sem hal.Semaphore
				if w.AcquireOf != nil {
					sem, _ = w.AcquireOf.AcquireSemaphore().(hal.Semaphore)
				} else {
					sem = semaphores[w.Semaphore]
				}
				if sem == nil {
					continue
				}
				waits = append(waits, hal.SemaphoreWait{
					Semaphore:    sem,
					BufferUsage:  w.BufferUsage,
					TextureUsage: w.TextureUsage,
				})
			}
			for _, handle := range submit.SignalSemaphores {
				sem, err := pool.Acquire()
				if err != nil {
					return compiled, fmt.Errorf("acquire submit semaphore: %w", err)
				}
				semaphores[handle] = sem
				signals = append(signals, sem)
			}
			if submit.Kind == SubmitKindPresent {
				// The presentation engine waits on the swapchain's present
				// semaphore; the rendering submit must signal it.
				for _, w := range submit.WaitSemaphores {
					if w.AcquireOf == nil {
						continue
					}
					if sem, ok := w.AcquireOf.PresentSemaphore().(hal.Semaphore); ok && sem != nil {
						signals = append(signals, sem)
					}
				}
			}
		}

		const fenceValue = 1
		if hasSemQueue && (len(waits) > 0 || len(signals) > 0) {
			err = semQueue.SubmitWithSemaphores(raw, waits, signals, fence, fenceValue)
		} else {
			err = d.halQueue.Submit(raw, fence, fenceValue)
		}
		if err != nil {
			return compiled, fmt.Errorf("submit command buffers: %w", err)
		}

		handles := submit.Objects.Handles()
		for _, s := range signals {
			handles = append(handles, s)
		}
		for _, w := range waits {
			handles = append(handles, w.Semaphore)
		}
		d.inflight.Add(fence, handles)

		if submit.Kind == SubmitKindPresent && present != nil && submit.SwapchainIndex != nil {
			if perr := present(*submit.SwapchainIndex); perr != nil {
				return compiled, fmt.Errorf("present swapchain image %d: %w", *submit.SwapchainIndex, perr)
			}
		}
	}

	return compiled, nil
}

// OnSubmittedWorkDone invokes callback once every submission currently
// tracked by the inflight tracker has retired. With no work pending the
// callback runs immediately, on the caller's goroutine; otherwise it runs
// from whichever Clear retires the last outstanding fence.
func (d *Device) OnSubmittedWorkDone(callback func()) {
	if callback == nil {
		return
	}
	pending := d.inflight.PendingFences()
	if len(pending) == 0 {
		callback()
		return
	}

	var mu sync.Mutex
	remaining := make(map[hal.Fence]struct{}, len(pending))
	for _, f := range pending {
		remaining[f] = struct{}{}
	}

	id := new(int)
	d.inflight.Subscribe(id, func(f hal.Fence, _ *InflightEntry) {
		mu.Lock()
		delete(remaining, f)
		done := len(remaining) == 0
		mu.Unlock()
		if done {
			d.inflight.Unsubscribe(id)
			callback()
		}
	})
}

// GetQueue retrieves queue data.
// Returns an error if the queue ID is invalid.
func GetQueue(id QueueID) (*Queue, error) {
	hub := GetGlobal().Hub()
	queue, err := hub.GetQueue(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return &queue, nil
}

// QueueSubmit submits command buffers to the queue.
//
// Deprecated: This is the legacy ID-based API. For new code, use the
// HAL-based API via Device and Queue structs from resource.go.
//
// This function validates command buffer IDs but does not perform actual
// GPU submission. It exists for backward compatibility with existing code.
//
// The command buffers are executed in order. After submission,
// the command buffer IDs become invalid and cannot be reused.
//
// Returns an error if the queue ID is invalid or if submission fails.
func QueueSubmit(id QueueID, commandBuffers []CommandBufferID) error {
	hub := GetGlobal().Hub()

	// Verify the queue exists
	_, err := hub.GetQueue(id)
	if err != nil {
		return fmt.Errorf("invalid queue: %w", err)
	}

	// Validate all command buffers exist
	for _, cmdBufID := range commandBuffers {
		_, err := hub.GetCommandBuffer(cmdBufID)
		if err != nil {
			return fmt.Errorf("invalid command buffer: %w", err)
		}
	}

	// Note: Actual GPU submission is handled by the HAL-based API.
	// This ID-based function only validates IDs.

	return nil
}

// QueueWriteBuffer writes data to a buffer through the queue.
//
// Deprecated: This is the legacy ID-based API. For new code, use the
// HAL-based API via Queue.WriteBuffer() (when implemented).
//
// This function validates IDs but does not perform actual GPU writes.
// It exists for backward compatibility with existing code.
//
// This is a convenience method for updating buffer data without
// creating a staging buffer. The data is written at the specified
// offset in the buffer.
//
// Returns an error if the queue ID or buffer ID is invalid,
// or if the write operation fails.
func QueueWriteBuffer(id QueueID, buffer BufferID, offset uint64, data []byte) error {
	hub := GetGlobal().Hub()

	// Verify the queue exists
	_, err := hub.GetQueue(id)
	if err != nil {
		return fmt.Errorf("invalid queue: %w", err)
	}

	// Verify the buffer exists
	_, err = hub.GetBuffer(buffer)
	if err != nil {
		return fmt.Errorf("invalid buffer: %w", err)
	}

	// Note: Actual GPU write is handled by the HAL-based API.
	// This ID-based function only validates IDs.
	_ = offset
	_ = data

	return nil
}

// QueueWriteTexture writes data to a texture through the queue.
//
// Deprecated: This is the legacy ID-based API. For new code, use the
// HAL-based API via Queue.WriteTexture() (when implemented).
//
// This function validates parameters but does not perform actual GPU writes.
// It exists for backward compatibility with existing code.
//
// This is a convenience method for updating texture data without
// creating a staging buffer. The data is written to the specified
// texture region.
//
// Returns an error if the queue ID or texture ID is invalid,
// or if the write operation fails.
func QueueWriteTexture(id QueueID, dst *types.ImageCopyTexture, data []byte, layout *types.TextureDataLayout, size *types.Extent3D) error {
	hub := GetGlobal().Hub()

	// Verify the queue exists
	_, err := hub.GetQueue(id)
	if err != nil {
		return fmt.Errorf("invalid queue: %w", err)
	}

	if dst == nil {
		return fmt.Errorf("destination texture is required")
	}

	if layout == nil {
		return fmt.Errorf("texture data layout is required")
	}

	if size == nil {
		return fmt.Errorf("texture size is required")
	}

	// Note: Actual GPU write is handled by the HAL-based API.
	// This ID-based function only validates parameters.
	_ = data

	return nil
}

// QueueOnSubmittedWorkDone returns when all submitted work completes.
//
// Deprecated: This is the legacy ID-based API. For new code, use the
// HAL-based API via Queue.OnSubmittedWorkDone() (when implemented).
//
// This function is currently a no-op as the ID-based API does not
// perform actual GPU operations. It exists for backward compatibility.
//
// This function blocks until all work submitted to the queue before
// this call has completed execution on the GPU.
//
// Returns an error if the queue ID is invalid.
func QueueOnSubmittedWorkDone(id QueueID) error {
	hub := GetGlobal().Hub()

	// Verify the queue exists
	_, err := hub.GetQueue(id)
	if err != nil {
		return fmt.Errorf("invalid queue: %w", err)
	}

	// Note: Actual synchronization is handled by the HAL-based API.
	// This ID-based function is a no-op.

	return nil
}
