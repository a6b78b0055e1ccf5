// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package vulkan

import (
	"fmt"

	"github.com/gogpu/webgpu/hal"
	"github.com/gogpu/webgpu/hal/vulkan/vk"
)

// Semaphore implements hal.Semaphore for Vulkan as a binary VkSemaphore.
type Semaphore struct {
	handle vk.Semaphore
	device *Device
}

// Destroy releases the semaphore.
func (s *Semaphore) Destroy() {
	if s.handle != 0 && s.device != nil {
		vkDestroySemaphore(s.device, s.handle, nil)
		s.handle = 0
	}
}

// CreateSemaphore creates an unsignaled binary semaphore.
// Implements hal.SemaphoreProvider.
func (d *Device) CreateSemaphore() (hal.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var handle vk.Semaphore
	result := vkCreateSemaphore(d, &createInfo, nil, &handle)
	if result != vk.Success {
		return nil, fmt.Errorf("vulkan: vkCreateSemaphore failed: %d", result)
	}
	return &Semaphore{handle: handle, device: d}, nil
}

// DestroySemaphore destroys a semaphore created by CreateSemaphore.
// Implements hal.SemaphoreProvider.
func (d *Device) DestroySemaphore(sem hal.Semaphore) {
	if s, ok := sem.(*Semaphore); ok {
		s.Destroy()
	}
}

// SubmitWithSemaphores submits command buffers with explicit wait/signal
// semaphore lists. Implements hal.SemaphoreQueue.
func (q *Queue) SubmitWithSemaphores(commandBuffers []hal.CommandBuffer, waits []hal.SemaphoreWait, signals []hal.Semaphore, fence hal.Fence, fenceValue uint64) error {
	if len(commandBuffers) == 0 && len(waits) == 0 && len(signals) == 0 {
		return nil
	}

	vkCmdBuffers := make([]vk.CommandBuffer, 0, len(commandBuffers))
	for _, cb := range commandBuffers {
		vkCB, ok := cb.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("vulkan: command buffer is not a Vulkan command buffer")
		}
		vkCmdBuffers = append(vkCmdBuffers, vkCB.handle)
	}

	waitSemaphores := make([]vk.Semaphore, 0, len(waits))
	waitStages := make([]vk.PipelineStageFlags, 0, len(waits))
	for _, w := range waits {
		s, ok := w.Semaphore.(*Semaphore)
		if !ok {
			return fmt.Errorf("vulkan: wait semaphore is not a Vulkan semaphore")
		}
		waitSemaphores = append(waitSemaphores, s.handle)
		waitStages = append(waitStages, waitStageFor(w))
	}

	signalSemaphores := make([]vk.Semaphore, 0, len(signals))
	for _, sig := range signals {
		s, ok := sig.(*Semaphore)
		if !ok {
			return fmt.Errorf("vulkan: signal semaphore is not a Vulkan semaphore")
		}
		signalSemaphores = append(signalSemaphores, s.handle)
	}

	submitInfo := vk.SubmitInfo{
		SType: vk.StructureTypeSubmitInfo,
	}
	if len(vkCmdBuffers) > 0 {
		submitInfo.CommandBufferCount = uint32(len(vkCmdBuffers))
		submitInfo.PCommandBuffers = &vkCmdBuffers[0]
	}
	if len(waitSemaphores) > 0 {
		submitInfo.WaitSemaphoreCount = uint32(len(waitSemaphores))
		submitInfo.PWaitSemaphores = &waitSemaphores[0]
		submitInfo.PWaitDstStageMask = &waitStages[0]
	}
	if len(signalSemaphores) > 0 {
		submitInfo.SignalSemaphoreCount = uint32(len(signalSemaphores))
		submitInfo.PSignalSemaphores = &signalSemaphores[0]
	}

	var vkFence vk.Fence
	if fence != nil {
		if vkF, ok := fence.(*Fence); ok {
			vkFence = vkF.handle
		}
	}

	result := vkQueueSubmit(q, 1, &submitInfo, vkFence)
	if result != vk.Success {
		return fmt.Errorf("vulkan: vkQueueSubmit failed: %d", result)
	}
	return nil
}

// waitStageFor lowers a wait entry's usage to the pipeline stages the
// waiting work first touches the guarded resources at. No usage bits means
// the caller could not narrow the wait; stall at the top of the pipe.
func waitStageFor(w hal.SemaphoreWait) vk.PipelineStageFlags {
	var stage vk.PipelineStageFlags
	if w.BufferUsage != 0 {
		_, s := bufferUsageToAccessAndStage(w.BufferUsage)
		stage |= s
	}
	if w.TextureUsage != 0 {
		_, s, _ := textureUsageToAccessStageLayout(w.TextureUsage)
		stage |= s
	}
	if stage == 0 {
		stage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	return stage
}
