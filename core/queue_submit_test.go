package core

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// semHALDevice extends the mock device with semaphore support.
type semHALDevice struct {
	mockHALDevice
	provider testSemaphoreProvider
}

func (d *semHALDevice) CreateSemaphore() (hal.Semaphore, error) {
	return d.provider.CreateSemaphore()
}

func (d *semHALDevice) DestroySemaphore(s hal.Semaphore) {
	d.provider.DestroySemaphore(s)
}

// CreateFence returns distinct fences so the inflight tracker can key an
// entry per submission.
func (d *semHALDevice) CreateFence() (hal.Fence, error) {
	return &inflightFence{}, nil
}

// capturedSubmit is one queue submission as the HAL saw it.
type capturedSubmit struct {
	bufferCount int
	waits       []hal.SemaphoreWait
	signals     []hal.Semaphore
	fence       hal.Fence
}

// semQueue implements hal.Queue and hal.SemaphoreQueue, capturing every
// submission.
type semQueue struct {
	submits []capturedSubmit
}

func (q *semQueue) Submit(cbs []hal.CommandBuffer, fence hal.Fence, _ uint64) error {
	q.submits = append(q.submits, capturedSubmit{bufferCount: len(cbs), fence: fence})
	return nil
}

func (q *semQueue) SubmitWithSemaphores(cbs []hal.CommandBuffer, waits []hal.SemaphoreWait, signals []hal.Semaphore, fence hal.Fence, _ uint64) error {
	q.submits = append(q.submits, capturedSubmit{
		bufferCount: len(cbs),
		waits:       waits,
		signals:     signals,
		fence:       fence,
	})
	return nil
}

func (q *semQueue) WriteBuffer(_ hal.Buffer, _ uint64, _ []byte) {}
func (q *semQueue) WriteTexture(_ *hal.ImageCopyTexture, _ []byte, _ *hal.ImageDataLayout, _ *hal.Extent3D) {
}
func (q *semQueue) Present(_ hal.Surface, _ hal.SurfaceTexture) error { return nil }
func (q *semQueue) GetTimestampPeriod() float32                       { return 1.0 }

func newSubmitTestDevice(t *testing.T) (*Device, *semQueue) {
	t.Helper()
	device := NewDevice(&semHALDevice{}, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "SubmitDevice")
	queue := &semQueue{}
	device.SetHALQueue(queue)
	return device, queue
}

// A cross-command-buffer dependency submits as two groups chained by one
// pooled semaphore, and the pooled semaphore returns to the free list once
// both fences retire.
func TestSubmitCommandBuffers_CrossBufferSemaphoreChain(t *testing.T) {
	device, queue := newSubmitTestDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 256, "B")

	producerInfo := NewPassResourceInfo()
	producerInfo.Dst.addBuffer(buf, gputypes.BufferUsageStorage)
	producerInfo.Src.addBuffer(buf, gputypes.BufferUsageStorage)
	producer := newTestCommandBuffer(device, []PassResourceInfo{producerInfo}, map[*Buffer]BufferUses{buf: BufferUsesStorage}, nil)

	consumerInfo := NewPassResourceInfo()
	consumerInfo.Dst.addBuffer(buf, gputypes.BufferUsageVertex)
	consumer := newTestCommandBuffer(device, []PassResourceInfo{consumerInfo}, map[*Buffer]BufferUses{buf: BufferUsesVertex}, nil)

	compiled, err := device.SubmitCommandBuffers(NewSubmitCompiler(), []*CoreCommandBuffer{producer, consumer}, nil)
	if err != nil {
		t.Fatalf("SubmitCommandBuffers: %v", err)
	}
	if len(compiled) != 2 {
		t.Fatalf("expected 2 compiled submits, got %d", len(compiled))
	}
	if len(queue.submits) != 2 {
		t.Fatalf("expected 2 queue submissions, got %d", len(queue.submits))
	}

	first, second := queue.submits[0], queue.submits[1]
	if len(first.signals) != 1 {
		t.Fatalf("producer submit should signal one semaphore, got %d", len(first.signals))
	}
	if len(second.waits) != 1 {
		t.Fatalf("consumer submit should wait on one semaphore, got %d", len(second.waits))
	}
	if second.waits[0].Semaphore != first.signals[0] {
		t.Error("consumer must wait on the producer's signal semaphore")
	}
	if second.waits[0].BufferUsage != gputypes.BufferUsageVertex {
		t.Errorf("wait usage = %v, want the consumer's Vertex usage", second.waits[0].BufferUsage)
	}

	// Both submissions are tracked; retiring them returns the chained
	// semaphore to the pool.
	pending := device.Inflight().PendingFences()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending fences, got %d", len(pending))
	}
	for _, f := range pending {
		device.Inflight().Clear(f)
	}
	if free := device.semaphorePool().FreeCount(); free != 1 {
		t.Errorf("expected the chained semaphore back in the pool, free = %d", free)
	}
}

// A Present-kind group waits on the swapchain texture's acquire semaphore
// and presents synchronously through the supplied presenter.
func TestSubmitCommandBuffers_PresentFlow(t *testing.T) {
	device, queue := newSubmitTestDevice(t)

	acquire := &testSemaphore{id: 7}
	renderFinished := &testSemaphore{id: 8}
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, "swapchain")
	tex.MarkSwapchainOwned(acquire, renderFinished, 2)

	info := NewPassResourceInfo()
	info.Dst.addTexture(tex, gputypes.TextureUsageRenderAttachment, hal.TextureRange{})
	info.Src.addTexture(tex, gputypes.TextureUsageRenderAttachment, hal.TextureRange{})
	cb := newTestCommandBuffer(device, []PassResourceInfo{info}, nil, map[*Texture]TextureUses{tex: TextureUsesRenderAttachment})

	var presented []uint32
	_, err := device.SubmitCommandBuffers(NewSubmitCompiler(), []*CoreCommandBuffer{cb}, func(imageIndex uint32) error {
		presented = append(presented, imageIndex)
		return nil
	})
	if err != nil {
		t.Fatalf("SubmitCommandBuffers: %v", err)
	}

	if len(queue.submits) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(queue.submits))
	}
	submit := queue.submits[0]
	if len(submit.waits) != 1 {
		t.Fatalf("expected one acquire wait, got %d", len(submit.waits))
	}
	if submit.waits[0].Semaphore != hal.Semaphore(acquire) {
		t.Error("submission must wait on the texture's acquire semaphore")
	}
	if submit.waits[0].TextureUsage != gputypes.TextureUsageRenderAttachment {
		t.Errorf("acquire wait usage = %v, want RenderAttachment", submit.waits[0].TextureUsage)
	}
	var signalsPresent bool
	for _, s := range submit.signals {
		if s == hal.Semaphore(renderFinished) {
			signalsPresent = true
		}
	}
	if !signalsPresent {
		t.Error("Present submit must signal the swapchain's present semaphore")
	}

	if len(presented) != 1 || presented[0] != 2 {
		t.Errorf("presenter calls = %v, want [2]", presented)
	}
}

// Without a semaphore-capable queue the submission path degrades to plain
// in-order submits.
func TestSubmitCommandBuffers_PlainQueueFallback(t *testing.T) {
	device := NewDevice(&semHALDevice{}, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "Plain")
	plain := &plainQueue{}
	device.SetHALQueue(plain)

	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "B")
	info := NewPassResourceInfo()
	info.Dst.addBuffer(buf, gputypes.BufferUsageStorage)
	info.Src.addBuffer(buf, gputypes.BufferUsageStorage)
	a := newTestCommandBuffer(device, []PassResourceInfo{info}, map[*Buffer]BufferUses{buf: BufferUsesStorage}, nil)

	readInfo := NewPassResourceInfo()
	readInfo.Dst.addBuffer(buf, gputypes.BufferUsageVertex)
	b := newTestCommandBuffer(device, []PassResourceInfo{readInfo}, map[*Buffer]BufferUses{buf: BufferUsesVertex}, nil)

	if _, err := device.SubmitCommandBuffers(NewSubmitCompiler(), []*CoreCommandBuffer{a, b}, nil); err != nil {
		t.Fatalf("SubmitCommandBuffers: %v", err)
	}
	if plain.calls != 2 {
		t.Errorf("expected 2 plain submissions, got %d", plain.calls)
	}
}

type plainQueue struct {
	calls int
}

func (q *plainQueue) Submit(_ []hal.CommandBuffer, _ hal.Fence, _ uint64) error {
	q.calls++
	return nil
}
func (q *plainQueue) WriteBuffer(_ hal.Buffer, _ uint64, _ []byte) {}
func (q *plainQueue) WriteTexture(_ *hal.ImageCopyTexture, _ []byte, _ *hal.ImageDataLayout, _ *hal.Extent3D) {
}
func (q *plainQueue) Present(_ hal.Surface, _ hal.SurfaceTexture) error { return nil }
func (q *plainQueue) GetTimestampPeriod() float32                       { return 1.0 }
