package core

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// recordedEvent is one HAL-level event captured by recordingEncoder, in
// command-stream order. Barrier placement relative to dispatches and pass
// begins is what the synchronizer tests assert on.
type recordedEvent struct {
	kind            string
	bufferBarriers  []hal.BufferBarrier
	textureBarriers []hal.TextureBarrier
}

// recordingEncoder implements hal.CommandEncoder and captures every call.
type recordingEncoder struct {
	events []recordedEvent
}

func (r *recordingEncoder) log(kind string) {
	r.events = append(r.events, recordedEvent{kind: kind})
}

func (r *recordingEncoder) BeginEncoding(_ string) error { return nil }
func (r *recordingEncoder) EndEncoding() (hal.CommandBuffer, error) {
	return mockCommandBuffer{}, nil
}
func (r *recordingEncoder) DiscardEncoding()               {}
func (r *recordingEncoder) ResetAll(_ []hal.CommandBuffer) {}

func (r *recordingEncoder) TransitionBuffers(barriers []hal.BufferBarrier) {
	r.events = append(r.events, recordedEvent{kind: "bufferBarriers", bufferBarriers: barriers})
}

func (r *recordingEncoder) TransitionTextures(barriers []hal.TextureBarrier) {
	r.events = append(r.events, recordedEvent{kind: "textureBarriers", textureBarriers: barriers})
}

func (r *recordingEncoder) ClearBuffer(_ hal.Buffer, _, _ uint64) { r.log("clearBuffer") }
func (r *recordingEncoder) CopyBufferToBuffer(_, _ hal.Buffer, _ []hal.BufferCopy) {
	r.log("copyBufferToBuffer")
}
func (r *recordingEncoder) CopyBufferToTexture(_ hal.Buffer, _ hal.Texture, _ []hal.BufferTextureCopy) {
	r.log("copyBufferToTexture")
}
func (r *recordingEncoder) CopyTextureToBuffer(_ hal.Texture, _ hal.Buffer, _ []hal.BufferTextureCopy) {
	r.log("copyTextureToBuffer")
}
func (r *recordingEncoder) CopyTextureToTexture(_, _ hal.Texture, _ []hal.TextureCopy) {
	r.log("copyTextureToTexture")
}

func (r *recordingEncoder) BeginRenderPass(_ *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	r.log("beginRenderPass")
	return &recordingRenderPass{parent: r}
}

func (r *recordingEncoder) BeginComputePass(_ *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	r.log("beginComputePass")
	return &recordingComputePass{parent: r}
}

type recordingRenderPass struct{ parent *recordingEncoder }

func (p *recordingRenderPass) End()                                               { p.parent.log("endRenderPass") }
func (p *recordingRenderPass) SetPipeline(_ hal.RenderPipeline)                   {}
func (p *recordingRenderPass) SetBindGroup(_ uint32, _ hal.BindGroup, _ []uint32) {}
func (p *recordingRenderPass) SetVertexBuffer(_ uint32, _ hal.Buffer, _ uint64) {
	p.parent.log("setVertexBuffer")
}
func (p *recordingRenderPass) SetIndexBuffer(_ hal.Buffer, _ gputypes.IndexFormat, _ uint64) {}
func (p *recordingRenderPass) SetViewport(_, _, _, _, _, _ float32)                          {}
func (p *recordingRenderPass) SetScissorRect(_, _, _, _ uint32)                              {}
func (p *recordingRenderPass) SetBlendConstant(_ *gputypes.Color)                            {}
func (p *recordingRenderPass) SetStencilReference(_ uint32)                                  {}
func (p *recordingRenderPass) Draw(_, _, _, _ uint32)                                        { p.parent.log("draw") }
func (p *recordingRenderPass) DrawIndexed(_, _, _ uint32, _ int32, _ uint32) {
	p.parent.log("drawIndexed")
}
func (p *recordingRenderPass) DrawIndirect(_ hal.Buffer, _ uint64)        {}
func (p *recordingRenderPass) DrawIndexedIndirect(_ hal.Buffer, _ uint64) {}
func (p *recordingRenderPass) ExecuteBundle(_ hal.RenderBundle)           {}

type recordingComputePass struct{ parent *recordingEncoder }

func (p *recordingComputePass) End()                                               { p.parent.log("endComputePass") }
func (p *recordingComputePass) SetPipeline(_ hal.ComputePipeline)                  {}
func (p *recordingComputePass) SetBindGroup(_ uint32, _ hal.BindGroup, _ []uint32) {}
func (p *recordingComputePass) Dispatch(_, _, _ uint32)                            { p.parent.log("dispatch") }
func (p *recordingComputePass) DispatchIndirect(_ hal.Buffer, _ uint64)            {}

// recordingHALDevice hands out one shared recordingEncoder so tests can
// inspect the captured command stream after encoding.
type recordingHALDevice struct {
	mockHALDevice
	encoder *recordingEncoder
}

func (d *recordingHALDevice) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return d.encoder, nil
}

func newRecordingDevice(t *testing.T) (*Device, *recordingEncoder) {
	t.Helper()
	rec := &recordingEncoder{}
	halDevice := &recordingHALDevice{encoder: rec}
	device := NewDevice(halDevice, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "RecDevice")
	return device, rec
}

func eventKinds(events []recordedEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.kind
	}
	return out
}

// Compute pass writes a storage buffer, a second compute pass reads it: the
// command stream must carry a buffer barrier between the two dispatches,
// with the producer's usage as OldUsage and the consumer's as NewUsage.
func TestSynchronizer_ComputeToComputeDependency(t *testing.T) {
	device, rec := newRecordingDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 256, "B")

	enc, err := device.CreateCommandEncoder("sync-test")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}

	writer := []BindGroupEntry{{Binding: 0, Kind: BindGroupBindingStorageReadWrite, Buffer: buf}}
	reader := []BindGroupEntry{{Binding: 0, Kind: BindGroupBindingStorageRead, Buffer: buf}}

	pass1, err := enc.BeginComputePass(nil)
	if err != nil {
		t.Fatalf("BeginComputePass: %v", err)
	}
	pass1.SetBindGroup(0, NewBindGroup(device, nil, writer, "writer"), nil)
	pass1.Dispatch(4, 1, 1)
	if err := pass1.End(); err != nil {
		t.Fatalf("End pass1: %v", err)
	}

	pass2, err := enc.BeginComputePass(nil)
	if err != nil {
		t.Fatalf("BeginComputePass 2: %v", err)
	}
	pass2.SetBindGroup(0, NewBindGroup(device, nil, reader, "reader"), nil)
	pass2.Dispatch(4, 1, 1)
	if err := pass2.End(); err != nil {
		t.Fatalf("End pass2: %v", err)
	}

	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// Find the barrier between the two dispatches.
	var sawFirstDispatch, sawBarrier bool
	var barrier hal.BufferBarrier
	for _, ev := range rec.events {
		switch ev.kind {
		case "dispatch":
			if !sawFirstDispatch {
				sawFirstDispatch = true
				continue
			}
			if !sawBarrier {
				t.Fatalf("no buffer barrier before second dispatch; events: %v", eventKinds(rec.events))
			}
		case "bufferBarriers":
			if sawFirstDispatch {
				sawBarrier = true
				if len(ev.bufferBarriers) != 1 {
					t.Fatalf("expected 1 buffer barrier, got %d", len(ev.bufferBarriers))
				}
				barrier = ev.bufferBarriers[0]
			}
		}
	}
	if !sawBarrier {
		t.Fatalf("no barrier emitted; events: %v", eventKinds(rec.events))
	}
	if barrier.Usage.OldUsage != gputypes.BufferUsageStorage {
		t.Errorf("barrier OldUsage = %v, want Storage", barrier.Usage.OldUsage)
	}
	if barrier.Usage.NewUsage != gputypes.BufferUsageStorage {
		t.Errorf("barrier NewUsage = %v, want Storage", barrier.Usage.NewUsage)
	}

	// Both passes fully resolved in-buffer: the producer's Src was consumed,
	// so nothing should leak to the submit compiler.
	for _, info := range cb.UnsyncedPassInfos() {
		if len(info.Src.Buffers) > 0 {
			t.Errorf("expected producer Src to be consumed in-buffer, still has %d buffers", len(info.Src.Buffers))
		}
	}
}

// A render pass writes a color attachment; the next render pass samples the
// same texture through a bind group. An image barrier must appear between
// the first pass's end and the second pass's begin, transitioning from
// attachment usage to sampled usage.
func TestSynchronizer_RenderToSampledDependency(t *testing.T) {
	device, rec := newRecordingDevice(t)
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}, "T")
	view := NewTextureView(mockTextureView{}, device, tex, nil, "T-view")

	enc, err := device.CreateCommandEncoder("render-sample")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}

	pass1, err := enc.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []RenderPassColorAttachment{{View: view, LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass 1: %v", err)
	}
	pass1.Draw(3, 1, 0, 0)
	if err := pass1.End(); err != nil {
		t.Fatalf("End pass1: %v", err)
	}

	sampled := []BindGroupEntry{{Binding: 0, Kind: BindGroupBindingSampledTexture, TextureView: view}}
	pass2, err := enc.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []RenderPassColorAttachment{{View: newThrowawayView(device), LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass 2: %v", err)
	}
	pass2.SetBindGroup(0, NewBindGroup(device, nil, sampled, "sampled"), nil)
	pass2.Draw(3, 1, 0, 0)
	if err := pass2.End(); err != nil {
		t.Fatalf("End pass2: %v", err)
	}

	if _, err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// The barrier for T must appear after the first pass ends and before
	// the second HAL render pass begins.
	var passBegins int
	var sawBarrier bool
	var barrier hal.TextureBarrier
	for _, ev := range rec.events {
		switch ev.kind {
		case "beginRenderPass":
			passBegins++
			if passBegins == 2 && !sawBarrier {
				t.Fatalf("no texture barrier before second render pass; events: %v", eventKinds(rec.events))
			}
		case "textureBarriers":
			if passBegins == 1 {
				for _, b := range ev.textureBarriers {
					if b.Usage.OldUsage&gputypes.TextureUsageRenderAttachment != 0 {
						sawBarrier = true
						barrier = b
					}
				}
			}
		}
	}
	if !sawBarrier {
		t.Fatalf("no attachment-to-sampled barrier; events: %v", eventKinds(rec.events))
	}
	if barrier.Usage.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("barrier NewUsage = %v, want TextureBinding", barrier.Usage.NewUsage)
	}
}

// newThrowawayView builds an unrelated render target so the second pass has
// a valid color attachment.
func newThrowawayView(device *Device) *TextureView {
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, "target")
	return NewTextureView(mockTextureView{}, device, tex, nil, "target-view")
}

// A producer's Src entry must be consumed by the first matching consumer:
// a third pass reading the same buffer must not re-synchronize against the
// already-consumed producer.
func TestSynchronizer_ProducerConsumedOnce(t *testing.T) {
	device, _ := newRecordingDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "B")

	producer := NewPassResourceInfo()
	producer.Src.addBuffer(buf, gputypes.BufferUsageStorage)
	prior := []PassResourceInfo{producer}

	dst := newResourceInfo()
	dst.addBuffer(buf, gputypes.BufferUsageStorage)

	s := newSynchronizer()
	first, _ := s.Sync(device, dst, prior)
	if len(first) != 1 {
		t.Fatalf("expected 1 barrier on first sync, got %d", len(first))
	}

	second, _ := s.Sync(device, dst, prior)
	if len(second) != 0 {
		t.Errorf("expected no barrier on second sync (producer already consumed), got %d", len(second))
	}
}

// With no matching producer, Sync emits nothing: a cleared render target
// with no prior writer needs no barrier.
func TestSynchronizer_NoProducerNoBarrier(t *testing.T) {
	device, _ := newRecordingDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "B")

	dst := newResourceInfo()
	dst.addBuffer(buf, gputypes.BufferUsageStorage)

	s := newSynchronizer()
	bufs, texs := s.Sync(device, dst, nil)
	if len(bufs) != 0 || len(texs) != 0 {
		t.Errorf("expected no barriers, got %d buffer + %d texture", len(bufs), len(texs))
	}
}
