package core

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

func TestCopyBufferToBuffer(t *testing.T) {
	device, rec := newRecordingDevice(t)
	src := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopySrc, 256, "src")
	dst := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 256, "dst")

	enc, err := device.CreateCommandEncoder("copy")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	if err := enc.CopyBufferToBuffer(src, 0, dst, 64, 128); err != nil {
		t.Fatalf("CopyBufferToBuffer: %v", err)
	}

	kinds := eventKinds(rec.events)
	if len(kinds) != 1 || kinds[0] != "copyBufferToBuffer" {
		t.Errorf("expected a single copy event, got %v", kinds)
	}
	if !dst.IsInitialized(64, 128) {
		t.Error("copy destination range should be marked initialized")
	}

	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if cb.UsedBuffers()[src]&BufferUsesCopySrc == 0 {
		t.Error("source buffer missing CopySrc use")
	}
	if cb.UsedBuffers()[dst]&BufferUsesCopyDst == 0 {
		t.Error("destination buffer missing CopyDst use")
	}
}

func TestCopyBufferToBuffer_Validation(t *testing.T) {
	device, _ := newRecordingDevice(t)
	noCopy := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageVertex, 64, "v")
	dst := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 64, "d")

	enc, err := device.CreateCommandEncoder("bad-copy")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	if err := enc.CopyBufferToBuffer(noCopy, 0, dst, 0, 32); err == nil {
		t.Error("copy from a buffer without CopySrc usage must fail")
	}
	if enc.Status() != CommandEncoderStatusError {
		t.Errorf("encoder should be in Error state, got %v", enc.Status())
	}
}

func TestCopyBufferToBuffer_RangeCheck(t *testing.T) {
	device, _ := newRecordingDevice(t)
	src := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopySrc, 64, "s")
	dst := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 64, "d")

	enc, _ := device.CreateCommandEncoder("range")
	if err := enc.CopyBufferToBuffer(src, 32, dst, 0, 64); err == nil {
		t.Error("out-of-range source copy must fail")
	}
}

// A buffer-to-texture copy on a never-used texture brackets the copy with
// two transitions: into CopyDst from the undefined state, and out to the
// usage derived from the texture's creation flags.
func TestCopyBufferToTexture_BracketsTransitions(t *testing.T) {
	device, rec := newRecordingDevice(t)
	src := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopySrc, 4096, "staging")
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	}, "T")

	enc, err := device.CreateCommandEncoder("upload")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	err = enc.CopyBufferToTexture(src, hal.ImageDataLayout{BytesPerRow: 256}, &TextureCopyView{
		Texture: tex,
	}, hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})
	if err != nil {
		t.Fatalf("CopyBufferToTexture: %v", err)
	}

	kinds := eventKinds(rec.events)
	want := []string{"textureBarriers", "copyBufferToTexture", "textureBarriers"}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}

	pre := rec.events[0].textureBarriers[0]
	if pre.Usage.OldUsage != 0 {
		t.Errorf("pre-copy OldUsage = %v, want undefined (0)", pre.Usage.OldUsage)
	}
	if pre.Usage.NewUsage != gputypes.TextureUsageCopyDst {
		t.Errorf("pre-copy NewUsage = %v, want CopyDst", pre.Usage.NewUsage)
	}

	post := rec.events[2].textureBarriers[0]
	if post.Usage.OldUsage != gputypes.TextureUsageCopyDst {
		t.Errorf("post-copy OldUsage = %v, want CopyDst", post.Usage.OldUsage)
	}
	// Never-used texture settles into its sampled usage.
	if post.Usage.NewUsage != gputypes.TextureUsageTextureBinding {
		t.Errorf("post-copy NewUsage = %v, want TextureBinding", post.Usage.NewUsage)
	}

	// The synchronizer's record of the texture now matches the restore
	// target, so the next pass syncs against the settled usage.
	usage, _, ok := tex.recordedUsage()
	if !ok || usage != gputypes.TextureUsageTextureBinding {
		t.Errorf("recorded usage = %v (ok=%v), want TextureBinding", usage, ok)
	}
}

// A copy on a texture with recorded prior usage restores that usage.
func TestCopyTextureToBuffer_RestoresPriorUsage(t *testing.T) {
	device, rec := newRecordingDevice(t)
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageCopySrc | gputypes.TextureUsageRenderAttachment,
	}, "T")
	dst := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 4096, "readback")

	tex.recordUsage(gputypes.TextureUsageRenderAttachment, hal.TextureRange{MipLevelCount: 1, ArrayLayerCount: 1})

	enc, _ := device.CreateCommandEncoder("readback")
	err := enc.CopyTextureToBuffer(&TextureCopyView{Texture: tex}, dst, hal.ImageDataLayout{BytesPerRow: 256},
		hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1})
	if err != nil {
		t.Fatalf("CopyTextureToBuffer: %v", err)
	}

	post := rec.events[len(rec.events)-1]
	if post.kind != "textureBarriers" {
		t.Fatalf("last event = %v, want restore barrier", post.kind)
	}
	if post.textureBarriers[0].Usage.NewUsage != gputypes.TextureUsageRenderAttachment {
		t.Errorf("restore NewUsage = %v, want prior RenderAttachment", post.textureBarriers[0].Usage.NewUsage)
	}
}

func TestCopyTextureToTexture(t *testing.T) {
	device, rec := newRecordingDevice(t)
	src := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageCopySrc,
	}, "src")
	dst := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageCopyDst,
	}, "dst")

	enc, _ := device.CreateCommandEncoder("blit")
	err := enc.CopyTextureToTexture(&TextureCopyView{Texture: src}, &TextureCopyView{Texture: dst},
		hal.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1})
	if err != nil {
		t.Fatalf("CopyTextureToTexture: %v", err)
	}

	kinds := eventKinds(rec.events)
	// Two pre-transitions, the copy, two restores.
	want := []string{"textureBarriers", "textureBarriers", "copyTextureToTexture", "textureBarriers", "textureBarriers"}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestClearBuffer(t *testing.T) {
	device, rec := newRecordingDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 256, "B")

	enc, _ := device.CreateCommandEncoder("clear")
	if err := enc.ClearBuffer(buf, 0, 0); err != nil {
		t.Fatalf("ClearBuffer: %v", err)
	}
	if kinds := eventKinds(rec.events); len(kinds) != 1 || kinds[0] != "clearBuffer" {
		t.Errorf("events = %v, want [clearBuffer]", kinds)
	}
	if !buf.IsInitialized(0, 256) {
		t.Error("cleared buffer should be fully initialized")
	}
}

func TestCopy_RejectedInsidePass(t *testing.T) {
	device, _ := newRecordingDevice(t)
	src := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopySrc, 64, "s")
	dst := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 64, "d")

	enc, _ := device.CreateCommandEncoder("locked")
	pass, err := enc.BeginComputePass(nil)
	if err != nil {
		t.Fatalf("BeginComputePass: %v", err)
	}
	if err := enc.CopyBufferToBuffer(src, 0, dst, 0, 32); err == nil {
		t.Error("copies must be rejected while a pass is open")
	}
	_ = pass.End()
}
