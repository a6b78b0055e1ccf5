package core

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

func trackerTestDevice(t *testing.T) *Device {
	t.Helper()
	return NewDevice(&mockHALDevice{}, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "TrackerDevice")
}

func TestResourceTracker_ComputeBindGroupAccess(t *testing.T) {
	device := trackerTestDevice(t)
	uniform := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageUniform, 64, "U")
	readOnly := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "RO")
	readWrite := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "RW")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackComputeBindGroup([]BindGroupEntry{
		{Binding: 0, Kind: BindGroupBindingUniform, Buffer: uniform},
		{Binding: 1, Kind: BindGroupBindingStorageRead, Buffer: readOnly},
		{Binding: 2, Kind: BindGroupBindingStorageReadWrite, Buffer: readWrite},
	})

	if len(tr.current.Dst.Buffers) != 3 {
		t.Fatalf("expected all 3 bindings in Dst, got %d", len(tr.current.Dst.Buffers))
	}
	// Only the read-write storage binding produces output later passes can
	// depend on.
	if len(tr.current.Src.Buffers) != 1 {
		t.Fatalf("expected only the read-write binding in Src, got %d", len(tr.current.Src.Buffers))
	}
	if _, ok := tr.current.Src.Buffers[readWrite]; !ok {
		t.Error("read-write storage buffer missing from Src")
	}
	if got := tr.current.Dst.Buffers[uniform].Usage; got != gputypes.BufferUsageUniform {
		t.Errorf("uniform binding Dst usage = %v, want Uniform", got)
	}
}

func TestResourceTracker_RenderBindGroupIsConsumerOnly(t *testing.T) {
	device := trackerTestDevice(t)
	storage := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "S")
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageTextureBinding,
	}, "T")
	view := NewTextureView(mockTextureView{}, device, tex, nil, "V")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackRenderBindGroup([]BindGroupEntry{
		{Binding: 0, Kind: BindGroupBindingStorageRead, Buffer: storage},
		{Binding: 1, Kind: BindGroupBindingSampledTexture, TextureView: view},
	})

	if len(tr.current.Src.Buffers) != 0 || len(tr.current.Src.Textures) != 0 {
		t.Error("render bind groups must not populate Src")
	}
	if _, ok := tr.current.Dst.Buffers[storage]; !ok {
		t.Error("storage buffer missing from Dst")
	}
	info, ok := tr.current.Dst.Textures[tex]
	if !ok {
		t.Fatal("sampled texture missing from Dst")
	}
	if info.Usage != gputypes.TextureUsageTextureBinding {
		t.Errorf("sampled texture usage = %v, want TextureBinding", info.Usage)
	}
}

func TestResourceTracker_VertexIndexBuffers(t *testing.T) {
	device := trackerTestDevice(t)
	vtx := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageVertex, 64, "V")
	idx := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageIndex, 64, "I")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackVertexBuffer(vtx)
	tr.trackIndexBuffer(idx)

	if got := tr.current.Dst.Buffers[vtx].Usage; got != gputypes.BufferUsageVertex {
		t.Errorf("vertex buffer usage = %v, want Vertex", got)
	}
	if got := tr.current.Dst.Buffers[idx].Usage; got != gputypes.BufferUsageIndex {
		t.Errorf("index buffer usage = %v, want Index", got)
	}
}

func TestResourceTracker_ColorAttachmentIsProducerAndConsumer(t *testing.T) {
	device := trackerTestDevice(t)
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageRenderAttachment,
	}, "RT")
	view := NewTextureView(mockTextureView{}, device, tex, &gputypes.TextureViewDescriptor{
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
	}, "RT-view")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackColorAttachment(view)

	if _, ok := tr.current.Dst.Textures[tex]; !ok {
		t.Error("attachment missing from Dst")
	}
	src, ok := tr.current.Src.Textures[tex]
	if !ok {
		t.Fatal("attachment missing from Src")
	}
	if src.Usage != gputypes.TextureUsageRenderAttachment {
		t.Errorf("attachment Src usage = %v, want RenderAttachment", src.Usage)
	}
	if src.Range.MipLevelCount != 1 || src.Range.ArrayLayerCount != 1 {
		t.Errorf("attachment range should follow the view, got %+v", src.Range)
	}
}

func TestResourceTracker_ReadOnlyDepthSkipsSrc(t *testing.T) {
	device := trackerTestDevice(t)
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageRenderAttachment,
	}, "DS")
	view := NewTextureView(mockTextureView{}, device, tex, nil, "DS-view")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackDepthStencilAttachment(view, true)

	if _, ok := tr.current.Dst.Textures[tex]; !ok {
		t.Error("read-only depth attachment still consumes its layout: missing from Dst")
	}
	if _, ok := tr.current.Src.Textures[tex]; ok {
		t.Error("read-only depth attachment must not be a producer")
	}
}

func TestResourceTracker_PassBoundaries(t *testing.T) {
	device := trackerTestDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage, 64, "B")

	tr := newResourceTracker()
	tr.beginPass()
	tr.trackComputeBindGroup([]BindGroupEntry{{Kind: BindGroupBindingStorageReadWrite, Buffer: buf}})
	tr.endPass()

	if len(tr.Finished()) != 1 {
		t.Fatalf("expected 1 finished pass, got %d", len(tr.Finished()))
	}
	if !tr.current.IsEmpty() {
		t.Error("current pass must be reset after endPass")
	}

	tr.beginPass()
	tr.endPass()
	finished := tr.Finished()
	if len(finished) != 2 {
		t.Fatalf("expected 2 finished passes, got %d", len(finished))
	}
	if !finished[1].IsEmpty() {
		t.Error("empty pass should have empty resource info")
	}
}

func TestResourceInfo_UsageMerging(t *testing.T) {
	device := trackerTestDevice(t)
	buf := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageStorage|gputypes.BufferUsageVertex, 64, "B")

	info := newResourceInfo()
	info.addBuffer(buf, gputypes.BufferUsageStorage)
	info.addBuffer(buf, gputypes.BufferUsageVertex)

	got := info.Buffers[buf].Usage
	want := gputypes.BufferUsageStorage | gputypes.BufferUsageVertex
	if got != want {
		t.Errorf("merged usage = %v, want %v", got, want)
	}

	tex := NewTexture(mockTexture{}, device, nil, "T")
	info.addTexture(tex, gputypes.TextureUsageCopySrc, hal.TextureRange{MipLevelCount: 1})
	info.addTexture(tex, gputypes.TextureUsageTextureBinding, hal.TextureRange{MipLevelCount: 1})
	if info.Textures[tex].Usage != gputypes.TextureUsageCopySrc|gputypes.TextureUsageTextureBinding {
		t.Errorf("merged texture usage = %v", info.Textures[tex].Usage)
	}
}
