// Package core provides the resource tracker: the component that observes
// pass-scoped commands during encoding and produces a PassResourceInfo per
// pass, describing what the pass consumes (Dst) and what it produces (Src).
// The synchronizer consumes this sequence to emit barriers.

package core

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// ResourceTracker performs the per-pass usage bookkeeping. It must observe
// every pass boundary (BeginComputePass/EndComputePass,
// BeginRenderPass/EndRenderPass); every other recorded command contributes
// usage to the pass currently open.
type ResourceTracker struct {
	current  PassResourceInfo
	finished []PassResourceInfo
}

func newResourceTracker() *ResourceTracker {
	return &ResourceTracker{current: NewPassResourceInfo()}
}

// beginPass resets the current pass's usage set. Called at
// BeginComputePass/BeginRenderPass.
func (t *ResourceTracker) beginPass() {
	t.current = NewPassResourceInfo()
}

// endPass pushes the current pass onto the finished sequence and clears it.
// Called at EndComputePass/EndRenderPass.
func (t *ResourceTracker) endPass() {
	t.finished = append(t.finished, t.current)
	t.current = NewPassResourceInfo()
}

// Finished returns every pass recorded so far, in order.
func (t *ResourceTracker) Finished() []PassResourceInfo {
	return t.finished
}

// trackComputeBindGroup implements the compute bind-group rule: every bound
// buffer or storage texture is added to Dst as a consumer. A binding only
// joins Src (making it a producer later passes must wait on) when it is
// actually writable — isWriteBinding narrows this to read-write storage
// bindings rather than over-synchronizing every storage binding regardless
// of declared access, as a layout-blind tracker otherwise would.
func (t *ResourceTracker) trackComputeBindGroup(entries []BindGroupEntry) {
	for _, e := range entries {
		bufUsage := gputypesBufferUsage(e.Kind)
		texUsage := gputypesTextureUsage(e.Kind)
		if bufUsage != 0 {
			t.current.Dst.addBuffer(e.Buffer, bufUsage)
			if isWriteBinding(e.Kind) {
				t.current.Src.addBuffer(e.Buffer, bufUsage)
			}
		}
		if texUsage != 0 {
			t.current.Dst.addTexture(e.textureOf(), texUsage, e.rangeOf())
			if isWriteBinding(e.Kind) {
				t.current.Src.addTexture(e.textureOf(), texUsage, e.rangeOf())
			}
		}
	}
}

// trackRenderBindGroup implements the render bind-group rule: each binding's
// access narrows by its declared kind, and only Dst is populated — render
// bind groups are not treated as producers the way writable compute storage
// bindings are (see ResourceTracker.trackComputeBindGroup).
func (t *ResourceTracker) trackRenderBindGroup(entries []BindGroupEntry) {
	for _, e := range entries {
		if bufUsage := gputypesBufferUsage(e.Kind); bufUsage != 0 {
			t.current.Dst.addBuffer(e.Buffer, bufUsage)
		}
		if texUsage := gputypesTextureUsage(e.Kind); texUsage != 0 {
			t.current.Dst.addTexture(e.textureOf(), texUsage, e.rangeOf())
		}
	}
}

// trackVertexBuffer records a vertex-buffer binding as a VertexInput-stage
// read, consumed at the next Draw/DrawIndexed in this pass.
func (t *ResourceTracker) trackVertexBuffer(b *Buffer) {
	t.current.Dst.addBuffer(b, gputypes.BufferUsageVertex)
}

// trackIndexBuffer records an index-buffer binding as a VertexInput-stage read.
func (t *ResourceTracker) trackIndexBuffer(b *Buffer) {
	t.current.Dst.addBuffer(b, gputypes.BufferUsageIndex)
}

// trackColorAttachment records a render-pass color (or resolve) attachment:
// the pass consumes the view's prior contents (Dst, for barrier matching
// against whatever wrote it last) and produces new contents other passes may
// need to wait on (Src).
func (t *ResourceTracker) trackColorAttachment(view *TextureView) {
	if view == nil {
		return
	}
	tex := view.Texture()
	rng := view.Range()
	t.current.Dst.addTexture(tex, gputypes.TextureUsageRenderAttachment, rng)
	t.current.Src.addTexture(tex, gputypes.TextureUsageRenderAttachment, rng)
}

// trackDepthStencilAttachment records a depth/stencil attachment the same way
// as a color attachment; a read-only attachment still needs the layout
// transition but will never appear as a later Src producer of writes since
// nothing depends on read-only output.
func (t *ResourceTracker) trackDepthStencilAttachment(view *TextureView, readOnly bool) {
	if view == nil {
		return
	}
	tex := view.Texture()
	rng := view.Range()
	t.current.Dst.addTexture(tex, gputypes.TextureUsageRenderAttachment, rng)
	if !readOnly {
		t.current.Src.addTexture(tex, gputypes.TextureUsageRenderAttachment, rng)
	}
}

// textureOf and rangeOf let trackComputeBindGroup/trackRenderBindGroup share
// one code path for buffer and texture-view bind-group entries.
func (e BindGroupEntry) textureOf() *Texture {
	if e.TextureView == nil {
		return nil
	}
	return e.TextureView.Texture()
}

func (e BindGroupEntry) rangeOf() hal.TextureRange {
	if e.TextureView == nil {
		return hal.TextureRange{}
	}
	return e.TextureView.Range()
}
