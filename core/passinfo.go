package core

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// BufferUsageInfo records the portable usage a pass needs a buffer to be in.
type BufferUsageInfo struct {
	Usage gputypes.BufferUsage
}

// TextureUsageInfo records the portable usage and subresource range a pass
// needs a texture to be in. A pass that only touches a subset of mip levels
// or array layers carries that subset here, so the synchronizer only
// transitions the subresources actually used.
type TextureUsageInfo struct {
	Usage gputypes.TextureUsage
	Range hal.TextureRange
}

// ResourceInfo is the set of buffers and textures a pass touches, keyed by
// resource identity.
type ResourceInfo struct {
	Buffers  map[*Buffer]BufferUsageInfo
	Textures map[*Texture]TextureUsageInfo
}

func newResourceInfo() ResourceInfo {
	return ResourceInfo{
		Buffers:  make(map[*Buffer]BufferUsageInfo),
		Textures: make(map[*Texture]TextureUsageInfo),
	}
}

// addBuffer merges usage for a buffer into the set, OR-ing usage flags if
// the buffer was already touched by this pass.
func (r *ResourceInfo) addBuffer(b *Buffer, usage gputypes.BufferUsage) {
	if b == nil {
		return
	}
	info := r.Buffers[b]
	info.Usage |= usage
	r.Buffers[b] = info
}

// addTexture merges usage for a texture into the set. A second touch with a
// different range is unioned by widening mip/layer bounds; in practice
// passes touch at most a couple of distinct ranges per texture.
func (r *ResourceInfo) addTexture(t *Texture, usage gputypes.TextureUsage, rng hal.TextureRange) {
	if t == nil {
		return
	}
	info, ok := r.Textures[t]
	if !ok {
		r.Textures[t] = TextureUsageInfo{Usage: usage, Range: rng}
		return
	}
	info.Usage |= usage
	r.Textures[t] = info
}

// PassResourceInfo is the per-pass usage summary the resource tracker builds
// and the synchronizer consumes.
//
// Src describes what the pass produces: resources later passes may need to
// wait on before reading. Dst describes what the pass consumes: resources
// that need synchronizing against whatever wrote them most recently. A
// read-write storage binding appears in both Src and Dst, since the pass is
// simultaneously a consumer of the prior state and a producer of the next.
type PassResourceInfo struct {
	Src ResourceInfo
	Dst ResourceInfo
}

// NewPassResourceInfo creates an empty usage summary.
func NewPassResourceInfo() PassResourceInfo {
	return PassResourceInfo{Src: newResourceInfo(), Dst: newResourceInfo()}
}

// IsEmpty reports whether the pass touched no tracked resources.
func (p *PassResourceInfo) IsEmpty() bool {
	return len(p.Src.Buffers) == 0 && len(p.Src.Textures) == 0 &&
		len(p.Dst.Buffers) == 0 && len(p.Dst.Textures) == 0
}
