package core

import "github.com/gogpu/gputypes"

// BindGroupBindingKind classifies how a bind group entry's resource is
// accessed, which determines whether the resource tracker records it as a
// pass input (dst), a pass output (src), or both.
type BindGroupBindingKind int

const (
	// BindGroupBindingUniform is a read-only uniform buffer binding.
	BindGroupBindingUniform BindGroupBindingKind = iota
	// BindGroupBindingStorageRead is a read-only storage buffer or texture binding.
	BindGroupBindingStorageRead
	// BindGroupBindingStorageReadWrite is a read-write storage buffer or texture binding.
	BindGroupBindingStorageReadWrite
	// BindGroupBindingSampledTexture is a sampled (read-only) texture binding.
	BindGroupBindingSampledTexture
	// BindGroupBindingSampler is a sampler binding (carries no synchronized resource).
	BindGroupBindingSampler
)

// BindGroupEntry is one resolved resource binding within a bind group. Unlike
// the wire-level descriptor (which addresses resources by ID), entries here
// hold direct pointers to the core resources so the resource tracker can
// attribute pass usage to them without a registry lookup.
type BindGroupEntry struct {
	Binding uint32
	Kind    BindGroupBindingKind

	Buffer       *Buffer
	BufferOffset uint64
	BufferSize   uint64

	TextureView *TextureView
	Sampler     *Sampler
}

// BindGroup is a resolved collection of resource bindings, created against a
// BindGroupLayout and consumed by SetBindGroup during pass encoding.
type BindGroup struct {
	device  *Device
	layout  *BindGroupLayout
	entries []BindGroupEntry
	label   string
}

// NewBindGroup creates a bind group from already-resolved entries.
func NewBindGroup(device *Device, layout *BindGroupLayout, entries []BindGroupEntry, label string) *BindGroup {
	return &BindGroup{device: device, layout: layout, entries: entries, label: label}
}

// Entries returns the bind group's resolved resource bindings.
func (g *BindGroup) Entries() []BindGroupEntry {
	if g == nil {
		return nil
	}
	return g.entries
}

// Label returns the bind group's debug label.
func (g *BindGroup) Label() string {
	if g == nil {
		return ""
	}
	return g.label
}

// bufferUsageFor maps a binding kind to the BufferUses flag the resource
// tracker should record for it.
func bufferUsageFor(kind BindGroupBindingKind) BufferUses {
	switch kind {
	case BindGroupBindingUniform:
		return BufferUsesUniform
	case BindGroupBindingStorageRead, BindGroupBindingStorageReadWrite:
		return BufferUsesStorage
	default:
		return BufferUsesNone
	}
}

// textureUsageFor maps a binding kind to the TextureUses flag the resource
// tracker should record for it.
func textureUsageFor(kind BindGroupBindingKind) TextureUses {
	switch kind {
	case BindGroupBindingSampledTexture:
		return TextureUsesSampled
	case BindGroupBindingStorageRead, BindGroupBindingStorageReadWrite:
		return TextureUsesStorage
	default:
		return TextureUsesNone
	}
}

// isWriteBinding reports whether a binding kind can write its resource,
// i.e. whether the pass produces that resource as well as consuming it.
func isWriteBinding(kind BindGroupBindingKind) bool {
	return kind == BindGroupBindingStorageReadWrite
}

// gputypesTextureUsage maps a binding kind to the portable usage flag passed
// to the HAL barrier API.
func gputypesTextureUsage(kind BindGroupBindingKind) gputypes.TextureUsage {
	switch kind {
	case BindGroupBindingSampledTexture:
		return gputypes.TextureUsageTextureBinding
	case BindGroupBindingStorageRead, BindGroupBindingStorageReadWrite:
		return gputypes.TextureUsageStorageBinding
	default:
		return 0
	}
}

func gputypesBufferUsage(kind BindGroupBindingKind) gputypes.BufferUsage {
	switch kind {
	case BindGroupBindingUniform:
		return gputypes.BufferUsageUniform
	case BindGroupBindingStorageRead, BindGroupBindingStorageReadWrite:
		return gputypes.BufferUsageStorage
	default:
		return 0
	}
}
