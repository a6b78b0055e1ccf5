// Package core provides the submit compiler: the component that partitions
// a sequence of recorded-and-synchronized command buffers into submission
// groups, resolving cross-command-buffer dependencies with semaphores
// instead of in-command-buffer barriers.

package core

import (
	"unsafe"

	"github.com/gogpu/gputypes"
)

// SubmitKind classifies a compiled submit by the kind of work its last pass
// performs, so the queue knows whether a present must follow.
type SubmitKind int

const (
	// SubmitKindNone is a submit with no recognizable pass output (e.g. an
	// empty command buffer, or one containing only out-of-pass copies).
	SubmitKindNone SubmitKind = iota
	// SubmitKindRender is a submit whose last pass writes a color attachment
	// that is not swapchain-owned.
	SubmitKindRender
	// SubmitKindCompute is a submit whose last pass writes a storage binding.
	SubmitKindCompute
	// SubmitKindTransfer is a submit consisting only of copy commands.
	SubmitKindTransfer
	// SubmitKindPresent is a submit whose last pass writes a swapchain-owned
	// color attachment; it must be the last submit in a batch targeting that
	// swapchain image.
	SubmitKindPresent
)

func (k SubmitKind) String() string {
	switch k {
	case SubmitKindRender:
		return "Render"
	case SubmitKindCompute:
		return "Compute"
	case SubmitKindTransfer:
		return "Transfer"
	case SubmitKindPresent:
		return "Present"
	default:
		return "None"
	}
}

// SemaphoreHandle is an opaque token identifying a point of cross-submit
// synchronization compiled by the SubmitCompiler. It stands in for a real
// GPU binary/timeline semaphore: the HAL-level queue turns a signal/wait
// pair sharing a SemaphoreHandle into whatever primitive the backend uses.
type SemaphoreHandle uint64

// SubmitWait is one entry in a compiled submit's wait list: a semaphore the
// GPU must wait on before this submit's command buffers execute, paired with
// the usage the waiting resource needs. The HAL barrier model carries
// portable usage rather than raw pipeline-stage bits; the backend lowers
// the usage to a wait-stage mask at submission.
type SubmitWait struct {
	Semaphore    SemaphoreHandle
	BufferUsage  gputypes.BufferUsage
	TextureUsage gputypes.TextureUsage

	// AcquireOf, when non-nil, is the swapchain texture whose acquire
	// semaphore backs this wait. Semaphore is then a token derived from the
	// texture's identity rather than a compiler-allocated handle, and the
	// queue resolves the real semaphore from AcquireOf.AcquireSemaphore()
	// at submission time.
	AcquireOf *Texture
}

// CompiledSubmit is one batch handed to the queue: a run of command buffers
// that execute together, the semaphores it must wait on before starting and
// signal once done, and the referenced-object set the inflight tracker
// files under this submit's fence.
type CompiledSubmit struct {
	CommandBuffers   []*CoreCommandBuffer
	WaitSemaphores   []SubmitWait
	SignalSemaphores []SemaphoreHandle
	Kind             SubmitKind

	// SwapchainIndex is set when this submit waits on a swapchain acquire
	// semaphore; its presence, together with Kind == SubmitKindPresent,
	// is what tells the queue to call Present after this submit retires.
	SwapchainIndex *uint32

	// Objects is the referenced-object set this submit's fence must keep
	// alive for the inflight tracker.
	Objects *InflightEntry
}

func newCompiledSubmit() *CompiledSubmit {
	return &CompiledSubmit{Objects: newInflightEntry()}
}

// producedResource records which compiled submit last exposed a resource as
// an output still awaiting a cross-command-buffer consumer. submitIndex is
// -1 while the producing submit is still open (the "current" submit being
// built) and is patched to its final index once that submit closes.
type producedResource[K comparable] struct {
	key         K
	submitIndex int
}

// submitDependency is one detected cross-command-buffer dependency: the
// matched producer entry and the usage the consumer needs the resource in.
// The producer is addressed by its index into the compiler's produced
// lists, not by a copied submit index — the producer is usually still part
// of the open submit when the dependency is detected, and only receives
// its final submit index when closeCurrent runs. Exactly one of
// bufIndex/texIndex is >= 0.
type submitDependency struct {
	bufIndex int
	texIndex int
	wait     SubmitWait
}

// producerIndex returns the final submit index of the matched producer.
// Valid only after closeCurrent has patched the produced lists.
func (m submitDependency) producerIndex(bufs []producedResource[*Buffer], texs []producedResource[*Texture]) int {
	if m.bufIndex >= 0 {
		return bufs[m.bufIndex].submitIndex
	}
	return texs[m.texIndex].submitIndex
}

// SubmitCompiler walks a sequence of finished command buffers, in record
// order, and groups them into CompiledSubmits. A group
// breaks the moment a command buffer's unresolved input depends on an
// output exposed by any earlier command buffer in this batch (whether that
// producer already closed out a prior submit or is still accumulating in
// the submit currently being built) — the break guarantees the producer's
// signal semaphore always belongs to an already-finalized submit by the
// time the consumer needs to wait on it.
type SubmitCompiler struct {
	nextSemaphore uint64
}

// NewSubmitCompiler creates a compiler with a fresh semaphore namespace.
func NewSubmitCompiler() *SubmitCompiler { return &SubmitCompiler{} }

func (c *SubmitCompiler) allocSemaphore() SemaphoreHandle {
	c.nextSemaphore++
	return SemaphoreHandle(c.nextSemaphore)
}

// Compile partitions buffers into submission groups. The returned slice is
// never empty: a batch with no command buffers still yields one empty
// SubmitKindNone submit.
func (c *SubmitCompiler) Compile(buffers []*CoreCommandBuffer) []*CompiledSubmit {
	var output []*CompiledSubmit
	current := newCompiledSubmit()

	var producedBufs []producedResource[*Buffer]
	var producedTexs []producedResource[*Texture]

	closeCurrent := func() {
		sem := c.allocSemaphore()
		current.SignalSemaphores = append(current.SignalSemaphores, sem)
		output = append(output, current)
		idx := len(output) - 1
		for i := range producedBufs {
			if producedBufs[i].submitIndex == -1 {
				producedBufs[i].submitIndex = idx
			}
		}
		for i := range producedTexs {
			if producedTexs[i].submitIndex == -1 {
				producedTexs[i].submitIndex = idx
			}
		}
		current = newCompiledSubmit()
	}

	for _, cb := range buffers {
		var matches []submitDependency

		for _, info := range cb.UnsyncedPassInfos() {
			for buf, dstInfo := range info.Dst.Buffers {
				for i := len(producedBufs) - 1; i >= 0; i-- {
					if producedBufs[i].key == buf {
						matches = append(matches, submitDependency{
							bufIndex: i,
							texIndex: -1,
							wait:     SubmitWait{BufferUsage: dstInfo.Usage},
						})
						break
					}
				}
			}
			for tex, dstInfo := range info.Dst.Textures {
				for i := len(producedTexs) - 1; i >= 0; i-- {
					if producedTexs[i].key == tex {
						matches = append(matches, submitDependency{
							bufIndex: -1,
							texIndex: i,
							wait:     SubmitWait{TextureUsage: dstInfo.Usage},
						})
						break
					}
				}
			}
		}

		if len(matches) > 0 {
			// Close first: a producer still accumulating in the open submit
			// has no submit index until closeCurrent assigns one.
			closeCurrent()
			for _, m := range matches {
				producer := output[m.producerIndex(producedBufs, producedTexs)]
				for _, sem := range producer.SignalSemaphores {
					w := m.wait
					w.Semaphore = sem
					current.WaitSemaphores = append(current.WaitSemaphores, w)
				}
			}
		}

		current.CommandBuffers = append(current.CommandBuffers, cb)

		swapchainIndex := addSwapchainWait(current, cb)
		if swapchainIndex != nil {
			current.SwapchainIndex = swapchainIndex
		}

		current.Kind = kindOf(cb, current.Kind)

		for buf := range cb.UsedBuffers() {
			current.Objects.add(buf)
		}
		for tex := range cb.UsedTextures() {
			current.Objects.add(tex)
		}
		current.Objects.add(cb.Raw())

		for _, info := range cb.UnsyncedPassInfos() {
			for buf := range info.Src.Buffers {
				producedBufs = append(producedBufs, producedResource[*Buffer]{key: buf, submitIndex: -1})
			}
			for tex := range info.Src.Textures {
				producedTexs = append(producedTexs, producedResource[*Texture]{key: tex, submitIndex: -1})
			}
		}
	}

	output = append(output, current)
	return output
}

// addSwapchainWait scans cb's touched textures for a swapchain-owned one and,
// if found, adds its acquire semaphore as a ColorAttachmentOutput-stage wait
// on submit, returning its image index.
func addSwapchainWait(submit *CompiledSubmit, cb *CoreCommandBuffer) *uint32 {
	for tex := range cb.UsedTextures() {
		if tex == nil || !tex.IsSwapchainOwned() {
			continue
		}
		// The semaphore handle is derived from the texture's own identity so
		// repeated waits on the same swapchain image within one submit
		// resolve to the same token; the HAL queue resolves the real
		// acquire-semaphore object from Texture.AcquireSemaphore() at
		// submission time.
		sem := SemaphoreHandle(uintptr(unsafe.Pointer(tex))) //nolint:gosec // opaque token, not dereferenced
		submit.WaitSemaphores = append(submit.WaitSemaphores, SubmitWait{
			Semaphore:    sem,
			TextureUsage: gputypes.TextureUsageRenderAttachment,
			AcquireOf:    tex,
		})
		idx := tex.ImageIndex()
		return &idx
	}
	return nil
}

// kindOf determines the submit kind contributed by cb by inspecting the
// last pass's Src outputs. prior carries forward the kind of
// command buffers already folded into this submit so a later no-op command
// buffer (e.g. a trailing copy-only one) doesn't downgrade an already
// Render/Compute/Present submit back to None.
func kindOf(cb *CoreCommandBuffer, prior SubmitKind) SubmitKind {
	finished := cb.mutable.tracker.Finished()
	for i := len(finished) - 1; i >= 0; i-- {
		src := finished[i].Src
		for tex, info := range src.Textures {
			if info.Usage&gputypes.TextureUsageRenderAttachment != 0 {
				if tex.IsSwapchainOwned() {
					return SubmitKindPresent
				}
				return SubmitKindRender
			}
		}
		if len(src.Buffers) > 0 {
			return SubmitKindCompute
		}
	}
	if hasTransferUsage(cb) {
		return SubmitKindTransfer
	}
	return prior
}

func hasTransferUsage(cb *CoreCommandBuffer) bool {
	for _, use := range cb.UsedBuffers() {
		if use&(BufferUsesCopySrc|BufferUsesCopyDst) != 0 {
			return true
		}
	}
	for _, use := range cb.UsedTextures() {
		if use&(TextureUsesCopySrc|TextureUsesCopyDst) != 0 {
			return true
		}
	}
	return false
}
