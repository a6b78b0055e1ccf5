package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/core/track"
	"github.com/gogpu/webgpu/hal"
)

// TextureOwner identifies who owns a texture's backing memory. Transitions
// to a present-ready layout only ever apply to textures whose owner is a
// swapchain.
type TextureOwner int

const (
	// TextureOwnerSelf is a texture whose memory this device allocated.
	TextureOwnerSelf TextureOwner = iota
	// TextureOwnerSwapchain is a texture whose memory belongs to a swapchain;
	// the submit compiler must wait on its acquire semaphore and the
	// synchronizer may transition it to PresentSrc.
	TextureOwnerSwapchain
)

// Texture is a GPU texture, HAL-backed and safe for concurrent use by the
// command-recording and queue-submission pipeline.
type Texture struct {
	device *Device
	raw    *Snatchable[hal.Texture]

	format    gputypes.TextureFormat
	usage     gputypes.TextureUsage
	size      gputypes.Extent3D
	mipLevels uint32
	sampleCnt uint32
	dimension gputypes.TextureDimension
	label     string

	owner            TextureOwner
	acquireSemaphore any // signaled by the presentation engine when the image is safe to render to
	presentSemaphore any // signaled by the rendering submit; the presentation engine waits on it
	imageIndex       uint32

	destroyed atomic.Bool

	// trackState is the resource tracker's memory of this texture's most
	// recent usage, consulted when building the next pass's barriers. It is
	// guarded by stateMu because encoder recording can run concurrently with
	// a different command buffer's submission-time synchronization pass.
	stateMu   sync.Mutex
	lastUsage gputypes.TextureUsage
	lastRange hal.TextureRange

	trackingData *track.TrackingData

	// viewMu guards viewCache. Views are cached per descriptor so repeated
	// CreateView calls with an equal descriptor share one HAL view; the
	// cache is cleared when the texture is destroyed.
	viewMu    sync.Mutex
	viewCache map[textureViewKey]*TextureView
}

// textureViewKey is the comparable identity of a view descriptor.
type textureViewKey struct {
	format    gputypes.TextureFormat
	dimension gputypes.TextureViewDimension
	aspect    gputypes.TextureAspect
	baseMip   uint32
	mipCount  uint32
	baseLayer uint32
	layerCnt  uint32
}

func viewKeyOf(desc *gputypes.TextureViewDescriptor) textureViewKey {
	if desc == nil {
		return textureViewKey{}
	}
	return textureViewKey{
		format:    desc.Format,
		dimension: desc.Dimension,
		aspect:    desc.Aspect,
		baseMip:   desc.BaseMipLevel,
		mipCount:  desc.MipLevelCount,
		baseLayer: desc.BaseArrayLayer,
		layerCnt:  desc.ArrayLayerCount,
	}
}

// NewTexture wraps an already-created hal.Texture as a core Texture owned by device.
func NewTexture(halTexture hal.Texture, device *Device, desc *gputypes.TextureDescriptor, label string) *Texture {
	t := &Texture{
		device: device,
		raw:    NewSnatchable(halTexture),
		label:  label,
	}
	if desc != nil {
		t.format = desc.Format
		t.usage = desc.Usage
		t.size = desc.Size
		t.mipLevels = desc.MipLevelCount
		t.sampleCnt = desc.SampleCount
		t.dimension = desc.Dimension
	}
	t.trackingData = track.NewTrackingData(nil)
	return t
}

// MarkSwapchainOwned records that this texture's memory is owned by a
// swapchain rather than the device, and attaches the semaphores and image
// index the submit pipeline needs to build a Present-kind submit: the
// acquire semaphore the submit waits on, and the present semaphore it
// signals for the presentation engine.
func (t *Texture) MarkSwapchainOwned(acquireSemaphore, presentSemaphore any, imageIndex uint32) {
	if t == nil {
		return
	}
	t.owner = TextureOwnerSwapchain
	t.acquireSemaphore = acquireSemaphore
	t.presentSemaphore = presentSemaphore
	t.imageIndex = imageIndex
}

// Owner reports whether this texture's memory belongs to the device or a swapchain.
func (t *Texture) Owner() TextureOwner {
	if t == nil {
		return TextureOwnerSelf
	}
	return t.owner
}

// IsSwapchainOwned reports whether Owner() == TextureOwnerSwapchain.
func (t *Texture) IsSwapchainOwned() bool { return t.Owner() == TextureOwnerSwapchain }

// AcquireSemaphore returns the opaque handle the presentation engine signals
// once this swapchain image is safe to render to, or nil for a self-owned texture.
func (t *Texture) AcquireSemaphore() any {
	if t == nil {
		return nil
	}
	return t.acquireSemaphore
}

// PresentSemaphore returns the opaque handle the rendering submit signals
// for the presentation engine to wait on, or nil for a self-owned texture.
func (t *Texture) PresentSemaphore() any {
	if t == nil {
		return nil
	}
	return t.presentSemaphore
}

// ImageIndex returns the swapchain image index this texture was acquired
// for. Only meaningful when IsSwapchainOwned is true.
func (t *Texture) ImageIndex() uint32 {
	if t == nil {
		return 0
	}
	return t.imageIndex
}

// HasHAL reports whether this Texture wraps a HAL texture.
func (t *Texture) HasHAL() bool { return t != nil && t.raw != nil }

// Device returns the device that owns this texture, or nil.
func (t *Texture) Device() *Device {
	if t == nil {
		return nil
	}
	return t.device
}

// Format returns the texture's pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the texture's usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// Raw returns the underlying HAL texture. Requires a SnatchGuard obtained
// from the owning device's SnatchLock. Returns nil once destroyed.
func (t *Texture) Raw(guard *SnatchGuard) *hal.Texture {
	if t == nil || t.raw == nil {
		return nil
	}
	return t.raw.Get(guard)
}

// IsDestroyed reports whether Destroy has completed on this texture.
func (t *Texture) IsDestroyed() bool {
	if t == nil || t.raw == nil {
		return true
	}
	return t.destroyed.Load()
}

// Destroy releases the underlying HAL texture through the owning device's
// deferred deleter. Safe to call more than once.
func (t *Texture) Destroy() {
	if t == nil || t.raw == nil {
		return
	}
	if !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	if t.trackingData != nil {
		t.trackingData.Release()
	}
	t.clearViewCache()

	destroy := func() {
		lock := t.device.SnatchLock()
		if lock == nil {
			return
		}
		guard := lock.Write()
		raw := t.raw.Snatch(guard)
		guard.Release()
		if raw != nil && t.device.HasHAL() {
			readGuard := lock.Read()
			halDevice := t.device.Raw(readGuard)
			readGuard.Release()
			if halDevice != nil {
				(*halDevice).DestroyTexture(*raw)
			}
		}
	}

	if t.device != nil && t.device.deleter != nil {
		t.device.deleter.SafeDestroy(t, destroy)
	} else {
		destroy()
	}
}

// CreateView returns a view of this texture described by desc, creating it
// on first use and returning the cached view for every later call with an
// equal descriptor. The cached views die with the texture.
func (t *Texture) CreateView(desc *gputypes.TextureViewDescriptor) (*TextureView, error) {
	if t == nil || t.device == nil {
		return nil, ErrResourceDestroyed
	}
	if t.IsDestroyed() {
		return nil, ErrResourceDestroyed
	}

	key := viewKeyOf(desc)
	t.viewMu.Lock()
	if v, ok := t.viewCache[key]; ok {
		t.viewMu.Unlock()
		return v, nil
	}
	t.viewMu.Unlock()

	var halView hal.TextureView
	if t.device.HasHAL() && t.HasHAL() {
		guard := t.device.snatchLock.Read()
		halDevice := t.device.Raw(guard)
		halTexture := t.Raw(guard)
		var err error
		if halDevice != nil && halTexture != nil {
			var halDesc hal.TextureViewDescriptor
			if desc != nil {
				halDesc = hal.TextureViewDescriptor{
					Label:           desc.Label,
					Format:          desc.Format,
					Dimension:       desc.Dimension,
					Aspect:          desc.Aspect,
					BaseMipLevel:    desc.BaseMipLevel,
					MipLevelCount:   desc.MipLevelCount,
					BaseArrayLayer:  desc.BaseArrayLayer,
					ArrayLayerCount: desc.ArrayLayerCount,
				}
			}
			halView, err = (*halDevice).CreateTextureView(*halTexture, &halDesc)
		}
		guard.Release()
		if err != nil {
			return nil, fmt.Errorf("create texture view: %w", err)
		}
	}

	label := ""
	if desc != nil {
		label = desc.Label
	}
	view := NewTextureView(halView, t.device, t, desc, label)

	t.viewMu.Lock()
	defer t.viewMu.Unlock()
	if prev, ok := t.viewCache[key]; ok {
		// Lost a race with a concurrent CreateView; keep the first one.
		view.Destroy()
		return prev, nil
	}
	if t.viewCache == nil {
		t.viewCache = make(map[textureViewKey]*TextureView)
	}
	t.viewCache[key] = view
	return view, nil
}

// clearViewCache destroys every cached view. Called when the texture is
// destroyed; the views go through the deferred deleter like any other view.
func (t *Texture) clearViewCache() {
	t.viewMu.Lock()
	views := t.viewCache
	t.viewCache = nil
	t.viewMu.Unlock()
	for _, v := range views {
		v.Destroy()
	}
}

// TrackingData returns the texture's resource-tracker index allocation.
func (t *Texture) TrackingData() *track.TrackingData { return t.trackingData }

// recordedUsage returns the usage and subresource range this texture was
// last synchronized for, and whether any usage has been recorded at all.
func (t *Texture) recordedUsage() (gputypes.TextureUsage, hal.TextureRange, bool) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.lastUsage, t.lastRange, t.lastUsage != 0 || t.lastRange != (hal.TextureRange{})
}

// recordUsage stores the usage and subresource range the synchronizer just
// transitioned this texture to, so the next pass can compute a delta against it.
func (t *Texture) recordUsage(usage gputypes.TextureUsage, rng hal.TextureRange) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	t.lastUsage = usage
	t.lastRange = rng
}

// TextureView is a view into a texture, HAL-backed.
type TextureView struct {
	device  *Device
	raw     *Snatchable[hal.TextureView]
	texture *Texture
	format  gputypes.TextureFormat
	aspect  gputypes.TextureAspect
	baseMip uint32
	mipCnt  uint32
	baseLy  uint32
	lyCnt   uint32
	label   string

	destroyed atomic.Bool
}

// NewTextureView wraps an already-created hal.TextureView, keeping a
// reference to the parent Texture so usage tracking can attribute accesses
// through the view back to the owning resource.
func NewTextureView(halView hal.TextureView, device *Device, texture *Texture, desc *gputypes.TextureViewDescriptor, label string) *TextureView {
	v := &TextureView{
		device:  device,
		raw:     NewSnatchable(halView),
		texture: texture,
		label:   label,
		mipCnt:  1,
		lyCnt:   1,
	}
	if texture != nil {
		v.format = texture.format
	}
	if desc != nil {
		v.format = desc.Format
		v.aspect = desc.Aspect
		v.baseMip = desc.BaseMipLevel
		v.mipCnt = desc.MipLevelCount
		v.baseLy = desc.BaseArrayLayer
		v.lyCnt = desc.ArrayLayerCount
	}
	return v
}

// Texture returns the texture this view was created from.
func (v *TextureView) Texture() *Texture {
	if v == nil {
		return nil
	}
	return v.texture
}

// Range returns the subresource range this view covers.
func (v *TextureView) Range() hal.TextureRange {
	if v == nil {
		return hal.TextureRange{}
	}
	return hal.TextureRange{
		Aspect:          v.aspect,
		BaseMipLevel:    v.baseMip,
		MipLevelCount:   v.mipCnt,
		BaseArrayLayer:  v.baseLy,
		ArrayLayerCount: v.lyCnt,
	}
}

// HasHAL reports whether this view wraps a HAL texture view.
func (v *TextureView) HasHAL() bool { return v != nil && v.raw != nil }

// Raw returns the underlying HAL texture view, or nil once destroyed.
func (v *TextureView) Raw(guard *SnatchGuard) *hal.TextureView {
	if v == nil || v.raw == nil {
		return nil
	}
	return v.raw.Get(guard)
}

// Destroy releases the underlying HAL texture view through the owning
// device's deferred deleter. Safe to call more than once.
func (v *TextureView) Destroy() {
	if v == nil || v.raw == nil {
		return
	}
	if !v.destroyed.CompareAndSwap(false, true) {
		return
	}

	destroy := func() {
		lock := v.device.SnatchLock()
		if lock == nil {
			return
		}
		guard := lock.Write()
		raw := v.raw.Snatch(guard)
		guard.Release()
		if raw != nil && v.device.HasHAL() {
			readGuard := lock.Read()
			halDevice := v.device.Raw(readGuard)
			readGuard.Release()
			if halDevice != nil {
				// Cached framebuffers referencing this view must go before
				// the view's handle does.
				if inv, ok := (*halDevice).(hal.FramebufferInvalidator); ok {
					inv.InvalidateFramebuffers(*raw)
				}
				(*halDevice).DestroyTextureView(*raw)
			}
		}
	}

	if v.device != nil && v.device.deleter != nil {
		v.device.deleter.SafeDestroy(v, destroy)
	} else {
		destroy()
	}
}
