package hal

// FramebufferInvalidator is implemented by devices that cache framebuffer
// objects keyed by their attachment views. Destroying a texture view must
// evict every cached framebuffer referencing it before the view's handle is
// released, or the cache would hand out framebuffers with dangling
// attachments. Callers feature-detect with a type assertion; backends
// without framebuffer caching need nothing.
type FramebufferInvalidator interface {
	// InvalidateFramebuffers evicts and destroys every cached framebuffer
	// referencing view.
	InvalidateFramebuffers(view TextureView)
}
