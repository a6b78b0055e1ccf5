package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// TextureCopyView addresses one subresource of a texture for a copy
// command: the texture itself, a mip level, an origin within that level,
// and the aspect to copy.
type TextureCopyView struct {
	Texture  *Texture
	MipLevel uint32
	Origin   hal.Origin3D
	Aspect   gputypes.TextureAspect
}

func (v *TextureCopyView) halBase() hal.ImageCopyTexture {
	return hal.ImageCopyTexture{
		MipLevel: v.MipLevel,
		Origin:   v.Origin,
		Aspect:   v.Aspect,
	}
}

func (v *TextureCopyView) copyRange() hal.TextureRange {
	return hal.TextureRange{
		Aspect:          v.Aspect,
		BaseMipLevel:    v.MipLevel,
		MipLevelCount:   1,
		BaseArrayLayer:  v.Origin.Z,
		ArrayLayerCount: 1,
	}
}

// Copy commands run outside passes and do not join the pass-dependency
// machinery: each one brackets its own transitions instead. The involved
// textures are transitioned to copy usage from whatever the synchronizer
// last recorded for them, the copy is issued, and the textures are
// transitioned back — to their prior usage, or, when the texture has never
// been used, to a usage derived from its creation flags.

// CopyBufferToBuffer copies size bytes from src at srcOffset to dst at
// dstOffset. The encoder must be in the Recording state (not inside a pass).
func (e *CoreCommandEncoder) CopyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset, size uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("copy buffer to buffer")
	}
	if err := validateCopyBuffer(src, gputypes.BufferUsageCopySrc, srcOffset, size); err != nil {
		e.setError(err)
		return err
	}
	if err := validateCopyBuffer(dst, gputypes.BufferUsageCopyDst, dstOffset, size); err != nil {
		e.setError(err)
		return err
	}
	if size == 0 {
		return nil
	}

	e.mutable.useBuffer(src, BufferUsesCopySrc)
	e.mutable.useBuffer(dst, BufferUsesCopyDst)
	dst.MarkInitialized(dstOffset, size)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	if halEncoder == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	halSrc := src.Raw(guard)
	halDst := dst.Raw(guard)
	if halSrc == nil || halDst == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}

	(*halEncoder).CopyBufferToBuffer(*halSrc, *halDst, []hal.BufferCopy{{
		SrcOffset: srcOffset,
		DstOffset: dstOffset,
		Size:      size,
	}})
	return nil
}

// CopyBufferToTexture copies buffer data laid out per layout into the
// addressed texture subresource.
func (e *CoreCommandEncoder) CopyBufferToTexture(src *Buffer, layout hal.ImageDataLayout, dst *TextureCopyView, size hal.Extent3D) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("copy buffer to texture")
	}
	if err := validateCopyBuffer(src, gputypes.BufferUsageCopySrc, layout.Offset, 0); err != nil {
		e.setError(err)
		return err
	}
	if err := validateCopyTexture(dst, gputypes.TextureUsageCopyDst); err != nil {
		e.setError(err)
		return err
	}

	e.mutable.useBuffer(src, BufferUsesCopySrc)
	e.mutable.useTexture(dst.Texture, TextureUsesCopyDst)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	if halEncoder == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	halSrc := src.Raw(guard)
	halDstTex := dst.Texture.Raw(guard)
	if halSrc == nil || halDstTex == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}

	restore := bracketTexture(*halEncoder, dst.Texture, *halDstTex, dst.copyRange(), gputypes.TextureUsageCopyDst)
	base := dst.halBase()
	base.Texture = *halDstTex
	(*halEncoder).CopyBufferToTexture(*halSrc, *halDstTex, []hal.BufferTextureCopy{{
		BufferLayout: layout,
		TextureBase:  base,
		Size:         size,
	}})
	restore()
	return nil
}

// CopyTextureToBuffer copies the addressed texture subresource into dst
// with the given data layout.
func (e *CoreCommandEncoder) CopyTextureToBuffer(src *TextureCopyView, dst *Buffer, layout hal.ImageDataLayout, size hal.Extent3D) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("copy texture to buffer")
	}
	if err := validateCopyTexture(src, gputypes.TextureUsageCopySrc); err != nil {
		e.setError(err)
		return err
	}
	if err := validateCopyBuffer(dst, gputypes.BufferUsageCopyDst, layout.Offset, 0); err != nil {
		e.setError(err)
		return err
	}

	e.mutable.useTexture(src.Texture, TextureUsesCopySrc)
	e.mutable.useBuffer(dst, BufferUsesCopyDst)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	if halEncoder == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	halSrcTex := src.Texture.Raw(guard)
	halDst := dst.Raw(guard)
	if halSrcTex == nil || halDst == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}

	restore := bracketTexture(*halEncoder, src.Texture, *halSrcTex, src.copyRange(), gputypes.TextureUsageCopySrc)
	base := src.halBase()
	base.Texture = *halSrcTex
	(*halEncoder).CopyTextureToBuffer(*halSrcTex, *halDst, []hal.BufferTextureCopy{{
		BufferLayout: layout,
		TextureBase:  base,
		Size:         size,
	}})
	restore()
	return nil
}

// CopyTextureToTexture copies between two texture subresources.
func (e *CoreCommandEncoder) CopyTextureToTexture(src, dst *TextureCopyView, size hal.Extent3D) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("copy texture to texture")
	}
	if err := validateCopyTexture(src, gputypes.TextureUsageCopySrc); err != nil {
		e.setError(err)
		return err
	}
	if err := validateCopyTexture(dst, gputypes.TextureUsageCopyDst); err != nil {
		e.setError(err)
		return err
	}

	e.mutable.useTexture(src.Texture, TextureUsesCopySrc)
	e.mutable.useTexture(dst.Texture, TextureUsesCopyDst)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	if halEncoder == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	halSrcTex := src.Texture.Raw(guard)
	halDstTex := dst.Texture.Raw(guard)
	if halSrcTex == nil || halDstTex == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}

	restoreSrc := bracketTexture(*halEncoder, src.Texture, *halSrcTex, src.copyRange(), gputypes.TextureUsageCopySrc)
	restoreDst := bracketTexture(*halEncoder, dst.Texture, *halDstTex, dst.copyRange(), gputypes.TextureUsageCopyDst)
	srcBase := src.halBase()
	srcBase.Texture = *halSrcTex
	dstBase := dst.halBase()
	dstBase.Texture = *halDstTex
	(*halEncoder).CopyTextureToTexture(*halSrcTex, *halDstTex, []hal.TextureCopy{{
		SrcBase: srcBase,
		DstBase: dstBase,
		Size:    size,
	}})
	restoreDst()
	restoreSrc()
	return nil
}

// ClearBuffer zeroes [offset, offset+size) in buf. A size of 0 clears to
// the end of the buffer.
func (e *CoreCommandEncoder) ClearBuffer(buf *Buffer, offset, size uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("clear buffer")
	}
	if err := validateCopyBuffer(buf, gputypes.BufferUsageCopyDst, offset, size); err != nil {
		e.setError(err)
		return err
	}
	if size == 0 {
		size = buf.Size() - offset
	}

	e.mutable.useBuffer(buf, BufferUsesCopyDst)
	buf.MarkInitialized(offset, size)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	if halEncoder == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	halBuf := buf.Raw(guard)
	if halBuf == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}

	(*halEncoder).ClearBuffer(*halBuf, offset, size)
	return nil
}

// bracketTexture transitions one texture subresource range into copy usage
// and returns a closure that transitions it back. The restore target is the
// usage the synchronizer last recorded for the texture, or, if the texture
// has never been synchronized, a single usage derived from its creation
// flags — an image coming out of an undefined layout has no prior state
// worth restoring, so it lands in the layout its usage flags say it will
// spend its life in.
func bracketTexture(enc hal.CommandEncoder, tex *Texture, raw hal.Texture, rng hal.TextureRange, copyUsage gputypes.TextureUsage) func() {
	prevUsage, prevRange, hadPrev := tex.recordedUsage()

	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: raw,
		Range:   rng,
		Usage: hal.TextureUsageTransition{
			OldUsage: prevUsage,
			NewUsage: copyUsage,
		},
	}})

	restoreUsage := prevUsage
	restoreRange := prevRange
	if !hadPrev {
		restoreUsage = settledUsage(tex.Usage())
		restoreRange = rng
	}
	return func() {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: raw,
			Range:   rng,
			Usage: hal.TextureUsageTransition{
				OldUsage: copyUsage,
				NewUsage: restoreUsage,
			},
		}})
		tex.recordUsage(restoreUsage, restoreRange)
	}
}

// settledUsage picks the single usage a texture should rest in between
// copies when it has no recorded prior usage, from its creation flags.
// Sampling wins over attachment use, which wins over storage: the common
// upload-then-sample and render-then-copy flows both end in the layout the
// texture's next real pass expects.
func settledUsage(flags gputypes.TextureUsage) gputypes.TextureUsage {
	switch {
	case flags&gputypes.TextureUsageTextureBinding != 0:
		return gputypes.TextureUsageTextureBinding
	case flags&gputypes.TextureUsageRenderAttachment != 0:
		return gputypes.TextureUsageRenderAttachment
	case flags&gputypes.TextureUsageStorageBinding != 0:
		return gputypes.TextureUsageStorageBinding
	case flags&gputypes.TextureUsageCopySrc != 0:
		return gputypes.TextureUsageCopySrc
	default:
		return gputypes.TextureUsageCopyDst
	}
}

func validateCopyBuffer(b *Buffer, need gputypes.BufferUsage, offset, size uint64) error {
	if b == nil {
		return fmt.Errorf("copy: buffer is nil")
	}
	if b.IsDestroyed() {
		return ErrResourceDestroyed
	}
	if b.Usage()&need == 0 {
		return fmt.Errorf("copy: buffer %q lacks usage %v", b.Label(), need)
	}
	if offset+size > b.Size() {
		return fmt.Errorf("copy: range [%d, %d) exceeds buffer %q size %d", offset, offset+size, b.Label(), b.Size())
	}
	return nil
}

func validateCopyTexture(v *TextureCopyView, need gputypes.TextureUsage) error {
	if v == nil || v.Texture == nil {
		return fmt.Errorf("copy: texture is nil")
	}
	if v.Texture.IsDestroyed() {
		return ErrResourceDestroyed
	}
	if v.Texture.Usage()&need == 0 {
		return fmt.Errorf("copy: texture %q lacks usage %v", v.Texture.Label(), need)
	}
	return nil
}
