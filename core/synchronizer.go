// Package core provides the synchronizer: the component that turns the
// resource tracker's per-pass usage sets into the pipeline barriers a
// low-level GPU API requires between a producer and its consumer.

package core

import "github.com/gogpu/webgpu/hal"

// Synchronizer resolves pass dependencies: given the Dst of a pass about
// to run and every pass already recorded in the same command buffer, it
// finds, for each Dst resource, the most recent prior pass whose Src
// produced it, and emits one barrier per match. A matched Src entry is
// removed from its pass — a producer is consumed by at most one downstream
// consumer per command buffer.
type Synchronizer struct{}

func newSynchronizer() *Synchronizer { return &Synchronizer{} }

// Sync resolves dst against priorPasses (the command buffer's passes recorded
// so far, earliest first) and returns the buffer/image barriers to batch into
// one pipeline-barrier call. priorPasses is mutated in place: matched Src
// entries are removed so a later, unrelated consumer doesn't re-synchronize
// against an already-satisfied dependency.
func (s *Synchronizer) Sync(device *Device, dst ResourceInfo, priorPasses []PassResourceInfo) ([]hal.BufferBarrier, []hal.TextureBarrier) {
	if device == nil {
		return nil, nil
	}
	guard := device.snatchLock.Read()
	defer guard.Release()

	var bufferBarriers []hal.BufferBarrier
	var textureBarriers []hal.TextureBarrier

	for buf, dstInfo := range dst.Buffers {
		for i := len(priorPasses) - 1; i >= 0; i-- {
			src := &priorPasses[i].Src
			srcInfo, ok := src.Buffers[buf]
			if !ok {
				continue
			}
			raw := buf.Raw(guard)
			if raw != nil {
				bufferBarriers = append(bufferBarriers, hal.BufferBarrier{
					Buffer: *raw,
					Usage: hal.BufferUsageTransition{
						OldUsage: srcInfo.Usage,
						NewUsage: dstInfo.Usage,
					},
				})
			}
			delete(src.Buffers, buf)
			break
		}
	}

	for tex, dstInfo := range dst.Textures {
		for i := len(priorPasses) - 1; i >= 0; i-- {
			src := &priorPasses[i].Src
			srcInfo, ok := src.Textures[tex]
			if !ok {
				continue
			}
			raw := tex.Raw(guard)
			if raw != nil {
				textureBarriers = append(textureBarriers, hal.TextureBarrier{
					Texture: *raw,
					Range:   dstInfo.Range,
					Usage: hal.TextureUsageTransition{
						OldUsage: srcInfo.Usage,
						NewUsage: dstInfo.Usage,
					},
				})
			}
			tex.recordUsage(dstInfo.Usage, dstInfo.Range)
			delete(src.Textures, tex)
			break
		}
	}

	return bufferBarriers, textureBarriers
}

// emitBarriers batches barriers into a single TransitionBuffers/
// TransitionTextures call pair against rawEncoder, so each sync point
// costs one pipeline-barrier per resource class.
func emitBarriers(rawEncoder hal.CommandEncoder, bufferBarriers []hal.BufferBarrier, textureBarriers []hal.TextureBarrier) {
	if rawEncoder == nil {
		return
	}
	if len(bufferBarriers) > 0 {
		rawEncoder.TransitionBuffers(bufferBarriers)
	}
	if len(textureBarriers) > 0 {
		rawEncoder.TransitionTextures(textureBarriers)
	}
}
