package vulkan

import (
	"fmt"

	"github.com/gogpu/webgpu/hal"
	"github.com/gogpu/webgpu/hal/vulkan/vk"
)

// QuerySet implements hal.QuerySet for Vulkan.
type QuerySet struct {
	pool      vk.QueryPool
	device    *Device
	queryType hal.QueryType
	count     uint32
}

// Destroy releases the Vulkan query pool.
func (q *QuerySet) Destroy() {
	if q.pool != 0 && q.device != nil {
		q.device.cmds.DestroyQueryPool(q.device.handle, q.pool, nil)
		q.pool = 0
	}
}

// CreateQuerySet creates a Vulkan query pool.
func (d *Device) CreateQuerySet(desc *hal.QuerySetDescriptor) (hal.QuerySet, error) {
	if desc == nil {
		return nil, fmt.Errorf("vulkan: query set descriptor is nil")
	}

	if desc.Count == 0 {
		return nil, fmt.Errorf("vulkan: query set count must be > 0")
	}

	var vkQueryType vk.QueryType
	switch desc.Type {
	case hal.QueryTypeTimestamp:
		vkQueryType = vk.QueryTypeTimestamp
	case hal.QueryTypeOcclusion:
		vkQueryType = vk.QueryTypeOcclusion
	default:
		return nil, fmt.Errorf("vulkan: unsupported query type: %d", desc.Type)
	}

	createInfo := vk.QueryPoolCreateInfo{
		SType:      vk.StructureTypeQueryPoolCreateInfo,
		QueryType:  vkQueryType,
		QueryCount: desc.Count,
	}

	var pool vk.QueryPool
	result := d.cmds.CreateQueryPool(d.handle, &createInfo, nil, &pool)
	if result != vk.Success {
		return nil, fmt.Errorf("vulkan: vkCreateQueryPool failed: %d", result)
	}

	// Reset the query pool so it can be used immediately.
	d.cmds.ResetQueryPool(d.handle, pool, 0, desc.Count)

	qs := &QuerySet{
		pool:      pool,
		device:    d,
		queryType: desc.Type,
		count:     desc.Count,
	}
	if desc.Label != "" {
		d.setObjectName(vk.ObjectTypeQueryPool, uint64(pool), desc.Label)
	} else {
		d.setObjectName(vk.ObjectTypeQueryPool, uint64(pool), "QueryPool")
	}
	return qs, nil
}

// DestroyQuerySet destroys a Vulkan query set.
func (d *Device) DestroyQuerySet(querySet hal.QuerySet) {
	if qs, ok := querySet.(*QuerySet); ok {
		qs.Destroy()
	}
}

// WriteTimestamp records a bottom-of-pipe timestamp into the query pool.
// Implements hal.QueryCommandEncoder.
func (e *CommandEncoder) WriteTimestamp(set hal.QuerySet, index uint32) {
	qs, ok := set.(*QuerySet)
	if !ok || !e.isRecording || index >= qs.count {
		return
	}
	e.device.cmds.CmdWriteTimestamp(e.cmdBuffer, vk.PipelineStageBottomOfPipeBit, qs.pool, index)
}

// ResolveQuerySet copies query results into dst as tightly packed uint64
// values, waiting for the queries to become available on the GPU timeline.
// Implements hal.QueryCommandEncoder.
func (e *CommandEncoder) ResolveQuerySet(set hal.QuerySet, firstQuery, queryCount uint32, dst hal.Buffer, dstOffset uint64) {
	qs, ok := set.(*QuerySet)
	if !ok || !e.isRecording {
		return
	}
	buf, ok := dst.(*Buffer)
	if !ok || firstQuery+queryCount > qs.count {
		return
	}
	const stride = 8
	e.device.cmds.CmdCopyQueryPoolResults(
		e.cmdBuffer,
		qs.pool,
		firstQuery,
		queryCount,
		buf.handle,
		dstOffset,
		stride,
		vk.QueryResultFlags(vk.QueryResult64Bit|vk.QueryResultWaitBit),
	)
}

// BeginOcclusionQuery starts the occlusion query at index in the pass
// descriptor's occlusion query set. Implements hal.OcclusionQueryEncoder.
func (e *RenderPassEncoder) BeginOcclusionQuery(index uint32) {
	if e.desc == nil || !e.encoder.isRecording {
		return
	}
	qs, ok := e.desc.OcclusionQuerySet.(*QuerySet)
	if !ok || index >= qs.count {
		return
	}
	e.encoder.device.cmds.CmdBeginQuery(e.encoder.cmdBuffer, qs.pool, index, 0)
	e.activeQuery = index
	e.hasActiveQuery = true
}

// EndOcclusionQuery ends the occlusion query started by BeginOcclusionQuery.
// Implements hal.OcclusionQueryEncoder.
func (e *RenderPassEncoder) EndOcclusionQuery() {
	if e.desc == nil || !e.hasActiveQuery || !e.encoder.isRecording {
		return
	}
	qs, ok := e.desc.OcclusionQuerySet.(*QuerySet)
	if !ok {
		return
	}
	e.encoder.device.cmds.CmdEndQuery(e.encoder.cmdBuffer, qs.pool, e.activeQuery)
	e.hasActiveQuery = false
}
