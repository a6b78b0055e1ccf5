package core

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

// QuerySet is a set of occlusion or timestamp queries, HAL-backed.
type QuerySet struct {
	device *Device
	raw    *Snatchable[hal.QuerySet]

	queryType hal.QueryType
	count     uint32
	label     string

	destroyed atomic.Bool
}

// CreateQuerySet creates a query set on this device. Returns an
// Unsupported-style error when the backend has no query support.
func (d *Device) CreateQuerySet(queryType hal.QueryType, count uint32, label string) (*QuerySet, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("query set %q: count must be > 0", label)
	}

	var halSet hal.QuerySet
	if d.HasHAL() {
		guard := d.snatchLock.Read()
		halDevice := d.Raw(guard)
		guard.Release()
		if halDevice == nil {
			return nil, ErrDeviceDestroyed
		}
		provider, ok := (*halDevice).(hal.QuerySetProvider)
		if !ok {
			return nil, fmt.Errorf("query set %q: backend does not support queries", label)
		}
		var err error
		halSet, err = provider.CreateQuerySet(&hal.QuerySetDescriptor{
			Label: label,
			Type:  queryType,
			Count: count,
		})
		if err != nil {
			return nil, fmt.Errorf("create query set %q: %w", label, err)
		}
	}

	return &QuerySet{
		device:    d,
		raw:       NewSnatchable(halSet),
		queryType: queryType,
		count:     count,
		label:     label,
	}, nil
}

// Type returns whether this set holds occlusion or timestamp queries.
func (q *QuerySet) Type() hal.QueryType { return q.queryType }

// Count returns the number of queries in the set.
func (q *QuerySet) Count() uint32 { return q.count }

// Label returns the query set's debug label.
func (q *QuerySet) Label() string { return q.label }

// Raw returns the underlying HAL query set, or nil once destroyed.
func (q *QuerySet) Raw(guard *SnatchGuard) *hal.QuerySet {
	if q == nil || q.raw == nil {
		return nil
	}
	return q.raw.Get(guard)
}

// Destroy releases the underlying HAL query set through the owning device's
// deferred deleter. Safe to call more than once.
func (q *QuerySet) Destroy() {
	if q == nil || q.raw == nil {
		return
	}
	if !q.destroyed.CompareAndSwap(false, true) {
		return
	}

	destroy := func() {
		lock := q.device.SnatchLock()
		if lock == nil {
			return
		}
		guard := lock.Write()
		raw := q.raw.Snatch(guard)
		guard.Release()
		if raw == nil || !q.device.HasHAL() {
			return
		}
		readGuard := lock.Read()
		halDevice := q.device.Raw(readGuard)
		readGuard.Release()
		if halDevice == nil {
			return
		}
		if provider, ok := (*halDevice).(hal.QuerySetProvider); ok {
			provider.DestroyQuerySet(*raw)
		}
	}

	if q.device != nil && q.device.deleter != nil {
		q.device.deleter.SafeDestroy(q, destroy)
	} else {
		destroy()
	}
}

// WriteTimestamp records a timestamp into set at index. A backend without
// query recording support ignores the call.
func (e *CoreCommandEncoder) WriteTimestamp(set *QuerySet, index uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("write timestamp")
	}
	if set == nil {
		err := fmt.Errorf("write timestamp: query set is nil")
		e.setError(err)
		return err
	}
	if set.Type() != hal.QueryTypeTimestamp {
		err := fmt.Errorf("write timestamp: query set %q is not a timestamp set", set.Label())
		e.setError(err)
		return err
	}
	if index >= set.Count() {
		err := fmt.Errorf("write timestamp: index %d out of range (count %d)", index, set.Count())
		e.setError(err)
		return err
	}

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	halSet := set.Raw(guard)
	if halEncoder == nil || halSet == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	if qe, ok := (*halEncoder).(hal.QueryCommandEncoder); ok {
		qe.WriteTimestamp(*halSet, index)
	}
	return nil
}

// ResolveQuerySet copies queryCount results starting at firstQuery into dst
// at dstOffset, 8 bytes per result. dst must carry QueryResolve usage.
func (e *CoreCommandEncoder) ResolveQuerySet(set *QuerySet, firstQuery, queryCount uint32, dst *Buffer, dstOffset uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Status() != CommandEncoderStatusRecording {
		return e.statusError("resolve query set")
	}
	if set == nil || dst == nil {
		err := fmt.Errorf("resolve query set: nil query set or buffer")
		e.setError(err)
		return err
	}
	if firstQuery+queryCount > set.Count() {
		err := fmt.Errorf("resolve query set: range [%d, %d) out of range (count %d)",
			firstQuery, firstQuery+queryCount, set.Count())
		e.setError(err)
		return err
	}
	if dst.Usage()&gputypes.BufferUsageQueryResolve == 0 {
		err := fmt.Errorf("resolve query set: buffer %q lacks QueryResolve usage", dst.Label())
		e.setError(err)
		return err
	}
	const resultSize = 8
	if dstOffset+uint64(queryCount)*resultSize > dst.Size() {
		err := fmt.Errorf("resolve query set: results exceed buffer %q size %d", dst.Label(), dst.Size())
		e.setError(err)
		return err
	}

	e.mutable.useBuffer(dst, BufferUsesCopyDst)
	dst.MarkInitialized(dstOffset, uint64(queryCount)*resultSize)

	guard := e.device.snatchLock.Read()
	defer guard.Release()
	halEncoder := e.raw.Get(guard)
	halSet := set.Raw(guard)
	halDst := dst.Raw(guard)
	if halEncoder == nil || halSet == nil || halDst == nil {
		err := ErrResourceDestroyed
		e.setError(err)
		return err
	}
	if qe, ok := (*halEncoder).(hal.QueryCommandEncoder); ok {
		qe.ResolveQuerySet(*halSet, firstQuery, queryCount, *halDst, dstOffset)
	}
	return nil
}
