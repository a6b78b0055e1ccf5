package core

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/webgpu/hal"
)

type mockQuerySet struct{ destroyed bool }

func (q *mockQuerySet) Destroy() { q.destroyed = true }

// queryHALDevice extends the mock device with query-set support.
type queryHALDevice struct {
	mockHALDevice
	created   []*mockQuerySet
	destroyed int
}

func (d *queryHALDevice) CreateQuerySet(desc *hal.QuerySetDescriptor) (hal.QuerySet, error) {
	qs := &mockQuerySet{}
	d.created = append(d.created, qs)
	return qs, nil
}

func (d *queryHALDevice) DestroyQuerySet(set hal.QuerySet) {
	d.destroyed++
	if qs, ok := set.(*mockQuerySet); ok {
		qs.Destroy()
	}
}

func queryTestDevice(t *testing.T) (*Device, *queryHALDevice) {
	t.Helper()
	halDevice := &queryHALDevice{}
	return NewDevice(halDevice, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "QueryDevice"), halDevice
}

func TestCreateQuerySet(t *testing.T) {
	device, halDevice := queryTestDevice(t)

	qs, err := device.CreateQuerySet(hal.QueryTypeTimestamp, 8, "timings")
	if err != nil {
		t.Fatalf("CreateQuerySet: %v", err)
	}
	if qs.Type() != hal.QueryTypeTimestamp || qs.Count() != 8 {
		t.Errorf("query set type/count = %v/%d, want Timestamp/8", qs.Type(), qs.Count())
	}
	if len(halDevice.created) != 1 {
		t.Fatalf("expected 1 HAL query set, got %d", len(halDevice.created))
	}

	qs.Destroy()
	if halDevice.destroyed != 1 {
		t.Errorf("expected HAL destruction, got %d", halDevice.destroyed)
	}
}

func TestCreateQuerySet_ZeroCount(t *testing.T) {
	device, _ := queryTestDevice(t)
	if _, err := device.CreateQuerySet(hal.QueryTypeOcclusion, 0, "empty"); err == nil {
		t.Error("zero-count query set must fail")
	}
}

func TestCreateQuerySet_UnsupportedBackend(t *testing.T) {
	device := NewDevice(&mockHALDevice{}, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "NoQueries")
	if _, err := device.CreateQuerySet(hal.QueryTypeOcclusion, 4, "occ"); err == nil {
		t.Error("backend without query support must reject query sets")
	}
}

func TestWriteTimestamp_Validation(t *testing.T) {
	device, _ := queryTestDevice(t)
	qs, err := device.CreateQuerySet(hal.QueryTypeTimestamp, 4, "ts")
	if err != nil {
		t.Fatalf("CreateQuerySet: %v", err)
	}
	enc, err := device.CreateCommandEncoder("timestamps")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}

	if err := enc.WriteTimestamp(qs, 3); err != nil {
		t.Errorf("in-range timestamp write failed: %v", err)
	}
	if err := enc.WriteTimestamp(qs, 4); err == nil {
		t.Error("out-of-range timestamp index must fail")
	}
}

func TestWriteTimestamp_RejectsOcclusionSet(t *testing.T) {
	device, _ := queryTestDevice(t)
	occ, err := device.CreateQuerySet(hal.QueryTypeOcclusion, 4, "occ")
	if err != nil {
		t.Fatalf("CreateQuerySet: %v", err)
	}
	enc, err := device.CreateCommandEncoder("bad-ts")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	if err := enc.WriteTimestamp(occ, 0); err == nil {
		t.Error("timestamp write into an occlusion set must fail")
	}
}

func TestResolveQuerySet_Validation(t *testing.T) {
	device, _ := queryTestDevice(t)
	qs, err := device.CreateQuerySet(hal.QueryTypeTimestamp, 4, "ts")
	if err != nil {
		t.Fatalf("CreateQuerySet: %v", err)
	}

	resolve := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageQueryResolve|gputypes.BufferUsageCopyDst, 64, "resolve")

	enc, err := device.CreateCommandEncoder("resolve")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}

	if err := enc.ResolveQuerySet(qs, 0, 4, resolve, 0); err != nil {
		t.Errorf("valid resolve failed: %v", err)
	}
	if err := enc.ResolveQuerySet(qs, 2, 4, resolve, 0); err == nil {
		t.Error("out-of-range query range must fail")
	}
}

func TestResolveQuerySet_RequiresQueryResolveUsage(t *testing.T) {
	device, _ := queryTestDevice(t)
	qs, err := device.CreateQuerySet(hal.QueryTypeTimestamp, 4, "ts")
	if err != nil {
		t.Fatalf("CreateQuerySet: %v", err)
	}
	plain := NewBuffer(mockBuffer{}, device, gputypes.BufferUsageCopyDst, 64, "plain")

	enc, err := device.CreateCommandEncoder("resolve")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	if err := enc.ResolveQuerySet(qs, 0, 4, plain, 0); err == nil {
		t.Error("resolve into a buffer without QueryResolve usage must fail")
	}
}
