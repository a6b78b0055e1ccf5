package core

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestTexture_CreateViewCachesByDescriptor(t *testing.T) {
	device := NewDevice(&mockHALDevice{}, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "D")
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding,
	}, "T")

	desc := &gputypes.TextureViewDescriptor{
		Format:          gputypes.TextureFormatRGBA8Unorm,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
	}

	v1, err := tex.CreateView(desc)
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	v2, err := tex.CreateView(desc)
	if err != nil {
		t.Fatalf("CreateView (cached): %v", err)
	}
	if v1 != v2 {
		t.Error("equal descriptors must return the same cached view")
	}

	other := *desc
	other.BaseMipLevel = 1
	v3, err := tex.CreateView(&other)
	if err != nil {
		t.Fatalf("CreateView (different mip): %v", err)
	}
	if v3 == v1 {
		t.Error("a different descriptor must produce a distinct view")
	}
}

func TestTexture_DestroyClearsViewCache(t *testing.T) {
	halDevice := &countingHALDevice{}
	device := NewDevice(halDevice, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "D")
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageTextureBinding,
	}, "T")

	v, err := tex.CreateView(&gputypes.TextureViewDescriptor{MipLevelCount: 1, ArrayLayerCount: 1})
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}

	tex.Destroy()
	if !v.destroyed.Load() {
		t.Error("cached views must be destroyed with the texture")
	}
	if halDevice.viewsDestroyed != 1 {
		t.Errorf("expected 1 HAL view destruction, got %d", halDevice.viewsDestroyed)
	}
	if halDevice.texturesDestroyed != 1 {
		t.Errorf("expected 1 HAL texture destruction, got %d", halDevice.texturesDestroyed)
	}

	if _, err := tex.CreateView(nil); err == nil {
		t.Error("CreateView after Destroy must fail")
	}
}

func TestTextureView_DestroyedOnceAcrossCacheAndCaller(t *testing.T) {
	halDevice := &countingHALDevice{}
	device := NewDevice(halDevice, &Adapter{}, gputypes.Features(0), gputypes.DefaultLimits(), "D")
	tex := NewTexture(mockTexture{}, device, &gputypes.TextureDescriptor{
		Usage: gputypes.TextureUsageTextureBinding,
	}, "T")

	v, err := tex.CreateView(nil)
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}

	v.Destroy()
	tex.Destroy()
	if halDevice.viewsDestroyed != 1 {
		t.Errorf("view destroyed %d times, want 1", halDevice.viewsDestroyed)
	}
}
