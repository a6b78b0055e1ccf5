//go:build software

package software

import "github.com/gogpu/webgpu/hal"

// init registers the software backend with the HAL registry.
func init() {
	hal.RegisterBackend(API{})
}
