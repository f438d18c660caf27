// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"prerot/driver"
)

// checkResult converts a Vulkan result code into an error.
// Device and memory loss map to driver.ErrFatal; everything
// else unexpected is wrapped with its result code.
func checkResult(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorDeviceLost, vk.ErrorOutOfDeviceMemory, vk.ErrorOutOfHostMemory:
		return fmt.Errorf("%w (result %d)", driver.ErrFatal, res)
	case vk.ErrorSurfaceLost, vk.ErrorOutOfDate:
		return fmt.Errorf("%w (result %d)", driver.ErrSwapchain, res)
	case vk.ErrorInitializationFailed, vk.ErrorIncompatibleDriver:
		return driver.ErrNotInstalled
	default:
		return fmt.Errorf("vk: unexpected result %d", res)
	}
}

// convTransform maps a surface pre-transform to the rotation
// it stands for. Mirrored and unknown transforms are treated
// as identity; compensating for them is out of scope.
func convTransform(t vk.SurfaceTransformFlagBits) driver.Transform {
	switch t {
	case vk.SurfaceTransformRotate90Bit:
		return driver.Rotate90
	case vk.SurfaceTransformRotate180Bit:
		return driver.Rotate180
	case vk.SurfaceTransformRotate270Bit:
		return driver.Rotate270
	default:
		return driver.Identity
	}
}

// convToVkTransform is the inverse of convTransform.
func convToVkTransform(t driver.Transform) vk.SurfaceTransformFlagBits {
	switch t {
	case driver.Rotate90:
		return vk.SurfaceTransformRotate90Bit
	case driver.Rotate180:
		return vk.SurfaceTransformRotate180Bit
	case driver.Rotate270:
		return vk.SurfaceTransformRotate270Bit
	default:
		return vk.SurfaceTransformIdentityBit
	}
}
