// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"time"

	vk "github.com/goki/vulkan"

	"prerot/driver"
)

// fence implements driver.Fence.
type fence struct {
	dev *Device
	f   vk.Fence
}

// NewFence creates a new fence, optionally in the signaled
// state.
func (d *Device) NewFence(signaled bool) (driver.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var f vk.Fence
	if err := checkResult(vk.CreateFence(d.dev, &info, nil, &f)); err != nil {
		return nil, err
	}
	return &fence{dev: d, f: f}, nil
}

func (f *fence) Wait(timeout time.Duration) error {
	ret := vk.WaitForFences(f.dev.dev, 1, []vk.Fence{f.f}, vk.True, uint64(timeout.Nanoseconds()))
	if ret == vk.Timeout {
		return driver.ErrTimeout
	}
	return checkResult(ret)
}

func (f *fence) Reset() error {
	return checkResult(vk.ResetFences(f.dev.dev, 1, []vk.Fence{f.f}))
}

func (f *fence) Destroy() {
	if f.f != vk.NullFence {
		vk.DestroyFence(f.dev.dev, f.f, nil)
		f.f = vk.NullFence
	}
}

// semaphore implements driver.Semaphore.
type semaphore struct {
	dev *Device
	sem vk.Semaphore
}

// NewSemaphore creates a new binary semaphore.
func (d *Device) NewSemaphore() (driver.Semaphore, error) {
	var s vk.Semaphore
	ret := vk.CreateSemaphore(d.dev, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &s)
	if err := checkResult(ret); err != nil {
		return nil, err
	}
	return &semaphore{dev: d, sem: s}, nil
}

func (s *semaphore) Destroy() {
	if s.sem != vk.NullSemaphore {
		vk.DestroySemaphore(s.dev.dev, s.sem, nil)
		s.sem = vk.NullSemaphore
	}
}
