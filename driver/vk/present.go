// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"errors"
	"math"
	"unsafe"

	vk "github.com/goki/vulkan"

	"prerot/driver"
	"prerot/wsi"
)

// Surface implements driver.Surface.
// The pixel format, presenting queue family and the fixed
// render resources are chosen once, here; only extent and
// pre-transform vary afterwards.
type Surface struct {
	dev  *Device
	surf vk.Surface

	format     vk.Format
	colorSpace vk.ColorSpace

	renderPass     vk.RenderPass
	descLayout     vk.DescriptorSetLayout
	descPool       vk.DescriptorPool
	descSet        vk.DescriptorSet
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	sampler vk.Sampler
	texImg  vk.Image
	texMem  vk.DeviceMemory
	texView vk.ImageView

	vertBuf vk.Buffer
	vertMem vk.DeviceMemory
}

// NewSurface creates the presentation surface for win and
// the fixed render resources described by p.
// win must be able to create a Vulkan surface for itself.
func (d *Device) NewSurface(win wsi.Window, p *driver.RenderParams) (driver.Surface, error) {
	if d.surf != nil {
		return nil, errors.New("vk: device already presents to a surface")
	}
	src, ok := win.(wsi.SurfaceSource)
	if !ok {
		return nil, driver.ErrWindow
	}
	ptr, err := src.CreateSurface(unsafe.Pointer(d.drv.inst))
	if err != nil {
		return nil, errors.Join(driver.ErrWindow, err)
	}
	s := &Surface{dev: d, surf: vk.SurfaceFromPointer(ptr)}

	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(d.gpu, d.qfam, s.surf, &supported)
	if err := checkResult(ret); err != nil {
		s.Destroy()
		return nil, err
	}
	if supported == vk.False {
		s.Destroy()
		return nil, driver.ErrCannotPresent
	}
	if err := s.pickFormat(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.initFixed(p); err != nil {
		s.Destroy()
		return nil, err
	}
	d.surf = s
	return s, nil
}

// pickFormat selects the 8-bit RGBA format the quad
// pipeline renders into. Not finding it is fatal; there is
// no degraded mode.
func (s *Surface) pickFormat() error {
	var n uint32
	if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(s.dev.gpu, s.surf, &n, nil)); err != nil {
		return err
	}
	formats := make([]vk.SurfaceFormat, n)
	if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(s.dev.gpu, s.surf, &n, formats)); err != nil {
		return err
	}
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatR8g8b8a8Unorm || formats[i].Format == vk.FormatB8g8r8a8Unorm {
			s.format = formats[i].Format
			s.colorSpace = formats[i].ColorSpace
			return nil
		}
	}
	return driver.ErrCannotPresent
}

// Probe queries the surface's current extent and
// pre-transform.
func (s *Surface) Probe() (driver.SurfaceInfo, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(s.dev.gpu, s.surf, &caps)
	if err := checkResult(ret); err != nil {
		return driver.SurfaceInfo{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	return driver.SurfaceInfo{
		Width:     int(caps.CurrentExtent.Width),
		Height:    int(caps.CurrentExtent.Height),
		Transform: convTransform(caps.CurrentTransform),
	}, nil
}

// NewSwapchain creates a swapchain for this surface, chained
// to old when given so the platform can reuse internal
// resources.
func (s *Surface) NewSwapchain(info driver.SwapchainInfo, old driver.Swapchain) (driver.Swapchain, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(s.dev.gpu, s.surf, &caps)
	if err := checkResult(ret); err != nil {
		return nil, err
	}
	caps.Deref()

	minImages := uint32(info.MinImages)
	if minImages < caps.MinImageCount {
		minImages = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && minImages > caps.MaxImageCount {
		minImages = caps.MaxImageCount
	}
	alpha := vk.CompositeAlphaFlagBits(vk.CompositeAlphaOpaqueBit)
	if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(alpha) == 0 {
		alpha = vk.CompositeAlphaInheritBit
	}
	var oldSC vk.Swapchain
	if old != nil {
		oldSC = old.(*swapchain).sc
	}

	var sc vk.Swapchain
	ret = vk.CreateSwapchain(s.dev.dev, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.surf,
		MinImageCount:    minImages,
		ImageFormat:      s.format,
		ImageColorSpace:  s.colorSpace,
		ImageExtent:      vk.Extent2D{Width: uint32(info.Width), Height: uint32(info.Height)},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     convToVkTransform(info.Transform),
		CompositeAlpha:   alpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.False,
		OldSwapchain:     oldSC,
	}, nil, &sc)
	if err := checkResult(ret); err != nil {
		return nil, errors.Join(driver.ErrSwapchain, err)
	}

	var n uint32
	if err := checkResult(vk.GetSwapchainImages(s.dev.dev, sc, &n, nil)); err != nil {
		vk.DestroySwapchain(s.dev.dev, sc, nil)
		return nil, err
	}
	images := make([]vk.Image, n)
	if err := checkResult(vk.GetSwapchainImages(s.dev.dev, sc, &n, images)); err != nil {
		vk.DestroySwapchain(s.dev.dev, sc, nil)
		return nil, err
	}
	return &swapchain{
		surf:   s,
		sc:     sc,
		images: images,
		width:  uint32(info.Width),
		height: uint32(info.Height),
	}, nil
}

// Destroy releases the surface and its fixed resources.
// All swapchains created from it must be gone already.
func (s *Surface) Destroy() {
	d := s.dev
	if s.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(d.dev, s.pipeline, nil)
		s.pipeline = vk.NullPipeline
	}
	if s.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(d.dev, s.pipelineLayout, nil)
		s.pipelineLayout = vk.NullPipelineLayout
	}
	if s.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.dev, s.descPool, nil)
		s.descPool = vk.NullDescriptorPool
	}
	if s.descLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.dev, s.descLayout, nil)
		s.descLayout = vk.NullDescriptorSetLayout
	}
	if s.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.dev, s.renderPass, nil)
		s.renderPass = vk.NullRenderPass
	}
	if s.sampler != vk.NullSampler {
		vk.DestroySampler(d.dev, s.sampler, nil)
		s.sampler = vk.NullSampler
	}
	if s.texView != vk.NullImageView {
		vk.DestroyImageView(d.dev, s.texView, nil)
		s.texView = vk.NullImageView
	}
	if s.texImg != vk.NullImage {
		vk.DestroyImage(d.dev, s.texImg, nil)
		s.texImg = vk.NullImage
	}
	if s.texMem != vk.NullDeviceMemory {
		vk.FreeMemory(d.dev, s.texMem, nil)
		s.texMem = vk.NullDeviceMemory
	}
	if s.vertBuf != vk.NullBuffer {
		vk.DestroyBuffer(d.dev, s.vertBuf, nil)
		s.vertBuf = vk.NullBuffer
	}
	if s.vertMem != vk.NullDeviceMemory {
		vk.FreeMemory(d.dev, s.vertMem, nil)
		s.vertMem = vk.NullDeviceMemory
	}
	if s.surf != vk.NullSurface {
		vk.DestroySurface(d.drv.inst, s.surf, nil)
		s.surf = vk.NullSurface
	}
	if d.surf == s {
		d.surf = nil
	}
}

// swapchain implements driver.Swapchain.
type swapchain struct {
	surf   *Surface
	sc     vk.Swapchain
	images []vk.Image
	width  uint32
	height uint32
}

func (sc *swapchain) ImageCount() int { return len(sc.images) }

// NewTarget creates the view and framebuffer for the image
// at index.
func (sc *swapchain) NewTarget(index int) (driver.Target, error) {
	d := sc.surf.dev
	var view vk.ImageView
	ret := vk.CreateImageView(d.dev, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    sc.images[index],
		ViewType: vk.ImageViewType2d,
		Format:   sc.surf.format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := checkResult(ret); err != nil {
		return nil, err
	}
	var fb vk.Framebuffer
	ret = vk.CreateFramebuffer(d.dev, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      sc.surf.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view},
		Width:           sc.width,
		Height:          sc.height,
		Layers:          1,
	}, nil, &fb)
	if err := checkResult(ret); err != nil {
		vk.DestroyImageView(d.dev, view, nil)
		return nil, err
	}
	return &target{dev: d, view: view, fb: fb}, nil
}

// Acquire requests the next presentable image index.
// A suboptimal swapchain still acquires successfully; the
// staleness is reported at present time.
func (sc *swapchain) Acquire(sig driver.Semaphore) (int, error) {
	var index uint32
	ret := vk.AcquireNextImage(sc.surf.dev.dev, sc.sc, math.MaxUint64,
		sig.(*semaphore).sem, vk.NullFence, &index)
	switch ret {
	case vk.Success, vk.Suboptimal:
		return int(index), nil
	default:
		return 0, checkResult(ret)
	}
}

// Present requests presentation of the image at index.
// Suboptimal and out-of-date results are not errors; they
// report that a rebuild is due.
func (sc *swapchain) Present(index int, wait driver.Semaphore) (bool, error) {
	ret := vk.QueuePresent(sc.surf.dev.queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(*semaphore).sem},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.sc},
		PImageIndices:      []uint32{uint32(index)},
	})
	switch ret {
	case vk.Success:
		return false, nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return true, nil
	default:
		return false, checkResult(ret)
	}
}

func (sc *swapchain) Destroy() {
	if sc.sc != vk.NullSwapchain {
		vk.DestroySwapchain(sc.surf.dev.dev, sc.sc, nil)
		sc.sc = vk.NullSwapchain
	}
}

// target implements driver.Target.
type target struct {
	dev  *Device
	view vk.ImageView
	fb   vk.Framebuffer
}

func (t *target) Destroy() {
	if t.fb != vk.NullFramebuffer {
		vk.DestroyFramebuffer(t.dev.dev, t.fb, nil)
		t.fb = vk.NullFramebuffer
	}
	if t.view != vk.NullImageView {
		vk.DestroyImageView(t.dev.dev, t.view, nil)
		t.view = vk.NullImageView
	}
}
