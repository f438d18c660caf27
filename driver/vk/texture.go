// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"encoding/binary"
	"errors"
	"math"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// quadVerts is the textured quad as a triangle strip of
// interleaved position/UV pairs, covering clip space with
// the texture upright.
var quadVerts = []float32{
	-1, -1, 0, 0,
	-1, 1, 0, 1,
	1, -1, 1, 0,
	1, 1, 1, 1,
}

// initTexture uploads pix, an 8-bit RGBA image of the given
// size, into a device-local sampled image through a staging
// buffer, and creates the view and sampler for it.
func (s *Surface) initTexture(pix []byte, width, height int) error {
	d := s.dev
	if len(pix) != width*height*4 {
		return errors.New("vk: texture size mismatch")
	}

	staging, stagingMem, err := d.newBuffer(vk.DeviceSize(len(pix)),
		vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	defer func() {
		vk.DestroyBuffer(d.dev, staging, nil)
		vk.FreeMemory(d.dev, stagingMem, nil)
	}()
	if err := d.fillMemory(stagingMem, pix); err != nil {
		return err
	}

	var img vk.Image
	ret := vk.CreateImage(d.dev, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{
			Width:  uint32(width),
			Height: uint32(height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.texImg = img

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.dev, img, &memReqs)
	memReqs.Deref()
	mem, err := d.allocMemory(memReqs, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return err
	}
	s.texMem = mem
	if err := checkResult(vk.BindImageMemory(d.dev, img, mem, 0)); err != nil {
		return err
	}

	err = d.oneShot(func(cb vk.CommandBuffer) {
		barrier := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			OldLayout:           vk.ImageLayoutUndefined,
			NewLayout:           vk.ImageLayoutTransferDstOptimal,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
			DstAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
		}
		vk.CmdPipelineBarrier(cb,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

		vk.CmdCopyBufferToImage(cb, staging, img,
			vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
				ImageSubresource: vk.ImageSubresourceLayers{
					AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
					LayerCount: 1,
				},
				ImageExtent: vk.Extent3D{
					Width:  uint32(width),
					Height: uint32(height),
					Depth:  1,
				},
			}})

		barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
		barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		vk.CmdPipelineBarrier(cb,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	})
	if err != nil {
		return err
	}

	var view vk.ImageView
	ret = vk.CreateImageView(d.dev, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.texView = view

	var sampler vk.Sampler
	ret = vk.CreateSampler(d.dev, &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterNearest,
		MinFilter:    vk.FilterNearest,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: vk.SamplerAddressModeClampToEdge,
		AddressModeV: vk.SamplerAddressModeClampToEdge,
		AddressModeW: vk.SamplerAddressModeClampToEdge,
		MaxLod:       1,
		BorderColor:  vk.BorderColorFloatOpaqueWhite,
	}, nil, &sampler)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.sampler = sampler
	return nil
}

// initVertexBuffer creates the quad's vertex buffer in
// host-visible memory and fills it once.
func (s *Surface) initVertexBuffer() error {
	data := make([]byte, len(quadVerts)*4)
	for i, v := range quadVerts {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	buf, mem, err := s.dev.newBuffer(vk.DeviceSize(len(data)),
		vk.BufferUsageVertexBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	s.vertBuf = buf
	s.vertMem = mem
	return s.dev.fillMemory(mem, data)
}

// initDescriptors creates the descriptor pool and the one
// set binding the sampled texture.
func (s *Surface) initDescriptors() error {
	d := s.dev
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(d.dev, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
		}},
	}, nil, &pool)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.descPool = pool

	var set vk.DescriptorSet
	ret = vk.AllocateDescriptorSets(d.dev, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{s.descLayout},
	}, &set)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.descSet = set

	vk.UpdateDescriptorSets(d.dev, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     s.sampler,
			ImageView:   s.texView,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}}, 0, nil)
	return nil
}

// newBuffer creates a buffer and binds freshly allocated
// memory with the given properties to it.
func (d *Device) newBuffer(size vk.DeviceSize, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (vk.Buffer, vk.DeviceMemory, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(d.dev, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if err := checkResult(ret); err != nil {
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.dev, buf, &memReqs)
	memReqs.Deref()
	mem, err := d.allocMemory(memReqs, props)
	if err != nil {
		vk.DestroyBuffer(d.dev, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	if err := checkResult(vk.BindBufferMemory(d.dev, buf, mem, 0)); err != nil {
		vk.FreeMemory(d.dev, mem, nil)
		vk.DestroyBuffer(d.dev, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	return buf, mem, nil
}

func (d *Device) allocMemory(reqs vk.MemoryRequirements, props vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	index, ok := d.findMemoryType(reqs.MemoryTypeBits, props)
	if !ok {
		return vk.NullDeviceMemory, errors.New("vk: no suitable memory type")
	}
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(d.dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	}, nil, &mem)
	if err := checkResult(ret); err != nil {
		return vk.NullDeviceMemory, err
	}
	return mem, nil
}

// fillMemory maps host-visible memory and copies data into
// it.
func (d *Device) fillMemory(mem vk.DeviceMemory, data []byte) error {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(d.dev, mem, 0, vk.DeviceSize(len(data)), 0, &ptr)
	if err := checkResult(ret); err != nil {
		return err
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(d.dev, mem)
	return nil
}

// oneShot records a command buffer with f, submits it and
// waits for completion on the device queue.
func (d *Device) oneShot(f func(vk.CommandBuffer)) error {
	cbs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cbs)
	if err := checkResult(ret); err != nil {
		return err
	}
	defer vk.FreeCommandBuffers(d.dev, d.cmdPool, 1, cbs)

	ret = vk.BeginCommandBuffer(cbs[0], &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := checkResult(ret); err != nil {
		return err
	}
	f(cbs[0])
	if err := checkResult(vk.EndCommandBuffer(cbs[0])); err != nil {
		return err
	}
	ret = vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cbs,
	}}, vk.NullFence)
	if err := checkResult(ret); err != nil {
		return err
	}
	return checkResult(vk.QueueWaitIdle(d.queue))
}
