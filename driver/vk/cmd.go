// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"prerot/driver"
)

// cmdBuffer implements driver.CmdBuffer.
// Passes recorded through it always target the surface's
// single render pass and quad pipeline.
type cmdBuffer struct {
	dev *Device
	cb  vk.CommandBuffer
}

// NewCmdBuffer allocates a primary command buffer from the
// device pool.
func (d *Device) NewCmdBuffer() (driver.CmdBuffer, error) {
	cbs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cbs)
	if err := checkResult(ret); err != nil {
		return nil, err
	}
	return &cmdBuffer{dev: d, cb: cbs[0]}, nil
}

func (c *cmdBuffer) Begin() error {
	return checkResult(vk.BeginCommandBuffer(c.cb, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}))
}

func (c *cmdBuffer) BeginPass(t driver.Target, width, height int, clear [4]float32) {
	vk.CmdBeginRenderPass(c.cb, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  c.dev.surf.renderPass,
		Framebuffer: t.(*target).fb,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: vk.Extent2D{Width: uint32(width), Height: uint32(height)},
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clear[:])},
	}, vk.SubpassContentsInline)
}

func (c *cmdBuffer) SetViewport(width, height int) {
	vk.CmdSetViewport(c.cb, 0, 1, []vk.Viewport{{
		Width:    float32(width),
		Height:   float32(height),
		MaxDepth: 1,
	}})
}

func (c *cmdBuffer) SetScissor(width, height int) {
	vk.CmdSetScissor(c.cb, 0, 1, []vk.Rect2D{{
		Extent: vk.Extent2D{Width: uint32(width), Height: uint32(height)},
	}})
}

func (c *cmdBuffer) SetConstants(dc *driver.DrawConstants) {
	vk.CmdPushConstants(c.cb, c.dev.surf.pipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, uint32(unsafe.Sizeof(*dc)), unsafe.Pointer(dc))
}

func (c *cmdBuffer) SetPipeline() {
	s := c.dev.surf
	vk.CmdBindPipeline(c.cb, vk.PipelineBindPointGraphics, s.pipeline)
	vk.CmdBindDescriptorSets(c.cb, vk.PipelineBindPointGraphics,
		s.pipelineLayout, 0, 1, []vk.DescriptorSet{s.descSet}, 0, nil)
	vk.CmdBindVertexBuffers(c.cb, 0, 1, []vk.Buffer{s.vertBuf}, []vk.DeviceSize{0})
}

func (c *cmdBuffer) Draw(vertCount int) {
	vk.CmdDraw(c.cb, uint32(vertCount), 1, 0, 0)
}

func (c *cmdBuffer) EndPass() {
	vk.CmdEndRenderPass(c.cb)
}

func (c *cmdBuffer) End() error {
	return checkResult(vk.EndCommandBuffer(c.cb))
}

func (c *cmdBuffer) Destroy() {
	if c.cb != nil {
		vk.FreeCommandBuffers(c.dev.dev, c.dev.cmdPool, 1, []vk.CommandBuffer{c.cb})
		c.cb = nil
	}
}
