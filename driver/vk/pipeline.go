// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

package vk

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"prerot/driver"
)

// initFixed creates the render resources that outlive every
// swapchain: render pass, descriptor set, pipeline, sampled
// texture and the quad's vertex buffer.
func (s *Surface) initFixed(p *driver.RenderParams) error {
	if err := s.initRenderPass(); err != nil {
		return err
	}
	if err := s.initLayouts(); err != nil {
		return err
	}
	if err := s.initPipeline(p.VertSPV, p.FragSPV); err != nil {
		return err
	}
	if err := s.initTexture(p.Pix, p.Width, p.Height); err != nil {
		return err
	}
	if err := s.initVertexBuffer(); err != nil {
		return err
	}
	return s.initDescriptors()
}

// initRenderPass creates the single-subpass render pass that
// clears its one color attachment and hands it off for
// presentation.
func (s *Surface) initRenderPass() error {
	var rp vk.RenderPass
	ret := vk.CreateRenderPass(s.dev.dev, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.AttachmentDescription{{
			Format:         s.format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		}},
		SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vk.AttachmentReference{{
				Attachment: 0,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			}},
		}},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask: 0,
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		}},
	}, nil, &rp)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.renderPass = rp
	return nil
}

// initLayouts creates the descriptor set layout for the one
// sampled texture and the pipeline layout whose push range
// carries the draw constants.
func (s *Surface) initLayouts() error {
	var dl vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(s.dev.dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
	}, nil, &dl)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.descLayout = dl

	var pl vk.PipelineLayout
	ret = vk.CreatePipelineLayout(s.dev.dev, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{dl},
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       uint32(unsafe.Sizeof(driver.DrawConstants{})),
		}},
	}, nil, &pl)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.pipelineLayout = pl
	return nil
}

// initPipeline creates the textured quad pipeline. The quad
// comes in as a 4-vertex triangle strip of interleaved
// position/UV pairs; viewport and scissor are dynamic so a
// swapchain rebuild does not recreate the pipeline.
func (s *Surface) initPipeline(vertSPV, fragSPV []byte) error {
	vert, err := s.newShaderModule(vertSPV)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(s.dev.dev, vert, nil)
	frag, err := s.newShaderModule(fragSPV)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(s.dev.dev, frag, nil)

	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(s.dev.dev, vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{{
			SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount: 2,
			PStages: []vk.PipelineShaderStageCreateInfo{
				{
					SType:  vk.StructureTypePipelineShaderStageCreateInfo,
					Stage:  vk.ShaderStageVertexBit,
					Module: vert,
					PName:  "main\x00",
				},
				{
					SType:  vk.StructureTypePipelineShaderStageCreateInfo,
					Stage:  vk.ShaderStageFragmentBit,
					Module: frag,
					PName:  "main\x00",
				},
			},
			PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
				SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
				VertexBindingDescriptionCount: 1,
				PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
					Binding:   0,
					Stride:    4 * 4,
					InputRate: vk.VertexInputRateVertex,
				}},
				VertexAttributeDescriptionCount: 2,
				PVertexAttributeDescriptions: []vk.VertexInputAttributeDescription{
					{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
					{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 8},
				},
			},
			PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
				SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
				Topology: vk.PrimitiveTopologyTriangleStrip,
			},
			PViewportState: &vk.PipelineViewportStateCreateInfo{
				SType:         vk.StructureTypePipelineViewportStateCreateInfo,
				ViewportCount: 1,
				ScissorCount:  1,
			},
			PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
				SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
				PolygonMode: vk.PolygonModeFill,
				CullMode:    vk.CullModeFlags(vk.CullModeNone),
				FrontFace:   vk.FrontFaceCounterClockwise,
				LineWidth:   1,
			},
			PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
				SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
				RasterizationSamples: vk.SampleCount1Bit,
			},
			PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
				SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
				AttachmentCount: 1,
				PAttachments: []vk.PipelineColorBlendAttachmentState{{
					ColorWriteMask: vk.ColorComponentFlags(
						vk.ColorComponentRBit | vk.ColorComponentGBit |
							vk.ColorComponentBBit | vk.ColorComponentABit),
				}},
			},
			PDynamicState: &vk.PipelineDynamicStateCreateInfo{
				SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
				DynamicStateCount: 2,
				PDynamicStates: []vk.DynamicState{
					vk.DynamicStateViewport,
					vk.DynamicStateScissor,
				},
			},
			Layout:     s.pipelineLayout,
			RenderPass: s.renderPass,
		}}, nil, pipelines)
	if err := checkResult(ret); err != nil {
		return err
	}
	s.pipeline = pipelines[0]
	return nil
}

func (s *Surface) newShaderModule(code []byte) (vk.ShaderModule, error) {
	var mod vk.ShaderModule
	ret := vk.CreateShaderModule(s.dev.dev, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    spvWords(code),
	}, nil, &mod)
	if err := checkResult(ret); err != nil {
		return vk.NullShaderModule, err
	}
	return mod, nil
}

// spvWords reinterprets 4-byte aligned SPIR-V bytes as words.
// The length is validated before the code reaches the driver.
func spvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) | uint32(code[i*4+1])<<8 |
			uint32(code[i*4+2])<<16 | uint32(code[i*4+3])<<24
	}
	return words
}
