package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexAttribute is one bit of a model's vertex-attribute requirement
// set, the first half of a geometry-pass pipeline fingerprint.
type VertexAttribute uint32

const (
	VertexAttributePosition VertexAttribute = 1 << iota
	VertexAttributeNormal
	VertexAttributeTexCoord
	VertexAttributeTangent
	VertexAttributeColor
)

// MaterialShaderInput names the material-side half of a pipeline
// fingerprint: which property bindings the model's material exposes.
// Distinct material inputs need distinct shader permutations even when
// their vertex-attribute requirements coincide.
type MaterialShaderInput struct {
	HasTextures     bool
	FeatureBindings uint32
}

// Fingerprint is the (vertex-attribute requirement set, material
// shader input) pair used as the pipeline-bucketing map key, per
// §4.11 and the glossary's "Fingerprint" entry.
type Fingerprint struct {
	VertexAttributes VertexAttribute
	MaterialInput    MaterialShaderInput
}

// ModelID is an opaque handle to one renderable model, matching the
// scene-authoring handle style described in §6 (opaque 64-bit values).
type ModelID uint64

// ShaderTemplate identifies the shader permutation a fingerprint
// compiles to; opaque to this package beyond comparison/lookup.
type ShaderTemplate = Fingerprint

// PipelineFactory builds the actual render pipeline for a fingerprint.
// Kept as an interface so the pure bucketing logic in GeometryPass can
// be exercised without a real graphics device.
type PipelineFactory interface {
	CreatePipeline(fingerprint Fingerprint) (*wgpu.RenderPipeline, error)
}

type geometryPassPipeline struct {
	pipeline         *wgpu.RenderPipeline
	vertexAttributes VertexAttribute
	models           map[ModelID]struct{}
}

// ModelSource tells the geometry pass which models currently have
// buffered instance transforms with a non-empty initial range, and
// what each one's fingerprint is. Grounded on
// BasicRenderResources::instance_feature_buffer_managers and
// ModelGeometryShaderInput::for_material in geometry_pass.rs.
type ModelSource interface {
	BufferedModels() []ModelID
	FingerprintFor(model ModelID) (Fingerprint, bool)
}

// GeometryPass fills the G-buffer color attachments and the
// depth/stencil map, bucketing models by pipeline fingerprint so
// models sharing a fingerprint are drawn by the same pipeline.
// Grounded on impact_rendering/render_command/geometry_pass.rs's
// GeometryPass, generalized here since the teacher has no equivalent
// (its GBuffer passes are written against a single fixed voxel-raytracer
// pipeline, never bucketed by model).
type GeometryPass struct {
	factory      PipelineFactory
	polygonMode  wgpu.PolygonMode
	pipelines    map[Fingerprint]*geometryPassPipeline
	modelToPrint map[ModelID]Fingerprint
}

// NewGeometryPass creates an empty geometry pass. wireframe selects
// the teacher's debug line polygon mode instead of fill and stores it
// on the pass; the mode is not passed to PipelineFactory.CreatePipeline,
// which receives only the fingerprint, so it does not reach the
// pipelines the factory builds.
func NewGeometryPass(factory PipelineFactory, wireframe bool) *GeometryPass {
	mode := wgpu.PolygonModeFill
	if wireframe {
		mode = wgpu.PolygonModeLine
	}
	return &GeometryPass{
		factory:      factory,
		polygonMode:  mode,
		pipelines:    make(map[Fingerprint]*geometryPassPipeline),
		modelToPrint: make(map[ModelID]Fingerprint),
	}
}

// NPipelines reports how many distinct fingerprints currently have a
// pipeline bucket.
func (g *GeometryPass) NPipelines() int { return len(g.pipelines) }

// ModelsFor returns the model ids currently bucketed under
// fingerprint, for tests and diagnostics.
func (g *GeometryPass) ModelsFor(fp Fingerprint) []ModelID {
	bucket, ok := g.pipelines[fp]
	if !ok {
		return nil
	}
	out := make([]ModelID, 0, len(bucket.models))
	for id := range bucket.models {
		out = append(out, id)
	}
	return out
}

// Sync implements the two-step procedure from §4.11:
//  1. remove models no longer present in the instance-feature buffer
//     map (source.BufferedModels());
//  2. for every remaining buffered model, ensure a pipeline exists for
//     its fingerprint, creating one via the factory if not.
func (g *GeometryPass) Sync(source ModelSource) error {
	buffered := make(map[ModelID]struct{}, len(source.BufferedModels()))
	for _, id := range source.BufferedModels() {
		buffered[id] = struct{}{}
	}

	for fp, bucket := range g.pipelines {
		for id := range bucket.models {
			if _, stillBuffered := buffered[id]; !stillBuffered {
				delete(bucket.models, id)
				delete(g.modelToPrint, id)
			}
		}
		if len(bucket.models) == 0 {
			delete(g.pipelines, fp)
		}
	}

	for id := range buffered {
		if _, already := g.modelToPrint[id]; already {
			continue
		}
		fp, ok := source.FingerprintFor(id)
		if !ok {
			continue
		}
		bucket, exists := g.pipelines[fp]
		if !exists {
			pipeline, err := g.factory.CreatePipeline(fp)
			if err != nil {
				return fmt.Errorf("gpu: create geometry pass pipeline for fingerprint %+v: %w", fp, err)
			}
			bucket = &geometryPassPipeline{
				pipeline:         pipeline,
				vertexAttributes: fp.VertexAttributes,
				models:           make(map[ModelID]struct{}),
			}
			g.pipelines[fp] = bucket
		}
		bucket.models[id] = struct{}{}
		g.modelToPrint[id] = fp
	}
	return nil
}

// PushConstants are the three push-constant slots named in §4.11. Each
// is a pointer so an absent slot (nil) is silently skipped when the
// active shader variant doesn't declare it, per "push constants are
// keyed by variant so omitted push-constant slots in a shader are
// silently skipped."
type PushConstants struct {
	InverseWindowDimensions *[2]float32
	FrameCounter            *uint32
	Exposure                *float32
}

// ModelDrawInputs carries everything Record needs to bind and draw one
// model: its optional material texture bind group, its vertex buffers
// (transform, optional material property buffer, then mesh attribute
// buffers), its index buffer, and the instance range to draw (the
// transform buffer's initial range).
type ModelDrawInputs struct {
	MaterialTextureGroup *wgpu.BindGroup
	VertexBuffers        []*wgpu.Buffer
	IndexBuffer          *wgpu.Buffer
	IndexCount           uint32
	InstanceRange        Range
}

// RecordInputs supplies Record with the data that isn't already owned
// by the geometry pass itself: the target encoder, camera bind group,
// stencil value for physical models, push constants, and a lookup from
// model id to its draw inputs.
type RecordInputs struct {
	Encoder            *wgpu.CommandEncoder
	ColorAttachments   []wgpu.RenderPassColorAttachment
	DepthStencil       wgpu.RenderPassDepthStencilAttachment
	CameraBindGroup    *wgpu.BindGroup
	StencilReference   uint32
	PushConstants      PushConstants
	DrawInputsForModel func(ModelID) (ModelDrawInputs, bool)
}

// Record begins a single render pass with the G-buffer color
// attachments cleared and the depth-stencil attachment loaded, binds
// the camera uniforms, and for each pipeline binds it once and issues
// one indexed draw call per model in its bucket, skipping models whose
// instance range is empty.
func (g *GeometryPass) Record(in RecordInputs) error {
	pass := in.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:                  "Geometry pass",
		ColorAttachments:       in.ColorAttachments,
		DepthStencilAttachment: &in.DepthStencil,
	})
	defer pass.End()

	pass.SetStencilReference(in.StencilReference)
	pass.SetBindGroup(0, in.CameraBindGroup, nil)

	for _, bucket := range g.pipelines {
		pass.SetPipeline(bucket.pipeline)
		setPushConstantsIfPresent(pass, in.PushConstants)

		for id := range bucket.models {
			draw, ok := in.DrawInputsForModel(id)
			if !ok || draw.InstanceRange.IsEmpty() {
				continue
			}
			if draw.MaterialTextureGroup != nil {
				pass.SetBindGroup(1, draw.MaterialTextureGroup, nil)
			}
			for slot, vb := range draw.VertexBuffers {
				pass.SetVertexBuffer(uint32(slot), vb, 0, wgpu.WholeSize)
			}
			pass.SetIndexBuffer(draw.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(draw.IndexCount, draw.InstanceRange.End-draw.InstanceRange.Start, 0, 0, draw.InstanceRange.Start)
		}
	}
	return nil
}

// setPushConstantsIfPresent pushes each non-nil push-constant slot.
// The shader's layout determines which ranges actually exist; a slot
// this model's pipeline doesn't declare a range for is harmlessly
// ignored by the device, matching the "silently skipped" contract.
func setPushConstantsIfPresent(pass *wgpu.RenderPassEncoder, pc PushConstants) {
	offset := uint32(0)
	if pc.InverseWindowDimensions != nil {
		data := float32PairToBytes(*pc.InverseWindowDimensions)
		pass.SetPushConstants(wgpu.ShaderStageFragment, offset, data)
		offset += uint32(len(data))
	}
	if pc.FrameCounter != nil {
		data := uint32ToBytes(*pc.FrameCounter)
		pass.SetPushConstants(wgpu.ShaderStageVertex, offset, data)
		offset += uint32(len(data))
	}
	if pc.Exposure != nil {
		data := float32ToBytes(*pc.Exposure)
		pass.SetPushConstants(wgpu.ShaderStageFragment, offset, data)
	}
}
