package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/env"
	"gltf-shade/materials"
	"gltf-shade/scene"
	"gltf-shade/vmath"
)

// LightingMode selects which lighting terms the pipeline evaluates.
type LightingMode int

const (
	// LightingUnlit outputs the resolved base color plus emissive.
	LightingUnlit LightingMode = iota
	// LightingDirect evaluates analytic lights only.
	LightingDirect
	// LightingIBL adds the environment probe's ambient term.
	LightingIBL
)

// Pipeline is one parameterized shading configuration. A single
// pipeline value serves every fragment of a draw call; it holds no
// per-fragment state.
type Pipeline struct {
	Mode    LightingMode
	ToneMap ToneMapOperator
	Probe   *env.Probe // required when Mode == LightingIBL
	Lights  []*scene.Light
	EyePos  mgl32.Vec3
}

// Fragment is the interpolated geometry arriving at one shading point.
type Fragment struct {
	WorldPos mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4 // w = handedness; zero vector when absent
	UV0      mgl32.Vec2
	UV1      mgl32.Vec2
}

// BuildSample resolves a material at the fragment's UVs and
// reconstructs the shading normal.
func BuildSample(mat *materials.Material, frag Fragment) MaterialSample {
	r := mat.Sample(frag.UV0, frag.UV1)

	hasNormalMap := r.HasNormal && frag.Tangent.Vec3().Len() > vmath.Epsilon
	normal := ReconstructNormal(frag.Normal, frag.Tangent, r.NormalSample, r.NormalScale, hasNormalMap)

	return MaterialSample{
		Albedo:    r.BaseColor.Vec3(),
		Alpha:     r.BaseColor.W(),
		Roughness: r.Roughness,
		Metallic:  r.Metallic,
		AO:        r.Occlusion,
		Emissive:  r.Emissive,
		Normal:    normal,
	}
}

// Shade evaluates one fragment: radiance accumulation followed by tone
// mapping. Alpha is fixed at 1. Pure in all inputs, so fragments can be
// shaded from any number of goroutines concurrently.
func (p *Pipeline) Shade(mat *materials.Material, frag Fragment) mgl32.Vec4 {
	sample := BuildSample(mat, frag)
	radiance := p.ShadeSample(sample, frag.WorldPos)
	mapped := ToneMap(p.ToneMap, radiance)
	return mapped.Vec4(1)
}

// ShadeSample accumulates radiance for an already-resolved material
// sample.
func (p *Pipeline) ShadeSample(sample MaterialSample, worldPos mgl32.Vec3) mgl32.Vec3 {
	if p.Mode == LightingUnlit {
		return sample.Albedo.Add(sample.Emissive)
	}

	viewDir := vmath.SafeNormalize(p.EyePos.Sub(worldPos), sample.Normal)

	radiance := AccumulateDirect(sample, worldPos, viewDir, p.Lights)
	if p.Mode == LightingIBL && p.Probe != nil {
		radiance = radiance.Add(EvaluateIBL(sample, viewDir, p.Probe))
	} else {
		// Without a probe the emissive term still has to reach the
		// output.
		radiance = radiance.Add(sample.Emissive)
	}
	return radiance
}
