// Package materials implements the metallic-roughness material model:
// five channels (base color, metallic-roughness, occlusion, emissive,
// normal), each resolving to a constant factor, a texture sample, or
// their product.
package materials

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
	"gltf-shade/textures"
)

// Channel is one material channel's texture binding. A zero Channel is
// the "absent" state: the channel resolves to its factor alone. When a
// texture is bound, UVSet selects which of the mesh's two UV sets feeds
// the sample.
type Channel struct {
	Texture *textures.Texture
	UVSet   int // 0 or 1
}

// Bound reports whether a texture is bound to the channel.
func (c Channel) Bound() bool {
	return c.Texture != nil
}

// uv picks the channel's UV set from the fragment's two candidates.
func (c Channel) uv(uv0, uv1 mgl32.Vec2) mgl32.Vec2 {
	if c.UVSet == 1 {
		return uv1
	}
	return uv0
}

// sample fetches the bound texture at the selected UV set. Calling
// sample on an unbound channel is a programming error upstream; the
// nil dereference is deliberate rather than masked.
func (c Channel) sample(uv0, uv1 mgl32.Vec2) mgl32.Vec4 {
	return c.Texture.Sample(c.uv(uv0, uv1))
}

// Material holds the per-draw material factors and channel bindings.
// Configured once at setup; read-only during shading.
type Material struct {
	Name string

	BaseColorFactor   core.Color
	EmissiveFactor    mgl32.Vec3
	RoughnessFactor   float32
	MetallicFactor    float32
	OcclusionStrength float32
	NormalScale       float32

	BaseColor         Channel
	MetallicRoughness Channel
	Occlusion         Channel
	Emissive          Channel
	Normal            Channel
}

// Default returns the material used when a primitive names none:
// opaque white, fully rough, non-metallic defaults per the glTF
// specification, all channels unbound.
func Default() *Material {
	return &Material{
		Name:              "default",
		BaseColorFactor:   core.ColorWhite,
		RoughnessFactor:   1,
		MetallicFactor:    1,
		OcclusionStrength: 1,
		NormalScale:       1,
	}
}

// Resolved carries every channel of a material evaluated at one
// fragment's UV coordinates. NormalSample is the raw [0,1] texture
// value; tangent-space decoding happens in the normal reconstructor.
type Resolved struct {
	BaseColor    mgl32.Vec4
	Roughness    float32
	Metallic     float32
	Occlusion    float32
	Emissive     mgl32.Vec3
	NormalSample mgl32.Vec3
	NormalScale  float32
	HasNormal    bool
}

// Sample resolves all five channels at the given UV sets.
func (m *Material) Sample(uv0, uv1 mgl32.Vec2) Resolved {
	r := Resolved{
		BaseColor:   m.ResolveBaseColor(uv0, uv1),
		Emissive:    m.ResolveEmissive(uv0, uv1),
		Occlusion:   m.ResolveOcclusion(uv0, uv1),
		NormalScale: m.NormalScale,
	}
	r.Roughness, r.Metallic = m.ResolveRoughnessMetallic(uv0, uv1)
	r.NormalSample, r.HasNormal = m.ResolveNormal(uv0, uv1)
	return r
}

// ResolveBaseColor returns factor × texture (RGBA).
func (m *Material) ResolveBaseColor(uv0, uv1 mgl32.Vec2) mgl32.Vec4 {
	factor := m.BaseColorFactor.Vec4()
	if !m.BaseColor.Bound() {
		return factor
	}
	s := m.BaseColor.sample(uv0, uv1)
	return mgl32.Vec4{
		factor.X() * s.X(),
		factor.Y() * s.Y(),
		factor.Z() * s.Z(),
		factor.W() * s.W(),
	}
}

// ResolveRoughnessMetallic returns the roughness and metallic scalars.
// Per the glTF convention the texture's green channel carries roughness
// and blue carries metallic; factors multiply the sampled values.
func (m *Material) ResolveRoughnessMetallic(uv0, uv1 mgl32.Vec2) (roughness, metallic float32) {
	roughness = m.RoughnessFactor
	metallic = m.MetallicFactor
	if m.MetallicRoughness.Bound() {
		s := m.MetallicRoughness.sample(uv0, uv1)
		roughness *= s.Y()
		metallic *= s.Z()
	}
	return roughness, metallic
}

// ResolveOcclusion returns the ambient-occlusion multiplier using the
// affine remap 1 + strength·(sampled − 1): strength 0 disables
// occlusion darkening entirely, strength 1 applies the texture as-is.
// Unbound channels occlude nothing.
func (m *Material) ResolveOcclusion(uv0, uv1 mgl32.Vec2) float32 {
	if !m.Occlusion.Bound() {
		return 1
	}
	sampled := m.Occlusion.sample(uv0, uv1).X()
	return 1 + m.OcclusionStrength*(sampled-1)
}

// ResolveEmissive returns factor × texture (RGB).
func (m *Material) ResolveEmissive(uv0, uv1 mgl32.Vec2) mgl32.Vec3 {
	if !m.Emissive.Bound() {
		return m.EmissiveFactor
	}
	s := m.Emissive.sample(uv0, uv1)
	return mgl32.Vec3{
		m.EmissiveFactor.X() * s.X(),
		m.EmissiveFactor.Y() * s.Y(),
		m.EmissiveFactor.Z() * s.Z(),
	}
}

// ResolveNormal returns the raw [0,1] normal-map sample and whether the
// channel is active.
func (m *Material) ResolveNormal(uv0, uv1 mgl32.Vec2) (mgl32.Vec3, bool) {
	if !m.Normal.Bound() {
		return mgl32.Vec3{}, false
	}
	s := m.Normal.sample(uv0, uv1)
	return mgl32.Vec3{s.X(), s.Y(), s.Z()}, true
}
