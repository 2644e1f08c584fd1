package env

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/textures"
	"gltf-shade/vmath"
)

// MaxReflectionLod is the prefiltered map's roughness quantization
// range: roughness r selects mip r * MaxReflectionLod.
const MaxReflectionLod = 4.0

// Probe is a precomputed lighting environment: diffuse irradiance by
// normal direction, roughness-prefiltered specular radiance by
// reflection direction, and the split-sum BRDF lookup. Immutable
// during shading.
type Probe struct {
	Irradiance  *Cubemap
	Prefiltered *Cubemap
	BRDFLUT     *textures.Texture
}

// SampleIrradiance returns cosine-convolved radiance around n.
func (p *Probe) SampleIrradiance(n mgl32.Vec3) mgl32.Vec3 {
	return p.Irradiance.Sample(n)
}

// SamplePrefiltered returns specular radiance along r at the mip level
// encoding the given roughness.
func (p *Probe) SamplePrefiltered(r mgl32.Vec3, roughness float32) mgl32.Vec3 {
	lod := vmath.Saturate(roughness) * MaxReflectionLod
	return p.Prefiltered.SampleLod(r, lod)
}

// SampleBRDF looks up the split-sum (scale, bias) pair for the given
// view cosine and roughness.
func (p *Probe) SampleBRDF(nDotV, roughness float32) (scale, bias float32) {
	uv := mgl32.Vec2{vmath.Saturate(nDotV), vmath.Saturate(roughness)}
	s := p.BRDFLUT.Sample(uv)
	return s.X(), s.Y()
}
