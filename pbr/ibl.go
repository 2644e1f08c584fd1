package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/env"
	"gltf-shade/vmath"
)

// EvaluateIBL computes the ambient contribution from an environment
// probe using the split-sum approximation: a cosine-convolved
// irradiance lookup for diffuse, and prefiltered radiance times the
// BRDF LUT response for specular. Occlusion attenuates both; emissive
// is added unattenuated.
func EvaluateIBL(mat MaterialSample, viewDir mgl32.Vec3, probe *env.Probe) mgl32.Vec3 {
	n := vmath.SafeNormalize(mat.Normal, mgl32.Vec3{0, 0, 1})
	v := vmath.SafeNormalize(viewDir, n)
	r := vmath.Reflect(v.Mul(-1), n)

	nDotV := vmath.ClampCos(n.Dot(v))
	f0 := F0(mat.Albedo, mat.Metallic)
	f := FresnelSchlickRoughness(nDotV, mat.Roughness, f0)

	kd := vmath.Splat(1).Sub(f).Mul(1 - mat.Metallic)
	irradiance := probe.SampleIrradiance(n)
	diffuse := vmath.MulV3(vmath.MulV3(irradiance, mat.Albedo), kd)

	prefiltered := probe.SamplePrefiltered(r, mat.Roughness)
	scale, bias := probe.SampleBRDF(nDotV, mat.Roughness)
	specular := vmath.MulV3(prefiltered, f.Mul(scale).Add(vmath.Splat(bias)))

	ambient := diffuse.Add(specular).Mul(mat.AO)
	return ambient.Add(mat.Emissive)
}
