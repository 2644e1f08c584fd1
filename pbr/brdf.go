// Package pbr is the metallic-roughness shading core: Cook-Torrance
// direct lighting, split-sum image-based lighting, and the tone-mapping
// operators that compress the result for display. Every function here
// is pure; all inputs are read-only for the duration of a call.
package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/vmath"
)

// DielectricF0 is the base reflectance of a non-metal at normal
// incidence.
var DielectricF0 = mgl32.Vec3{0.04, 0.04, 0.04}

// F0 is the characteristic reflectance: 0.04 for dielectrics, the
// albedo itself for metals.
func F0(albedo mgl32.Vec3, metallic float32) mgl32.Vec3 {
	return vmath.MixV3(DielectricF0, albedo, metallic)
}

// DistributionGGX is the Trowbridge-Reitz normal distribution with
// a = roughness².
func DistributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (vmath.Pi * d * d)
}

// GeometrySchlickGGX is the single-direction Smith visibility term.
func GeometrySchlickGGX(cosTheta, k float32) float32 {
	return cosTheta / (cosTheta*(1-k) + k)
}

// GeometrySmith joins masking and shadowing with the direct-lighting
// roughness remap k = (r+1)²/8.
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	return GeometrySchlickGGX(nDotV, k) * GeometrySchlickGGX(nDotL, k)
}

// FresnelSchlick is the Schlick reflectance approximation.
func FresnelSchlick(cosTheta float32, f0 mgl32.Vec3) mgl32.Vec3 {
	fc := vmath.Pow5(1 - vmath.Saturate(cosTheta))
	return f0.Add(vmath.Splat(1).Sub(f0).Mul(fc))
}

// FresnelSchlickRoughness caps the grazing reflectance at the
// gloss level so rough surfaces do not over-brighten at the silhouette.
// Used by the IBL diffuse/specular split.
func FresnelSchlickRoughness(cosTheta, roughness float32, f0 mgl32.Vec3) mgl32.Vec3 {
	gloss := 1 - roughness
	ceiling := mgl32.Vec3{
		max32(gloss, f0.X()),
		max32(gloss, f0.Y()),
		max32(gloss, f0.Z()),
	}
	fc := vmath.Pow5(1 - vmath.Saturate(cosTheta))
	return f0.Add(ceiling.Sub(f0).Mul(fc))
}

// EvalBRDF computes the Cook-Torrance diffuse and specular lobes for a
// single light direction. n, v, l are normalized internally; the caller
// never has to pre-normalize.
func EvalBRDF(n, v, l, albedo mgl32.Vec3, roughness, metallic float32) (diffuse, specular mgl32.Vec3) {
	n = vmath.SafeNormalize(n, mgl32.Vec3{0, 0, 1})
	v = vmath.SafeNormalize(v, n)
	l = vmath.SafeNormalize(l, n)
	h := vmath.SafeNormalize(v.Add(l), n)

	nDotV := vmath.ClampCos(n.Dot(v))
	nDotL := vmath.ClampCos(n.Dot(l))
	nDotH := vmath.Saturate(n.Dot(h))
	hDotV := vmath.Saturate(h.Dot(v))

	f0 := F0(albedo, metallic)
	d := DistributionGGX(nDotH, roughness)
	g := GeometrySmith(nDotV, nDotL, roughness)
	f := FresnelSchlick(hDotV, f0)

	specular = f.Mul(d * g / (4 * nDotV * nDotL))

	// Fresnel already spends the specular share of the energy; metals
	// have no diffuse lobe at all.
	kd := vmath.Splat(1).Sub(f).Mul(1 - metallic)
	diffuse = vmath.MulV3(kd, albedo).Mul(1 / vmath.Pi)
	return diffuse, specular
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
