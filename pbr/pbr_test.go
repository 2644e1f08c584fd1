package pbr

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gltf-shade/core"
	"gltf-shade/env"
	"gltf-shade/materials"
	"gltf-shade/scene"
	"gltf-shade/textures"
	"gltf-shade/vmath"
)

func solidTexture(c mgl32.Vec4) *textures.Texture {
	return textures.NewSolid("solid", c)
}

func TestGGXPeaksAtNormalIncidence(t *testing.T) {
	// At roughness 1 the distribution is the constant 1/pi, so the
	// peak is only required to dominate, not strictly exceed.
	for _, roughness := range []float32{0.05, 0.25, 0.5, 0.75, 1} {
		peak := DistributionGGX(1, roughness)
		for _, nDotH := range []float32{0, 0.25, 0.5, 0.9, 0.99} {
			assert.GreaterOrEqual(t, peak, DistributionGGX(nDotH, roughness),
				"roughness=%v nDotH=%v", roughness, nDotH)
			if roughness < 1 {
				assert.Greater(t, peak, DistributionGGX(nDotH, roughness),
					"roughness=%v nDotH=%v", roughness, nDotH)
			}
		}
	}
}

func TestFresnelEndpoints(t *testing.T) {
	f0 := mgl32.Vec3{0.04, 0.5, 1}

	grazing := FresnelSchlick(0, f0)
	assert.InDelta(t, 1, grazing.X(), 1e-6)
	assert.InDelta(t, 1, grazing.Y(), 1e-6)
	assert.InDelta(t, 1, grazing.Z(), 1e-6)

	headOn := FresnelSchlick(1, f0)
	assert.Equal(t, f0, headOn)
}

func TestFresnelRoughnessCapsGrazing(t *testing.T) {
	f0 := mgl32.Vec3{0.04, 0.04, 0.04}
	// At roughness 1 the grazing reflectance stays at F0 instead of
	// climbing to 1.
	rough := FresnelSchlickRoughness(0, 1, f0)
	assert.InDelta(t, 0.04, rough.X(), 1e-6)
	// At roughness 0 it behaves like plain Schlick.
	smooth := FresnelSchlickRoughness(0, 0, f0)
	assert.InDelta(t, 1, smooth.X(), 1e-6)
}

func TestEnergySplitBounded(t *testing.T) {
	// kd + luminance(F) must never exceed unity (plus float tolerance).
	albedos := []mgl32.Vec3{{0, 0, 0}, {0.5, 0.5, 0.5}, {1, 1, 1}, {0.8, 0.2, 0.2}}
	for _, albedo := range albedos {
		for _, metallic := range []float32{0, 0.5, 1} {
			for _, cosTheta := range []float32{0, 0.25, 0.5, 1} {
				f := FresnelSchlick(cosTheta, F0(albedo, metallic))
				kd := vmath.Splat(1).Sub(f).Mul(1 - metallic)
				assert.LessOrEqual(t, vmath.Luminance(kd)+vmath.Luminance(f), float32(1+1e-4))
			}
		}
	}
}

func TestGeometrySmithBounded(t *testing.T) {
	for _, r := range []float32{0, 0.5, 1} {
		for _, c := range []float32{0.01, 0.5, 1} {
			g := GeometrySmith(c, c, r)
			assert.Greater(t, g, float32(0))
			assert.LessOrEqual(t, g, float32(1))
		}
	}
}

func TestReinhardProperties(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, Reinhard(mgl32.Vec3{}))

	// Monotonic per channel.
	prev := float32(-1)
	for _, c := range []float32{0, 0.1, 1, 10, 100, 1e6} {
		v := Reinhard(mgl32.Vec3{c, c, c}).X()
		assert.Greater(t, v, prev)
		assert.Less(t, v, float32(1))
		prev = v
	}
	// Approaches 1 for huge input.
	assert.InDelta(t, 1, Reinhard(mgl32.Vec3{1e7, 1e7, 1e7}).X(), 1e-5)
}

func TestPBRNeutralBelowKneePassthrough(t *testing.T) {
	// Above the offset region but below the knee: only the constant
	// 0.04 black-level offset applies.
	in := mgl32.Vec3{0.5, 0.4, 0.3}
	out := PBRNeutral(in)
	assert.InDelta(t, in.X()-0.04, out.X(), 1e-6)
	assert.InDelta(t, in.Y()-0.04, out.Y(), 1e-6)
	assert.InDelta(t, in.Z()-0.04, out.Z(), 1e-6)
}

func TestPBRNeutralBlackStaysBlack(t *testing.T) {
	out := PBRNeutral(mgl32.Vec3{})
	assert.InDelta(t, 0, out.X(), 1e-6)
	assert.InDelta(t, 0, out.Y(), 1e-6)
	assert.InDelta(t, 0, out.Z(), 1e-6)
}

func TestPBRNeutralBoundsHighlights(t *testing.T) {
	for _, c := range []mgl32.Vec3{{2, 2, 2}, {100, 1, 1}, {1e5, 1e5, 1e5}} {
		out := PBRNeutral(c)
		assert.LessOrEqual(t, vmath.MaxComp(out), float32(1.0001), "input %v", c)
	}
}

func TestPBRNeutralCompressedPeak(t *testing.T) {
	// Gray above the knee: peak = 2 - 0.04 = 1.96,
	// d = 1 - 0.76 = 0.24, newPeak = 1 - d*d/(peak + d - 0.76).
	out := PBRNeutral(mgl32.Vec3{2, 2, 2})
	peak := float32(1.96)
	d := float32(0.24)
	newPeak := 1 - d*d/(peak+d-0.76)
	assert.InDelta(t, newPeak, out.X(), 1e-5)
	// Gray input has no hue to desaturate.
	assert.InDelta(t, out.X(), out.Y(), 1e-6)
	assert.InDelta(t, out.X(), out.Z(), 1e-6)
}

func TestReconstructNormalPassthrough(t *testing.T) {
	n := ReconstructNormal(mgl32.Vec3{0, 0, 2}, mgl32.Vec4{}, mgl32.Vec3{}, 1, false)
	assert.InDelta(t, 1, n.Len(), 1e-6)
	assert.InDelta(t, 1, n.Z(), 1e-6)
}

func TestReconstructNormalFlatSample(t *testing.T) {
	// The neutral normal-map texel (0.5, 0.5, 1) must reproduce the
	// geometry normal.
	n := ReconstructNormal(
		mgl32.Vec3{0, 0, 1},
		mgl32.Vec4{1, 0, 0, 1},
		mgl32.Vec3{0.5, 0.5, 1},
		1, true)
	assert.InDelta(t, 0, n.X(), 1e-5)
	assert.InDelta(t, 0, n.Y(), 1e-5)
	assert.InDelta(t, 1, n.Z(), 1e-5)
}

func TestReconstructNormalHandedness(t *testing.T) {
	sample := mgl32.Vec3{0.5, 1, 1} // perturb toward +bitangent
	plus := ReconstructNormal(mgl32.Vec3{0, 0, 1}, mgl32.Vec4{1, 0, 0, 1}, sample, 1, true)
	minus := ReconstructNormal(mgl32.Vec3{0, 0, 1}, mgl32.Vec4{1, 0, 0, -1}, sample, 1, true)

	// Flipping tangent.w mirrors the bitangent axis.
	assert.InDelta(t, plus.Y(), -minus.Y(), 1e-5)
	assert.InDelta(t, plus.Z(), minus.Z(), 1e-5)
}

func TestHeadOnScenario(t *testing.T) {
	// albedo (0.8, 0.2, 0.2), roughness 0.5, dielectric, head-on light
	// and view: diffuse-dominated warm red, bounded highlight, tone
	// mapped strictly inside [0,1]³.
	sample := MaterialSample{
		Albedo:    mgl32.Vec3{0.8, 0.2, 0.2},
		Roughness: 0.5,
		Metallic:  0,
		AO:        1,
		Normal:    mgl32.Vec3{0, 0, 1},
	}
	light := scene.NewDirectionalLight(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 1, 1})

	p := Pipeline{
		Mode:    LightingDirect,
		ToneMap: ToneMapReinhard,
		Lights:  []*scene.Light{light},
		EyePos:  mgl32.Vec3{0, 0, 5},
	}
	out := p.ShadeSample(sample, mgl32.Vec3{})
	mapped := ToneMap(p.ToneMap, out)

	require.Greater(t, mapped.X(), float32(0))
	assert.Greater(t, mapped.X(), mapped.Y(), "red channel dominates")
	assert.InDelta(t, mapped.Y(), mapped.Z(), 1e-6, "green and blue stay equal")
	for i := 0; i < 3; i++ {
		assert.Greater(t, mapped[i], float32(0))
		assert.Less(t, mapped[i], float32(1))
	}
}

func TestAbsentChannelsEmissiveOnly(t *testing.T) {
	// All channels absent, zero lights, no probe: output is exactly the
	// emissive term (zero here).
	mat := materials.Default()
	p := Pipeline{Mode: LightingDirect, ToneMap: ToneMapReinhard}
	frag := Fragment{Normal: mgl32.Vec3{0, 0, 1}}

	out := p.Shade(mat, frag)
	assert.Equal(t, float32(0), out.X())
	assert.Equal(t, float32(0), out.Y())
	assert.Equal(t, float32(0), out.Z())
	assert.Equal(t, float32(1), out.W())
}

func TestUnlitMode(t *testing.T) {
	mat := materials.Default()
	mat.BaseColorFactor = core.ColorFromVec4(mgl32.Vec4{0.25, 0.5, 0.75, 1})

	p := Pipeline{Mode: LightingUnlit, ToneMap: ToneMapNone}
	out := p.Shade(mat, Fragment{Normal: mgl32.Vec3{0, 0, 1}})
	assert.InDelta(t, 0.25, out.X(), 1e-6)
	assert.InDelta(t, 0.5, out.Y(), 1e-6)
	assert.InDelta(t, 0.75, out.Z(), 1e-6)
}

func TestDirectLightBehindSurfaceIsZero(t *testing.T) {
	sample := MaterialSample{
		Albedo: mgl32.Vec3{1, 1, 1}, Roughness: 0.5, AO: 1,
		Normal: mgl32.Vec3{0, 0, 1},
	}
	// Light shining from behind the surface.
	light := scene.NewDirectionalLight(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 1, 1})
	out := AccumulateDirect(sample, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, []*scene.Light{light})
	assert.Equal(t, mgl32.Vec3{}, out)
}

func TestPointLightInverseSquare(t *testing.T) {
	sample := MaterialSample{
		Albedo: mgl32.Vec3{1, 1, 1}, Roughness: 1, AO: 1,
		Normal: mgl32.Vec3{0, 0, 1},
	}
	near := scene.NewPointLight(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 1, 1})
	far := scene.NewPointLight(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{1, 1, 1})

	v := mgl32.Vec3{0, 0, 1}
	outNear := AccumulateDirect(sample, mgl32.Vec3{}, v, []*scene.Light{near})
	outFar := AccumulateDirect(sample, mgl32.Vec3{}, v, []*scene.Light{far})

	// Doubling the distance quarters the contribution.
	assert.InDelta(t, outNear.X()/4, outFar.X(), 1e-5)
}

func TestDirectionalZeroDirectionFinite(t *testing.T) {
	sample := MaterialSample{
		Albedo: mgl32.Vec3{1, 1, 1}, Roughness: 0.5, AO: 1,
		Normal: mgl32.Vec3{0, 0, 1},
	}
	// Degenerate zero direction must not poison the sum with NaN.
	light := scene.NewDirectionalLight(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	out := AccumulateDirect(sample, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, []*scene.Light{light})
	assert.False(t, math.IsNaN(float64(out.X())))
	assert.False(t, math.IsNaN(float64(out.Y())))
	assert.False(t, math.IsNaN(float64(out.Z())))
}

func TestIBLConstantEnvironmentPlausible(t *testing.T) {
	white := env.NewPanorama(solidTexture(mgl32.Vec4{1, 1, 1, 1}))
	probe := env.BakeProbe(white, env.BakeOptions{
		EnvSize: 16, IrradianceSize: 4, IrradianceDelta: 0.2,
		PrefilterSize: 8, PrefilterSamples: 32,
		LUTSize: 16, LUTSamples: 128,
	})

	sample := MaterialSample{
		Albedo: mgl32.Vec3{0.5, 0.5, 0.5}, Roughness: 0.5, Metallic: 0,
		AO: 1, Normal: mgl32.Vec3{0, 0, 1},
	}
	out := EvaluateIBL(sample, mgl32.Vec3{0, 0, 1}, probe)

	// A unit-radiance white environment on a mid-grey dielectric stays
	// in a plausible mid range, never exceeding the incident radiance.
	for i := 0; i < 3; i++ {
		assert.Greater(t, out[i], float32(0.1))
		assert.Less(t, out[i], float32(1.1))
	}
}

func TestIBLOcclusionScalesAmbient(t *testing.T) {
	white := env.NewPanorama(solidTexture(mgl32.Vec4{1, 1, 1, 1}))
	probe := env.BakeProbe(white, env.BakeOptions{
		EnvSize: 8, IrradianceSize: 4, IrradianceDelta: 0.3,
		PrefilterSize: 8, PrefilterSamples: 16,
		LUTSize: 8, LUTSamples: 64,
	})

	base := MaterialSample{
		Albedo: mgl32.Vec3{0.5, 0.5, 0.5}, Roughness: 0.5,
		AO: 1, Normal: mgl32.Vec3{0, 0, 1},
	}
	occluded := base
	occluded.AO = 0.5

	v := mgl32.Vec3{0, 0, 1}
	full := EvaluateIBL(base, v, probe)
	half := EvaluateIBL(occluded, v, probe)
	assert.InDelta(t, full.X()/2, half.X(), 1e-5)
}

func TestShadeDeterminism(t *testing.T) {
	mat := materials.Default()
	light := scene.NewDirectionalLight(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 0.9, 0.8})
	p := Pipeline{
		Mode: LightingDirect, ToneMap: ToneMapPBRNeutral,
		Lights: []*scene.Light{light}, EyePos: mgl32.Vec3{0, 1, 3},
	}
	frag := Fragment{
		WorldPos: mgl32.Vec3{0.1, 0.2, 0.3},
		Normal:   mgl32.Vec3{0.2, 0.9, 0.1},
		UV0:      mgl32.Vec2{0.3, 0.7},
	}

	first := p.Shade(mat, frag)
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, p.Shade(mat, frag))
	}
}
