package env

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/textures"
	"gltf-shade/vmath"
)

// BakeOptions sizes the probe baking passes. CPU baking trades sample
// counts for time; the defaults keep a 64-texel probe under a second
// while staying visually close to the reference counts.
type BakeOptions struct {
	EnvSize          int     // base cubemap face size
	IrradianceSize   int     // irradiance face size
	IrradianceDelta  float32 // hemisphere sampling step, radians
	PrefilterSize    int     // prefiltered base face size
	PrefilterSamples int     // importance samples per texel
	LUTSize          int     // BRDF LUT edge size
	LUTSamples       int     // integration samples per texel
}

func DefaultBakeOptions() BakeOptions {
	return BakeOptions{
		EnvSize:          256,
		IrradianceSize:   32,
		IrradianceDelta:  0.1,
		PrefilterSize:    128,
		PrefilterSamples: 256,
		LUTSize:          128,
		LUTSamples:       1024,
	}
}

// BakeProbe runs the full preprocessing chain for a panorama:
// panorama → environment cubemap → {irradiance, prefiltered, BRDF LUT}.
func BakeProbe(pan *Panorama, opts BakeOptions) *Probe {
	envMap := BakeCubemap(pan, opts.EnvSize)
	return &Probe{
		Irradiance:  BakeIrradiance(envMap, opts.IrradianceSize, opts.IrradianceDelta),
		Prefiltered: BakePrefiltered(envMap, opts.PrefilterSize, opts.PrefilterSamples),
		BRDFLUT:     BakeBRDFLUT(opts.LUTSize, opts.LUTSamples),
	}
}

// BakeCubemap projects an equirectangular panorama onto six cube faces
// and builds a full mip chain for the prefilter pass to sample from.
func BakeCubemap(pan *Panorama, size int) *Cubemap {
	c := NewCubemap(size, 1)
	forEachTexel(c.Mips[0], size, func(face, x, y int, dir mgl32.Vec3) mgl32.Vec3 {
		return pan.Sample(dir)
	})
	c.BuildMips(mipCount(size))
	return c
}

// BakeIrradiance convolves the environment with a cosine lobe: for each
// texel direction N, radiance is integrated over the hemisphere in
// steps of delta radians with cos·sin weighting.
func BakeIrradiance(envMap *Cubemap, size int, delta float32) *Cubemap {
	if delta <= 0 {
		delta = 0.1
	}
	c := NewCubemap(size, 1)
	forEachTexel(c.Mips[0], size, func(face, x, y int, n mgl32.Vec3) mgl32.Vec3 {
		up := mgl32.Vec3{0, 1, 0}
		if abs(n.Y()) > 0.999 {
			up = mgl32.Vec3{1, 0, 0}
		}
		right := up.Cross(n).Normalize()
		up = n.Cross(right).Normalize()

		sum := mgl32.Vec3{}
		samples := 0
		for phi := float32(0); phi < 2*vmath.Pi; phi += delta {
			cosPhi, sinPhi := vmath.Cos(phi), vmath.Sin(phi)
			for theta := float32(0); theta < vmath.Pi/2; theta += delta {
				cosTheta, sinTheta := vmath.Cos(theta), vmath.Sin(theta)

				tangentDir := right.Mul(cosPhi).Add(up.Mul(sinPhi))
				dir := tangentDir.Mul(sinTheta).Add(n.Mul(cosTheta))

				sum = sum.Add(envMap.Sample(dir).Mul(cosTheta * sinTheta))
				samples++
			}
		}
		if samples == 0 {
			return mgl32.Vec3{}
		}
		return sum.Mul(vmath.Pi / float32(samples))
	})
	return c
}

// BakePrefiltered builds the roughness mip chain of the split-sum
// approximation: each level importance-samples the GGX lobe for
// roughness = level / maxLevel under the N = V = R assumption and
// stores the n·l-weighted average.
func BakePrefiltered(envMap *Cubemap, size, sampleCount int) *Cubemap {
	levels := mipCount(size)
	if levels > int(MaxReflectionLod)+1 {
		levels = int(MaxReflectionLod) + 1
	}
	c := NewCubemap(size, levels)

	for level := 0; level < levels; level++ {
		roughness := float32(level) / float32(levels-1)
		faceSize := size >> level
		forEachTexel(c.Mips[level], faceSize, func(face, x, y int, n mgl32.Vec3) mgl32.Vec3 {
			return prefilterTexel(envMap, n, roughness, sampleCount)
		})
	}
	return c
}

func prefilterTexel(envMap *Cubemap, n mgl32.Vec3, roughness float32, sampleCount int) mgl32.Vec3 {
	// N = V = R: the filtered lobe ignores view-dependent stretching.
	v := n

	sum := mgl32.Vec3{}
	totalWeight := float32(0)
	for i := 0; i < sampleCount; i++ {
		xi := hammersley(uint32(i), uint32(sampleCount))
		h := importanceSampleGGX(xi, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := n.Dot(l)
		if nDotL <= 0 {
			continue
		}

		// Mip selection by sample solid angle keeps fireflies from
		// undersampling bright texels at high roughness.
		d := distributionGGX(vmath.Saturate(n.Dot(h)), roughness)
		pdf := d*vmath.Saturate(n.Dot(h))/(4*vmath.ClampCos(h.Dot(v))) + 1e-4

		resolution := float32(envMap.Size)
		saTexel := 4 * vmath.Pi / (6 * resolution * resolution)
		saSample := 1 / (float32(sampleCount)*pdf + 1e-4)

		mip := float32(0)
		if roughness > 0 {
			mip = 0.5 * log2(saSample/saTexel)
		}

		sum = sum.Add(envMap.SampleLod(l, mip).Mul(nDotL))
		totalWeight += nDotL
	}
	if totalWeight <= 0 {
		return envMap.Sample(n)
	}
	return sum.Mul(1 / totalWeight)
}

// BakeBRDFLUT integrates the split-sum BRDF response: for each
// (n·v, roughness) texel it returns the Fresnel scale and bias such
// that specular ≈ prefiltered · (F0·scale + bias).
func BakeBRDFLUT(size, sampleCount int) *textures.Texture {
	lut := textures.New("brdf_lut", size, size)
	lut.Wrap = textures.WrapClamp
	for y := 0; y < size; y++ {
		roughness := (float32(y) + 0.5) / float32(size)
		for x := 0; x < size; x++ {
			nDotV := (float32(x) + 0.5) / float32(size)
			scale, bias := integrateBRDF(nDotV, roughness, sampleCount)
			lut.Set(x, y, mgl32.Vec4{scale, bias, 0, 1})
		}
	}
	return lut
}

func integrateBRDF(nDotV, roughness float32, sampleCount int) (scale, bias float32) {
	v := mgl32.Vec3{vmath.Sqrt(1 - nDotV*nDotV), 0, nDotV}
	n := mgl32.Vec3{0, 0, 1}

	var a, b float32
	for i := 0; i < sampleCount; i++ {
		xi := hammersley(uint32(i), uint32(sampleCount))
		h := importanceSampleGGX(xi, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := l.Z()
		if nDotL <= 0 {
			continue
		}
		nDotH := vmath.Saturate(h.Z())
		vDotH := vmath.Saturate(v.Dot(h))

		g := geometrySmithIBL(nDotV, nDotL, roughness)
		gVis := g * vDotH / vmath.ClampCos(nDotH*nDotV)
		fc := vmath.Pow5(1 - vDotH)

		a += (1 - fc) * gVis
		b += fc * gVis
	}
	inv := 1 / float32(sampleCount)
	return a * inv, b * inv
}

// ── Sampling helpers ─────────────────────────────────────────────────

// radicalInverseVdC is the van der Corput sequence in base 2.
func radicalInverseVdC(bits uint32) float32 {
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(bits) * 2.3283064365386963e-10 // / 0x100000000
}

// hammersley returns the i-th point of an N-point low-discrepancy set.
func hammersley(i, n uint32) mgl32.Vec2 {
	return mgl32.Vec2{float32(i) / float32(n), radicalInverseVdC(i)}
}

// importanceSampleGGX maps a 2D sample to a halfway vector distributed
// per the GGX lobe around n.
func importanceSampleGGX(xi mgl32.Vec2, n mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness

	phi := 2 * vmath.Pi * xi.X()
	cosTheta := vmath.Sqrt((1 - xi.Y()) / (1 + (a*a-1)*xi.Y()))
	sinTheta := vmath.Sqrt(1 - cosTheta*cosTheta)

	h := mgl32.Vec3{
		vmath.Cos(phi) * sinTheta,
		vmath.Sin(phi) * sinTheta,
		cosTheta,
	}

	up := mgl32.Vec3{0, 0, 1}
	if abs(n.Z()) >= 0.99999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)

	return tangent.Mul(h.X()).Add(bitangent.Mul(h.Y())).Add(n.Mul(h.Z())).Normalize()
}

// distributionGGX duplicated from the pbr package to keep env free of a
// dependency cycle; the pbr tests cross-check the two.
func distributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (vmath.Pi * d * d)
}

// geometrySmithIBL is the Smith term with the IBL roughness remap
// k = r²/2 (direct lighting uses (r+1)²/8 instead).
func geometrySmithIBL(nDotV, nDotL, roughness float32) float32 {
	k := roughness * roughness / 2
	return schlickGGX(nDotV, k) * schlickGGX(nDotL, k)
}

func schlickGGX(cosTheta, k float32) float32 {
	return cosTheta / (cosTheta*(1-k) + k)
}

// forEachTexel fills every texel of all six faces from its direction.
func forEachTexel(faces [faceCount]*textures.Texture, size int, fn func(face, x, y int, dir mgl32.Vec3) mgl32.Vec3) {
	for f := 0; f < faceCount; f++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				uv := mgl32.Vec2{
					(float32(x) + 0.5) / float32(size),
					(float32(y) + 0.5) / float32(size),
				}
				dir := FaceUVToDir(f, uv)
				c := fn(f, x, y, dir)
				faces[f].Set(x, y, mgl32.Vec4{c.X(), c.Y(), c.Z(), 1})
			}
		}
	}
}

func mipCount(size int) int {
	count := 1
	for size > 1 {
		size >>= 1
		count++
	}
	return count
}

func log2(x float32) float32 {
	return float32(math.Log2(float64(x)))
}
