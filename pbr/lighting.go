package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/scene"
	"gltf-shade/vmath"
)

// MaterialSample is the fully resolved surface state at one shading
// point: every channel collapsed to a concrete value, normal already in
// world space. Built once per fragment, immutable afterwards.
type MaterialSample struct {
	Albedo    mgl32.Vec3
	Alpha     float32
	Roughness float32
	Metallic  float32
	AO        float32
	Emissive  mgl32.Vec3
	Normal    mgl32.Vec3
}

// lightVector returns the surface-to-light direction and the incoming
// radiance at the shading point.
func lightVector(l *scene.Light, worldPos mgl32.Vec3) (dir, radiance mgl32.Vec3) {
	switch l.Kind {
	case scene.LightPoint:
		toLight := l.Position.Sub(worldPos)
		d2 := toLight.Dot(toLight)
		if d2 < vmath.Epsilon {
			d2 = vmath.Epsilon
		}
		return vmath.SafeNormalize(toLight, mgl32.Vec3{0, 1, 0}), l.Radiance().Mul(1 / d2)
	default:
		return vmath.SafeNormalize(l.Direction.Mul(-1), mgl32.Vec3{0, 1, 0}), l.Radiance()
	}
}

// AccumulateDirect sums the Cook-Torrance response over every light.
// Lights contribute independently; zero lights yields zero. The sum is
// evaluated in list order so repeated calls are bit-identical.
func AccumulateDirect(mat MaterialSample, worldPos, viewDir mgl32.Vec3, lights []*scene.Light) mgl32.Vec3 {
	n := mat.Normal
	total := mgl32.Vec3{}
	for _, light := range lights {
		l, radiance := lightVector(light, worldPos)

		nDotL := n.Dot(l)
		if nDotL <= 0 {
			continue
		}

		diffuse, specular := EvalBRDF(n, viewDir, l, mat.Albedo, mat.Roughness, mat.Metallic)
		total = total.Add(vmath.MulV3(diffuse.Add(specular), radiance).Mul(nDotL))
	}
	return total
}
