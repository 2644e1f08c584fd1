package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/vmath"
)

// ReconstructNormal builds the shading normal from the interpolated
// geometry normal and, when a normal map is active, the tangent-space
// sample.
//
// Bitangent convention: b = cross(n, t) · tangent.w, the glTF handedness
// rule. An interpolated bitangent is never accepted; deriving it from
// the tangent's w sign keeps mirrored UV islands lit consistently.
//
// sample is the raw texel in [0,1]³; scale multiplies the decoded xy
// perturbation.
func ReconstructNormal(interpolated mgl32.Vec3, tangent mgl32.Vec4, sample mgl32.Vec3, scale float32, hasNormalMap bool) mgl32.Vec3 {
	n := vmath.SafeNormalize(interpolated, mgl32.Vec3{0, 0, 1})
	if !hasNormalMap {
		return n
	}

	t := vmath.SafeNormalize(tangent.Vec3(), mgl32.Vec3{1, 0, 0})
	// Re-orthogonalize against the interpolated normal; interpolation
	// skews the frame between vertices.
	t = vmath.SafeNormalize(t.Sub(n.Mul(n.Dot(t))), t)
	w := tangent.W()
	if w == 0 {
		w = 1
	}
	b := n.Cross(t).Mul(w)

	nm := sample.Mul(2).Sub(vmath.Splat(1))
	nm = mgl32.Vec3{nm.X() * scale, nm.Y() * scale, nm.Z()}

	world := t.Mul(nm.X()).Add(b.Mul(nm.Y())).Add(n.Mul(nm.Z()))
	return vmath.SafeNormalize(world, n)
}
