package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeTangents generates per-vertex tangents for tangent-space
// normal mapping. The mesh must have UV0 coordinates; triangles with a
// degenerate UV area are skipped. The result follows the glTF
// convention: xyz is the orthogonalized tangent, w the handedness sign
// such that bitangent = cross(normal, tangent) * w.
func ComputeTangents(m *Mesh) {
	tan := make([]mgl32.Vec3, len(m.Vertices))
	bitan := make([]mgl32.Vec3, len(m.Vertices))

	// accum adds one triangle's tangent/bitangent contribution to its
	// vertices.
	accum := func(i0, i1, i2 uint32) {
		v0 := m.Vertices[i0]
		v1 := m.Vertices[i1]
		v2 := m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)

		du1 := v1.UV0.X() - v0.UV0.X()
		dv1 := v1.UV0.Y() - v0.UV0.Y()
		du2 := v2.UV0.X() - v0.UV0.X()
		dv2 := v2.UV0.Y() - v0.UV0.Y()

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return // degenerate UV triangle
		}
		r := 1.0 / denom

		t := e1.Mul(dv2 * r).Sub(e2.Mul(dv1 * r))
		b := e2.Mul(du1 * r).Sub(e1.Mul(du2 * r))

		for _, i := range []uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(t)
			bitan[i] = bitan[i].Add(b)
		}
	}

	m.Triangles(accum)

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan[i]

		// T = normalize(T - N*(N·T))
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.LenSqr() < 1e-8 {
			// Degenerate: pick an arbitrary tangent perpendicular to N.
			if abs(n.X()) < 0.9 {
				t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n.X()))
			} else {
				t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n.Y()))
			}
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		m.Vertices[i].Tangent = t.Vec4(w)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
