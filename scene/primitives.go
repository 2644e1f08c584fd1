package scene

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
)

// CreateSphere builds a UV sphere. Positions equal normals scaled by
// radius; UV0 wraps longitude/latitude.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV0: mgl32.Vec2{
					float32(seg) / float32(segments),
					float32(ring) / float32(rings),
				},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			// Counter-clockwise winding viewed from outside, matching
			// the glTF front-face convention the rasterizer culls by.
			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}

	m := NewMesh("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateCube builds an axis-aligned cube with per-face normals and UVs.
func CreateCube(size float32) *Mesh {
	h := size / 2

	type face struct {
		normal, right, up mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},   // +Z
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}}, // -Z
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},  // +X
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},  // -X
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},  // +Y
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},  // -Y
	}

	var vertices []core.Vertex
	var indices []uint32

	for _, f := range faces {
		base := uint32(len(vertices))
		center := f.normal.Mul(h)
		corners := [4]struct {
			r, u float32
			uv   mgl32.Vec2
		}{
			{-1, -1, mgl32.Vec2{0, 1}},
			{1, -1, mgl32.Vec2{1, 1}},
			{1, 1, mgl32.Vec2{1, 0}},
			{-1, 1, mgl32.Vec2{0, 0}},
		}
		for _, c := range corners {
			pos := center.Add(f.right.Mul(c.r * h)).Add(f.up.Mul(c.u * h))
			vertices = append(vertices, core.Vertex{
				Position: pos,
				Normal:   f.normal,
				UV0:      c.uv,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	m := NewMesh("Cube", vertices, indices)
	ComputeTangents(m)
	return m
}
