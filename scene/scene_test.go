package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gltf-shade/core"
)

func TestCameraBlockInvariant(t *testing.T) {
	cam := NewCamera(60, 16.0/9.0, 0.1, 100)
	eye := mgl32.Vec3{3, 2, 5}
	cam.LookAt(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	block := cam.Block()

	// ViewInverse must invert View.
	ident := block.View.Mul4(block.ViewInverse)
	for i := 0; i < 16; i++ {
		expected := float32(0)
		if i%5 == 0 {
			expected = 1
		}
		assert.InDelta(t, expected, ident[i], 1e-5)
	}

	// The inverse view's translation column is the eye position.
	p := block.EyePosition()
	assert.InDelta(t, eye.X(), p.X(), 1e-5)
	assert.InDelta(t, eye.Y(), p.Y(), 1e-5)
	assert.InDelta(t, eye.Z(), p.Z(), 1e-5)
}

func TestCameraAspectUpdate(t *testing.T) {
	cam := NewCamera(60, 1, 0.1, 100)
	p1 := cam.Proj()
	cam.UpdateAspectRatio(200, 100)
	p2 := cam.Proj()
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, float32(2), cam.AspectRatio)
}

func TestSphereGeometry(t *testing.T) {
	m := CreateSphere(2, 16, 8)
	require.NotEmpty(t, m.Vertices)
	require.True(t, len(m.Indices)%3 == 0)

	for _, v := range m.Vertices {
		// Normals are unit length and positions sit on the radius.
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
		assert.InDelta(t, 2, v.Position.Len(), 1e-4)
	}
}

func TestComputeTangentsOrthonormal(t *testing.T) {
	m := CreateSphere(1, 16, 8)
	ComputeTangents(m)

	for _, v := range m.Vertices {
		tangent := v.Tangent.Vec3()
		assert.InDelta(t, 1, tangent.Len(), 1e-3)
		// Tangent is perpendicular to the normal after Gram-Schmidt.
		assert.InDelta(t, 0, tangent.Dot(v.Normal), 1e-3)
		// Handedness is exactly ±1.
		assert.InDelta(t, 1, abs(v.Tangent.W()), 1e-6)
	}
}

func vtx(x, y, u, v float32) core.Vertex {
	return core.Vertex{
		Position: mgl32.Vec3{x, y, 0},
		Normal:   mgl32.Vec3{0, 0, 1},
		UV0:      mgl32.Vec2{u, v},
	}
}

func TestComputeTangentsMirroredUV(t *testing.T) {
	// The same triangle with U mirrored must flip tangent handedness.
	tri := func(mirror bool) *Mesh {
		u0, u1 := float32(0), float32(1)
		if mirror {
			u0, u1 = 1, 0
		}
		m := NewMesh("tri", []core.Vertex{
			vtx(0, 0, u0, 0), vtx(1, 0, u1, 0), vtx(0, 1, u0, 1),
		}, nil)
		ComputeTangents(m)
		return m
	}

	straight := tri(false)
	mirrored := tri(true)
	assert.Equal(t, -straight.Vertices[0].Tangent.W(), mirrored.Vertices[0].Tangent.W())
}

func TestLightRadiance(t *testing.T) {
	l := NewDirectionalLight(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0.5, 0.25})
	l.Intensity = 2
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, l.Radiance())
}

func TestMeshTrianglesUnindexed(t *testing.T) {
	m := NewMesh("tri", nil, nil)
	m.Vertices = append(m.Vertices, vtx(0, 0, 0, 0), vtx(1, 0, 1, 0), vtx(0, 1, 0, 1))
	count := 0
	m.Triangles(func(a, b, c uint32) { count++ })
	assert.Equal(t, 1, count)
}
