package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

func ColorFromVec3(v mgl32.Vec3) Color {
	return Color{R: v.X(), G: v.Y(), B: v.Z(), A: 1}
}

func ColorFromVec4(v mgl32.Vec4) Color {
	return Color{R: v.X(), G: v.Y(), B: v.Z(), A: v.W()}
}

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Vertex is the CPU-side vertex layout consumed by the vertex transform
// stage. Meshes may carry up to two UV sets; material channels select
// between them. Tangent follows the glTF convention: xyz is the
// tangent direction, w is the handedness sign, and the bitangent is
// always derived as cross(normal, tangent) * w. Only meaningful when a
// normal map is in use; regenerate with scene.ComputeTangents.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
	UV0      mgl32.Vec2
	UV1      mgl32.Vec2
}

type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Matrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

type Viewport struct {
	X, Y, Width, Height int
}
