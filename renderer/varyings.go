package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
)

// Varying is one vertex after the vertex transform stage: clip-space
// position plus the attributes the rasterizer interpolates per
// fragment.
type Varying struct {
	ClipPos  mgl32.Vec4
	WorldPos mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
	UV0      mgl32.Vec2
	UV1      mgl32.Vec2
}

// NormalMatrix is the inverse-transpose of the model matrix's upper
// 3x3, which keeps normals perpendicular under non-uniform scale.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	return model.Mat3().Inv().Transpose()
}

// TransformVertex runs one vertex through the model and view-projection
// transforms, producing the varyings for rasterization.
func TransformVertex(v core.Vertex, model mgl32.Mat4, normalMat mgl32.Mat3, viewProj mgl32.Mat4) Varying {
	world := model.Mul4x1(v.Position.Vec4(1))
	worldPos := world.Vec3()

	normal := normalMat.Mul3x1(v.Normal)
	tangentDir := normalMat.Mul3x1(v.Tangent.Vec3())

	return Varying{
		ClipPos:  viewProj.Mul4x1(world),
		WorldPos: worldPos,
		Normal:   normal,
		Tangent:  tangentDir.Vec4(v.Tangent.W()),
		UV0:      v.UV0,
		UV1:      v.UV1,
	}
}
