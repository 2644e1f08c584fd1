package renderer

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/materials"
	"gltf-shade/pbr"
)

// screenVertex is a varying after perspective divide and viewport
// mapping. Interpolated attributes are stored pre-divided by w so the
// rasterizer can interpolate them linearly in screen space and recover
// the perspective-correct value with one division per fragment.
type screenVertex struct {
	x, y, z float32 // screen x/y, NDC depth
	invW    float32

	worldPos mgl32.Vec3
	normal   mgl32.Vec3
	tangent  mgl32.Vec4
	uv0      mgl32.Vec2
	uv1      mgl32.Vec2
}

// screenTriangle is a projected, screen-clipped triangle bound to its
// material, ready for per-tile rasterization.
type screenTriangle struct {
	sv       [3]screenVertex
	material *materials.Material
	bounds   image.Rectangle
}

// projectTriangle maps three varyings to screen space. Returns false
// when the triangle cannot contribute: fully behind the camera,
// back-facing, or off screen. Triangles crossing the near plane are
// dropped rather than clipped; the reference renderer trades that
// corner case for a simpler pipeline.
func projectTriangle(v0, v1, v2 Varying, width, height int) (screenTriangle, bool) {
	var tri screenTriangle
	in := [3]Varying{v0, v1, v2}

	for i, v := range in {
		w := v.ClipPos.W()
		if w <= 0 {
			return tri, false
		}
		invW := 1 / w

		ndcX := v.ClipPos.X() * invW
		ndcY := v.ClipPos.Y() * invW
		ndcZ := v.ClipPos.Z() * invW

		sv := &tri.sv[i]
		sv.x = (ndcX + 1) * 0.5 * float32(width)
		sv.y = (1 - ndcY) * 0.5 * float32(height) // screen y grows downward
		sv.z = ndcZ
		sv.invW = invW

		sv.worldPos = v.WorldPos.Mul(invW)
		sv.normal = v.Normal.Mul(invW)
		sv.tangent = v.Tangent.Mul(invW)
		sv.uv0 = v.UV0.Mul(invW)
		sv.uv1 = v.UV1.Mul(invW)
	}

	// Backface culling by screen winding (counter-clockwise is front).
	e1x, e1y := tri.sv[1].x-tri.sv[0].x, tri.sv[1].y-tri.sv[0].y
	e2x, e2y := tri.sv[2].x-tri.sv[0].x, tri.sv[2].y-tri.sv[0].y
	if e1x*e2y-e1y*e2x >= 0 {
		return tri, false
	}

	minX := int(math.Floor(float64(min3(tri.sv[0].x, tri.sv[1].x, tri.sv[2].x))))
	maxX := int(math.Ceil(float64(max3(tri.sv[0].x, tri.sv[1].x, tri.sv[2].x))))
	minY := int(math.Floor(float64(min3(tri.sv[0].y, tri.sv[1].y, tri.sv[2].y))))
	maxY := int(math.Ceil(float64(max3(tri.sv[0].y, tri.sv[1].y, tri.sv[2].y))))

	tri.bounds = image.Rect(minX, minY, maxX+1, maxY+1).
		Intersect(image.Rect(0, 0, width, height))
	if tri.bounds.Empty() {
		return tri, false
	}
	return tri, true
}

// rasterize shades every covered pixel of tri inside bounds. Bounds of
// concurrent calls must not overlap; tiles guarantee that.
func rasterize(fb *Framebuffer, tri screenTriangle, bounds image.Rectangle, pipeline *pbr.Pipeline) {
	area := bounds.Intersect(tri.bounds)
	if area.Empty() {
		return
	}

	sv := &tri.sv
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5

			b0, b1, b2, ok := barycentric(sv, px, py)
			if !ok {
				continue
			}

			z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			idx := fb.index(x, y)
			if z >= fb.Depth[idx] {
				continue
			}

			oneOverW := b0*sv[0].invW + b1*sv[1].invW + b2*sv[2].invW
			if oneOverW == 0 {
				continue
			}
			w := 1 / oneOverW

			frag := pbr.Fragment{
				WorldPos: lerpV3(sv[0].worldPos, sv[1].worldPos, sv[2].worldPos, b0, b1, b2).Mul(w),
				Normal:   lerpV3(sv[0].normal, sv[1].normal, sv[2].normal, b0, b1, b2).Mul(w),
				Tangent:  lerpV4(sv[0].tangent, sv[1].tangent, sv[2].tangent, b0, b1, b2).Mul(w),
				UV0:      lerpV2(sv[0].uv0, sv[1].uv0, sv[2].uv0, b0, b1, b2).Mul(w),
				UV1:      lerpV2(sv[0].uv1, sv[1].uv1, sv[2].uv1, b0, b1, b2).Mul(w),
			}

			fb.Depth[idx] = z
			fb.Color[idx] = pipeline.Shade(tri.material, frag)
		}
	}
}

// barycentric returns the weights of (px, py) in the triangle, and
// whether the point lies inside it.
func barycentric(sv *[3]screenVertex, px, py float32) (b0, b1, b2 float32, inside bool) {
	v0x, v0y := sv[2].x-sv[0].x, sv[2].y-sv[0].y
	v1x, v1y := sv[1].x-sv[0].x, sv[1].y-sv[0].y
	v2x, v2y := px-sv[0].x, py-sv[0].y

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return 0, 0, 0, false
	}
	invDenom := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	if u < 0 || v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	return 1 - u - v, v, u, true
}

func lerpV2(a, b, c mgl32.Vec2, b0, b1, b2 float32) mgl32.Vec2 {
	return a.Mul(b0).Add(b.Mul(b1)).Add(c.Mul(b2))
}

func lerpV3(a, b, c mgl32.Vec3, b0, b1, b2 float32) mgl32.Vec3 {
	return a.Mul(b0).Add(b.Mul(b1)).Add(c.Mul(b2))
}

func lerpV4(a, b, c mgl32.Vec4, b0, b1, b2 float32) mgl32.Vec4 {
	return a.Mul(b0).Add(b.Mul(b1)).Add(c.Mul(b2))
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
