package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gltf-shade/core"
	"gltf-shade/pbr"
	"gltf-shade/scene"
)

func testVarying(pos mgl32.Vec3, viewProj mgl32.Mat4) Varying {
	return Varying{
		ClipPos:  viewProj.Mul4x1(pos.Vec4(1)),
		WorldPos: pos,
		Normal:   mgl32.Vec3{0, 0, 1},
	}
}

func testCamera() *scene.Camera {
	cam := scene.NewCamera(60, 1, 0.1, 100)
	cam.LookAt(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return cam
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	model := mgl32.Scale3D(2, 1, 1)
	nm := NormalMatrix(model)

	// A plane tilted in xz: tangent (1,0,1), normal (1,0,-1)/√2. After
	// scaling x by 2 the transformed normal must stay perpendicular to
	// the transformed tangent.
	tangent := mgl32.Vec3{1, 0, 1}
	normal := mgl32.Vec3{1, 0, -1}.Normalize()

	tWorld := model.Mat3().Mul3x1(tangent)
	nWorld := nm.Mul3x1(normal)
	assert.InDelta(t, 0, tWorld.Dot(nWorld), 1e-5)
}

func TestTransformVertexWorldPosition(t *testing.T) {
	model := mgl32.Translate3D(1, 2, 3)
	v := core.Vertex{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}

	out := TransformVertex(v, model, NormalMatrix(model), mgl32.Ident4())
	assert.Equal(t, mgl32.Vec3{2, 2, 3}, out.WorldPos)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, out.Normal)
	assert.Equal(t, out.WorldPos.Vec4(1), out.ClipPos)
}

func TestProjectTriangleRejectsBehindCamera(t *testing.T) {
	cam := testCamera()
	viewProj := cam.Proj().Mul4(cam.View())

	// Triangle behind the eye (z = +10, eye at z = 3 looking at -z).
	_, ok := projectTriangle(
		testVarying(mgl32.Vec3{0, 0, 10}, viewProj),
		testVarying(mgl32.Vec3{1, 0, 10}, viewProj),
		testVarying(mgl32.Vec3{0, 1, 10}, viewProj),
		64, 64)
	assert.False(t, ok)
}

func TestProjectTriangleBackfaceCulled(t *testing.T) {
	cam := testCamera()
	viewProj := cam.Proj().Mul4(cam.View())

	a := testVarying(mgl32.Vec3{-1, -1, 0}, viewProj)
	b := testVarying(mgl32.Vec3{1, -1, 0}, viewProj)
	c := testVarying(mgl32.Vec3{0, 1, 0}, viewProj)

	_, front := projectTriangle(a, b, c, 64, 64)
	_, back := projectTriangle(a, c, b, 64, 64)
	assert.True(t, front)
	assert.False(t, back)
}

func renderSphereScene(workers int) *Framebuffer {
	sc := scene.NewScene()
	sphere := scene.CreateSphere(1, 24, 12)
	sc.AddInstance(sphere, mgl32.Ident4())
	sc.AddLight(scene.NewDirectionalLight(mgl32.Vec3{0, -0.5, -1}, mgl32.Vec3{1, 1, 1}))
	sc.Camera = testCamera()

	r := New(64, 64, &pbr.Pipeline{
		Mode:    pbr.LightingDirect,
		ToneMap: pbr.ToneMapReinhard,
	})
	r.Workers = workers
	r.TileSize = 16
	return r.Render(sc)
}

func TestRenderSphereSmoke(t *testing.T) {
	fb := renderSphereScene(0)

	// The sphere covers the image center and the light comes from the
	// camera side, so the center pixel must be lit.
	center := fb.Pixel(32, 32)
	require.Greater(t, center.X(), float32(0))
	assert.Less(t, center.X(), float32(1))
	assert.Equal(t, float32(1), center.W())

	// Depth was written under the sphere, untouched at the corner.
	assert.Less(t, fb.DepthAt(32, 32), float32(math.MaxFloat32))
	assert.Equal(t, float32(math.MaxFloat32), fb.DepthAt(0, 0))
}

func TestRenderDeterministicAcrossWorkerCounts(t *testing.T) {
	a := renderSphereScene(1)
	b := renderSphereScene(4)
	c := renderSphereScene(4)

	assert.Equal(t, a.Color, b.Color, "1 vs 4 workers")
	assert.Equal(t, b.Color, c.Color, "repeated run")
}

func TestBackgroundFillsUncoveredPixels(t *testing.T) {
	sc := scene.NewScene()
	sc.Camera = testCamera()

	r := New(32, 32, &pbr.Pipeline{Mode: pbr.LightingDirect, ToneMap: pbr.ToneMapNone})
	r.Background = SkyColor{Color: mgl32.Vec3{0.25, 0.5, 0.75}}
	fb := r.Render(sc)

	for _, xy := range [][2]int{{0, 0}, {16, 16}, {31, 31}} {
		p := fb.Pixel(xy[0], xy[1])
		assert.InDelta(t, 0.25, p.X(), 1e-6)
		assert.InDelta(t, 0.5, p.Y(), 1e-6)
		assert.InDelta(t, 0.75, p.Z(), 1e-6)
	}
}

func TestResolveClampsAndEncodes(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})
	fb.SetPixel(0, 0, mgl32.Vec4{1, 0, 0, 1})
	fb.SetPixel(1, 0, mgl32.Vec4{2, -1, 0.5, 1})

	img := fb.Resolve()
	r0, _, _, a0 := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r0)
	assert.Equal(t, uint32(0xffff), a0)

	r1, g1, _, _ := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r1, "overbright clamps to white")
	assert.Equal(t, uint32(0), g1, "negative clamps to black")
}
