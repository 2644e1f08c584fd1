// Command viewer is an interactive preview for the software renderer:
// an orbit camera around the sphere grid or a glTF asset, re-rendered
// whenever the view changes. Arrow keys orbit, +/- zoom, T cycles the
// tone mapper, Escape quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gltf-shade/core"
	"gltf-shade/materials"
	"gltf-shade/pbr"
	"gltf-shade/renderer"
	"gltf-shade/scene"
)

const (
	screenWidth  = 640
	screenHeight = 480
)

var toneMapNames = map[pbr.ToneMapOperator]string{
	pbr.ToneMapNone:       "none",
	pbr.ToneMapReinhard:   "reinhard",
	pbr.ToneMapPBRNeutral: "neutral",
}

// Viewer implements ebiten.Game, re-rendering the scene on demand.
type Viewer struct {
	sc       *scene.Scene
	pipeline *pbr.Pipeline
	renderer *renderer.Renderer

	yaw      float64 // radians around the y axis
	pitch    float64
	distance float64
	target   mgl32.Vec3

	frame *ebiten.Image
	dirty bool
}

func NewViewer(sc *scene.Scene) *Viewer {
	pipeline := &pbr.Pipeline{
		Mode:    pbr.LightingDirect,
		ToneMap: pbr.ToneMapPBRNeutral,
	}
	v := &Viewer{
		sc:       sc,
		pipeline: pipeline,
		renderer: renderer.New(screenWidth, screenHeight, pipeline),
		yaw:      math.Pi / 2,
		pitch:    0.2,
		distance: 7,
		dirty:    true,
	}
	return v
}

func (v *Viewer) Update() error {
	const orbitStep = 0.05

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.yaw -= orbitStep
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.yaw += orbitStep
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.pitch = math.Min(v.pitch+orbitStep, 1.4)
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.pitch = math.Max(v.pitch-orbitStep, -1.4)
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyEqual) {
		v.distance = math.Max(v.distance*0.97, 1)
		v.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) {
		v.distance = math.Min(v.distance*1.03, 50)
		v.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		v.pipeline.ToneMap = (v.pipeline.ToneMap + 1) % 3
		v.dirty = true
	}

	if v.dirty {
		v.rerender()
		v.dirty = false
	}
	return nil
}

func (v *Viewer) rerender() {
	eye := v.target.Add(mgl32.Vec3{
		float32(v.distance * math.Cos(v.pitch) * math.Cos(v.yaw)),
		float32(v.distance * math.Sin(v.pitch)),
		float32(v.distance * math.Cos(v.pitch) * math.Sin(v.yaw)),
	})
	v.sc.Camera.LookAt(eye, v.target, mgl32.Vec3{0, 1, 0})

	fb := v.renderer.Render(v.sc)
	img := fb.Resolve()
	if v.frame == nil {
		v.frame = ebiten.NewImageFromImage(img)
	} else {
		v.frame.WritePixels(img.Pix)
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.frame != nil {
		screen.DrawImage(v.frame, nil)
	}
	msg := fmt.Sprintf("arrows: orbit  +/-: zoom  T: tonemap (%s)  esc: quit",
		toneMapNames[v.pipeline.ToneMap])
	ebitenutil.DebugPrint(screen, msg)
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	gltfPath := flag.String("gltf", "", "glTF/GLB file to view instead of the sphere grid")
	flag.Parse()

	sc, err := buildScene(*gltfPath)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gltf-shade viewer")
	if err := ebiten.RunGame(NewViewer(sc)); err != nil {
		log.Fatal(err)
	}
}

func buildScene(gltfPath string) (*scene.Scene, error) {
	sc := scene.NewScene()

	if gltfPath != "" {
		model, err := scene.LoadGLTF(gltfPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", gltfPath, err)
		}
		sc.Instances = model.Instances
	} else {
		const n = 5
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				mesh := scene.CreateSphere(0.45, 24, 12)
				mesh.Material = &materials.Material{
					Name:              fmt.Sprintf("grid_r%d_c%d", row, col),
					BaseColorFactor:   core.Color{R: 0.8, G: 0.2, B: 0.2, A: 1},
					RoughnessFactor:   mgl32.Clamp(float32(col)/float32(n-1), 0.05, 1),
					MetallicFactor:    float32(row) / float32(n-1),
					OcclusionStrength: 1,
					NormalScale:       1,
				}
				x := float32(col) - float32(n-1)/2
				y := float32(row) - float32(n-1)/2
				sc.AddInstance(mesh, mgl32.Translate3D(x, y, 0))
			}
		}
	}

	sc.AddLight(scene.NewDirectionalLight(mgl32.Vec3{-0.5, -1, -0.7}, mgl32.Vec3{3, 3, 3}))
	sc.AddLight(scene.NewPointLight(mgl32.Vec3{3, 3, 4}, mgl32.Vec3{20, 18, 15}))

	cam := scene.NewCamera(45, float32(screenWidth)/float32(screenHeight), 0.1, 1000)
	sc.Camera = cam
	return sc, nil
}
