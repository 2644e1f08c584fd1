package renderer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/env"
	"gltf-shade/pbr"
	"gltf-shade/scene"
	"gltf-shade/vmath"
)

// Background fills pixels no geometry covers.
type Background interface {
	// Radiance returns linear radiance along a world-space ray.
	Radiance(dir mgl32.Vec3) mgl32.Vec3
}

// SkyPanorama samples an equirectangular panorama as the background.
type SkyPanorama struct {
	Pan *env.Panorama
}

func (s SkyPanorama) Radiance(dir mgl32.Vec3) mgl32.Vec3 {
	return s.Pan.Sample(dir)
}

// SkyColor is a constant-radiance background.
type SkyColor struct {
	Color mgl32.Vec3
}

func (s SkyColor) Radiance(mgl32.Vec3) mgl32.Vec3 {
	return s.Color
}

// Renderer rasterizes a scene into a framebuffer, shading with a pbr
// pipeline. Tiles are rendered in parallel; because tiles never
// overlap and triangles are processed in submission order within each
// tile, output is bit-identical across runs regardless of worker
// count.
type Renderer struct {
	Width    int
	Height   int
	TileSize int
	Workers  int // 0 means runtime.NumCPU()

	Pipeline   *pbr.Pipeline
	Background Background // nil leaves cleared pixels black
}

func New(width, height int, pipeline *pbr.Pipeline) *Renderer {
	return &Renderer{
		Width:    width,
		Height:   height,
		TileSize: 64,
		Pipeline: pipeline,
	}
}

// Render draws the scene into a fresh framebuffer. The scene, its
// camera, and the pipeline are read-only for the duration of the call.
func (r *Renderer) Render(sc *scene.Scene) *Framebuffer {
	fb := NewFramebuffer(r.Width, r.Height)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1})

	cam := sc.Camera
	block := cam.Block()
	viewProj := block.Proj.Mul4(block.View)

	r.Pipeline.Lights = sc.Lights
	r.Pipeline.EyePos = block.EyePosition()

	triangles := r.assemble(sc, viewProj)

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	tileSize := r.TileSize
	if tileSize <= 0 {
		tileSize = 64
	}

	tiles := make(chan image.Rectangle, (r.Width/tileSize+1)*(r.Height/tileSize+1))
	for y := 0; y < r.Height; y += tileSize {
		for x := 0; x < r.Width; x += tileSize {
			tiles <- image.Rect(x, y, minInt(x+tileSize, r.Width), minInt(y+tileSize, r.Height))
		}
	}
	close(tiles)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tile := range tiles {
				for _, tri := range triangles {
					rasterize(fb, tri, tile, r.Pipeline)
				}
				r.fillBackground(fb, tile, block)
			}
		}()
	}
	wg.Wait()

	return fb
}

// assemble runs the vertex transform stage over every instance and
// collects the screen-space triangles that survive projection.
func (r *Renderer) assemble(sc *scene.Scene, viewProj mgl32.Mat4) []screenTriangle {
	var out []screenTriangle
	for _, inst := range sc.Instances {
		normalMat := NormalMatrix(inst.Model)

		varyings := make([]Varying, len(inst.Mesh.Vertices))
		for i, v := range inst.Mesh.Vertices {
			varyings[i] = TransformVertex(v, inst.Model, normalMat, viewProj)
		}

		mat := inst.Mesh.Material
		inst.Mesh.Triangles(func(i0, i1, i2 uint32) {
			tri, ok := projectTriangle(varyings[i0], varyings[i1], varyings[i2], r.Width, r.Height)
			if !ok {
				return
			}
			tri.material = mat
			out = append(out, tri)
		})
	}
	return out
}

// fillBackground shades the tile's uncovered pixels with the sky,
// using the same camera-ray construction the panorama preview path
// does: unproject the pixel's NDC, rotate into world space with the
// inverse view.
func (r *Renderer) fillBackground(fb *Framebuffer, tile image.Rectangle, block scene.CameraBlock) {
	if r.Background == nil {
		return
	}
	projInv := block.Proj.Inv()

	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			idx := fb.index(x, y)
			if fb.Depth[idx] != math.MaxFloat32 {
				continue
			}

			ndcX := 2*(float32(x)+0.5)/float32(r.Width) - 1
			ndcY := 1 - 2*(float32(y)+0.5)/float32(r.Height)

			viewRay := projInv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
			viewDir := vmath.SafeNormalize(viewRay.Vec3(), mgl32.Vec3{0, 0, -1})
			worldDir := vmath.TransformDir(block.ViewInverse, viewDir)

			radiance := r.Background.Radiance(worldDir)
			mapped := pbr.ToneMap(r.Pipeline.ToneMap, radiance)
			fb.Color[idx] = mapped.Vec4(1)
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
