// Package renderer is the CPU reference renderer: a perspective-correct
// software rasterizer that feeds interpolated fragments through the pbr
// shading pipeline, tiled across a worker pool. It exists so the
// shading math can be exercised and imaged without a GPU.
package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/textures"
)

// Framebuffer holds linear HDR radiance plus a depth buffer. Radiance
// stays unbounded float until Resolve tone-maps it for display.
type Framebuffer struct {
	Width  int
	Height int
	Color  []mgl32.Vec4
	Depth  []float32
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]mgl32.Vec4, width*height),
		Depth:  make([]float32, width*height),
	}
}

// Clear resets every pixel to the given radiance and the depth buffer
// to the far plane.
func (fb *Framebuffer) Clear(c mgl32.Vec4) {
	for i := range fb.Color {
		fb.Color[i] = c
		fb.Depth[i] = math.MaxFloat32
	}
}

func (fb *Framebuffer) index(x, y int) int {
	return y*fb.Width + x
}

func (fb *Framebuffer) SetPixel(x, y int, c mgl32.Vec4) {
	fb.Color[fb.index(x, y)] = c
}

func (fb *Framebuffer) Pixel(x, y int) mgl32.Vec4 {
	return fb.Color[fb.index(x, y)]
}

func (fb *Framebuffer) DepthAt(x, y int) float32 {
	return fb.Depth[fb.index(x, y)]
}

// Resolve converts the (already tone-mapped) color buffer into an sRGB
// 8-bit image.
func (fb *Framebuffer) Resolve() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixel(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: encodeSRGB(c.X()),
				G: encodeSRGB(c.Y()),
				B: encodeSRGB(c.Z()),
				A: encodeUnit(c.W()),
			})
		}
	}
	return img
}

func encodeSRGB(v float32) uint8 {
	return encodeUnit(textures.LinearToSRGB(v))
}

func encodeUnit(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
