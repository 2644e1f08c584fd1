// Package textures holds CPU-side images sampled by the shading core.
// Texels are stored as linear float32 RGBA so low-dynamic-range material
// textures and high-dynamic-range radiance data go through the same
// sampling path.
package textures

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

// WrapMode selects how sample coordinates outside [0,1) are remapped.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// ColorSpace describes how 8-bit source texels are encoded. Base color
// and emissive textures are sRGB per the glTF specification; normal,
// metallic-roughness and occlusion textures are linear.
type ColorSpace int

const (
	ColorSpaceLinear ColorSpace = iota
	ColorSpaceSRGB
)

// Texture is a CPU 2D texture with linear float texels.
type Texture struct {
	Name   string
	Width  int
	Height int
	Wrap   WrapMode
	// Texels in row-major order, top row first.
	Texels []mgl32.Vec4
}

// New creates a zeroed texture of the given size.
func New(name string, width, height int) *Texture {
	return &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		Texels: make([]mgl32.Vec4, width*height),
	}
}

// NewSolid creates a 1x1 texture holding a single value.
func NewSolid(name string, value mgl32.Vec4) *Texture {
	return &Texture{Name: name, Width: 1, Height: 1, Texels: []mgl32.Vec4{value}}
}

func (t *Texture) At(x, y int) mgl32.Vec4 {
	return t.Texels[y*t.Width+x]
}

func (t *Texture) Set(x, y int, v mgl32.Vec4) {
	t.Texels[y*t.Width+x] = v
}

// LoadOptions controls PNG/JPEG decoding.
type LoadOptions struct {
	// ColorSpace of the stored bytes; sRGB texels are converted to
	// linear at load time.
	ColorSpace ColorSpace
	// MaxSize, when > 0, downscales images whose largest edge exceeds
	// it. Keeps CPU sampling of oversized assets affordable.
	MaxSize int
	Wrap    WrapMode
}

// Load reads a PNG or JPEG file from disk into a float texture.
func Load(path string, opts LoadOptions) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return FromImage(path, img, opts), nil
}

// FromImage converts a decoded image into a float texture, applying the
// optional downscale and color-space conversion from opts.
func FromImage(name string, img image.Image, opts LoadOptions) *Texture {
	rgba := toRGBA(img)
	if opts.MaxSize > 0 {
		rgba = downscale(rgba, opts.MaxSize)
	}

	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()
	t := New(name, w, h)
	t.Wrap = opts.Wrap
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			r := float32(row[x*4+0]) / 255
			g := float32(row[x*4+1]) / 255
			b := float32(row[x*4+2]) / 255
			a := float32(row[x*4+3]) / 255
			if opts.ColorSpace == ColorSpaceSRGB {
				r = SRGBToLinear(r)
				g = SRGBToLinear(g)
				b = SRGBToLinear(b)
			}
			t.Set(x, y, mgl32.Vec4{r, g, b, a})
		}
	}
	return t
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	xdraw.Draw(rgba, bounds, img, bounds.Min, xdraw.Src)
	return rgba
}

// downscale shrinks img so its largest edge is at most maxSize,
// preserving aspect ratio.
func downscale(img *image.RGBA, maxSize int) *image.RGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	scale := float64(maxSize) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// SRGBToLinear converts one sRGB-encoded channel to linear.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB converts one linear channel to sRGB encoding.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*pow(c, 1/2.4) - 0.055
}
