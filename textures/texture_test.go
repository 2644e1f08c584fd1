package textures

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard() *Texture {
	t := New("checker", 2, 2)
	t.Set(0, 0, mgl32.Vec4{1, 1, 1, 1})
	t.Set(1, 0, mgl32.Vec4{0, 0, 0, 1})
	t.Set(0, 1, mgl32.Vec4{0, 0, 0, 1})
	t.Set(1, 1, mgl32.Vec4{1, 1, 1, 1})
	return t
}

func TestSolidSample(t *testing.T) {
	tex := NewSolid("red", mgl32.Vec4{1, 0, 0, 1})
	for _, uv := range []mgl32.Vec2{{0, 0}, {0.5, 0.5}, {-3, 7}} {
		assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, tex.Sample(uv))
	}
}

func TestBilinearCenter(t *testing.T) {
	tex := checkerboard()
	// Dead center of a 2x2 checkerboard averages all four texels.
	c := tex.Sample(mgl32.Vec2{0.5, 0.5})
	assert.InDelta(t, 0.5, c.X(), 1e-5)
	assert.InDelta(t, 0.5, c.Y(), 1e-5)
	assert.InDelta(t, 0.5, c.Z(), 1e-5)
}

func TestTexelCenterExact(t *testing.T) {
	tex := checkerboard()
	tex.Wrap = WrapClamp
	// uv at the center of texel (0,0) returns it unfiltered.
	c := tex.Sample(mgl32.Vec2{0.25, 0.25})
	assert.InDelta(t, 1.0, c.X(), 1e-5)
}

func TestWrapRepeat(t *testing.T) {
	tex := checkerboard()
	a := tex.Sample(mgl32.Vec2{0.25, 0.25})
	b := tex.Sample(mgl32.Vec2{1.25, 0.25})
	c := tex.Sample(mgl32.Vec2{-0.75, 0.25})
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestWrapClamp(t *testing.T) {
	tex := checkerboard()
	tex.Wrap = WrapClamp
	// Far outside the texture clamps to the corner texel.
	c := tex.Sample(mgl32.Vec2{-5, -5})
	assert.InDelta(t, 1.0, c.X(), 1e-5)
	c = tex.Sample(mgl32.Vec2{5, -5})
	assert.InDelta(t, 0.0, c.X(), 1e-5)
}

func TestFromImageSRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	linear := FromImage("gray", img, LoadOptions{ColorSpace: ColorSpaceLinear})
	srgb := FromImage("gray", img, LoadOptions{ColorSpace: ColorSpaceSRGB})

	assert.InDelta(t, 128.0/255.0, linear.At(0, 0).X(), 1e-4)
	// sRGB 0.5 decodes to roughly 0.2158 linear.
	assert.InDelta(t, 0.2158, srgb.At(0, 0).X(), 1e-3)
	// Alpha is never color-converted.
	assert.InDelta(t, 1.0, srgb.At(0, 0).W(), 1e-6)
}

func TestFromImageDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	tex := FromImage("big", img, LoadOptions{MaxSize: 16})
	require.Equal(t, 16, tex.Width)
	require.Equal(t, 8, tex.Height)
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 0.02, 0.18, 0.5, 1} {
		assert.InDelta(t, v, SRGBToLinear(LinearToSRGB(v)), 1e-5)
	}
}
