package textures

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sample returns the bilinearly filtered texel at uv. Coordinates
// outside [0,1) are remapped per the texture's wrap mode; v grows
// downward (top row of the image is v = 0).
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if t.Width == 1 && t.Height == 1 {
		return t.Texels[0]
	}

	// Texel-center addressing: uv (0,0) lands on the center of the
	// first texel, uv (1,1) on the center of the last.
	fx := uv.X()*float32(t.Width) - 0.5
	fy := uv.Y()*float32(t.Height) - 0.5

	x0 := int(floor(fx))
	y0 := int(floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := t.At(t.wrapX(x0), t.wrapY(y0))
	c10 := t.At(t.wrapX(x0+1), t.wrapY(y0))
	c01 := t.At(t.wrapX(x0), t.wrapY(y0+1))
	c11 := t.At(t.wrapX(x0+1), t.wrapY(y0+1))

	top := lerp4(c00, c10, tx)
	bot := lerp4(c01, c11, tx)
	return lerp4(top, bot, ty)
}

func (t *Texture) wrapX(x int) int { return wrapIndex(x, t.Width, t.Wrap) }
func (t *Texture) wrapY(y int) int { return wrapIndex(y, t.Height, t.Wrap) }

func wrapIndex(i, n int, mode WrapMode) int {
	switch mode {
	case WrapClamp:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	default: // WrapRepeat
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
}

func lerp4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func floor(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

func pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}
