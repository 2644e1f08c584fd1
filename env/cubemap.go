package env

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/textures"
	"gltf-shade/vmath"
)

// Face indices follow the OpenGL cubemap order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
	faceCount
)

// Cubemap is six square float faces plus an optional mip chain.
// Mips[0] is the base level; each level halves the face size.
type Cubemap struct {
	Size int
	Mips [][faceCount]*textures.Texture
}

// NewCubemap allocates a cubemap with the given base face size and mip
// level count (at least 1).
func NewCubemap(size, mipLevels int) *Cubemap {
	if mipLevels < 1 {
		mipLevels = 1
	}
	c := &Cubemap{Size: size}
	for level := 0; level < mipLevels; level++ {
		s := size >> level
		if s < 1 {
			s = 1
		}
		var faces [faceCount]*textures.Texture
		for f := 0; f < faceCount; f++ {
			tex := textures.New(fmt.Sprintf("face%d_mip%d", f, level), s, s)
			tex.Wrap = textures.WrapClamp
			faces[f] = tex
		}
		c.Mips = append(c.Mips, faces)
	}
	return c
}

// MaxLod is the index of the smallest mip level.
func (c *Cubemap) MaxLod() float32 {
	return float32(len(c.Mips) - 1)
}

// Sample fetches the base mip level in the given direction.
func (c *Cubemap) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	return c.sampleLevel(dir, 0)
}

// SampleLod fetches with trilinear interpolation between mip levels.
func (c *Cubemap) SampleLod(dir mgl32.Vec3, lod float32) mgl32.Vec3 {
	lod = vmath.Clamp(lod, 0, c.MaxLod())
	lo := int(math.Floor(float64(lod)))
	hi := lo + 1
	if hi >= len(c.Mips) {
		return c.sampleLevel(dir, lo)
	}
	t := lod - float32(lo)
	return vmath.MixV3(c.sampleLevel(dir, lo), c.sampleLevel(dir, hi), t)
}

func (c *Cubemap) sampleLevel(dir mgl32.Vec3, level int) mgl32.Vec3 {
	face, uv := DirToFaceUV(dir)
	s := c.Mips[level][face].Sample(uv)
	return mgl32.Vec3{s.X(), s.Y(), s.Z()}
}

// DirToFaceUV projects a direction onto the cube, returning the face
// index and the in-face UV in [0,1].
func DirToFaceUV(dir mgl32.Vec3) (int, mgl32.Vec2) {
	d := vmath.SafeNormalize(dir, mgl32.Vec3{0, 0, 1})
	x, y, z := d.X(), d.Y(), d.Z()
	ax, ay, az := abs(x), abs(y), abs(z)

	var face int
	var ma, u, v float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if x > 0 {
			face, u, v = FacePosX, -z, -y
		} else {
			face, u, v = FaceNegX, z, -y
		}
	case ay >= az:
		ma = ay
		if y > 0 {
			face, u, v = FacePosY, x, z
		} else {
			face, u, v = FaceNegY, x, -z
		}
	default:
		ma = az
		if z > 0 {
			face, u, v = FacePosZ, x, -y
		} else {
			face, u, v = FaceNegZ, -x, -y
		}
	}
	return face, mgl32.Vec2{(u/ma + 1) / 2, (v/ma + 1) / 2}
}

// FaceUVToDir is the inverse of DirToFaceUV: the unit direction through
// a face texel at in-face UV.
func FaceUVToDir(face int, uv mgl32.Vec2) mgl32.Vec3 {
	a := uv.X()*2 - 1
	b := uv.Y()*2 - 1

	var d mgl32.Vec3
	switch face {
	case FacePosX:
		d = mgl32.Vec3{1, -b, -a}
	case FaceNegX:
		d = mgl32.Vec3{-1, -b, a}
	case FacePosY:
		d = mgl32.Vec3{a, 1, b}
	case FaceNegY:
		d = mgl32.Vec3{a, -1, -b}
	case FacePosZ:
		d = mgl32.Vec3{a, -b, 1}
	default:
		d = mgl32.Vec3{-a, -b, -1}
	}
	return d.Normalize()
}

// BuildMips extends the cubemap's mip chain down to 1x1 (or mipLevels
// levels) with a 2x2 box filter. Radiance data stays float throughout.
func (c *Cubemap) BuildMips(mipLevels int) {
	if mipLevels < 1 {
		return
	}
	c.Mips = c.Mips[:1]
	for level := 1; level < mipLevels; level++ {
		prev := c.Mips[level-1]
		s := c.Size >> level
		if s < 1 {
			break
		}
		var faces [faceCount]*textures.Texture
		for f := 0; f < faceCount; f++ {
			tex := textures.New(fmt.Sprintf("face%d_mip%d", f, level), s, s)
			tex.Wrap = textures.WrapClamp
			for y := 0; y < s; y++ {
				for x := 0; x < s; x++ {
					sum := prev[f].At(2*x, 2*y).
						Add(prev[f].At(2*x+1, 2*y)).
						Add(prev[f].At(2*x, 2*y+1)).
						Add(prev[f].At(2*x+1, 2*y+1))
					tex.Set(x, y, sum.Mul(0.25))
				}
			}
			faces[f] = tex
		}
		c.Mips = append(c.Mips, faces)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
