package pbr

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/vmath"
)

// ToneMapOperator selects how linear radiance is compressed for display.
type ToneMapOperator int

const (
	// ToneMapNone passes radiance through (saturated), for debugging.
	ToneMapNone ToneMapOperator = iota
	// ToneMapReinhard is c/(c+1) per channel.
	ToneMapReinhard
	// ToneMapPBRNeutral is the hue-preserving neutral operator: linear
	// below the knee, compressed and desaturated highlights above it.
	ToneMapPBRNeutral
)

// ToneMap applies the selected operator to a linear radiance value.
func ToneMap(op ToneMapOperator, c mgl32.Vec3) mgl32.Vec3 {
	switch op {
	case ToneMapReinhard:
		return Reinhard(c)
	case ToneMapPBRNeutral:
		return PBRNeutral(c)
	default:
		return mgl32.Vec3{
			vmath.Saturate(c.X()),
			vmath.Saturate(c.Y()),
			vmath.Saturate(c.Z()),
		}
	}
}

// Reinhard maps [0,∞) to [0,1) per channel, monotonically.
func Reinhard(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		c.X() / (c.X() + 1),
		c.Y() / (c.Y() + 1),
		c.Z() / (c.Z() + 1),
	}
}

// PBR Neutral constants: colors whose peak stays below the knee pass
// through linearly (after the black-level offset); only highlights are
// compressed and desaturated.
const (
	neutralStartCompression float32 = 0.76
	neutralDesaturation     float32 = 0.15
)

// PBRNeutral is the Khronos PBR Neutral tone mapper.
func PBRNeutral(c mgl32.Vec3) mgl32.Vec3 {
	x := vmath.MinComp(c)
	offset := float32(0.04)
	if x < 0.08 {
		offset = x - 6.25*x*x
	}
	c = vmath.AddScalar(c, -offset)

	peak := vmath.MaxComp(c)
	if peak < neutralStartCompression {
		return c
	}

	d := 1 - neutralStartCompression
	newPeak := 1 - d*d/(peak+d-neutralStartCompression)
	c = c.Mul(newPeak / peak)

	g := 1 - 1/(neutralDesaturation*(peak-newPeak)+1)
	return vmath.MixV3(c, vmath.Splat(newPeak), g)
}
