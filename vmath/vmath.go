// Package vmath supplies the handful of shading-math operations that
// mgl32 does not provide directly: component-wise vector arithmetic,
// reflection, interpolation, and the epsilon clamps that keep the BRDF
// free of NaNs. Vector and matrix types themselves are mgl32's.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the minimum value for any cosine term used as a divisor or
// as the base of a real exponent.
const Epsilon = 1e-7

// Pi as float32, to avoid per-call conversions in shading loops.
const Pi = float32(math.Pi)

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0, 1].
func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

// ClampCos clamps a cosine term away from zero so it can be divided by
// or raised to a real power.
func ClampCos(x float32) float32 {
	if x < Epsilon {
		return Epsilon
	}
	return x
}

func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// MixV3 interpolates component-wise between a and b.
func MixV3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// MulV3 is the component-wise (Hadamard) product.
func MulV3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

// DivV3 is the component-wise quotient.
func DivV3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() / b.X(), a.Y() / b.Y(), a.Z() / b.Z()}
}

// AddScalar adds s to every component of v.
func AddScalar(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{v.X() + s, v.Y() + s, v.Z() + s}
}

// Splat returns the vector (s, s, s).
func Splat(s float32) mgl32.Vec3 {
	return mgl32.Vec3{s, s, s}
}

// Reflect returns the reflection of incident vector i about unit normal n.
func Reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * i.Dot(n)))
}

// SafeNormalize normalizes v, returning fallback when v has (near) zero
// length. Zero-length inputs are a caller precondition violation for the
// shading entry points; this keeps downstream math finite regardless.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return fallback
	}
	return v.Mul(1 / l)
}

// Pow is float32 math.Pow.
func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// Pow5 computes x^5 without going through math.Pow.
func Pow5(x float32) float32 {
	x2 := x * x
	return x2 * x2 * x
}

func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }

func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

func Asin(x float32) float32 {
	return float32(math.Asin(float64(x)))
}

// Luminance is the Rec. 709 luma of a linear RGB color.
func Luminance(c mgl32.Vec3) float32 {
	return 0.2126*c.X() + 0.7152*c.Y() + 0.0722*c.Z()
}

// MinComp returns the smallest component of c.
func MinComp(c mgl32.Vec3) float32 {
	m := c.X()
	if c.Y() < m {
		m = c.Y()
	}
	if c.Z() < m {
		m = c.Z()
	}
	return m
}

// MaxComp returns the largest component of c.
func MaxComp(c mgl32.Vec3) float32 {
	m := c.X()
	if c.Y() > m {
		m = c.Y()
	}
	if c.Z() > m {
		m = c.Z()
	}
	return m
}

// TransformPoint applies m to p as a position (w = 1) and divides by w.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	w := v.W()
	if w == 0 {
		w = 1
	}
	return mgl32.Vec3{v.X() / w, v.Y() / w, v.Z() / w}
}

// TransformDir applies m to d as a direction (w = 0).
func TransformDir(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(d.Vec4(0))
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}
