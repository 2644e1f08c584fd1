// Package env implements image-based lighting: equirectangular
// panoramas, cubemaps, the environment probe consumed by the shading
// core, and the offline baking passes that fill one (irradiance
// convolution, GGX prefiltering, split-sum BRDF integration).
package env

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/textures"
	"gltf-shade/vmath"
)

// Equirectangular mapping convention used throughout this codebase:
//
//	u = (atan2(z, x) + π) / 2π
//	v = 1 − (asin(y) + π/2) / π
//
// so u wraps azimuth with +X at u = 0.5 and the top image row is
// straight up. Encode and decode must stay exact inverses of each
// other; TestEquirectRoundTrip pins that down.

// DirToUV maps a direction (normalized internally) to equirectangular UV.
func DirToUV(dir mgl32.Vec3) mgl32.Vec2 {
	d := vmath.SafeNormalize(dir, mgl32.Vec3{0, 0, 1})
	phi := vmath.Atan2(d.Z(), d.X())
	theta := vmath.Asin(vmath.Clamp(d.Y(), -1, 1))
	u := (phi + vmath.Pi) / (2 * vmath.Pi)
	v := (theta + vmath.Pi/2) / vmath.Pi
	return mgl32.Vec2{u, 1 - v}
}

// UVToDir maps an equirectangular UV back to a unit direction.
func UVToDir(uv mgl32.Vec2) mgl32.Vec3 {
	phi := uv.X()*2*vmath.Pi - vmath.Pi
	theta := (1-uv.Y())*vmath.Pi - vmath.Pi/2

	cosTheta := vmath.Cos(theta)
	return mgl32.Vec3{
		cosTheta * vmath.Cos(phi),
		vmath.Sin(theta),
		cosTheta * vmath.Sin(phi),
	}
}

// Panorama is an equirectangular radiance image sampled by direction.
type Panorama struct {
	Tex *textures.Texture
}

func NewPanorama(tex *textures.Texture) *Panorama {
	return &Panorama{Tex: tex}
}

// Sample returns the panorama radiance in the given direction.
func (p *Panorama) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	c := p.Tex.Sample(DirToUV(dir))
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}
