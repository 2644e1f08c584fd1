package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightKind int

const (
	LightDirectional LightKind = iota
	LightPoint
)

// Light is one analytic light. Color carries unnormalized linear
// radiance; Intensity scales it. For directional lights Direction is
// the direction the light travels (toward the surface); for point
// lights Position is the emitter's world position and the radiance
// falls off with inverse-square distance.
type Light struct {
	Kind      LightKind
	Direction mgl32.Vec3
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

func NewDirectionalLight(direction, color mgl32.Vec3) *Light {
	return &Light{
		Kind:      LightDirectional,
		Direction: direction,
		Color:     color,
		Intensity: 1,
	}
}

func NewPointLight(position, color mgl32.Vec3) *Light {
	return &Light{
		Kind:      LightPoint,
		Position:  position,
		Color:     color,
		Intensity: 1,
	}
}

// Radiance is the light's color scaled by intensity.
func (l *Light) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}
