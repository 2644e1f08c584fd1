package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraBlock is the per-draw camera uniform data consumed by the
// renderer: view, projection, and the inverse view whose translation
// column is the world-space eye position.
type CameraBlock struct {
	View        mgl32.Mat4
	Proj        mgl32.Mat4
	ViewInverse mgl32.Mat4
}

// EyePosition extracts the world-space camera position from the inverse
// view matrix.
func (b CameraBlock) EyePosition() mgl32.Vec3 {
	c := b.ViewInverse.Col(3)
	return mgl32.Vec3{c.X(), c.Y(), c.Z()}
}

// Camera is a perspective view camera.
type Camera struct {
	FOV         float32 // vertical field of view, degrees
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	view mgl32.Mat4

	projCache mgl32.Mat4
	projDirty bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := &Camera{
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		view:        mgl32.Ident4(),
		projDirty:   true,
	}
	return c
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.projDirty = true
	}
}

// LookAt places the camera at eye facing target.
func (c *Camera) LookAt(eye, target, up mgl32.Vec3) {
	c.view = mgl32.LookAtV(eye, target, up)
}

// SetView installs an externally computed view matrix.
func (c *Camera) SetView(view mgl32.Mat4) {
	c.view = view
}

func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

func (c *Camera) Proj() mgl32.Mat4 {
	if c.projDirty {
		c.projCache = mgl32.Perspective(
			mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
		c.projDirty = false
	}
	return c.projCache
}

// Block snapshots the camera into the per-draw uniform form.
func (c *Camera) Block() CameraBlock {
	return CameraBlock{
		View:        c.view,
		Proj:        c.Proj(),
		ViewInverse: c.view.Inv(),
	}
}
