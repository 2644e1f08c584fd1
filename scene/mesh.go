package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
	"gltf-shade/materials"
)

// Mesh holds CPU-side vertex/index data for one primitive together
// with its material.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	Material *materials.Material
}

func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Material: materials.Default(),
	}
}

// Triangles calls fn for each triangle's three vertex indices. Meshes
// without an index buffer are treated as a flat triangle list.
func (m *Mesh) Triangles(fn func(i0, i1, i2 uint32)) {
	if len(m.Indices) > 0 {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			fn(m.Indices[i], m.Indices[i+1], m.Indices[i+2])
		}
		return
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		fn(uint32(i), uint32(i+1), uint32(i+2))
	}
}

// Instance places a mesh in the world with a model matrix. glTF node
// hierarchies are flattened into instances at load time.
type Instance struct {
	Mesh  *Mesh
	Model mgl32.Mat4
}

// Scene is everything one render call consumes: instanced geometry,
// the light list, and the camera. All fields are read-only during a
// draw.
type Scene struct {
	Instances []Instance
	Lights    []*Light
	Camera    *Camera
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) AddInstance(mesh *Mesh, model mgl32.Mat4) {
	s.Instances = append(s.Instances, Instance{Mesh: mesh, Model: model})
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}
