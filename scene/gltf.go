package scene

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"gltf-shade/core"
	"gltf-shade/materials"
)

// Model is a loaded glTF document: primitives flattened into world
// instances plus the imported material library.
type Model struct {
	Instances []Instance
	Library   *materials.Library
}

// LoadGLTF opens a .glb or .gltf file and returns its default scene
// with node transforms flattened into per-instance model matrices.
// Primitives without a material reference get the default material.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	lib, err := materials.FromDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("gltf materials %q: %w", path, err)
	}

	// meshPrims[meshIdx] = one Mesh per primitive.
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				fmt.Printf("gltf: mesh %d prim %d: %v\n", mi, pi, err)
				continue
			}
			m.Material = lib.Get(prim.Material)
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	model := &Model{Library: lib}
	addNode := func(meshIdx int, transform mgl32.Mat4) {
		if meshIdx < 0 || meshIdx >= len(meshPrims) {
			return
		}
		for _, m := range meshPrims[meshIdx] {
			model.Instances = append(model.Instances, Instance{Mesh: m, Model: transform})
		}
	}

	var walk func(nodeIdx int, parent mgl32.Mat4)
	walk = func(nodeIdx int, parent mgl32.Mat4) {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[nodeIdx]
		transform := parent.Mul4(nodeMatrix(gn))
		if gn.Mesh != nil {
			addNode(*gn.Mesh, transform)
		}
		for _, child := range gn.Children {
			walk(child, transform)
		}
	}

	roots := rootNodes(doc)
	for _, r := range roots {
		walk(r, mgl32.Ident4())
	}
	return model, nil
}

// rootNodes returns the default scene's roots, or every parentless node
// when the document declares no default scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix composes a node's TRS into a model matrix.
func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()

	translation := mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2]))
	rotation := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Mat4()
	scale := mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2]))
	return translation.Mul4(rotation).Mul4(scale)
}

// loadPrimitive converts one glTF mesh primitive into a Mesh. Tangents
// come from the TANGENT attribute when present, otherwise they are
// generated from UV0.
func loadPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var tangents [][4]float32
	var uv0, uv1 [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TANGENT"]; ok {
		tangents, _ = modeler.ReadTangent(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uv0, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_1"]; ok {
		uv1, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = mgl32.Vec3{n[0], n[1], n[2]}
		}
		if i < len(tangents) {
			t := tangents[i]
			v.Tangent = mgl32.Vec4{t[0], t[1], t[2], t[3]}
		}
		if i < len(uv0) {
			v.UV0 = mgl32.Vec2{uv0[i][0], uv0[i][1]}
		}
		if i < len(uv1) {
			v.UV1 = mgl32.Vec2{uv1[i][0], uv1[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	m := NewMesh(name, verts, indices)
	if len(tangents) == 0 && len(uv0) > 0 {
		ComputeTangents(m)
	}
	return m, nil
}
