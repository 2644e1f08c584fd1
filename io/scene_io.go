// Package io reads scene descriptions and mesh files the renderer can
// consume: a JSON scene format plus Wavefront OBJ/MTL import.
package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
	"gltf-shade/materials"
	"gltf-shade/scene"
	"gltf-shade/textures"
)

// SceneFile is the top-level structure of the JSON scene format.
type SceneFile struct {
	Version string       `json:"version"`
	Name    string       `json:"name"`
	Camera  CameraData   `json:"camera"`
	Lights  []LightData  `json:"lights"`
	Objects []ObjectData `json:"objects"`
}

// CameraData stores the camera placement and projection.
type CameraData struct {
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	FOV      float32    `json:"fov"`
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
}

// LightData stores one analytic light.
type LightData struct {
	Type      string     `json:"type"` // "directional" or "point"
	Position  [3]float32 `json:"position"`
	Direction [3]float32 `json:"direction"`
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
}

// ObjectData stores a placed mesh. Mesh is "sphere", "cube", or a path
// to an .obj or .gltf/.glb file (relative to the scene file).
type ObjectData struct {
	Name     string        `json:"name"`
	Position [3]float32    `json:"position"`
	Rotation [4]float32    `json:"rotation"` // quaternion (x, y, z, w)
	Scale    [3]float32    `json:"scale"`
	Mesh     string        `json:"mesh"`
	Size     float32       `json:"size,omitempty"` // primitive radius / edge
	Material *MaterialData `json:"material,omitempty"`
}

// MaterialData stores metallic-roughness factors plus optional texture
// paths per channel.
type MaterialData struct {
	Name             string     `json:"name"`
	BaseColor        [4]float32 `json:"base_color"`
	Roughness        float32    `json:"roughness"`
	Metallic         float32    `json:"metallic"`
	Emissive         [3]float32 `json:"emissive,omitempty"`
	BaseColorTexture string     `json:"base_color_texture,omitempty"`
	NormalTexture    string     `json:"normal_texture,omitempty"`
}

// SaveScene serializes a scene description to JSON.
func SaveScene(path string, sf *SceneFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene deserializes a JSON scene description.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}

	sf := &SceneFile{}
	if err := json.Unmarshal(data, sf); err != nil {
		return nil, fmt.Errorf("parse scene file %s: %w", path, err)
	}
	return sf, nil
}

// BuildScene loads a scene description and assembles it into a
// renderable scene. aspect is the output aspect ratio for the camera.
func BuildScene(path string, aspect float32) (*scene.Scene, error) {
	sf, err := LoadScene(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	sc := scene.NewScene()

	for _, ld := range sf.Lights {
		light, err := buildLight(ld)
		if err != nil {
			return nil, err
		}
		sc.AddLight(light)
	}

	for _, od := range sf.Objects {
		if err := addObject(sc, od, dir); err != nil {
			return nil, fmt.Errorf("object %q: %w", od.Name, err)
		}
	}

	cam := scene.NewCamera(
		defaultF32(sf.Camera.FOV, 60),
		aspect,
		defaultF32(sf.Camera.Near, 0.1),
		defaultF32(sf.Camera.Far, 1000),
	)
	cam.LookAt(arrayToVec3(sf.Camera.Position), arrayToVec3(sf.Camera.Target), mgl32.Vec3{0, 1, 0})
	sc.Camera = cam
	return sc, nil
}

func buildLight(ld LightData) (*scene.Light, error) {
	intensity := defaultF32(ld.Intensity, 1)
	switch ld.Type {
	case "directional", "":
		l := scene.NewDirectionalLight(arrayToVec3(ld.Direction), arrayToVec3(ld.Color))
		l.Intensity = intensity
		return l, nil
	case "point":
		l := scene.NewPointLight(arrayToVec3(ld.Position), arrayToVec3(ld.Color))
		l.Intensity = intensity
		return l, nil
	default:
		return nil, fmt.Errorf("unknown light type %q", ld.Type)
	}
}

func addObject(sc *scene.Scene, od ObjectData, dir string) error {
	model := objectTransform(od)

	switch {
	case od.Mesh == "sphere":
		mesh := scene.CreateSphere(defaultF32(od.Size, 1), 32, 16)
		applyMaterial(mesh, od.Material, dir)
		sc.AddInstance(mesh, model)
	case od.Mesh == "cube":
		mesh := scene.CreateCube(defaultF32(od.Size, 1))
		applyMaterial(mesh, od.Material, dir)
		sc.AddInstance(mesh, model)
	case filepath.Ext(od.Mesh) == ".obj":
		meshes, err := LoadOBJ(filepath.Join(dir, od.Mesh))
		if err != nil {
			return err
		}
		for _, mesh := range meshes {
			if od.Material != nil {
				applyMaterial(mesh, od.Material, dir)
			}
			sc.AddInstance(mesh, model)
		}
	case filepath.Ext(od.Mesh) == ".gltf" || filepath.Ext(od.Mesh) == ".glb":
		gltfModel, err := scene.LoadGLTF(filepath.Join(dir, od.Mesh))
		if err != nil {
			return err
		}
		for _, inst := range gltfModel.Instances {
			sc.AddInstance(inst.Mesh, model.Mul4(inst.Model))
		}
	default:
		return fmt.Errorf("unknown mesh %q", od.Mesh)
	}
	return nil
}

func objectTransform(od ObjectData) mgl32.Mat4 {
	t := core.Transform{
		Position: arrayToVec3(od.Position),
		Rotation: arrayToQuat(od.Rotation),
		Scale:    arrayToVec3(od.Scale),
	}
	if t.Scale == (mgl32.Vec3{}) {
		t.Scale = mgl32.Vec3{1, 1, 1}
	}
	return t.Matrix()
}

func applyMaterial(mesh *scene.Mesh, md *MaterialData, dir string) {
	if md == nil {
		return
	}
	mat := materials.Default()
	mat.Name = md.Name
	mat.BaseColorFactor = core.ColorFromVec4(mgl32.Vec4{md.BaseColor[0], md.BaseColor[1], md.BaseColor[2], md.BaseColor[3]})
	mat.RoughnessFactor = md.Roughness
	mat.MetallicFactor = md.Metallic
	mat.EmissiveFactor = arrayToVec3(md.Emissive)

	if md.BaseColorTexture != "" {
		if tex := loadChannelTexture(dir, md.BaseColorTexture, textures.ColorSpaceSRGB); tex != nil {
			mat.BaseColor = materials.Channel{Texture: tex}
		}
	}
	if md.NormalTexture != "" {
		if tex := loadChannelTexture(dir, md.NormalTexture, textures.ColorSpaceLinear); tex != nil {
			mat.Normal = materials.Channel{Texture: tex}
		}
	}
	mesh.Material = mat
}

func loadChannelTexture(dir, rel string, cs textures.ColorSpace) *textures.Texture {
	tex, err := textures.Load(filepath.Join(dir, rel), textures.LoadOptions{
		ColorSpace: cs,
		MaxSize:    2048,
		Wrap:       textures.WrapRepeat,
	})
	if err != nil {
		fmt.Printf("Warning: texture %s: %v\n", rel, err)
		return nil
	}
	return tex
}

func defaultF32(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}

func arrayToVec3(a [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{a[0], a[1], a[2]}
}

func arrayToQuat(a [4]float32) mgl32.Quat {
	if a == ([4]float32{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
}
