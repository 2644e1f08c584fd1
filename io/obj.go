package io

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
	"gltf-shade/materials"
	"gltf-shade/scene"
	"gltf-shade/textures"
)

// LoadOBJ parses a Wavefront .obj file into renderable meshes, one per
// object/group, with materials resolved from the referenced .mtl
// library. Faces are fan-triangulated; tangents are generated for
// meshes that carry UVs.
func LoadOBJ(path string) ([]*scene.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OBJ file: %w", err)
	}
	defer f.Close()

	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	mtls := make(map[string]*materials.Material)

	var meshes []*scene.Mesh
	current := scene.NewMesh("default", nil, nil)
	currentMaterial := ""
	vertexMap := make(map[string]uint32) // "v/vt/vn" spec -> vertex index

	flush := func() {
		if len(current.Vertices) > 0 {
			if mat, ok := mtls[currentMaterial]; ok {
				current.Material = mat
			}
			if hasUVs(current) {
				scene.ComputeTangents(current)
			}
			meshes = append(meshes, current)
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "v":
			if v, ok := parseVec3(parts); ok {
				positions = append(positions, v)
			}
		case "vn":
			if v, ok := parseVec3(parts); ok {
				normals = append(normals, v)
			}
		case "vt":
			if len(parts) >= 3 {
				u, _ := strconv.ParseFloat(parts[1], 32)
				v, _ := strconv.ParseFloat(parts[2], 32)
				// OBJ v runs bottom-up; textures are stored top-down.
				uvs = append(uvs, mgl32.Vec2{float32(u), 1 - float32(v)})
			}
		case "f":
			faceVerts := make([]uint32, 0, len(parts)-1)
			for _, spec := range parts[1:] {
				if idx, ok := vertexMap[spec]; ok {
					faceVerts = append(faceVerts, idx)
					continue
				}
				vertex := parseFaceVertex(spec, positions, normals, uvs)
				idx := uint32(len(current.Vertices))
				current.Vertices = append(current.Vertices, vertex)
				vertexMap[spec] = idx
				faceVerts = append(faceVerts, idx)
			}
			for i := 2; i < len(faceVerts); i++ {
				current.Indices = append(current.Indices,
					faceVerts[0], faceVerts[i-1], faceVerts[i])
			}

		case "o", "g":
			flush()
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			current = scene.NewMesh(name, nil, nil)
			vertexMap = make(map[string]uint32)

		case "usemtl":
			if len(parts) > 1 {
				currentMaterial = parts[1]
			}

		case "mtllib":
			if len(parts) > 1 {
				mtlPath := filepath.Join(filepath.Dir(path), parts[1])
				loaded, err := LoadMTL(mtlPath)
				if err != nil {
					fmt.Printf("Warning: MTL file %s: %v\n", mtlPath, err)
					continue
				}
				for k, v := range loaded {
					mtls[k] = v
				}
			}
		}
	}
	flush()

	if len(meshes) == 0 {
		return nil, fmt.Errorf("no mesh data in %s", path)
	}
	return meshes, scanner.Err()
}

// LoadMTL parses a Wavefront .mtl library into metallic-roughness
// materials. Classic Phong exponents are remapped: Ns 0..1000 becomes
// roughness 1..0; the PBR extension keys (Pr, Pm, Ke) take precedence
// when present.
func LoadMTL(path string) (map[string]*materials.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	result := make(map[string]*materials.Material)
	var current *materials.Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "newmtl":
			if len(parts) > 1 {
				current = materials.Default()
				current.Name = parts[1]
				current.MetallicFactor = 0 // OBJ materials are dielectric unless Pm says otherwise
				result[parts[1]] = current
			}
		case "Kd":
			if current != nil {
				if v, ok := parseVec3(parts); ok {
					current.BaseColorFactor = core.ColorFromVec3(v)
				}
			}
		case "Ke":
			if current != nil {
				if v, ok := parseVec3(parts); ok {
					current.EmissiveFactor = v
				}
			}
		case "Ns":
			if current != nil && len(parts) >= 2 {
				ns, _ := strconv.ParseFloat(parts[1], 32)
				r := 1 - float32(ns)/1000
				if r < 0 {
					r = 0
				}
				current.RoughnessFactor = r
			}
		case "Pr":
			if current != nil && len(parts) >= 2 {
				pr, _ := strconv.ParseFloat(parts[1], 32)
				current.RoughnessFactor = float32(pr)
			}
		case "Pm":
			if current != nil && len(parts) >= 2 {
				pm, _ := strconv.ParseFloat(parts[1], 32)
				current.MetallicFactor = float32(pm)
			}
		case "map_Kd":
			if current != nil && len(parts) > 1 {
				if tex := loadChannelTexture(dir, parts[len(parts)-1], textures.ColorSpaceSRGB); tex != nil {
					current.BaseColor = materials.Channel{Texture: tex}
				}
			}
		case "map_Bump", "bump", "norm":
			if current != nil && len(parts) > 1 {
				if tex := loadChannelTexture(dir, parts[len(parts)-1], textures.ColorSpaceLinear); tex != nil {
					current.Normal = materials.Channel{Texture: tex}
				}
			}
		}
	}

	return result, scanner.Err()
}

// parseFaceVertex resolves an OBJ face vertex spec ("v", "v/vt",
// "v//vn", or "v/vt/vn") with negative-index support.
func parseFaceVertex(spec string, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) core.Vertex {
	var v core.Vertex
	parts := strings.Split(spec, "/")

	if len(parts) >= 1 && parts[0] != "" {
		if idx, ok := objIndex(parts[0], len(positions)); ok {
			v.Position = positions[idx]
		}
	}
	if len(parts) >= 2 && parts[1] != "" {
		if idx, ok := objIndex(parts[1], len(uvs)); ok {
			v.UV0 = uvs[idx]
		}
	}
	if len(parts) >= 3 && parts[2] != "" {
		if idx, ok := objIndex(parts[2], len(normals)); ok {
			v.Normal = normals[idx]
		}
	}
	return v
}

// objIndex converts a 1-based (possibly negative, relative) OBJ index
// into a 0-based slice index.
func objIndex(s string, length int) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if idx < 0 {
		idx = length + idx + 1
	}
	if idx < 1 || idx > length {
		return 0, false
	}
	return idx - 1, true
}

func parseVec3(parts []string) (mgl32.Vec3, bool) {
	if len(parts) < 4 {
		return mgl32.Vec3{}, false
	}
	x, _ := strconv.ParseFloat(parts[1], 32)
	y, _ := strconv.ParseFloat(parts[2], 32)
	z, _ := strconv.ParseFloat(parts[3], 32)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}, true
}

func hasUVs(m *scene.Mesh) bool {
	for _, v := range m.Vertices {
		if v.UV0 != (mgl32.Vec2{}) {
			return true
		}
	}
	return false
}
