package materials

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"gltf-shade/core"
	"gltf-shade/textures"
)

// maxTextureSize bounds decoded material textures; CPU sampling gains
// nothing from 4k sources.
const maxTextureSize = 2048

// Library is the result of importing a glTF document's materials.
type Library struct {
	Materials []*Material
	Textures  []*textures.Texture
}

// Get returns the material for a primitive's material index, or the
// default material when the primitive names none (nil index).
func (l *Library) Get(index *int) *Material {
	if index == nil || *index < 0 || *index >= len(l.Materials) {
		return Default()
	}
	return l.Materials[*index]
}

// FromDocument imports every material in doc, decoding referenced
// textures at most once. dir resolves relative image URIs. Images that
// fail to decode are reported and their channels left unbound; a broken
// texture should not take the whole model down.
func FromDocument(doc *gltf.Document, dir string) (*Library, error) {
	lib := &Library{}

	// Decode each image once per color space; base color and emissive
	// need sRGB→linear conversion, the data channels are linear.
	srgbCache := make([]*textures.Texture, len(doc.Textures))
	linearCache := make([]*textures.Texture, len(doc.Textures))
	fetch := func(index int, cs textures.ColorSpace) *textures.Texture {
		if index < 0 || index >= len(doc.Textures) {
			return nil
		}
		cache := linearCache
		if cs == textures.ColorSpaceSRGB {
			cache = srgbCache
		}
		if cache[index] == nil {
			tex, err := decodeTexture(doc, dir, index, cs)
			if err != nil {
				fmt.Printf("gltf: texture %d: %v\n", index, err)
				return nil
			}
			cache[index] = tex
			lib.Textures = append(lib.Textures, tex)
		}
		return cache[index]
	}

	for _, gm := range doc.Materials {
		mat := Default()
		if gm.Name != "" {
			mat.Name = gm.Name
		}

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.BaseColorFactor = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			mat.RoughnessFactor = float32(pbr.RoughnessFactorOrDefault())
			mat.MetallicFactor = float32(pbr.MetallicFactorOrDefault())

			if tex := pbr.BaseColorTexture; tex != nil {
				mat.BaseColor = Channel{
					Texture: fetch(tex.Index, textures.ColorSpaceSRGB),
					UVSet:   clampUVSet(int(tex.TexCoord)),
				}
			}
			if tex := pbr.MetallicRoughnessTexture; tex != nil {
				mat.MetallicRoughness = Channel{
					Texture: fetch(tex.Index, textures.ColorSpaceLinear),
					UVSet:   clampUVSet(int(tex.TexCoord)),
				}
			}
		}

		ef := gm.EmissiveFactor
		mat.EmissiveFactor = core.Color{
			R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]),
		}.Vec3()

		if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
			mat.OcclusionStrength = float32(ot.StrengthOrDefault())
			mat.Occlusion = Channel{
				Texture: fetch(*ot.Index, textures.ColorSpaceLinear),
				UVSet:   clampUVSet(int(ot.TexCoord)),
			}
		}
		if et := gm.EmissiveTexture; et != nil {
			mat.Emissive = Channel{
				Texture: fetch(et.Index, textures.ColorSpaceSRGB),
				UVSet:   clampUVSet(int(et.TexCoord)),
			}
		}
		if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
			mat.NormalScale = float32(nt.ScaleOrDefault())
			mat.Normal = Channel{
				Texture: fetch(*nt.Index, textures.ColorSpaceLinear),
				UVSet:   clampUVSet(int(nt.TexCoord)),
			}
		}

		lib.Materials = append(lib.Materials, mat)
	}
	return lib, nil
}

// clampUVSet restricts a glTF texCoord selector to the two UV sets this
// pipeline interpolates.
func clampUVSet(set int) int {
	if set > 1 {
		fmt.Printf("Warning: texCoord set %d unsupported, using TEXCOORD_1\n", set)
		return 1
	}
	if set == 1 {
		return 1
	}
	return 0
}

// decodeTexture loads one glTF texture's image, from an embedded buffer
// view or an external file next to the document.
func decodeTexture(doc *gltf.Document, dir string, index int, cs textures.ColorSpace) (*textures.Texture, error) {
	gt := doc.Textures[index]
	if gt.Source == nil {
		return nil, fmt.Errorf("no image source")
	}
	img := doc.Images[*gt.Source]

	name := img.Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", *gt.Source)
	}
	opts := textures.LoadOptions{ColorSpace: cs, MaxSize: maxTextureSize}

	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("bufferview: %w", err)
		}
		decoded, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return textures.FromImage(name, decoded, opts), nil
	case img.URI != "" && !img.IsEmbeddedResource():
		return textures.Load(filepath.Join(dir, img.URI), opts)
	default:
		return nil, fmt.Errorf("unsupported image source")
	}
}
