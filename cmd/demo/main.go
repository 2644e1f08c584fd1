// Command demo renders a scene to a PNG without a GPU: either a
// roughness x metallic sphere grid or a glTF asset, lit by analytic
// lights and optionally an image-based-lighting probe baked from an
// equirectangular panorama.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"gltf-shade/core"
	"gltf-shade/env"
	sceneio "gltf-shade/io"
	"gltf-shade/materials"
	"gltf-shade/pbr"
	"gltf-shade/renderer"
	"gltf-shade/scene"
	"gltf-shade/textures"
)

func main() {
	var (
		width     = flag.Int("width", 800, "output width in pixels")
		height    = flag.Int("height", 600, "output height in pixels")
		out       = flag.String("out", "render.png", "output PNG path")
		gltfPath  = flag.String("gltf", "", "glTF/GLB file to render instead of the sphere grid")
		scenePath = flag.String("scene", "", "JSON scene description to render")
		envPath   = flag.String("env", "", "equirectangular panorama (PNG/JPEG) for image-based lighting")
		tonemap   = flag.String("tonemap", "neutral", "tone mapping operator: reinhard, neutral, none")
		workers   = flag.Int("workers", 0, "render workers (0 = all CPUs)")
	)
	flag.Parse()

	if err := run(*width, *height, *out, *gltfPath, *scenePath, *envPath, *tonemap, *workers); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(width, height int, out, gltfPath, scenePath, envPath, tonemap string, workers int) error {
	pipeline := &pbr.Pipeline{
		Mode:    pbr.LightingDirect,
		ToneMap: parseToneMap(tonemap),
	}

	r := renderer.New(width, height, pipeline)
	r.Workers = workers

	if envPath != "" {
		pan, err := loadPanorama(envPath)
		if err != nil {
			return err
		}
		fmt.Println("Baking environment probe...")
		start := time.Now()
		pipeline.Probe = env.BakeProbe(pan, env.DefaultBakeOptions())
		pipeline.Mode = pbr.LightingIBL
		r.Background = renderer.SkyPanorama{Pan: pan}
		fmt.Printf("Probe baked in %v\n", time.Since(start).Round(time.Millisecond))
	}

	var sc *scene.Scene
	var err error
	switch {
	case scenePath != "":
		sc, err = sceneio.BuildScene(scenePath, float32(width)/float32(height))
	case gltfPath != "":
		sc, err = gltfScene(gltfPath, width, height)
	default:
		sc = sphereGridScene(width, height)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Rendering %dx%d (%d instances, %d lights)...\n",
		width, height, len(sc.Instances), len(sc.Lights))
	start := time.Now()
	fb := r.Render(sc)
	fmt.Printf("Rendered in %v\n", time.Since(start).Round(time.Millisecond))

	return writePNG(out, fb)
}

func parseToneMap(name string) pbr.ToneMapOperator {
	switch name {
	case "reinhard":
		return pbr.ToneMapReinhard
	case "none":
		return pbr.ToneMapNone
	default:
		return pbr.ToneMapPBRNeutral
	}
}

func loadPanorama(path string) (*env.Panorama, error) {
	tex, err := textures.Load(path, textures.LoadOptions{
		ColorSpace: textures.ColorSpaceSRGB,
		Wrap:       textures.WrapRepeat,
	})
	if err != nil {
		return nil, fmt.Errorf("load panorama %s: %w", path, err)
	}
	return env.NewPanorama(tex), nil
}

// sphereGridScene lays out a 5x5 grid sweeping roughness along x and
// metallic along y, the standard material-calibration arrangement.
func sphereGridScene(width, height int) *scene.Scene {
	sc := scene.NewScene()

	const n = 5
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			mesh := scene.CreateSphere(0.45, 32, 16)
			mesh.Material = &materials.Material{
				Name:            fmt.Sprintf("grid_r%d_c%d", row, col),
				BaseColorFactor: core.Color{R: 0.8, G: 0.2, B: 0.2, A: 1},
				// Clamp roughness away from 0 so the lobe stays visible.
				RoughnessFactor:   mgl32.Clamp(float32(col)/float32(n-1), 0.05, 1),
				MetallicFactor:    float32(row) / float32(n-1),
				OcclusionStrength: 1,
				NormalScale:       1,
			}
			x := float32(col) - float32(n-1)/2
			y := float32(row) - float32(n-1)/2
			sc.AddInstance(mesh, mgl32.Translate3D(x, y, 0))
		}
	}

	sc.AddLight(scene.NewDirectionalLight(mgl32.Vec3{-0.5, -1, -0.7}, mgl32.Vec3{3, 3, 3}))
	sc.AddLight(scene.NewPointLight(mgl32.Vec3{3, 3, 4}, mgl32.Vec3{20, 18, 15}))

	cam := scene.NewCamera(45, float32(width)/float32(height), 0.1, 100)
	cam.LookAt(mgl32.Vec3{0, 0, 7}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	sc.Camera = cam
	return sc
}

func gltfScene(path string, width, height int) (*scene.Scene, error) {
	model, err := scene.LoadGLTF(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	sc := scene.NewScene()
	sc.Instances = model.Instances
	sc.AddLight(scene.NewDirectionalLight(mgl32.Vec3{-0.5, -1, -0.7}, mgl32.Vec3{3, 3, 3}))

	cam := scene.NewCamera(45, float32(width)/float32(height), 0.1, 1000)
	cam.LookAt(mgl32.Vec3{2, 1.5, 3}, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 1, 0})
	sc.Camera = cam
	return sc, nil
}

func writePNG(path string, fb *renderer.Framebuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, fb.Resolve()); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	fmt.Println("Wrote", path)
	return nil
}
