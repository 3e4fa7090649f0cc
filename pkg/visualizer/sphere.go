package visualizer

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"resonance/internal/logger"
	"resonance/internal/util"
	"resonance/pkg/config"
	"resonance/pkg/scene"
)

const (
	sphereRadius    = 7
	sphereDetail    = 15
	sphereShininess = 100
	sphereSpecular  = 0xa45215

	// load is mapped onto this range before it drives the sphere
	LoadMin = 0.0
	LoadMax = 20.0
)

var spherePosition = mgl32.Vec3{4, 50, 0}

// Sphere is the textured, displaced centrepiece
type Sphere struct {
	Mesh     *scene.Mesh
	Material *scene.PhongMaterial

	profile config.SphereMaterialConfig
}

// NewSphere builds the untextured sphere for a material profile
func NewSphere(profile config.SphereMaterialConfig, special config.Color) *Sphere {
	mat := scene.NewPhongMaterial()
	mat.Side = scene.DoubleSide
	mat.Specular = scene.Hex(sphereSpecular)
	mat.Shininess = sphereShininess
	mat.Emissive = scene.Hex(uint32(special))
	mat.EmissiveIntensity = 0

	mesh := scene.NewMesh("sphere", scene.NewIcosahedronGeometry(sphereRadius, sphereDetail), mat)
	mesh.Position = spherePosition
	mesh.CastShadow = true
	mesh.ReceiveShadow = true
	mesh.Layers.Enable(BloomLayer)

	return &Sphere{Mesh: mesh, Material: mat, profile: profile}
}

// LoadTextures fetches every slot concurrently. A slot that fails to load gets
// a placeholder; only context cancellation is reported as an error.
// The displacement texture doubles as the emissive mask.
func (s *Sphere) LoadTextures(ctx context.Context, loader TextureLoader, assets *config.AssetPaths, log *logger.Logger) error {
	slots := config.TextureSlots
	textures := make([]*scene.Texture, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		i, slot := i, slot
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ref, err := assets.SphereTexture(s.profile, slot)
			if err == nil {
				textures[i], err = loader.LoadTexture(ref.Path, slot)
			}
			if err != nil {
				log.Warnf("Using placeholder for %s texture: %v", slot, err)
				textures[i] = Placeholder(slot, int64(i+1))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, slot := range slots {
		switch slot {
		case config.SlotColor:
			s.Material.Map = textures[i]
		case config.SlotAmbientOcclusion:
			s.Material.AOMap = textures[i]
		case config.SlotNormal:
			s.Material.NormalMap = textures[i]
		case config.SlotDisplacement:
			s.Material.DisplacementMap = textures[i]
			s.Material.EmissiveMask.Map = textures[i]
		}
	}

	return nil
}

// ColorPower is the emissive mask colour power for a given load
func (s *Sphere) ColorPower(load float64) float64 {
	power := s.profile.EmissiveMaskColorPower
	shaped := math.Max(1, util.RemapRange(load, LoadMin, LoadMax, 0, power-1))
	return power - shaped*s.profile.EmissiveMaskColorPowerInterpolateFactor
}

// Update pushes the frame's load into displacement and the emissive stage
func (s *Sphere) Update(load, loadPower float64) {
	s.Material.DisplacementScale = float32(math.Max(1, load))
	s.Material.EmissiveIntensity = float32(loadPower)
	s.Material.EmissiveMask.Contrast = float32(s.profile.EmissiveMaskContrast)
	s.Material.EmissiveMask.ColorPower = float32(s.ColorPower(load))
}

// Animate spins the sphere from the scaled frame time
func (s *Sphere) Animate(t float64) {
	sin, cos := math.Sincos(t)
	s.Mesh.SetRotation(
		float32(cos*math.Pi),
		float32(sin*cos*math.Pi),
		float32(sin*math.Pi),
	)
}
