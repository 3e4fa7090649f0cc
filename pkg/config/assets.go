package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// AssetType represents the type of asset
type AssetType string

const (
	AssetTypeAudio   AssetType = "audio"
	AssetTypeTexture AssetType = "texture"
)

// TextureSlot names one of the sphere's texture inputs
type TextureSlot string

const (
	SlotColor            TextureSlot = "color"
	SlotAmbientOcclusion TextureSlot = "ambient_occlusion"
	SlotNormal           TextureSlot = "normal"
	SlotDisplacement     TextureSlot = "displacement"
)

// TextureSlots lists the sphere slots in load order
var TextureSlots = []TextureSlot{SlotColor, SlotAmbientOcclusion, SlotNormal, SlotDisplacement}

const (
	sphereMaterialDir = "SphereMaterial"
	musicDir          = "music"
)

// AssetRef points at one file in the asset tree
type AssetRef struct {
	Type AssetType
	Slot TextureSlot // empty for audio
	Path string
}

// AssetPaths resolves the fixed path templates under an asset root:
// <root>/SphereMaterial/<directory>/<file> and <root>/music/<track>
type AssetPaths struct {
	Root string
}

// NewAssetPaths creates a resolver for the configured root
func NewAssetPaths(cfg AssetsConfig) *AssetPaths {
	root := cfg.Root
	if root == "" {
		root = "assets"
	}
	return &AssetPaths{Root: root}
}

// File returns the file name configured for a slot
func (m SphereMaterialConfig) File(slot TextureSlot) string {
	switch slot {
	case SlotColor:
		return m.Color
	case SlotAmbientOcclusion:
		return m.AmbientOcclusion
	case SlotNormal:
		return m.Normal
	case SlotDisplacement:
		return m.Displacement
	default:
		return ""
	}
}

// SphereTexture resolves one texture of a material profile
func (a *AssetPaths) SphereTexture(m SphereMaterialConfig, slot TextureSlot) (AssetRef, error) {
	file := m.File(slot)
	if file == "" {
		return AssetRef{}, fmt.Errorf("material %q has no %s texture", m.Directory, slot)
	}

	return AssetRef{
		Type: AssetTypeTexture,
		Slot: slot,
		Path: a.join(sphereMaterialDir, m.Directory, file),
	}, nil
}

// SphereTextures resolves every slot that has a file configured, in slot order
func (a *AssetPaths) SphereTextures(m SphereMaterialConfig) []AssetRef {
	refs := make([]AssetRef, 0, len(TextureSlots))
	for _, slot := range TextureSlots {
		if ref, err := a.SphereTexture(m, slot); err == nil {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Track resolves a playlist entry
func (a *AssetPaths) Track(track string) AssetRef {
	return AssetRef{
		Type: AssetTypeAudio,
		Path: a.join(musicDir, track),
	}
}

// Playlist resolves every entry of the playlist, keeping order
func (a *AssetPaths) Playlist(music []string) []string {
	paths := make([]string, len(music))
	for i, track := range music {
		paths[i] = a.Track(track).Path
	}
	return paths
}

// join keeps document paths relative to the root, whichever separator they use
func (a *AssetPaths) join(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, a.Root)
	for _, p := range parts {
		p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
		clean = append(clean, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	}
	return filepath.Join(clean...)
}
