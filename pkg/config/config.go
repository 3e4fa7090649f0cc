package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"resonance/internal/util"
)

var (
	// ErrNoLightSchemes means the document defines no light scheme to pick from
	ErrNoLightSchemes = errors.New("config: no light schemes defined")
	// ErrNoSphereMaterials means the document defines no sphere material profile
	ErrNoSphereMaterials = errors.New("config: no sphere materials defined")
	// ErrNoMusic means the playlist is empty
	ErrNoMusic = errors.New("config: music playlist is empty")
)

// Config represents the main configuration
type Config struct {
	SphereMaterials      []SphereMaterialConfig `yaml:"sphere_materials" json:"sphere_materials"`
	Music                []string               `yaml:"music" json:"music"`
	BloomComposerEnabled bool                   `yaml:"bloom_composer_enabled" json:"bloom_composer_enabled"`
	Lights               []LightScheme          `yaml:"lights" json:"lights"`

	Graphics GraphicsConfig `yaml:"graphics" json:"graphics"`
	Bloom    BloomConfig    `yaml:"bloom" json:"bloom"`
	Audio    AudioConfig    `yaml:"audio" json:"audio"`
	Assets   AssetsConfig   `yaml:"assets" json:"assets"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// SphereMaterialConfig is one selectable sphere look: a texture directory
// plus the constants shaping the emissive mask
type SphereMaterialConfig struct {
	Directory        string `yaml:"directory" json:"directory"`
	Color            string `yaml:"color" json:"color"`
	AmbientOcclusion string `yaml:"ambient_occlusion" json:"ambient_occlusion"`
	Normal           string `yaml:"normal" json:"normal"`
	Displacement     string `yaml:"displacement" json:"displacement"`

	EmissiveMaskContrast                    float64 `yaml:"emissiveMaskContrast" json:"emissiveMaskContrast"`
	EmissiveMaskColorPower                  float64 `yaml:"emissiveMaskColorPower" json:"emissiveMaskColorPower"`
	EmissiveMaskColorPowerInterpolateFactor float64 `yaml:"emissiveMaskColorPowerInterpolateFactor" json:"emissiveMaskColorPowerInterpolateFactor"`
}

// LightScheme fixes the session colours
type LightScheme struct {
	SpecialColor     Color         `yaml:"special_color" json:"special_color"`
	MainLightColor   Color         `yaml:"main_light_color" json:"main_light_color"`
	DancerLightColor ColorGradient `yaml:"dancer_light_color" json:"dancer_light_color"`
}

// ColorGradient is a two stop linear gradient
type ColorGradient struct {
	From Color `yaml:"from" json:"from"`
	To   Color `yaml:"to" json:"to"`
}

// GraphicsConfig contains graphics-related configuration
type GraphicsConfig struct {
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	Fullscreen bool    `yaml:"fullscreen" json:"fullscreen"`
	VSync      bool    `yaml:"vsync" json:"vsync"`
	Title      string  `yaml:"title" json:"title"`
	FOV        float64 `yaml:"fov" json:"fov"`
	PixelRatio float64 `yaml:"pixel_ratio" json:"pixel_ratio"`
}

// BloomConfig tunes the glow pipeline
type BloomConfig struct {
	Strength  float64 `yaml:"strength" json:"strength"`
	Radius    float64 `yaml:"radius" json:"radius"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Exposure  float64 `yaml:"exposure" json:"exposure"`
}

// AudioConfig contains audio-related configuration
type AudioConfig struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	Volume          float64 `yaml:"volume" json:"volume"`
	SampleRate      int     `yaml:"sample_rate" json:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer" json:"frames_per_buffer"`
	StartDelayMs    int     `yaml:"start_delay_ms" json:"start_delay_ms"`
	SilenceSeconds  float64 `yaml:"silence_seconds" json:"silence_seconds"`
	CommandQueue    int     `yaml:"command_queue" json:"command_queue"`
}

// AssetsConfig locates the read-only asset tree
type AssetsConfig struct {
	Root string `yaml:"root" json:"root"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Session holds the choices made once per run
type Session struct {
	Lights        LightScheme
	Material      SphereMaterialConfig
	MaterialIndex int
}

// DefaultConfig creates a default configuration.
// The domain lists stay empty; a document has to provide them.
func DefaultConfig() *Config {
	return &Config{
		BloomComposerEnabled: true,
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Title:      "resonance",
			FOV:        38,
			PixelRatio: 1,
		},
		Bloom: BloomConfig{
			Strength:  1,
			Radius:    0.5,
			Threshold: 0.1,
			Exposure:  1,
		},
		Audio: AudioConfig{
			Enabled:         true,
			Volume:          1,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			StartDelayMs:    1000,
			SilenceSeconds:  2,
			CommandQueue:    16,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from a file.
// The format follows the extension: .json is JSON, anything else YAML.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		format = "json"
	}

	return Parse(data, format)
}

// Parse decodes a document over the defaults
func Parse(data []byte, format string) (*Config, error) {
	cfg := DefaultConfig()

	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a file as YAML
func SaveConfig(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate reports the first problem that makes the document unusable
func (c *Config) Validate() error {
	if len(c.Lights) == 0 {
		return ErrNoLightSchemes
	}
	if len(c.SphereMaterials) == 0 {
		return ErrNoSphereMaterials
	}
	if len(c.Music) == 0 {
		return ErrNoMusic
	}

	for i, m := range c.SphereMaterials {
		if m.Directory == "" {
			return fmt.Errorf("sphere_materials[%d]: directory is empty", i)
		}
	}
	for i, track := range c.Music {
		if strings.TrimSpace(track) == "" {
			return fmt.Errorf("music[%d]: empty track path", i)
		}
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics: invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.FOV <= 0 || c.Graphics.FOV >= 180 {
		return fmt.Errorf("graphics: fov %v out of range", c.Graphics.FOV)
	}
	if c.Audio.Volume < 0 {
		return fmt.Errorf("audio: negative volume %v", c.Audio.Volume)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio: invalid sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.CommandQueue <= 0 {
		return fmt.Errorf("audio: command queue must be positive")
	}

	return nil
}

// SelectSession picks one light scheme and one sphere material uniformly at random
func (c *Config) SelectSession(rng *rand.Rand) (*Session, error) {
	lights, _, ok := util.RandomElement(rng, c.Lights)
	if !ok {
		return nil, ErrNoLightSchemes
	}

	material, idx, ok := util.RandomElement(rng, c.SphereMaterials)
	if !ok {
		return nil, ErrNoSphereMaterials
	}

	return &Session{
		Lights:        lights,
		Material:      material,
		MaterialIndex: idx,
	}, nil
}
