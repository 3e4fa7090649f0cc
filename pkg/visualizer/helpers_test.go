package visualizer

import (
	"errors"
	"image"
	"io"
	"sync"

	"resonance/internal/logger"
	"resonance/pkg/config"
	"resonance/pkg/scene"
)

type fakePipeline struct {
	mu       sync.Mutex
	renders  int
	width    int
	height   int
	err      error
	onRender func()
}

func (p *fakePipeline) Render() error {
	p.mu.Lock()
	p.renders++
	hook := p.onRender
	err := p.err
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (p *fakePipeline) SetSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

func (p *fakePipeline) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

type fakeAudio struct {
	loudness float64
	bins     []byte
}

func (a *fakeAudio) Loudness() float64 { return a.loudness }

func (a *fakeAudio) FrequencyData(resolution int) []byte {
	if resolution != BoardResolution {
		return nil
	}
	return a.bins
}

func (a *fakeAudio) MinSampleRange() float64 { return 0 }
func (a *fakeAudio) MaxSampleRange() float64 { return 4 * 255 }

type fakeTextures struct {
	mu    sync.Mutex
	fail  bool
	gate  chan struct{}
	paths []string
}

func (l *fakeTextures) LoadTexture(path string, slot config.TextureSlot) (*scene.Texture, error) {
	if l.gate != nil {
		<-l.gate
	}

	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.mu.Unlock()

	if l.fail {
		return nil, errors.New("missing")
	}
	return scene.NewTexture(path, image.NewRGBA(image.Rect(0, 0, 4, 4)), slot == config.SlotColor), nil
}

func testLogger() *logger.Logger {
	return logger.NewWriterLogger("error", io.Discard)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SphereMaterials = []config.SphereMaterialConfig{
		{Directory: "a", Color: "c.png", AmbientOcclusion: "ao.png", Normal: "n.png", Displacement: "d.png",
			EmissiveMaskContrast: 2, EmissiveMaskColorPower: 4, EmissiveMaskColorPowerInterpolateFactor: 0.5},
		{Directory: "b", Color: "c.png", AmbientOcclusion: "ao.png", Normal: "n.png", Displacement: "d.png",
			EmissiveMaskContrast: 1, EmissiveMaskColorPower: 2, EmissiveMaskColorPowerInterpolateFactor: 1},
		{Directory: "c", Color: "c.png", AmbientOcclusion: "ao.png", Normal: "n.png", Displacement: "d.png",
			EmissiveMaskContrast: 0.5, EmissiveMaskColorPower: 3, EmissiveMaskColorPowerInterpolateFactor: 0.25},
	}
	cfg.Music = []string{"one.mp3", "two.wav"}
	cfg.BloomComposerEnabled = true
	cfg.Lights = []config.LightScheme{{
		SpecialColor:     0xff8800,
		MainLightColor:   0xffffff,
		DancerLightColor: config.ColorGradient{From: 0x0000ff, To: 0xff0000},
	}}
	return cfg
}

func testContext() *Context {
	cfg := testConfig()
	return NewContext(cfg, &config.Session{Lights: cfg.Lights[0], Material: cfg.SphereMaterials[0]}, testLogger())
}
