package audio

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"resonance/internal/logger"
)

type fakeDevice struct {
	mu     sync.Mutex
	fill   FillFunc
	opened bool
	closed bool
}

func (d *fakeDevice) Open(sampleRate, framesPerBuffer int, fill FillFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fill = fill
	d.opened = true
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) render(frames int) []float32 {
	d.mu.Lock()
	fill := d.fill
	d.mu.Unlock()

	out := make([]float32, frames*2)
	fill(out)
	return out
}

type fakeLoader struct {
	mu     sync.Mutex
	frames int
	freq   float64
	fail   bool
	loads  []string
}

func (l *fakeLoader) Load(path string) (*Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, path)
	if l.fail {
		return nil, errors.New("not found")
	}

	frames := make([][2]float64, l.frames)
	for i := range frames {
		v := 0.8 * math.Sin(2*math.Pi*l.freq*float64(i)/44100)
		frames[i] = [2]float64{v, v}
	}
	return &Track{
		Path:     path,
		Format:   beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2},
		Streamer: NewBuffer(44100, frames),
	}, nil
}

func (l *fakeLoader) loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loads...)
}

func testLogger() *logger.Logger {
	return logger.NewWriterLogger("error", io.Discard)
}

func newTestPlayer(t *testing.T, loader TrackLoader, playlist ...string) (*Player, *fakeDevice) {
	t.Helper()

	dev := &fakeDevice{}
	p, err := NewPlayer(testLogger(), playlist, loader, dev, Options{
		SampleRate: 44100,
		Volume:     1,
		Rand:       rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("NewPlayer failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, dev
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func flush(t *testing.T, p *Player) {
	t.Helper()
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}

func startPlayer(t *testing.T, p *Player) {
	t.Helper()
	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "first track", func() bool { return p.Index() >= 0 })
}

func TestNewPlayer_EmptyPlaylist(t *testing.T) {
	_, err := NewPlayer(testLogger(), nil, &fakeLoader{}, &fakeDevice{}, Options{})
	if !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("Expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestPlayer_SampleRanges(t *testing.T) {
	p, _ := newTestPlayer(t, &fakeLoader{}, "a")

	if p.AnalyserCount() != 4 {
		t.Errorf("Expected 4 analysers, got %d", p.AnalyserCount())
	}
	if p.MinSampleRange() != 0 {
		t.Errorf("Expected min 0, got %v", p.MinSampleRange())
	}
	if p.MaxSampleRange() != float64(p.AnalyserCount()*255) {
		t.Errorf("Expected max %d, got %v", p.AnalyserCount()*255, p.MaxSampleRange())
	}
}

func TestPlayer_SkipWrapsAround(t *testing.T) {
	loader := &fakeLoader{frames: 44100, freq: 440}
	p, dev := newTestPlayer(t, loader, "a", "b", "c")
	startPlayer(t, p)

	if !dev.opened {
		t.Fatal("device not opened")
	}

	if err := p.LoadIndex(2); err != nil {
		t.Fatal(err)
	}
	if err := p.SkipNext(); err != nil {
		t.Fatal(err)
	}
	flush(t, p)
	if got := p.Index(); got != 0 {
		t.Errorf("SkipNext from last: expected index 0, got %d", got)
	}

	if err := p.SkipPrevious(); err != nil {
		t.Fatal(err)
	}
	flush(t, p)
	if got := p.Index(); got != 2 {
		t.Errorf("SkipPrevious from first: expected index 2, got %d", got)
	}
	if !p.Playing() {
		t.Error("Expected skipped track to be playing")
	}

	loads := loader.loaded()
	tail := loads[len(loads)-3:]
	if tail[0] != "c" || tail[1] != "a" || tail[2] != "c" {
		t.Errorf("Unexpected load order %v", loads)
	}
}

func TestPlayer_SkipBeforeFirstTrack(t *testing.T) {
	for _, tc := range []struct {
		name string
		skip func(*Player) error
		want int
	}{
		{"previous", (*Player).SkipPrevious, 2},
		{"next", (*Player).SkipNext, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlayer(testLogger(), []string{"a", "b", "c"}, &fakeLoader{frames: 44100, freq: 440}, &fakeDevice{}, Options{
				StartDelay: time.Hour,
				Rand:       rand.New(rand.NewSource(3)),
			})
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { p.Close() })
			if err := p.Start(); err != nil {
				t.Fatal(err)
			}

			if err := tc.skip(p); err != nil {
				t.Fatal(err)
			}
			flush(t, p)
			if got := p.Index(); got != tc.want {
				t.Errorf("Expected index %d, got %d", tc.want, got)
			}
		})
	}
}

func TestPlayer_FlushAfterClose(t *testing.T) {
	p, _ := newTestPlayer(t, &fakeLoader{frames: 16}, "a")
	startPlayer(t, p)
	p.Close()

	if err := p.Flush(); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Expected ErrPlayerClosed, got %v", err)
	}
}

func TestPlayer_AutoAdvance(t *testing.T) {
	loader := &fakeLoader{frames: 16, freq: 440}
	p, dev := newTestPlayer(t, loader, "a", "b")
	startPlayer(t, p)

	first := p.Index()
	dev.render(64)

	waitFor(t, "next track", func() bool { return p.Index() == (first+1)%2 })
	if len(loader.loaded()) < 2 {
		t.Errorf("Expected a second load, got %v", loader.loaded())
	}
}

func TestPlayer_LoadFailurePlaysSilence(t *testing.T) {
	loader := &fakeLoader{fail: true}
	p, dev := newTestPlayer(t, loader, "missing.mp3")
	startPlayer(t, p)

	if !p.Playing() {
		t.Error("Expected silent fallback to count as playing")
	}

	out := dev.render(4096)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %v, expected silence", i, v)
		}
	}
	if l := p.Loudness(); l != 0 {
		t.Errorf("Expected loudness 0 for silence, got %v", l)
	}
}

func TestPlayer_TogglePause(t *testing.T) {
	loader := &fakeLoader{frames: 44100, freq: 440}
	p, dev := newTestPlayer(t, loader, "a")
	startPlayer(t, p)

	if err := p.TogglePause(); err != nil {
		t.Fatal(err)
	}
	flush(t, p)
	if p.Playing() {
		t.Fatal("Expected paused player")
	}
	for _, v := range dev.render(256) {
		if v != 0 {
			t.Fatal("Paused player produced sound")
		}
	}

	if err := p.TogglePause(); err != nil {
		t.Fatal(err)
	}
	flush(t, p)
	if !p.Playing() {
		t.Fatal("Expected playing after second toggle")
	}

	loud := false
	for _, v := range dev.render(256) {
		if v != 0 {
			loud = true
		}
	}
	if !loud {
		t.Error("Resumed player produced only silence")
	}
}

func TestPlayer_LoudnessFollowsOutput(t *testing.T) {
	loader := &fakeLoader{frames: 44100, freq: 1000}
	p, dev := newTestPlayer(t, loader, "a")
	startPlayer(t, p)

	dev.render(4096)

	if l := p.Loudness(); l <= 0 || l > p.MaxSampleRange() {
		t.Errorf("Loudness %v outside (0, %v]", l, p.MaxSampleRange())
	}
	if bins := p.FrequencyData(1024); len(bins) != 1024 {
		t.Errorf("Expected 1024 bins, got %d", len(bins))
	}
	if bins := p.FrequencyData(333); bins != nil {
		t.Errorf("Expected nil for unknown resolution, got %d bins", len(bins))
	}
}

func TestPlayer_QueueFull(t *testing.T) {
	p, err := NewPlayer(testLogger(), []string{"a"}, &fakeLoader{}, &fakeDevice{}, Options{QueueSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	// Not started, so nothing drains the queue
	if err := p.SkipNext(); err != nil {
		t.Fatalf("first command rejected: %v", err)
	}
	if err := p.SkipNext(); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestPlayer_ClosedRejectsCommands(t *testing.T) {
	p, dev := newTestPlayer(t, &fakeLoader{frames: 10}, "a")
	startPlayer(t, p)

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !dev.closed {
		t.Error("Expected device to be closed")
	}
	if err := p.SkipNext(); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Expected ErrPlayerClosed, got %v", err)
	}
	if err := p.Start(); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Expected ErrPlayerClosed from Start, got %v", err)
	}
}
