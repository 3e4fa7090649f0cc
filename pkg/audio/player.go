package audio

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"resonance/internal/logger"
	"resonance/internal/util"
	"resonance/pkg/config"
)

var (
	// ErrEmptyPlaylist is returned when a player is built without tracks
	ErrEmptyPlaylist = errors.New("audio: empty playlist")
	// ErrPlayerClosed is returned by transport calls after Close
	ErrPlayerClosed = errors.New("audio: player closed")
	// ErrQueueFull is returned when the transport is too far behind to accept a command
	ErrQueueFull = errors.New("audio: transport queue full")
)

const resampleQuality = 4

// Options tune a Player
type Options struct {
	SampleRate      int
	FramesPerBuffer int
	Volume          float64
	StartDelay      time.Duration
	SilenceSeconds  float64
	QueueSize       int
	Rand            *rand.Rand
}

// OptionsFromConfig converts the audio section of the configuration
func OptionsFromConfig(cfg config.AudioConfig) Options {
	return Options{
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Volume:          cfg.Volume,
		StartDelay:      time.Duration(cfg.StartDelayMs) * time.Millisecond,
		SilenceSeconds:  cfg.SilenceSeconds,
		QueueSize:       cfg.CommandQueue,
	}
}

type commandKind int

const (
	cmdLoad commandKind = iota
	cmdNext
	cmdPrevious
	cmdPlay
	cmdPause
	cmdTogglePause
	cmdFlush
)

type command struct {
	kind  commandKind
	index int
	done  chan struct{}
}

// Player plays a fixed playlist and feeds a Spectrum with what it outputs.
//
// Transport commands are queued and executed one at a time, in order, by a
// single goroutine. A load always runs to completion: the current track is
// stopped, the new one decoded, then playback resumes.
type Player struct {
	log      *logger.Logger
	loader   TrackLoader
	device   Device
	playlist []string
	opts     Options
	format   beep.Format
	rng      *rand.Rand

	commands chan command
	ended    chan uint64
	quit     chan struct{}
	wg       sync.WaitGroup
	timer    *time.Timer

	spectrum *Spectrum
	tap      *Tap
	scratch  [][2]float64

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	index   int
	gen     uint64
	started bool
	closed  bool
}

// NewPlayer creates a player over an ordered playlist
func NewPlayer(log *logger.Logger, playlist []string, loader TrackLoader, device Device, opts Options) (*Player, error) {
	if len(playlist) == 0 {
		return nil, ErrEmptyPlaylist
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.FramesPerBuffer <= 0 {
		opts.FramesPerBuffer = 1024
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.SilenceSeconds <= 0 {
		opts.SilenceSeconds = 2
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	largest := 0
	for _, r := range Resolutions {
		if r*2 > largest {
			largest = r * 2
		}
	}
	tap := NewTap(largest)

	return &Player{
		log:      log,
		loader:   loader,
		device:   device,
		playlist: append([]string(nil), playlist...),
		opts:     opts,
		format:   beep.Format{SampleRate: beep.SampleRate(opts.SampleRate), NumChannels: 2, Precision: 2},
		rng:      rng,
		commands: make(chan command, opts.QueueSize),
		ended:    make(chan uint64, 4),
		quit:     make(chan struct{}),
		spectrum: NewSpectrum(tap, Resolutions...),
		tap:      tap,
		index:    -1,
	}, nil
}

// Start opens the device and, after the configured delay, begins playing a
// randomly chosen track
func (p *Player) Start() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPlayerClosed
	}
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.mu.Unlock()

	if err := p.device.Open(p.opts.SampleRate, p.opts.FramesPerBuffer, p.Fill); err != nil {
		return err
	}

	p.wg.Add(1)
	go p.run()

	first := util.RandomIndex(p.rng, len(p.playlist))
	p.log.Infof("Starting playback with track %d (%s) in %v", first, p.playlist[first], p.opts.StartDelay)

	p.mu.Lock()
	p.timer = time.AfterFunc(p.opts.StartDelay, func() {
		if err := p.LoadIndex(first); err != nil {
			p.log.Warnf("Initial track not queued: %v", err)
		}
	})
	p.mu.Unlock()

	return nil
}

// Close stops the transport and releases the device
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	started := p.started
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()

	if !started {
		return nil
	}
	return p.device.Close()
}

// LoadIndex queues loading and playing playlist entry i
func (p *Player) LoadIndex(i int) error {
	if i < 0 || i >= len(p.playlist) {
		return errors.New("audio: playlist index out of range")
	}
	return p.enqueue(command{kind: cmdLoad, index: i})
}

// SkipNext queues the following track, wrapping after the last one
func (p *Player) SkipNext() error { return p.enqueue(command{kind: cmdNext}) }

// SkipPrevious queues the preceding track, wrapping before the first one
func (p *Player) SkipPrevious() error { return p.enqueue(command{kind: cmdPrevious}) }

// Play resumes the current track
func (p *Player) Play() error { return p.enqueue(command{kind: cmdPlay}) }

// Pause pauses the current track
func (p *Player) Pause() error { return p.enqueue(command{kind: cmdPause}) }

// TogglePause flips between playing and paused
func (p *Player) TogglePause() error { return p.enqueue(command{kind: cmdTogglePause}) }

// Flush blocks until every command queued before it has run
func (p *Player) Flush() error {
	done := make(chan struct{})
	if err := p.enqueue(command{kind: cmdFlush, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-p.quit:
		return ErrPlayerClosed
	}
}

func (p *Player) enqueue(cmd command) error {
	select {
	case <-p.quit:
		return ErrPlayerClosed
	default:
	}

	select {
	case p.commands <- cmd:
		return nil
	default:
		p.log.Warnf("Transport busy, dropping command %d", cmd.kind)
		return ErrQueueFull
	}
}

// Index returns the playlist index of the current track, or -1 before the first load
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Current returns the path of the current track, if any
func (p *Player) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 {
		return "", false
	}
	return p.playlist[p.index], true
}

// Playing reports whether a track is loaded and not paused
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil && !p.ctrl.Paused
}

// Loudness refreshes every analyser and returns the sum of their average frequencies
func (p *Player) Loudness() float64 { return p.spectrum.Refresh() }

// FrequencyData returns the bins of the analyser with the given resolution as of the last Loudness call
func (p *Player) FrequencyData(resolution int) []byte { return p.spectrum.FrequencyData(resolution) }

// MinSampleRange is the lower normalization bound for Loudness
func (p *Player) MinSampleRange() float64 { return p.spectrum.MinSampleRange() }

// MaxSampleRange is the upper normalization bound for Loudness
func (p *Player) MaxSampleRange() float64 { return p.spectrum.MaxSampleRange() }

// AnalyserCount returns the number of analysers summed by Loudness
func (p *Player) AnalyserCount() int { return p.spectrum.AnalyserCount() }

// Fill renders the next block of interleaved stereo output. It runs on the
// audio thread.
func (p *Player) Fill(out []float32) {
	frames := len(out) / 2
	if cap(p.scratch) < frames {
		p.scratch = make([][2]float64, frames)
	}
	buf := p.scratch[:frames]

	n := 0
	p.mu.Lock()
	if p.ctrl != nil {
		n, _ = p.ctrl.Stream(buf)
	}
	p.mu.Unlock()

	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}

	for i, f := range buf {
		out[i*2] = float32(util.Clamp(f[0], -1, 1))
		out[i*2+1] = float32(util.Clamp(f[1], -1, 1))
	}

	p.tap.WriteStereo(buf)
}

func (p *Player) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case cmd := <-p.commands:
			p.handle(cmd)
		case gen := <-p.ended:
			p.handleEnded(gen)
		}
	}
}

func (p *Player) handle(cmd command) {
	defer func() {
		if cmd.done != nil {
			close(cmd.done)
		}
	}()

	switch cmd.kind {
	case cmdLoad:
		p.load(cmd.index)
	case cmdNext:
		p.load(p.step(1))
	case cmdPrevious:
		p.load(p.step(-1))
	case cmdPlay:
		p.setPaused(func(bool) bool { return false })
	case cmdPause:
		p.setPaused(func(bool) bool { return true })
	case cmdTogglePause:
		p.setPaused(func(paused bool) bool { return !paused })
	case cmdFlush:
	}
}

func (p *Player) handleEnded(gen uint64) {
	p.mu.Lock()
	current := p.gen
	index := p.index
	p.mu.Unlock()

	if gen != current {
		return
	}
	p.log.Debugf("Track %d finished", index)
	p.load(p.wrap(index + 1))
}

// step moves from the current track by delta. Before the first load the
// next track is the first entry and the previous one the last.
func (p *Player) step(delta int) int {
	index := p.Index()
	if index < 0 {
		if delta > 0 {
			return 0
		}
		return len(p.playlist) - 1
	}
	return p.wrap(index + delta)
}

// wrap maps any index onto the playlist; -1 is the last entry
func (p *Player) wrap(i int) int {
	n := len(p.playlist)
	return ((i % n) + n) % n
}

func (p *Player) load(index int) {
	p.mu.Lock()
	p.ctrl = nil
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	path := p.playlist[index]

	var source beep.Streamer
	track, err := p.loader.Load(path)
	if err != nil {
		p.log.Warnf("Failed to load %s, playing silence instead: %v", path, err)
		source = beep.Silence(p.format.SampleRate.N(time.Duration(p.opts.SilenceSeconds * float64(time.Second))))
	} else {
		source = track.Streamer
		if track.Format.SampleRate != p.format.SampleRate {
			source = beep.Resample(resampleQuality, track.Format.SampleRate, p.format.SampleRate, source)
		}
	}

	ended := beep.Callback(func() {
		select {
		case p.ended <- gen:
		default:
		}
	})

	ctrl := &beep.Ctrl{Streamer: newVolume(beep.Seq(source, ended), p.opts.Volume)}

	p.mu.Lock()
	p.ctrl = ctrl
	p.index = index
	p.mu.Unlock()

	p.log.Infof("Playing track %d: %s", index, path)
}

func (p *Player) setPaused(next func(bool) bool) {
	p.mu.Lock()
	if p.ctrl == nil {
		p.mu.Unlock()
		p.log.Debug("No track loaded, ignoring pause state change")
		return
	}
	before := p.ctrl.Paused
	p.ctrl.Paused = next(before)
	after := p.ctrl.Paused
	p.mu.Unlock()

	if before != after {
		if after {
			p.log.Info("Playback paused")
		} else {
			p.log.Info("Playback resumed")
		}
	}
}

// newVolume applies a linear gain through a base 2 volume effect
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
