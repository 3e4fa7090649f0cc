package audio

import "sync"

// Tap keeps the most recent mono samples sent to the output device
type Tap struct {
	mu  sync.Mutex
	buf []float32
	pos int
}

// NewTap creates a tap holding capacity samples
func NewTap(capacity int) *Tap {
	return &Tap{buf: make([]float32, capacity)}
}

// WriteStereo appends frames, folding both channels to mono
func (t *Tap) WriteStereo(frames [][2]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range frames {
		t.buf[t.pos] = float32((f[0] + f[1]) * 0.5)
		t.pos = (t.pos + 1) % len(t.buf)
	}
}

// Latest fills dst with the newest len(dst) samples in chronological order
func (t *Tap) Latest(dst []float32) []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(dst)
	if n > len(t.buf) {
		n = len(t.buf)
		dst = dst[len(dst)-n:]
	}

	start := (t.pos - n + len(t.buf)) % len(t.buf)
	for i := 0; i < n; i++ {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	return dst
}
