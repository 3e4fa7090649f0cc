package visualizer

import "time"

// FPSCounter averages frames over a fixed reporting interval
type FPSCounter struct {
	interval   time.Duration
	frameCount int
	lastUpdate time.Time
	current    float64
}

// NewFPSCounter reports once per interval, one second when interval is not positive
func NewFPSCounter(interval time.Duration) *FPSCounter {
	if interval <= 0 {
		interval = time.Second
	}
	return &FPSCounter{interval: interval}
}

// Tick counts one frame. It returns true when a new average is available.
func (f *FPSCounter) Tick(now time.Time) bool {
	if f.lastUpdate.IsZero() {
		f.lastUpdate = now
		return false
	}

	f.frameCount++
	elapsed := now.Sub(f.lastUpdate)
	if elapsed < f.interval {
		return false
	}

	f.current = float64(f.frameCount) / elapsed.Seconds()
	f.frameCount = 0
	f.lastUpdate = now
	return true
}

// FPS is the last reported average
func (f *FPSCounter) FPS() float64 { return f.current }
