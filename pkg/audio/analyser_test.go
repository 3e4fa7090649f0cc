package audio

import (
	"math"
	"testing"
)

func sine(n int, cycles float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * cycles * float64(i) / float64(n)))
	}
	return out
}

func TestAnalyser_Silence(t *testing.T) {
	a := NewAnalyser(128)
	a.Process(make([]float32, a.FFTSize()))

	for i, v := range a.FrequencyData(nil) {
		if v != 0 {
			t.Fatalf("bin %d = %d, expected 0", i, v)
		}
	}
	if avg := a.AverageFrequency(); avg != 0 {
		t.Errorf("Expected average 0, got %v", avg)
	}
}

func TestAnalyser_PeakAtToneBin(t *testing.T) {
	a := NewAnalyser(1024)
	a.Process(sine(a.FFTSize(), 100))

	data := a.FrequencyData(nil)
	if len(data) != 1024 {
		t.Fatalf("Expected 1024 bins, got %d", len(data))
	}
	if data[100] != 255 {
		t.Errorf("Expected saturated bin 100, got %d", data[100])
	}
	if data[900] >= data[100] {
		t.Errorf("Far bin %d not below tone bin %d", data[900], data[100])
	}
}

func TestAnalyser_SmoothingDecays(t *testing.T) {
	a := NewAnalyser(128)
	a.Process(sine(a.FFTSize(), 20))

	silence := make([]float32, a.FFTSize())
	prev := a.AverageFrequency()
	for i := 0; i < 5; i++ {
		a.Process(silence)
		cur := a.AverageFrequency()
		if cur > prev {
			t.Fatalf("step %d: average rose from %v to %v during silence", i, prev, cur)
		}
		prev = cur
	}
}

func TestAnalyser_ShortBlockIsPadded(t *testing.T) {
	a := NewAnalyser(512)
	a.Process(sine(16, 2))

	if avg := a.AverageFrequency(); avg < 0 || avg > 255 {
		t.Errorf("Average %v out of byte range", avg)
	}
}

func TestTap_LatestAcrossWrap(t *testing.T) {
	tap := NewTap(4)
	tap.WriteStereo([][2]float64{{1, 1}, {2, 2}, {3, 3}})
	tap.WriteStereo([][2]float64{{4, 4}, {5, 5}, {6, 6}})

	got := tap.Latest(make([]float32, 3))
	want := []float32{4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Latest = %v, expected %v", got, want)
		}
	}
}

func TestTap_FoldsToMono(t *testing.T) {
	tap := NewTap(2)
	tap.WriteStereo([][2]float64{{1, 0}})

	if got := tap.Latest(make([]float32, 1)); got[0] != 0.5 {
		t.Errorf("Expected 0.5, got %v", got[0])
	}
}

func TestSpectrum_LoudnessBounds(t *testing.T) {
	tap := NewTap(4096)
	s := NewSpectrum(tap, Resolutions...)

	if l := s.Refresh(); l != 0 {
		t.Errorf("Expected 0 before any output, got %v", l)
	}

	block := sine(4096, 300)
	frames := make([][2]float64, len(block))
	for i, v := range block {
		frames[i] = [2]float64{float64(v), float64(v)}
	}
	tap.WriteStereo(frames)

	l := s.Refresh()
	if l <= s.MinSampleRange() || l > s.MaxSampleRange() {
		t.Errorf("Loudness %v outside (%v, %v]", l, s.MinSampleRange(), s.MaxSampleRange())
	}
}
