package audio

import "sync"

// Resolutions are the bin counts of the four analysers
var Resolutions = []int{128, 512, 1024, 2048}

// Spectrum runs several analysers over the same tap
type Spectrum struct {
	mu        sync.Mutex
	tap       *Tap
	analysers []*Analyser
	block     []float32
}

// NewSpectrum creates one analyser per resolution, all reading tap
func NewSpectrum(tap *Tap, resolutions ...int) *Spectrum {
	s := &Spectrum{tap: tap}

	largest := 0
	for _, r := range resolutions {
		a := NewAnalyser(r)
		s.analysers = append(s.analysers, a)
		if a.FFTSize() > largest {
			largest = a.FFTSize()
		}
	}
	s.block = make([]float32, largest)

	return s
}

// AnalyserCount returns how many analysers contribute to Refresh
func (s *Spectrum) AnalyserCount() int { return len(s.analysers) }

// MinSampleRange is the lowest loudness Refresh can report
func (s *Spectrum) MinSampleRange() float64 { return 0 }

// MaxSampleRange is the highest loudness Refresh can report
func (s *Spectrum) MaxSampleRange() float64 { return float64(len(s.analysers) * 255) }

// Refresh analyses the latest tap contents and returns the summed average
// frequency of every analyser
func (s *Spectrum) Refresh() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := s.tap.Latest(s.block)

	total := 0.0
	for _, a := range s.analysers {
		a.Process(block)
		total += a.AverageFrequency()
	}
	return total
}

// FrequencyData returns a copy of the bins computed by the last Refresh for the
// analyser with the given resolution, or nil if there is none
func (s *Spectrum) FrequencyData(resolution int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.analysers {
		if a.Bins() == resolution {
			return a.FrequencyData(nil)
		}
	}
	return nil
}
