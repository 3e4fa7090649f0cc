package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Analyser defaults, matching a Web Audio AnalyserNode
const (
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser turns the most recent block of samples into byte-scaled frequency bins.
// An analyser with N bins runs a 2N point FFT.
type Analyser struct {
	bins      int
	fft       *fourier.FFT
	window    []float64
	input     []float64
	coeffs    []complex128
	smoothed  []float64
	data      []byte
	smoothing float64
	minDB     float64
	maxDB     float64
}

// NewAnalyser creates an analyser exposing bins frequency bins
func NewAnalyser(bins int) *Analyser {
	size := bins * 2

	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}

	return &Analyser{
		bins:      bins,
		fft:       fourier.NewFFT(size),
		window:    window.Blackman(w),
		input:     make([]float64, size),
		coeffs:    make([]complex128, size/2+1),
		smoothed:  make([]float64, bins),
		data:      make([]byte, bins),
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
}

// Bins returns the number of frequency bins
func (a *Analyser) Bins() int { return a.bins }

// FFTSize returns the transform length
func (a *Analyser) FFTSize() int { return a.bins * 2 }

// Process analyses the last FFTSize samples of block.
// Shorter blocks are treated as preceded by silence.
func (a *Analyser) Process(block []float32) {
	size := len(a.input)

	offset := size - len(block)
	for i := 0; i < size; i++ {
		j := i - offset
		if j < 0 {
			a.input[i] = 0
			continue
		}
		a.input[i] = float64(block[j]) * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.input)

	scale := 255 / (a.maxDB - a.minDB)
	for k := 0; k < a.bins; k++ {
		mag := cmplx.Abs(a.coeffs[k]) / float64(size)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		if a.smoothed[k] <= 0 {
			a.data[k] = 0
			continue
		}

		db := 20 * math.Log10(a.smoothed[k])
		v := (db - a.minDB) * scale
		switch {
		case v < 0:
			a.data[k] = 0
		case v > 255:
			a.data[k] = 255
		default:
			a.data[k] = byte(v)
		}
	}
}

// FrequencyData copies the bins of the last Process into dst, growing it as needed
func (a *Analyser) FrequencyData(dst []byte) []byte {
	if cap(dst) < a.bins {
		dst = make([]byte, a.bins)
	}
	dst = dst[:a.bins]
	copy(dst, a.data)
	return dst
}

// AverageFrequency is the mean bin value of the last Process, in [0,255]
func (a *Analyser) AverageFrequency() float64 {
	sum := 0
	for _, v := range a.data {
		sum += int(v)
	}
	return float64(sum) / float64(a.bins)
}
