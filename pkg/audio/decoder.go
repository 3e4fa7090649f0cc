package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Track is a decoded playlist entry
type Track struct {
	Path     string
	Format   beep.Format
	Streamer beep.StreamSeeker
}

// TrackLoader fetches and decodes a track by path
type TrackLoader interface {
	Load(path string) (*Track, error)
}

// FileLoader decodes tracks from the local filesystem
type FileLoader struct{}

// Load decodes a WAV or MP3 file fully into memory
func (FileLoader) Load(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	var (
		frames [][2]float64
		rate   int
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		frames, rate, err = decodeWAV(f)
	case ".mp3":
		frames, rate, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: storagePrecision}
	return &Track{
		Path:     path,
		Format:   format,
		Streamer: NewBuffer(format.SampleRate, frames),
	}, nil
}

func decodeWAV(r io.ReadSeeker) ([][2]float64, int, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		return nil, 0, errors.New("unknown WAV bit depth")
	}

	frames, err := intBufferFrames(buf, bitDepth)
	if err != nil {
		return nil, 0, err
	}

	return frames, int(decoder.SampleRate), nil
}

// intBufferFrames converts PCM into stereo frames, duplicating mono. 8-bit
// WAV data is unsigned with its zero at 128; wider depths are signed.
func intBufferFrames(buf *audio.IntBuffer, bitDepth int) ([][2]float64, error) {
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, errors.New("missing WAV format chunk")
	}
	channels := buf.Format.NumChannels

	factor := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = factor
	}
	sample := func(v int) float64 { return (float64(v) - offset) / factor }

	frames := make([][2]float64, len(buf.Data)/channels)
	for i := range frames {
		left := sample(buf.Data[i*channels])
		right := left
		if channels > 1 {
			right = sample(buf.Data[i*channels+1])
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}

// decodeMP3 reads the decoder's signed 16-bit little endian stereo output
func decodeMP3(r io.Reader) ([][2]float64, int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, err
	}

	count := len(raw) / 4
	frames := make([][2]float64, count)
	for i := range frames {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		frames[i] = [2]float64{float64(left) / 32768, float64(right) / 32768}
	}

	return frames, decoder.SampleRate(), nil
}

// storagePrecision is the bytes per channel decoded tracks are kept at
const storagePrecision = 3

// NewBuffer stores decoded frames in a beep.Buffer and returns a streamer
// over all of them. Samples are clamped to [-1, 1].
func NewBuffer(sampleRate beep.SampleRate, frames [][2]float64) beep.StreamSeeker {
	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: storagePrecision})
	buf.Append(frameStreamer(frames))
	return buf.Streamer(0, buf.Len())
}

// frameStreamer drains a slice of frames once
func frameStreamer(frames [][2]float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if len(frames) == 0 {
			return 0, false
		}
		n := copy(samples, frames)
		frames = frames[n:]
		return n, true
	})
}
