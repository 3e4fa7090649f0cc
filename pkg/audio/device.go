package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// FillFunc renders interleaved stereo samples into out
type FillFunc func(out []float32)

// Device is an output that periodically asks for samples
type Device interface {
	Open(sampleRate, framesPerBuffer int, fill FillFunc) error
	Close() error
}

// PortAudioDevice plays through the default PortAudio output
type PortAudioDevice struct {
	stream *portaudio.Stream
}

// NewPortAudioDevice initializes PortAudio
func NewPortAudioDevice() (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &PortAudioDevice{}, nil
}

// Open starts a stereo float32 stream calling fill from the audio thread
func (d *PortAudioDevice) Open(sampleRate, framesPerBuffer int, fill FillFunc) error {
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), framesPerBuffer, func(out []float32) {
		fill(out)
	})
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	d.stream = stream
	return nil
}

// Close stops the stream and terminates PortAudio
func (d *PortAudioDevice) Close() error {
	if d.stream != nil {
		d.stream.Stop()
		d.stream.Close()
		d.stream = nil
	}
	return portaudio.Terminate()
}

// NullDevice discards output. Used when audio is disabled.
type NullDevice struct{}

// Open implements Device
func (NullDevice) Open(int, int, FillFunc) error { return nil }

// Close implements Device
func (NullDevice) Close() error { return nil }
