// Package audio feeds microphone input into a texture that layers can
// sample for audio-reactive effects.
package audio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Device is an audio sample producer. Start returns a channel of sample
// chunks; Stop closes it.
type Device interface {
	Start() (<-chan []float32, error)
	Stop() error
	SampleRate() int
}

// chunkQueueDepth buffers jitter between the capture callback and the
// render-thread consumer.
const chunkQueueDepth = 16

// Microphone produces samples from the default capture device. The
// PortAudio library is held open only while the stream runs: Start
// initializes it and Stop terminates it, so a microphone that never
// starts holds no system resources.
type Microphone struct {
	sampleRate int
	stream     *portaudio.Stream
	samples    chan []float32
}

func NewMicrophone(sampleRate int) *Microphone {
	return &Microphone{sampleRate: sampleRate}
}

func (m *Microphone) Start() (<-chan []float32, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	samples := make(chan []float32, chunkQueueDepth)
	stream, err := m.openStream(samples)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	m.stream = stream
	m.samples = samples
	return samples, nil
}

// openStream wires the capture callback. The callback copies PortAudio's
// reused buffer and hands it off without blocking the audio thread;
// chunks are dropped when the consumer lags.
func (m *Microphone) openStream(samples chan<- []float32) (*portaudio.Stream, error) {
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, fmt.Errorf("no default audio host: %w", err)
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(m.sampleRate)

	return portaudio.OpenStream(params, func(in []float32) {
		chunk := make([]float32, len(in))
		copy(chunk, in)
		select {
		case samples <- chunk:
		default:
			log.Println("Warning: audio consumer is behind, dropping chunk")
		}
	})
}

func (m *Microphone) Stop() error {
	if m.stream == nil {
		return nil
	}
	err := m.stream.Close()
	m.stream = nil
	close(m.samples)
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// NullDevice is the silent fallback used when the capture device cannot
// start. Its channel never delivers samples.
type NullDevice struct {
	sampleRate int
	samples    chan []float32
}

func NewNullDevice(sampleRate int) *NullDevice {
	return &NullDevice{sampleRate: sampleRate, samples: make(chan []float32)}
}

func (d *NullDevice) Start() (<-chan []float32, error) { return d.samples, nil }

func (d *NullDevice) Stop() error {
	close(d.samples)
	return nil
}

func (d *NullDevice) SampleRate() int { return d.sampleRate }
