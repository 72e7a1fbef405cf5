package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadDevice is a capture device whose stream never starts.
type deadDevice struct{}

func (deadDevice) Start() (<-chan []float32, error) { return nil, errors.New("no capture device") }
func (deadDevice) Stop() error                      { return nil }
func (deadDevice) SampleRate() int                  { return 48000 }

func TestBlackmanWindowShape(t *testing.T) {
	w := blackmanWindow(fftInputSize)

	assert.InDelta(t, 0, w[0], 1e-9, "window must vanish at the left edge")
	assert.InDelta(t, 0, w[len(w)-1], 1e-9, "window must vanish at the right edge")
	assert.InDelta(t, 1, w[(len(w)-1)/2], 1e-3, "window peaks near the center")

	for i, v := range w {
		assert.GreaterOrEqual(t, v, -1e-9, "window value %d is negative", i)
	}
}

func TestPackSpectrumSilenceConverges(t *testing.T) {
	samples := make([]float32, fftInputSize)
	lastFFT := make([]float64, textureWidth)
	out := make([]float32, textureWidth*textureHeight*2)

	// Temporal smoothing needs a few frames to settle to the floor.
	for i := 0; i < 50; i++ {
		packSpectrum(samples, lastFFT, 0.8, out)
	}

	for i := 0; i < textureWidth; i++ {
		assert.Equal(t, float32(0), out[i*2], "silent spectrum bin %d", i)
	}
	for i := 0; i < textureWidth; i++ {
		assert.Equal(t, float32(0.5), out[(textureWidth+i)*2], "silent waveform sample %d maps to midpoint", i)
	}
}

func TestPackSpectrumWaveformRescale(t *testing.T) {
	samples := make([]float32, fftInputSize)
	for i := range samples {
		samples[i] = 1
	}
	lastFFT := make([]float64, textureWidth)
	out := make([]float32, textureWidth*textureHeight*2)

	packSpectrum(samples, lastFFT, 0.8, out)

	assert.Equal(t, float32(1), out[textureWidth*2], "full-scale samples map to 1")
}

func TestPackSpectrumOutputIsClamped(t *testing.T) {
	samples := make([]float32, fftInputSize)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 1
		} else {
			samples[i] = -1
		}
	}
	lastFFT := make([]float64, textureWidth)
	out := make([]float32, textureWidth*textureHeight*2)

	for i := 0; i < 10; i++ {
		packSpectrum(samples, lastFFT, 0.8, out)
	}

	for i := 0; i < textureWidth; i++ {
		assert.GreaterOrEqual(t, out[i*2], float32(0))
		assert.LessOrEqual(t, out[i*2], float32(1))
	}
}

func TestStartOrFallbackSubstitutesSilence(t *testing.T) {
	device, samples := startOrFallback(deadDevice{})

	_, isNull := device.(*NullDevice)
	assert.True(t, isNull, "a stream that cannot start must yield the silent device")
	assert.Equal(t, 48000, device.SampleRate(), "fallback keeps the requested sample rate")

	require.NotNil(t, samples)
	select {
	case chunk := <-samples:
		t.Fatalf("unexpected chunk of %d samples from the fallback device", len(chunk))
	default:
	}
}

func TestStartOrFallbackKeepsWorkingDevice(t *testing.T) {
	null := NewNullDevice(22050)
	device, samples := startOrFallback(null)

	assert.Same(t, null, device)
	require.NotNil(t, samples)
}

func TestNullDeviceDeliversNothing(t *testing.T) {
	d := NewNullDevice(44100)
	assert.Equal(t, 44100, d.SampleRate())
	samples, err := d.Start()
	assert.NoError(t, err)

	select {
	case chunk, ok := <-samples:
		if ok {
			t.Fatalf("unexpected chunk of %d samples from the null device", len(chunk))
		}
	default:
	}

	assert.NoError(t, d.Stop())
}
