package audio

import (
	"log"
	"math"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	fft "github.com/mjibson/go-dsp/fft"
)

// SamplerName is the uniform a layer references to receive the audio
// texture.
const SamplerName = "audioTexture"

const (
	textureWidth  = 512
	textureHeight = 2
	fftInputSize  = 2048
	historySize   = fftInputSize * 4
)

// Channel consumes an audio device and maintains a 512x2 RG32F texture:
// row 0 holds the smoothed frequency spectrum, row 1 the raw waveform.
// It implements uniform.Texture so it can sit directly in a layer's
// uniform table.
type Channel struct {
	device    Device
	textureID uint32

	mu      sync.Mutex
	history []float32
	pos     int

	textureData []float32
	lastFFT     []float64
	smoothing   float64
}

// NewChannel allocates the texture and starts consuming the device,
// substituting the silent null device when capture cannot start so
// audio-reactive layers keep rendering. Must be called on the render
// thread with the GL context current.
func NewChannel(device Device) (*Channel, error) {
	device, samples := startOrFallback(device)
	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG32F, textureWidth, textureHeight, 0, gl.RG, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	c := &Channel{
		device:      device,
		textureID:   textureID,
		history:     make([]float32, historySize),
		textureData: make([]float32, textureWidth*textureHeight*2),
		lastFFT:     make([]float64, textureWidth),
		smoothing:   0.8,
	}

	go c.listen(samples)

	return c, nil
}

// startOrFallback starts the capture device, trading it for the silent
// null device at the same sample rate when the stream cannot start.
func startOrFallback(device Device) (Device, <-chan []float32) {
	samples, err := device.Start()
	if err == nil {
		return device, samples
	}
	log.Printf("Warning: could not start audio capture: %v. Substituting silence.", err)
	null := NewNullDevice(device.SampleRate())
	samples, _ = null.Start()
	return null, samples
}

// listen consumes sample chunks into the ring buffer until the device
// channel closes.
func (c *Channel) listen(samples <-chan []float32) {
	for chunk := range samples {
		c.mu.Lock()
		for _, s := range chunk {
			c.history[c.pos] = s
			c.pos = (c.pos + 1) % historySize
		}
		c.mu.Unlock()
	}
}

func (c *Channel) recent(n int) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = c.history[(c.pos-n+i+historySize)%historySize]
	}
	return out
}

// Update recomputes the spectrum and waveform rows and uploads them.
// Called once per frame on the render thread.
func (c *Channel) Update() {
	samples := c.recent(fftInputSize)
	packSpectrum(samples, c.lastFFT, c.smoothing, c.textureData)

	gl.BindTexture(gl.TEXTURE_2D, c.textureID)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, textureWidth, textureHeight, gl.RG, gl.FLOAT, gl.Ptr(c.textureData))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Handle implements uniform.Texture. The texture exists from
// construction, so it is always ready.
func (c *Channel) Handle() (uint32, bool) {
	return c.textureID, true
}

// Destroy stops the device and releases the texture.
func (c *Channel) Destroy() {
	if c.device != nil {
		c.device.Stop()
	}
	gl.DeleteTextures(1, &c.textureID)
}

// packSpectrum windows the samples, runs a 2048-point FFT and fills the
// RG texture data: row 0 spectrum in decibel scale, row 1 waveform
// rescaled from [-1,1] to [0,1]. lastFFT carries the temporal smoothing
// state between frames.
func packSpectrum(samples []float32, lastFFT []float64, smoothing float64, out []float32) {
	const minDecibels = -100.0
	const maxDecibels = -30.0

	window := blackmanWindow(fftInputSize)
	windowed := make([]float64, fftInputSize)
	for i, s := range samples {
		windowed[i] = float64(s) * window[i]
	}

	spectrum := fft.FFTReal(windowed)
	for i := 0; i < textureWidth; i++ {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / float64(fftInputSize))
		db := 20 * math.Log10(magnitude+1e-9)

		lastFFT[i] = smoothing*lastFFT[i] + (1.0-smoothing)*db
		scaled := (lastFFT[i] - minDecibels) / (maxDecibels - minDecibels)
		out[i*2] = float32(math.Min(1, math.Max(0, scaled)))
		out[i*2+1] = 0
	}

	wave := samples[len(samples)-textureWidth:]
	for i := 0; i < textureWidth; i++ {
		out[(textureWidth+i)*2] = (wave[i] + 1.0) * 0.5
		out[(textureWidth+i)*2+1] = 0
	}
}

// blackmanWindow generates a Blackman window of the given size.
func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	a0, a1, a2 := 0.42, 0.5, 0.08
	inv := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * inv
		window[i] = a0 - a1*math.Cos(2*math.Pi*t) + a2*math.Cos(4*math.Pi*t)
	}
	return window
}
