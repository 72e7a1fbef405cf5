package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layerfx/layerfx/options"
)

func recordOptions(width, height, fps int, duration float64) *options.Options {
	out := "out.mp4"
	ffmpeg := ""
	return &options.Options{
		Width:      &width,
		Height:     &height,
		FPS:        &fps,
		Duration:   &duration,
		OutputFile: &out,
		FFMPEGPath: &ffmpeg,
	}
}

func TestEncoderArgs(t *testing.T) {
	inputArgs, outputArgs := encoderArgs(recordOptions(640, 360, 30, 1))

	assert.Equal(t, "rawvideo", inputArgs["f"])
	assert.Equal(t, "rgba", inputArgs["pix_fmt"])
	assert.Equal(t, "640x360", inputArgs["s"])
	assert.Equal(t, 30, inputArgs["framerate"])

	assert.Equal(t, "yuv420p", outputArgs["pix_fmt"])
	assert.Equal(t, "vflip", outputArgs["vf"], "GL readback is bottom-up")
	assert.NotEmpty(t, outputArgs["c:v"])
}

func TestRunCallsRenderOncePerFrame(t *testing.T) {
	opts := recordOptions(2, 2, 10, 0.5)

	var calls []float64
	render := func(frame int, ts float64) []byte {
		require.Equal(t, len(calls), frame)
		calls = append(calls, ts)
		return make([]byte, 2*2*4)
	}

	// The encoder will fail without an ffmpeg binary on PATH, which is
	// fine: the producer side must still invoke render for every frame.
	_ = Run(opts, render)

	require.Len(t, calls, 5)
	assert.Equal(t, 0.0, calls[0])
	assert.InDelta(t, 0.4, calls[4], 1e-9)
}
