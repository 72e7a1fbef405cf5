// Package record renders the composite offscreen at a fixed frame step
// and encodes it to a video file through an FFmpeg pipe.
package record

import (
	"fmt"
	"io"
	"log"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/layerfx/layerfx/options"
)

// Frame is one rendered frame ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

const frameQueueDepth = 3

// encoderArgs builds the FFmpeg input/output argument sets. GL readback
// is bottom-up, so the output chain starts with a vertical flip.
func encoderArgs(opts *options.Options) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"framerate": *opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
		"vf":      "vflip",
		"b:v":     "25M",
	}

	switch runtime.GOOS {
	case "linux":
		outputArgs["c:v"] = "h264_nvenc"
		outputArgs["preset"] = "p2"
	case "darwin":
		outputArgs["c:v"] = "h264_videotoolbox"
	default:
		outputArgs["c:v"] = "libx264"
	}
	return
}

// Run drives the record loop: render is called once per frame on the
// calling (GL) thread with the frame index and simulation time, and must
// return the frame's RGBA pixels. Encoding happens on a consumer
// goroutine feeding the FFmpeg pipe.
func Run(opts *options.Options, render func(frame int, t float64) []byte) error {
	frames := make(chan *Frame, frameQueueDepth)
	done := make(chan error, 1)

	go runEncoder(opts, frames, done)

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	timeStep := 1.0 / float64(*opts.FPS)

	for i := 0; i < totalFrames; i++ {
		pixels := render(i, float64(i)*timeStep)
		frames <- &Frame{Pixels: pixels, PTS: int64(i)}
	}
	close(frames)

	return <-done
}

// runEncoder is the consumer: it launches FFmpeg reading raw frames from
// a pipe and forwards every rendered frame into it.
func runEncoder(opts *options.Options, frames <-chan *Frame, done chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := encoderArgs(opts)

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if *opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- cmd.Run()
		// Unblocks a producer stuck writing after FFmpeg exits.
		pipeReader.Close()
	}()

	for frame := range frames {
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to FFmpeg: %v", frame.PTS, err)
			break
		}
	}
	pipeWriter.Close()

	// Drain so the render loop never blocks on a dead encoder.
	for range frames {
	}
	done <- <-errc
}
