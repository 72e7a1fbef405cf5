package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/layerfx/layerfx/audio"
	"github.com/layerfx/layerfx/compositor"
	"github.com/layerfx/layerfx/document"
	"github.com/layerfx/layerfx/gfx"
	"github.com/layerfx/layerfx/loader"
	"github.com/layerfx/layerfx/options"
	"github.com/layerfx/layerfx/record"
	"github.com/layerfx/layerfx/uniform"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.Options{
		Document:   flag.String("doc", "", "Path or URL of the layer-description document"),
		Width:      flag.Int("width", 1280, "Window or output width"),
		Height:     flag.Int("height", 720, "Window or output height"),
		Title:      flag.String("title", "layerfx", "Window title"),
		WebGL:      flag.Bool("webgl", false, "Treat shader sources as WebGL2 and translate them"),
		Mic:        flag.Bool("mic", false, "Enable the microphone audio texture"),
		Record:     flag.Bool("record", false, "Enable recording mode"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second for recording"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
	}
	flag.Parse()

	if *opts.Document == "" {
		log.Fatalf("no layer document given, use -doc")
	}

	doc, err := document.Load(*opts.Document)
	if err != nil {
		log.Fatalf("Failed to load layer document: %v", err)
	}
	log.Printf("Loaded layer document with %d layers", len(doc.History))

	if err := gfx.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer gfx.TerminateGraphics()

	ctx, err := gfx.NewContext(*opts.Width, *opts.Height, *opts.Title, !*opts.Record)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer ctx.Shutdown()

	device, err := gfx.NewDevice(*opts.WebGL)
	if err != nil {
		log.Fatalf("Failed to create render device: %v", err)
	}
	defer device.Destroy()

	builder := &compositor.Builder{
		Compiler: device,
		Loader:   loader.New(),
	}

	var audioChannel *audio.Channel
	if *opts.Mic {
		audioChannel = openAudio()
		if audioChannel != nil {
			defer audioChannel.Destroy()
			builder.Textures = map[string]uniform.Texture{audio.SamplerName: audioChannel}
		}
	}

	if *opts.Record {
		runRecord(opts, device, builder, doc, audioChannel)
		return
	}

	width, height := ctx.FramebufferSize()
	layers := builder.Build(doc.History, width, height)
	comp, err := compositor.New(device, layers, width, height)
	if err != nil {
		log.Fatalf("Failed to create compositor: %v", err)
	}

	log.Println("Starting interactive render loop...")
	runInteractive(ctx, comp, audioChannel)
}

// openAudio starts the microphone channel. The channel substitutes a
// silent device when capture cannot start, so audio-reactive layers
// keep rendering either way.
func openAudio() *audio.Channel {
	channel, err := audio.NewChannel(audio.NewMicrophone(44100))
	if err != nil {
		log.Printf("Warning: could not create audio channel: %v", err)
		return nil
	}
	return channel
}

// runInteractive is the frame driver: one compositing pass per display
// refresh, with resize and pointer notifications applied between frames.
func runInteractive(ctx *gfx.Context, comp *compositor.Compositor, audioChannel *audio.Channel) {
	start := ctx.Time()
	width, height := ctx.FramebufferSize()

	for !ctx.ShouldClose() {
		if w, h := ctx.FramebufferSize(); w != width || h != height {
			width, height = w, h
			comp.Resize(width, height)
		}

		px, py := ctx.PointerPixels()
		comp.SetPointer(compositor.NormalizePointer(px, py, width, height))

		if audioChannel != nil {
			audioChannel.Update()
		}

		comp.RenderFrame(ctx.Time() - start)
		ctx.EndFrame()
	}
}

// runRecord renders at a fixed step into a capture buffer and pipes the
// frames to the encoder.
func runRecord(opts *options.Options, device *gfx.Device, builder *compositor.Builder, doc *document.Document, audioChannel *audio.Channel) {
	width, height := *opts.Width, *opts.Height

	capture, err := gfx.NewOffscreen(width, height)
	if err != nil {
		log.Fatalf("Failed to create capture buffer: %v", err)
	}
	defer capture.Destroy()
	device.SetCaptureTarget(capture)

	layers := builder.Build(doc.History, width, height)
	comp, err := compositor.New(device, layers, width, height)
	if err != nil {
		log.Fatalf("Failed to create compositor: %v", err)
	}

	log.Println("Starting record loop...")
	err = record.Run(opts, func(frame int, t float64) []byte {
		if audioChannel != nil {
			audioChannel.Update()
		}
		comp.RenderFrame(t)
		return capture.ReadPixels()
	})
	if err != nil {
		log.Fatalf("Recording failed: %v", err)
	}
	log.Printf("Successfully recorded to %s", *opts.OutputFile)
}
