package options

// Options carries the command-line configuration. Fields are pointers
// straight from flag registration.
type Options struct {
	Document *string
	Width    *int
	Height   *int
	Title    *string

	// WebGL treats document shader sources as WebGL2 and translates
	// them to GLSL 330 before compiling.
	WebGL *bool

	// Mic enables the microphone-driven audio texture.
	Mic *bool

	// Recording
	Record     *bool
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
}
