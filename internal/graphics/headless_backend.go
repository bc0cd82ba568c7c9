package graphics

import (
	"nesgo/internal/input"
)

// HeadlessBackend drives the core without any window or audio device,
// for automation and tests.
type HeadlessBackend struct {
	// LastFrame holds the final framebuffer of the run
	LastFrame []uint32
}

// NewHeadlessBackend creates the headless backend
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

// Name returns the backend name
func (b *HeadlessBackend) Name() string {
	return "headless"
}

// Run steps the core for the configured number of frames as fast as the
// host allows.
func (b *HeadlessBackend) Run(core Core, config Config) error {
	frames := config.HeadlessFrames
	if frames <= 0 {
		frames = 60
	}

	var pads [2]input.ButtonState
	for i := 0; i < frames; i++ {
		frame, _, err := core.StepFrame(pads)
		if err != nil {
			return err
		}
		b.LastFrame = frame
	}

	return nil
}
