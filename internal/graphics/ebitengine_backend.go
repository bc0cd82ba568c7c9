package graphics

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nesgo/internal/input"
)

// EbitengineBackend renders through an ebiten window with streamed audio
type EbitengineBackend struct{}

// NewEbitengineBackend creates the windowed backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Name returns the backend name
func (b *EbitengineBackend) Name() string {
	return "ebitengine"
}

// Run opens the window and drives the core at display rate
func (b *EbitengineBackend) Run(core Core, config Config) error {
	scale := config.Scale
	if scale <= 0 {
		scale = 3
	}

	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowSize(256*scale, 240*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(config.Fullscreen)
	ebiten.SetVsyncEnabled(config.VSync)

	game := &ebitengineGame{
		core:       core,
		config:     config,
		frameImage: ebiten.NewImage(256, 240),
		pixels:     make([]uint8, 256*240*4),
	}

	if config.AudioEnabled {
		game.initAudio()
	}

	return ebiten.RunGame(game)
}

// ebitengineGame implements ebiten.Game over a Core
type ebitengineGame struct {
	core   Core
	config Config

	frameImage *ebiten.Image
	pixels     []uint8

	audioStream *sampleStream
	audioPlayer *audio.Player

	paused bool
}

func (g *ebitengineGame) initAudio() {
	context := audio.NewContext(g.config.SampleRate)
	g.audioStream = newSampleStream()

	player, err := context.NewPlayer(g.audioStream)
	if err != nil {
		// Video keeps running without sound
		g.audioStream = nil
		return
	}
	g.audioPlayer = player
	g.audioPlayer.Play()
}

// Update implements ebiten.Game
func (g *ebitengineGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}

	pads := [2]input.ButtonState{
		g.config.Player1Keys.buttonState(),
		g.config.Player2Keys.buttonState(),
	}

	frame, samples, err := g.core.StepFrame(pads)
	if err != nil {
		return err
	}

	g.convertFrame(frame)
	if g.audioStream != nil {
		g.audioStream.push(samples, g.config.Volume)
	}

	return nil
}

// convertFrame unpacks the RGB framebuffer into the RGBA pixel buffer
func (g *ebitengineGame) convertFrame(frame []uint32) {
	for i, rgb := range frame {
		g.pixels[i*4] = uint8(rgb >> 16)
		g.pixels[i*4+1] = uint8(rgb >> 8)
		g.pixels[i*4+2] = uint8(rgb)
		g.pixels[i*4+3] = 0xFF
	}
	g.frameImage.WritePixels(g.pixels)
}

// Draw implements ebiten.Game
func (g *ebitengineGame) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frameImage, &ebiten.DrawImageOptions{})
}

// Layout implements ebiten.Game
func (g *ebitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 256, 240
}

// sampleStream adapts the emulator's sample bursts to ebiten's pull-based
// audio player. Underruns play silence instead of blocking the game loop.
type sampleStream struct {
	mu     sync.Mutex
	buffer []uint8
}

func newSampleStream() *sampleStream {
	return &sampleStream{buffer: make([]uint8, 0, 16384)}
}

// push appends mono int16 samples as stereo little-endian frames
func (s *sampleStream) push(samples []int16, volume float64) {
	if volume <= 0 {
		volume = 1.0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Bound buffering to keep latency in check
	const maxBuffered = 65536
	if len(s.buffer) > maxBuffered {
		s.buffer = s.buffer[:0]
	}

	for _, sample := range samples {
		v := int16(float64(sample) * volume)
		low, high := uint8(v), uint8(uint16(v)>>8)
		s.buffer = append(s.buffer, low, high, low, high)
	}
}

// Read implements io.Reader for the audio player
func (s *sampleStream) Read(p []uint8) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buffer)
	s.buffer = s.buffer[n:]

	// Zero-fill on underrun
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
