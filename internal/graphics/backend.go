// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"github.com/hajimehoshi/ebiten/v2"

	"nesgo/internal/input"
)

// Core is the emulation surface a backend drives: one call produces one
// frame of video and audio for the given pad state.
type Core interface {
	StepFrame(pads [2]input.ButtonState) (frame []uint32, audio []int16, err error)
}

// Backend runs the main loop against a Core
type Backend interface {
	// Run drives the core until the user quits or the frame budget runs
	// out. It blocks.
	Run(core Core, config Config) error

	// Name returns the backend name for identification
	Name() string
}

// Config contains presentation configuration shared by the backends
type Config struct {
	WindowTitle string
	Scale       int
	Fullscreen  bool
	VSync       bool

	AudioEnabled bool
	SampleRate   int
	Volume       float64

	Player1Keys KeyMapping
	Player2Keys KeyMapping

	// HeadlessFrames bounds a headless run; 0 or less means 60 frames
	HeadlessFrames int
}

// KeyMapping names the keyboard keys bound to one controller
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// DefaultPlayer1Keys returns the standard arrows + ZX layout
func DefaultPlayer1Keys() KeyMapping {
	return KeyMapping{
		Up:     "ArrowUp",
		Down:   "ArrowDown",
		Left:   "ArrowLeft",
		Right:  "ArrowRight",
		A:      "Z",
		B:      "X",
		Start:  "Enter",
		Select: "Space",
	}
}

// DefaultPlayer2Keys returns the WASD + JK layout
func DefaultPlayer2Keys() KeyMapping {
	return KeyMapping{
		Up:     "W",
		Down:   "S",
		Left:   "A",
		Right:  "D",
		A:      "J",
		B:      "K",
		Start:  "O",
		Select: "P",
	}
}

// keyByName maps configuration key names to ebiten keys
var keyByName = map[string]ebiten.Key{
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"Enter":      ebiten.KeyEnter,
	"Space":      ebiten.KeySpace,
	"Shift":      ebiten.KeyShift,
	"Tab":        ebiten.KeyTab,
	"A":          ebiten.KeyA,
	"B":          ebiten.KeyB,
	"D":          ebiten.KeyD,
	"J":          ebiten.KeyJ,
	"K":          ebiten.KeyK,
	"O":          ebiten.KeyO,
	"P":          ebiten.KeyP,
	"S":          ebiten.KeyS,
	"W":          ebiten.KeyW,
	"X":          ebiten.KeyX,
	"Z":          ebiten.KeyZ,
}

// buttonState samples the keyboard through a key mapping
func (km KeyMapping) buttonState() input.ButtonState {
	pressed := func(name string) bool {
		key, ok := keyByName[name]
		return ok && ebiten.IsKeyPressed(key)
	}

	return input.ButtonState{
		pressed(km.A),
		pressed(km.B),
		pressed(km.Select),
		pressed(km.Start),
		pressed(km.Up),
		pressed(km.Down),
		pressed(km.Left),
		pressed(km.Right),
	}
}

// NewBackend selects a backend by name; unknown names fall back to the
// ebitengine backend.
func NewBackend(name string) Backend {
	switch name {
	case "headless":
		return NewHeadlessBackend()
	default:
		return NewEbitengineBackend()
	}
}
