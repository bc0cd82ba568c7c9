package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sqweek/dialog"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/graphics"
	"nesgo/internal/input"
)

// Application ties the emulation core to a presentation backend
type Application struct {
	config *Config
	bus    *bus.Bus

	romPath   string
	startTime time.Time
}

// NewApplication creates an application from the given config file path
func NewApplication(configPath string) (*Application, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:    config,
		bus:       bus.New(),
		startTime: time.Now(),
	}
	app.bus.SetAudioSampleRate(config.Audio.SampleRate)

	return app, nil
}

// GetConfig returns the active configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetBus returns the system bus for direct access
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetUptime returns time since the application started
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetFrameCount returns the number of emulated frames
func (app *Application) GetFrameCount() uint64 {
	return app.bus.GetFrameCount()
}

// LoadROM loads a cartridge image from disk, classifying load failures
func (app *Application) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ROM: %w", err)
	}

	if err := app.bus.Load(data); err != nil {
		var mapperErr *cartridge.UnsupportedMapperError
		switch {
		case errors.Is(err, cartridge.ErrInvalidHeader):
			return fmt.Errorf("%s is not an iNES image: %w", path, err)
		case errors.Is(err, cartridge.ErrTruncatedImage):
			return fmt.Errorf("%s is incomplete: %w", path, err)
		case errors.As(err, &mapperErr):
			return fmt.Errorf("%s needs mapper %d, which is not supported", path, mapperErr.Mapper)
		default:
			return err
		}
	}

	app.romPath = path
	log.Printf("loaded %s", path)
	return nil
}

// PickROM opens a native file dialog for ROM selection
func (app *Application) PickROM() error {
	path, err := dialog.File().
		Title("Open NES ROM").
		Filter("NES ROM", "nes").
		SetStartDir(app.config.Paths.ROMs).
		Load()
	if err != nil {
		return err
	}
	return app.LoadROM(path)
}

// StepFrame implements graphics.Core: one frame of emulation
func (app *Application) StepFrame(pads [2]input.ButtonState) ([]uint32, []int16, error) {
	return app.bus.RunFrame(pads)
}

// Run drives the configured backend until exit
func (app *Application) Run() error {
	backend := graphics.NewBackend(app.config.Video.Backend)

	title := "nesgo"
	if app.romPath != "" {
		title = fmt.Sprintf("nesgo - %s", app.romPath)
	}

	return backend.Run(app, graphics.Config{
		WindowTitle:  title,
		Scale:        app.config.Window.Scale,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		AudioEnabled: app.config.Audio.Enabled,
		SampleRate:   app.config.Audio.SampleRate,
		Volume:       app.config.Audio.Volume,
		Player1Keys:  app.config.Input.Player1Keys,
		Player2Keys:  app.config.Input.Player2Keys,
	})
}

// RunHeadless emulates the given number of frames with no presentation
// and returns the final framebuffer.
func (app *Application) RunHeadless(frames int) ([]uint32, error) {
	backend := graphics.NewHeadlessBackend()
	err := backend.Run(app, graphics.Config{HeadlessFrames: frames})
	return backend.LastFrame, err
}

// Reset asserts the console's reset line
func (app *Application) Reset() {
	app.bus.Reset()
}

// PowerCycle restarts the console from scratch
func (app *Application) PowerCycle() {
	app.bus.PowerCycle()
}
