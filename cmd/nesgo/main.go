// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"nesgo/internal/app"
	"nesgo/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile  = flag.String("config", "", "Path to configuration file")
		nogui       = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames      = flag.Int("frames", 120, "Frames to run in headless mode")
		dumpFrame   = flag.String("dump", "", "Write the final headless frame to this PPM file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintBuildInfo()
		return
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplication(configPath)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if *nogui {
		application.GetConfig().Video.Backend = "headless"
	}

	switch {
	case *romFile != "":
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("failed to load ROM: %v", err)
		}
	case *nogui:
		log.Fatal("headless mode requires -rom")
	default:
		if err := application.PickROM(); err != nil {
			log.Fatalf("no ROM selected: %v", err)
		}
	}

	if *nogui {
		runHeadless(application, *frames, *dumpFrame)
		return
	}

	if err := application.Run(); err != nil {
		log.Fatalf("emulator exited with error: %v", err)
	}

	fmt.Printf("ran %d frames in %v\n", application.GetFrameCount(), application.GetUptime())
}

// runHeadless emulates a fixed number of frames and optionally dumps the
// final frame as a PPM image.
func runHeadless(application *app.Application, frames int, dumpPath string) {
	frame, err := application.RunHeadless(frames)
	if err != nil {
		log.Fatalf("headless run failed: %v", err)
	}

	fmt.Printf("ran %d frames\n", frames)

	if dumpPath != "" {
		if err := writePPM(dumpPath, frame); err != nil {
			log.Fatalf("failed to write %s: %v", dumpPath, err)
		}
		fmt.Printf("wrote %s\n", dumpPath)
	}
}

// writePPM saves a framebuffer as a plain PPM image
func writePPM(path string, frame []uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frame[y*256+x]
			fmt.Fprintf(file, "%d %d %d ", pixel>>16&0xFF, pixel>>8&0xFF, pixel&0xFF)
		}
		fmt.Fprintln(file)
	}

	return nil
}

func printUsage() {
	fmt.Println("nesgo - NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesgo [options]                    # GUI mode, pick a ROM from a dialog")
	fmt.Println("  nesgo -rom <file> [options]        # GUI mode with ROM loaded")
	fmt.Println("  nesgo -nogui -rom <file> [options] # headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default):")
	fmt.Println("  Player 1: arrows, Z (A), X (B), Enter (Start), Space (Select)")
	fmt.Println("  Player 2: WASD, J (A), K (B), O (Start), P (Select)")
	fmt.Println("  F1 pauses, Escape quits")
	fmt.Println()
	fmt.Println("Supported: iNES images using mappers 0-4, NTSC timing")
}
