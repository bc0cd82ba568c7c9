// Package bus wires the NES components together and drives emulation.
package bus

import (
	"fmt"

	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
)

// Bus owns every component and the system clock. The CPU is the only
// driver of time: each of its bus accesses lands in Memory, which calls
// back into tick, which runs the PPU three dots and the APU one cycle
// before the access completes. Interrupts are modeled as pins the PPU/APU
// and mapper set and the CPU samples at instruction boundaries.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart *cartridge.Cartridge
	rom  []uint8 // original image, kept for power cycling

	// System clock in CPU cycles
	cycles uint64

	frameCount    uint64
	frameComplete bool

	// OAM DMA stall cycles owed before the next instruction
	stallCycles int

	// NMI propagation delay from the PPU to the CPU pin
	nmiDelay int
}

// New creates a new system with no cartridge inserted
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetTickFunc(b.tick)
	b.Memory.SetDMACallback(b.triggerOAMDMA)

	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.scheduleNMI)
	b.PPU.SetFrameCompleteCallback(b.handleFrameComplete)
	b.APU.SetDMCMemoryReader(b.Memory.ReadUnclocked)

	return b
}

// Load inserts a cartridge from a raw iNES image. Errors are the
// classified cartridge rejection kinds; on error no state changes.
func (b *Bus) Load(rom []uint8) error {
	cart, err := cartridge.LoadFromBytes(rom)
	if err != nil {
		return err
	}

	b.rom = make([]uint8, len(rom))
	copy(b.rom, rom)
	b.attach(cart)
	return nil
}

// attach wires a loaded cartridge into the system and runs the reset
// sequence.
func (b *Bus) attach(cart *cartridge.Cartridge) {
	b.cart = cart
	cart.SetCycleSource(func() uint64 { return b.cycles })

	b.Memory.SetCartridge(cart)
	b.PPU.SetMemory(memory.NewPPUMemory(cart))

	b.CPU.Reset()
}

// tick is the system heartbeat: one CPU cycle of time. The APU runs once,
// the PPU three times, and the interrupt pins are refreshed.
func (b *Bus) tick() {
	b.cycles++

	b.APU.Step()

	if b.nmiDelay > 0 {
		b.nmiDelay--
		if b.nmiDelay == 0 {
			// Pulse the edge-triggered NMI latch
			b.CPU.SetNMI(true)
			b.CPU.SetNMI(false)
		}
	}

	b.PPU.Step()
	b.PPU.Step()
	b.PPU.Step()

	b.CPU.SetIRQ(b.irqAsserted())
}

// irqAsserted aggregates the level-sensitive IRQ sources
func (b *Bus) irqAsserted() bool {
	if b.APU.IRQPending() {
		return true
	}
	return b.cart != nil && b.cart.IRQPending()
}

// scheduleNMI is called by the PPU at VBL start; the CPU sees the line
// one cycle later.
func (b *Bus) scheduleNMI() {
	b.nmiDelay = 1
}

// handleFrameComplete is called by the PPU at the frame boundary
func (b *Bus) handleFrameComplete() {
	b.frameComplete = true
	b.frameCount++
}

// triggerOAMDMA copies one page into OAM and schedules the CPU stall:
// 513 cycles, 514 when the write lands on an odd cycle.
func (b *Bus) triggerOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.PPU.WriteOAMData(b.Memory.ReadUnclocked(base + i))
	}

	b.stallCycles += 513
	if b.cycles%2 == 1 {
		b.stallCycles++
	}
}

// Step pays any pending DMA/DMC stalls as idle bus cycles, then executes
// one CPU instruction.
func (b *Bus) Step() {
	stall := b.stallCycles + b.APU.StallCycles()
	b.stallCycles = 0
	for i := 0; i < stall; i++ {
		b.Memory.Tick()
	}

	b.CPU.Step()
}

// RunFrame latches pad state, runs until the PPU signals the frame
// boundary, and returns the framebuffer and the audio accumulated since
// the last call. Guest faults never propagate: anything unclassified is
// reported once at the frame boundary.
func (b *Bus) RunFrame(pads [2]input.ButtonState) (frame []uint32, audio []int16, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emulation fault: %v", r)
		}
	}()

	if b.cart == nil {
		return nil, nil, fmt.Errorf("no cartridge loaded")
	}

	b.Input.SetButtons1(pads[0])
	b.Input.SetButtons2(pads[1])

	b.frameComplete = false
	for !b.frameComplete {
		b.Step()
	}

	fb := b.PPU.GetFrameBuffer()
	return fb[:], b.APU.GetSamples(), nil
}

// Run runs the emulator for a specified number of frames
func (b *Bus) Run(frames int) {
	target := b.frameCount + uint64(frames)
	for b.frameCount < target {
		b.Step()
	}
}

// RunCycles runs the emulator for at least the given number of CPU cycles
func (b *Bus) RunCycles(cycles uint64) {
	target := b.cycles + cycles
	for b.cycles < target {
		b.Step()
	}
}

// Reset asserts the RESET line: the CPU restarts through its vector and
// the APU is silenced. Memory and PPU state survive, as on hardware.
func (b *Bus) Reset() {
	b.APU.Reset()
	b.CPU.Reset()
	b.stallCycles = 0
	b.nmiDelay = 0
}

// PowerCycle resets the PPU, APU, controllers and system clock and
// reloads the loaded cartridge image from scratch, which also resets the
// CPU. Internal RAM keeps its contents.
func (b *Bus) PowerCycle() {
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.cycles = 0
	b.frameCount = 0
	b.frameComplete = false
	b.stallCycles = 0
	b.nmiDelay = 0

	if b.rom != nil {
		cart, err := cartridge.LoadFromBytes(b.rom)
		if err == nil {
			b.attach(cart)
		}
	}
}

// GetCycleCount returns the current CPU cycle count
func (b *Bus) GetCycleCount() uint64 {
	return b.cycles
}

// GetFrameCount returns the number of completed frames
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// GetFrameBuffer returns the current PPU frame buffer
func (b *Bus) GetFrameBuffer() []uint32 {
	fb := b.PPU.GetFrameBuffer()
	return fb[:]
}

// GetAudioSamples drains the APU sample buffer
func (b *Bus) GetAudioSamples() []int16 {
	return b.APU.GetSamples()
}

// SetAudioSampleRate sets the APU's target output rate
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// SetControllerButtons sets the pad state for a controller (1 or 2)
func (b *Bus) SetControllerButtons(controller int, state input.ButtonState) {
	switch controller {
	case 2:
		b.Input.SetButtons2(state)
	default:
		b.Input.SetButtons1(state)
	}
}
