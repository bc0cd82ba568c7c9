// Package apu implements the Audio Processing Unit for the NES.
package apu

// Frame sequencer step positions in CPU cycles.
const (
	quarterStep1 = 7457
	halfStep2    = 14913
	quarterStep3 = 22371
	irqStep4     = 29829
	fourStepWrap = 29830
	fiveStep5    = 37281
	fiveStepWrap = 37282
)

// MemoryReader lets the DMC fetch sample bytes from CPU address space
type MemoryReader func(address uint16) uint8

// APU represents the NES Audio Processing Unit
type APU struct {
	pulse1   PulseChannel
	pulse2   PulseChannel
	triangle TriangleChannel
	noise    NoiseChannel
	dmc      DMCChannel

	// Frame counter
	frameCounter   uint64
	fiveStepMode   bool
	frameIRQEnable bool
	frameIRQFlag   bool

	// Audio generation
	sampleBuffer     []int16
	sampleRate       int
	cpuFrequency     float64
	cycleAccumulator float64
	filters          [3]firstOrderFilter

	cycles uint64
}

// New creates a new APU instance
func New() *APU {
	apu := &APU{
		sampleBuffer:   make([]int16, 0, 4096),
		sampleRate:     44100,
		cpuFrequency:   1789773.0,
		frameIRQEnable: true,
	}
	apu.pulse1.sweep.onesComplement = true
	apu.noise.shiftRegister = 1
	apu.initFilters()
	return apu
}

// Reset resets the APU to its initial state
func (apu *APU) Reset() {
	apu.pulse1 = PulseChannel{}
	apu.pulse1.sweep.onesComplement = true
	apu.pulse2 = PulseChannel{}
	apu.triangle = TriangleChannel{}
	apu.noise = NoiseChannel{shiftRegister: 1}
	apu.dmc.reset()

	apu.frameCounter = 0
	apu.fiveStepMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false

	apu.cycles = 0
	apu.cycleAccumulator = 0
	apu.sampleBuffer = apu.sampleBuffer[:0]
	apu.initFilters()
}

func (apu *APU) initFilters() {
	rate := float64(apu.sampleRate)
	apu.filters[0] = highPassFilter(rate, 90)
	apu.filters[1] = highPassFilter(rate, 440)
	apu.filters[2] = lowPassFilter(rate, 14000)
}

// SetDMCMemoryReader wires the DMC sample fetch path into CPU memory
func (apu *APU) SetDMCMemoryReader(reader MemoryReader) {
	apu.dmc.memory = reader
}

// Step advances the APU by one CPU cycle
func (apu *APU) Step() {
	apu.cycles++

	// The triangle timer runs at the CPU rate; everything else at half
	apu.triangle.stepTimer()
	if apu.cycles%2 == 1 {
		apu.pulse1.stepTimer()
		apu.pulse2.stepTimer()
		apu.noise.stepTimer()
		apu.dmc.stepTimer()
	}

	apu.stepFrameCounter()

	// Length counter register writes settle one cycle later
	apu.pulse1.length.updatePending()
	apu.pulse2.length.updatePending()
	apu.triangle.length.updatePending()
	apu.noise.length.updatePending()

	apu.generateSample()
}

// stepFrameCounter walks the 4- or 5-step sequence, clocking envelope and
// length/sweep units at the quarter- and half-frame boundaries.
func (apu *APU) stepFrameCounter() {
	apu.frameCounter++

	if apu.fiveStepMode {
		switch apu.frameCounter {
		case quarterStep1, quarterStep3:
			apu.clockQuarterFrame()
		case halfStep2:
			apu.clockQuarterFrame()
			apu.clockHalfFrame()
		case fiveStep5:
			apu.clockQuarterFrame()
			apu.clockHalfFrame()
		case fiveStepWrap:
			apu.frameCounter = 0
		}
		return
	}

	switch apu.frameCounter {
	case quarterStep1, quarterStep3:
		apu.clockQuarterFrame()
	case halfStep2:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
	case irqStep4:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
		if apu.frameIRQEnable {
			apu.frameIRQFlag = true
		}
	case fourStepWrap:
		apu.frameCounter = 0
	}
}

// clockQuarterFrame clocks envelopes and the triangle linear counter
func (apu *APU) clockQuarterFrame() {
	apu.pulse1.envelope.clock()
	apu.pulse2.envelope.clock()
	apu.noise.envelope.clock()
	apu.triangle.clockLinearCounter()
}

// clockHalfFrame additionally clocks length counters and sweeps
func (apu *APU) clockHalfFrame() {
	apu.pulse1.clockLengthAndSweep()
	apu.pulse2.clockLengthAndSweep()
	apu.triangle.length.clock()
	apu.noise.length.clock()
}

// WriteRegister writes to an APU register
func (apu *APU) WriteRegister(address uint16, value uint8) {
	switch {
	case address <= 0x4003:
		apu.pulse1.writeRegister(address, value)
	case address <= 0x4007:
		apu.pulse2.writeRegister(address, value)
	case address <= 0x400B:
		apu.triangle.writeRegister(address, value)
	case address <= 0x400F:
		apu.noise.writeRegister(address, value)
	case address <= 0x4013:
		apu.dmc.writeRegister(address, value)
	case address == 0x4015:
		apu.writeStatus(value)
	case address == 0x4017:
		apu.writeFrameCounter(value)
	}
}

// writeStatus handles $4015: channel enables. Disabling a channel zeroes
// its length counter; enabling the DMC restarts its sample if finished.
// The write also acknowledges a pending DMC IRQ.
func (apu *APU) writeStatus(value uint8) {
	apu.pulse1.length.setEnabled(value&0x01 != 0)
	apu.pulse2.length.setEnabled(value&0x02 != 0)
	apu.triangle.length.setEnabled(value&0x04 != 0)
	apu.noise.length.setEnabled(value&0x08 != 0)
	apu.dmc.setEnabled(value&0x10 != 0)
}

// writeFrameCounter handles $4017: sequencer mode and IRQ inhibit. Setting
// the 5-step bit clocks the envelope and length units immediately.
func (apu *APU) writeFrameCounter(value uint8) {
	apu.fiveStepMode = value&0x80 != 0
	apu.frameIRQEnable = value&0x40 == 0
	if !apu.frameIRQEnable {
		apu.frameIRQFlag = false
	}

	apu.frameCounter = 0

	if apu.fiveStepMode {
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
	}
}

// ReadStatus reads $4015: length-counter activity and IRQ flags. Reading
// acknowledges the frame IRQ but not the DMC IRQ.
func (apu *APU) ReadStatus() uint8 {
	var status uint8

	if apu.pulse1.length.playing() {
		status |= 0x01
	}
	if apu.pulse2.length.playing() {
		status |= 0x02
	}
	if apu.triangle.length.playing() {
		status |= 0x04
	}
	if apu.noise.length.playing() {
		status |= 0x08
	}
	if apu.dmc.playing() {
		status |= 0x10
	}
	if apu.frameIRQFlag {
		status |= 0x40
	}
	if apu.dmc.irqFlag {
		status |= 0x80
	}

	apu.frameIRQFlag = false
	return status
}

// IRQPending reports the frame and DMC IRQ lines
func (apu *APU) IRQPending() bool {
	return apu.frameIRQFlag || apu.dmc.irqFlag
}

// StallCycles drains the CPU stall cycles owed to DMC sample fetches
func (apu *APU) StallCycles() int {
	return apu.dmc.takeStallCycles()
}

// generateSample accumulates fractional sample positions and emits one
// mixed, filtered sample whenever the accumulator rolls over.
func (apu *APU) generateSample() {
	apu.cycleAccumulator += float64(apu.sampleRate) / apu.cpuFrequency
	if apu.cycleAccumulator < 1.0 {
		return
	}
	apu.cycleAccumulator -= 1.0

	output := mix(
		apu.pulse1.output(),
		apu.pulse2.output(),
		apu.triangle.output(),
		apu.noise.output(),
		apu.dmc.output(),
	)

	for i := range apu.filters {
		output = apu.filters[i].tick(output)
	}

	apu.sampleBuffer = append(apu.sampleBuffer, clampSample(output))
}

// mix combines the channel outputs through the non-linear mixer
func mix(pulse1, pulse2, triangle, noise, dmc uint8) float64 {
	var pulseOut float64
	pulseSum := float64(pulse1) + float64(pulse2)
	if pulseSum > 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	var tndOut float64
	tndSum := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0
	if tndSum > 0 {
		tndOut = 159.79 / (1.0/tndSum + 100.0)
	}

	// The mixer tops out around 1.0; center and scale to 16-bit
	return (pulseOut + tndOut - 0.5) * 65535.0
}

func clampSample(value float64) int16 {
	if value > 32767 {
		return 32767
	}
	if value < -32768 {
		return -32768
	}
	return int16(value)
}

// GetSamples drains and returns the buffered audio samples
func (apu *APU) GetSamples() []int16 {
	samples := make([]int16, len(apu.sampleBuffer))
	copy(samples, apu.sampleBuffer)
	apu.sampleBuffer = apu.sampleBuffer[:0]
	return samples
}

// SetSampleRate sets the target audio sample rate
func (apu *APU) SetSampleRate(rate int) {
	apu.sampleRate = rate
	apu.cycleAccumulator = 0
	apu.initFilters()
}

// GetSampleRate returns the current sample rate
func (apu *APU) GetSampleRate() int {
	return apu.sampleRate
}
