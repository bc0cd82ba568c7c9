package cpu

import (
	"testing"
)

// MockMemory implements MemoryInterface for testing. Every access and
// internal tick is counted, so a test can read back exactly how many CPU
// cycles an instruction consumed.
type MockMemory struct {
	data  [0x10000]uint8
	Ticks int
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{}
}

// Read implements MemoryInterface
func (m *MockMemory) Read(address uint16) uint8 {
	m.Ticks++
	return m.data[address]
}

// Write implements MemoryInterface
func (m *MockMemory) Write(address uint16, value uint8) {
	m.Ticks++
	m.data[address] = value
}

// Tick implements MemoryInterface
func (m *MockMemory) Tick() {
	m.Ticks++
}

// SetBytes stores bytes starting at the given address without ticking
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// Peek reads without ticking
func (m *MockMemory) Peek(address uint16) uint8 {
	return m.data[address]
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

// NewCPUTestHelper creates a CPU wired to mock memory with PC at $8000
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	cpu := New(memory)
	memory.SetBytes(resetVector, 0x00, 0x80)
	cpu.Reset()
	memory.Ticks = 0
	return &CPUTestHelper{CPU: cpu, Memory: memory}
}

// Load places a program at $8000 and points PC at it
func (h *CPUTestHelper) Load(program ...uint8) {
	h.Memory.SetBytes(0x8000, program...)
	h.CPU.PC = 0x8000
}

// StepTicks executes one instruction and returns the cycles it consumed
func (h *CPUTestHelper) StepTicks() int {
	before := h.Memory.Ticks
	h.CPU.Step()
	return h.Memory.Ticks - before
}

func TestResetSequence(t *testing.T) {
	memory := NewMockMemory()
	memory.SetBytes(resetVector, 0x34, 0x12)
	cpu := New(memory)

	memory.Ticks = 0
	cpu.Reset()

	if memory.Ticks != 7 {
		t.Errorf("Reset consumed %d cycles, want 7", memory.Ticks)
	}
	if cpu.PC != 0x1234 {
		t.Errorf("Reset PC = $%04X, want $1234", cpu.PC)
	}
	if !cpu.I {
		t.Error("Reset should set the I flag")
	}
	if cpu.SP != 0xFD {
		t.Errorf("Reset SP = $%02X, want $FD", cpu.SP)
	}
}

func TestLDAImmediateFlags(t *testing.T) {
	h := NewCPUTestHelper()

	h.Load(0xA9, 0x00) // LDA #$00
	h.CPU.Step()
	if h.CPU.A != 0 || !h.CPU.Z || h.CPU.N {
		t.Errorf("LDA #$00: A=%02X Z=%t N=%t", h.CPU.A, h.CPU.Z, h.CPU.N)
	}

	h.Load(0xA9, 0x80) // LDA #$80
	h.CPU.Step()
	if h.CPU.A != 0x80 || h.CPU.Z || !h.CPU.N {
		t.Errorf("LDA #$80: A=%02X Z=%t N=%t", h.CPU.A, h.CPU.Z, h.CPU.N)
	}
}

func TestADCOverflowAndCarry(t *testing.T) {
	cases := []struct {
		a, operand uint8
		carryIn    bool
		result     uint8
		c, v       bool
	}{
		{0x50, 0x10, false, 0x60, false, false},
		{0x50, 0x50, false, 0xA0, false, true},
		{0xD0, 0x90, false, 0x60, true, true},
		{0xFF, 0x01, false, 0x00, true, false},
		{0xFF, 0x00, true, 0x00, true, false},
	}

	for _, tc := range cases {
		h := NewCPUTestHelper()
		h.CPU.A = tc.a
		h.CPU.C = tc.carryIn
		h.Load(0x69, tc.operand) // ADC #imm
		h.CPU.Step()

		if h.CPU.A != tc.result || h.CPU.C != tc.c || h.CPU.V != tc.v {
			t.Errorf("ADC %02X+%02X carry=%t: A=%02X C=%t V=%t, want A=%02X C=%t V=%t",
				tc.a, tc.operand, tc.carryIn, h.CPU.A, h.CPU.C, h.CPU.V, tc.result, tc.c, tc.v)
		}
	}
}

func TestSBCBorrow(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x50
	h.CPU.C = true
	h.Load(0xE9, 0x20) // SBC #$20
	h.CPU.Step()

	if h.CPU.A != 0x30 || !h.CPU.C {
		t.Errorf("SBC: A=%02X C=%t, want A=30 C=true", h.CPU.A, h.CPU.C)
	}
}

func TestZeroPageXWraparound(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.X = 0x10
	h.Memory.SetBytes(0x000F, 0x42) // ($FF + $10) & $FF = $0F
	h.Load(0xB5, 0xFF)              // LDA $FF,X
	h.CPU.Step()

	if h.CPU.A != 0x42 {
		t.Errorf("LDA zp,X wraparound: A=%02X, want 42", h.CPU.A)
	}
}

func TestIndirectIndexedWraparound(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.Y = 0x01
	h.Memory.SetBytes(0x00FF, 0x00) // pointer low at $FF
	h.Memory.SetBytes(0x0000, 0x30) // pointer high wraps to $00
	h.Memory.SetBytes(0x3001, 0x55)
	h.Load(0xB1, 0xFF) // LDA ($FF),Y
	h.CPU.Step()

	if h.CPU.A != 0x55 {
		t.Errorf("LDA (zp),Y pointer wraparound: A=%02X, want 55", h.CPU.A)
	}
}

func TestJMPIndirectPageBug(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(0x02FF, 0x34)
	h.Memory.SetBytes(0x0200, 0x12) // high byte wraps within the page
	h.Memory.SetBytes(0x0300, 0xFF) // must NOT be used
	h.Load(0x6C, 0xFF, 0x02)        // JMP ($02FF)
	h.CPU.Step()

	if h.CPU.PC != 0x1234 {
		t.Errorf("JMP indirect page bug: PC=%04X, want 1234", h.CPU.PC)
	}
}

func TestStackPushPop(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0xAB
	h.Load(0x48, 0xA9, 0x00, 0x68) // PHA; LDA #$00; PLA
	h.CPU.Step()

	if h.Memory.Peek(0x01FD) != 0xAB {
		t.Errorf("PHA wrote %02X at $01FD, want AB", h.Memory.Peek(0x01FD))
	}

	h.CPU.Step()
	h.CPU.Step()
	if h.CPU.A != 0xAB || h.CPU.SP != 0xFD {
		t.Errorf("PLA: A=%02X SP=%02X", h.CPU.A, h.CPU.SP)
	}
}

func TestPHPSetsBreakAndUnused(t *testing.T) {
	h := NewCPUTestHelper()
	h.Load(0x08) // PHP
	h.CPU.Step()

	pushed := h.Memory.Peek(0x01FD)
	if pushed&bFlagMask == 0 || pushed&unusedMask == 0 {
		t.Errorf("PHP pushed %08b, want B and bit 5 set", pushed)
	}
}

func TestJSRAndRTS(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(0x9000, 0x60) // RTS
	h.Load(0x20, 0x00, 0x90)        // JSR $9000
	h.CPU.Step()

	if h.CPU.PC != 0x9000 {
		t.Fatalf("JSR: PC=%04X, want 9000", h.CPU.PC)
	}

	h.CPU.Step()
	if h.CPU.PC != 0x8003 {
		t.Errorf("RTS: PC=%04X, want 8003", h.CPU.PC)
	}
}

func TestCompareSetsCarry(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x40
	h.Load(0xC9, 0x30) // CMP #$30
	h.CPU.Step()
	if !h.CPU.C || h.CPU.Z || h.CPU.N {
		t.Errorf("CMP greater: C=%t Z=%t N=%t", h.CPU.C, h.CPU.Z, h.CPU.N)
	}

	h.Load(0xC9, 0x40)
	h.CPU.Step()
	if !h.CPU.C || !h.CPU.Z {
		t.Errorf("CMP equal: C=%t Z=%t", h.CPU.C, h.CPU.Z)
	}

	h.Load(0xC9, 0x50)
	h.CPU.Step()
	if h.CPU.C || !h.CPU.N {
		t.Errorf("CMP less: C=%t N=%t", h.CPU.C, h.CPU.N)
	}
}

func TestRMWWritesResult(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(0x0010, 0x7F)
	h.Load(0xE6, 0x10) // INC $10
	h.CPU.Step()

	if h.Memory.Peek(0x0010) != 0x80 {
		t.Errorf("INC: memory=%02X, want 80", h.Memory.Peek(0x0010))
	}
	if !h.CPU.N || h.CPU.Z {
		t.Errorf("INC flags: N=%t Z=%t", h.CPU.N, h.CPU.Z)
	}
}

func TestUnofficialOpcodeRunsAsNOP(t *testing.T) {
	h := NewCPUTestHelper()
	h.CPU.A = 0x77
	h.Load(0x07, 0x10, 0xA9) // unofficial SLO zp, runs as 1-byte NOP here
	ticks := h.StepTicks()

	if h.CPU.A != 0x77 {
		t.Errorf("unofficial opcode changed A to %02X", h.CPU.A)
	}
	if ticks != 2 {
		t.Errorf("unofficial opcode consumed %d cycles, want 2", ticks)
	}
}
