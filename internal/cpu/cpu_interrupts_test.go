package cpu

import (
	"testing"
)

func TestNMIEdgeTriggered(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(nmiVector, 0x00, 0x90)
	h.Memory.SetBytes(0x9000, 0xEA, 0xEA, 0xEA)
	h.Load(0xEA, 0xEA) // NOP; NOP

	h.CPU.SetNMI(true)
	ticks := h.StepTicks()

	// 7 cycles for the NMI sequence plus the NOP at the vector target
	if ticks != 9 {
		t.Errorf("NMI step consumed %d cycles, want 9", ticks)
	}
	if h.CPU.PC != 0x9001 {
		t.Errorf("NMI: PC=%04X, want 9001", h.CPU.PC)
	}

	// The line stays asserted: no new edge, no second NMI
	h.CPU.SetNMI(true)
	h.CPU.Step()
	if h.CPU.PC != 0x9002 {
		t.Errorf("level-held NMI retriggered: PC=%04X", h.CPU.PC)
	}

	// Deassert then assert latches a fresh edge
	h.CPU.SetNMI(false)
	h.CPU.SetNMI(true)
	h.CPU.Step()
	if h.CPU.PC != 0x9001 {
		t.Errorf("new NMI edge not taken: PC=%04X", h.CPU.PC)
	}
}

func TestNMIPushesStatusWithBClear(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(nmiVector, 0x00, 0x90)
	h.Memory.SetBytes(0x9000, 0xEA)
	h.CPU.C = true
	h.Load(0xEA)

	h.CPU.SetNMI(true)
	h.CPU.Step()

	pushed := h.Memory.Peek(0x01FB)
	if pushed&bFlagMask != 0 {
		t.Errorf("NMI pushed status %08b with B set", pushed)
	}
	if pushed&unusedMask == 0 {
		t.Errorf("NMI pushed status %08b without bit 5", pushed)
	}
	if pushed&cFlagMask == 0 {
		t.Errorf("NMI pushed status %08b without carry", pushed)
	}
	if !h.CPU.I {
		t.Error("NMI should set I")
	}
}

func TestIRQMaskedByIFlag(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(irqVector, 0x00, 0xA0)
	h.Memory.SetBytes(0xA000, 0xEA)
	h.Load(0xEA, 0xEA)

	// I set after reset: IRQ is ignored
	h.CPU.SetIRQ(true)
	h.CPU.Step()
	if h.CPU.PC != 0x8001 {
		t.Fatalf("masked IRQ taken: PC=%04X", h.CPU.PC)
	}

	// Clear I: the still-asserted level is now serviced
	h.CPU.I = false
	h.CPU.Step()
	if h.CPU.PC != 0xA001 {
		t.Errorf("IRQ not taken after CLI: PC=%04X", h.CPU.PC)
	}
}

func TestIRQLevelDeassert(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(irqVector, 0x00, 0xA0)
	h.Load(0xEA, 0xEA)
	h.CPU.I = false

	// Assert then deassert before the next boundary: nothing happens
	h.CPU.SetIRQ(true)
	h.CPU.SetIRQ(false)
	h.CPU.Step()
	if h.CPU.PC != 0x8001 {
		t.Errorf("deasserted IRQ taken: PC=%04X", h.CPU.PC)
	}
}

func TestNMIPriorityOverIRQ(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(nmiVector, 0x00, 0x90)
	h.Memory.SetBytes(irqVector, 0x00, 0xA0)
	h.Memory.SetBytes(0x9000, 0xEA)
	h.Load(0xEA)
	h.CPU.I = false

	h.CPU.SetNMI(true)
	h.CPU.SetIRQ(true)
	h.CPU.Step()

	if h.CPU.PC != 0x9001 {
		t.Errorf("NMI should win over IRQ: PC=%04X", h.CPU.PC)
	}
}

func TestBRKPushesStatusWithBSet(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(irqVector, 0x00, 0xA0)
	h.Load(0x00, 0xFF) // BRK + padding byte

	h.CPU.Step()

	if h.CPU.PC != 0xA000 {
		t.Fatalf("BRK: PC=%04X, want A000", h.CPU.PC)
	}

	pushed := h.Memory.Peek(0x01FB)
	if pushed&bFlagMask == 0 {
		t.Errorf("BRK pushed status %08b with B clear", pushed)
	}

	// Return address is the byte after the padding byte
	low := h.Memory.Peek(0x01FC)
	high := h.Memory.Peek(0x01FD)
	ret := uint16(high)<<8 | uint16(low)
	if ret != 0x8002 {
		t.Errorf("BRK pushed return address %04X, want 8002", ret)
	}
}

func TestRTIRestoresStatusAndPC(t *testing.T) {
	h := NewCPUTestHelper()
	h.Memory.SetBytes(irqVector, 0x00, 0xA0)
	h.Memory.SetBytes(0xA000, 0x40) // RTI
	h.CPU.C = true
	h.CPU.I = false
	h.Load(0x00, 0xFF, 0xEA) // BRK; padding; NOP

	h.CPU.Step() // BRK
	h.CPU.Step() // RTI

	if h.CPU.PC != 0x8002 {
		t.Errorf("RTI: PC=%04X, want 8002", h.CPU.PC)
	}
	if !h.CPU.C {
		t.Error("RTI should restore carry")
	}
	if h.CPU.I {
		t.Error("RTI should restore I clear")
	}
}
