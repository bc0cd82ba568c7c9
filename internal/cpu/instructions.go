package cpu

// Instruction describes one opcode: mnemonic, addressing mode, encoded
// length and the documented base cycle count. PageCycle marks opcodes that
// take one extra cycle when indexing crosses a page. Timing is not driven
// from this table; it emerges from the bus accesses each operation
// performs, and the table is what the tests check that timing against.
type Instruction struct {
	Name      string
	Mode      AddressingMode
	Bytes     uint8
	Cycles    uint8
	PageCycle bool
}

// execute dispatches one fetched opcode
func (cpu *CPU) execute(opcode uint8) {
	mode := cpu.instructions[opcode].Mode

	switch opcode {
	// Load/Store Instructions
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1: // LDA
		cpu.lda(mode)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE: // LDX
		cpu.ldx(mode)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC: // LDY
		cpu.ldy(mode)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91: // STA
		cpu.sta(mode)
	case 0x86, 0x96, 0x8E: // STX
		cpu.stx(mode)
	case 0x84, 0x94, 0x8C: // STY
		cpu.sty(mode)

	// Arithmetic Instructions
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71: // ADC
		cpu.adc(mode)
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1: // SBC
		cpu.sbc(mode)

	// Logical Instructions
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31: // AND
		cpu.and(mode)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11: // ORA
		cpu.ora(mode)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51: // EOR
		cpu.eor(mode)

	// Shift and Rotate Instructions
	case 0x0A: // ASL A
		cpu.aslAccumulator()
	case 0x06, 0x16, 0x0E, 0x1E: // ASL
		cpu.asl(mode)
	case 0x4A: // LSR A
		cpu.lsrAccumulator()
	case 0x46, 0x56, 0x4E, 0x5E: // LSR
		cpu.lsr(mode)
	case 0x2A: // ROL A
		cpu.rolAccumulator()
	case 0x26, 0x36, 0x2E, 0x3E: // ROL
		cpu.rol(mode)
	case 0x6A: // ROR A
		cpu.rorAccumulator()
	case 0x66, 0x76, 0x6E, 0x7E: // ROR
		cpu.ror(mode)

	// Comparison Instructions
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1: // CMP
		cpu.compare(cpu.A, mode)
	case 0xE0, 0xE4, 0xEC: // CPX
		cpu.compare(cpu.X, mode)
	case 0xC0, 0xC4, 0xCC: // CPY
		cpu.compare(cpu.Y, mode)

	// Increment/Decrement Instructions
	case 0xE6, 0xF6, 0xEE, 0xFE: // INC
		cpu.inc(mode)
	case 0xC6, 0xD6, 0xCE, 0xDE: // DEC
		cpu.dec(mode)
	case 0xE8: // INX
		cpu.X++
		cpu.implied(cpu.X)
	case 0xCA: // DEX
		cpu.X--
		cpu.implied(cpu.X)
	case 0xC8: // INY
		cpu.Y++
		cpu.implied(cpu.Y)
	case 0x88: // DEY
		cpu.Y--
		cpu.implied(cpu.Y)

	// Transfer Instructions
	case 0xAA: // TAX
		cpu.X = cpu.A
		cpu.implied(cpu.X)
	case 0x8A: // TXA
		cpu.A = cpu.X
		cpu.implied(cpu.A)
	case 0xA8: // TAY
		cpu.Y = cpu.A
		cpu.implied(cpu.Y)
	case 0x98: // TYA
		cpu.A = cpu.Y
		cpu.implied(cpu.A)
	case 0xBA: // TSX
		cpu.X = cpu.SP
		cpu.implied(cpu.X)
	case 0x9A: // TXS
		cpu.SP = cpu.X
		cpu.memory.Tick()

	// Stack Instructions
	case 0x48: // PHA
		cpu.memory.Tick()
		cpu.push(cpu.A)
	case 0x68: // PLA
		cpu.memory.Tick()
		cpu.memory.Tick()
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08: // PHP
		cpu.memory.Tick()
		cpu.push(cpu.statusByte(true))
	case 0x28: // PLP
		cpu.memory.Tick()
		cpu.memory.Tick()
		cpu.SetStatusByte(cpu.pop())

	// Flag Instructions
	case 0x18: // CLC
		cpu.C = false
		cpu.memory.Tick()
	case 0x38: // SEC
		cpu.C = true
		cpu.memory.Tick()
	case 0x58: // CLI
		cpu.I = false
		cpu.memory.Tick()
	case 0x78: // SEI
		cpu.I = true
		cpu.memory.Tick()
	case 0xB8: // CLV
		cpu.V = false
		cpu.memory.Tick()
	case 0xD8: // CLD
		cpu.D = false
		cpu.memory.Tick()
	case 0xF8: // SED
		cpu.D = true
		cpu.memory.Tick()

	// Control Flow Instructions
	case 0x4C, 0x6C: // JMP
		cpu.PC = cpu.operandAddress(mode)
	case 0x20: // JSR
		cpu.jsr()
	case 0x60: // RTS
		cpu.rts()
	case 0x40: // RTI
		cpu.rti()
	case 0x00: // BRK
		cpu.PC++
		cpu.interrupt(interruptBreak)

	// Branch Instructions
	case 0x90: // BCC
		cpu.branch(!cpu.C)
	case 0xB0: // BCS
		cpu.branch(cpu.C)
	case 0xD0: // BNE
		cpu.branch(!cpu.Z)
	case 0xF0: // BEQ
		cpu.branch(cpu.Z)
	case 0x10: // BPL
		cpu.branch(!cpu.N)
	case 0x30: // BMI
		cpu.branch(cpu.N)
	case 0x50: // BVC
		cpu.branch(!cpu.V)
	case 0x70: // BVS
		cpu.branch(cpu.V)

	// Miscellaneous Instructions
	case 0x24, 0x2C: // BIT
		cpu.bit(mode)

	default:
		// Everything else runs as a NOP. The opcodes listed in
		// unofficialNOPs keep their documented length and timing; any
		// other unofficial opcode runs as a single-byte, 2-cycle NOP.
		// Games that rely on unofficial opcodes are not supported.
		cpu.nop(mode)
	}
}

// Load operations

func (cpu *CPU) lda(mode AddressingMode) {
	cpu.A = cpu.readOperand(mode)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) ldx(mode AddressingMode) {
	cpu.X = cpu.readOperand(mode)
	cpu.setZN(cpu.X)
}

func (cpu *CPU) ldy(mode AddressingMode) {
	cpu.Y = cpu.readOperand(mode)
	cpu.setZN(cpu.Y)
}

// Store operations

func (cpu *CPU) sta(mode AddressingMode) {
	cpu.memory.Write(cpu.writeAddress(mode), cpu.A)
}

func (cpu *CPU) stx(mode AddressingMode) {
	cpu.memory.Write(cpu.writeAddress(mode), cpu.X)
}

func (cpu *CPU) sty(mode AddressingMode) {
	cpu.memory.Write(cpu.writeAddress(mode), cpu.Y)
}

// Arithmetic operations

// addWithCarry implements the shared ADC/SBC core; SBC passes the operand
// inverted.
func (cpu *CPU) addWithCarry(value uint8) {
	a := cpu.A
	result := uint16(a) + uint16(value) + uint16(cpu.carry())

	cpu.C = result > 0xFF
	cpu.V = (a^uint8(result))&(value^uint8(result))&0x80 != 0
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) adc(mode AddressingMode) {
	cpu.addWithCarry(cpu.readOperand(mode))
}

func (cpu *CPU) sbc(mode AddressingMode) {
	cpu.addWithCarry(^cpu.readOperand(mode))
}

func (cpu *CPU) compare(register uint8, mode AddressingMode) {
	value := cpu.readOperand(mode)
	cpu.C = register >= value
	cpu.setZN(register - value)
}

// Logical operations

func (cpu *CPU) and(mode AddressingMode) {
	cpu.A &= cpu.readOperand(mode)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) ora(mode AddressingMode) {
	cpu.A |= cpu.readOperand(mode)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) eor(mode AddressingMode) {
	cpu.A ^= cpu.readOperand(mode)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) bit(mode AddressingMode) {
	value := cpu.readOperand(mode)
	cpu.N = value&nFlagMask != 0
	cpu.V = value&vFlagMask != 0
	cpu.Z = cpu.A&value == 0
}

// Shift and rotate operations. The memory forms are read-modify-write:
// read, one internal cycle while the ALU works, then the write back.

func (cpu *CPU) modify(mode AddressingMode, op func(uint8) uint8) {
	address := cpu.writeAddress(mode)
	value := cpu.memory.Read(address)
	cpu.memory.Tick()
	result := op(value)
	cpu.setZN(result)
	cpu.memory.Write(address, result)
}

func (cpu *CPU) aslValue(value uint8) uint8 {
	cpu.C = value&0x80 != 0
	return value << 1
}

func (cpu *CPU) lsrValue(value uint8) uint8 {
	cpu.C = value&0x01 != 0
	return value >> 1
}

func (cpu *CPU) rolValue(value uint8) uint8 {
	carry := cpu.carry()
	cpu.C = value&0x80 != 0
	return value<<1 | carry
}

func (cpu *CPU) rorValue(value uint8) uint8 {
	carry := cpu.carry()
	cpu.C = value&0x01 != 0
	return value>>1 | carry<<7
}

func (cpu *CPU) asl(mode AddressingMode) { cpu.modify(mode, cpu.aslValue) }
func (cpu *CPU) lsr(mode AddressingMode) { cpu.modify(mode, cpu.lsrValue) }
func (cpu *CPU) rol(mode AddressingMode) { cpu.modify(mode, cpu.rolValue) }
func (cpu *CPU) ror(mode AddressingMode) { cpu.modify(mode, cpu.rorValue) }

func (cpu *CPU) aslAccumulator() {
	cpu.A = cpu.aslValue(cpu.A)
	cpu.setZN(cpu.A)
	cpu.memory.Tick()
}

func (cpu *CPU) lsrAccumulator() {
	cpu.A = cpu.lsrValue(cpu.A)
	cpu.setZN(cpu.A)
	cpu.memory.Tick()
}

func (cpu *CPU) rolAccumulator() {
	cpu.A = cpu.rolValue(cpu.A)
	cpu.setZN(cpu.A)
	cpu.memory.Tick()
}

func (cpu *CPU) rorAccumulator() {
	cpu.A = cpu.rorValue(cpu.A)
	cpu.setZN(cpu.A)
	cpu.memory.Tick()
}

// Increment/Decrement operations

func (cpu *CPU) inc(mode AddressingMode) {
	cpu.modify(mode, func(v uint8) uint8 { return v + 1 })
}

func (cpu *CPU) dec(mode AddressingMode) {
	cpu.modify(mode, func(v uint8) uint8 { return v - 1 })
}

// implied finishes a single-cycle register operation: flags from the
// result plus the internal cycle.
func (cpu *CPU) implied(result uint8) {
	cpu.setZN(result)
	cpu.memory.Tick()
}

// Control flow operations

// branch reads the displacement, then spends one cycle if taken and one
// more if the target lies in a different page.
func (cpu *CPU) branch(condition bool) {
	offset := int8(cpu.readOperand(Immediate))
	if !condition {
		return
	}

	cpu.memory.Tick()
	target := uint16(int32(cpu.PC) + int32(offset))
	if target&pageMask != cpu.PC&pageMask {
		cpu.memory.Tick()
	}
	cpu.PC = target
}

func (cpu *CPU) jsr() {
	target := cpu.operandAddress(Absolute)
	cpu.memory.Tick()
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = target
}

func (cpu *CPU) rts() {
	cpu.memory.Tick()
	cpu.memory.Tick()
	cpu.PC = cpu.popWord() + 1
	cpu.memory.Tick()
}

func (cpu *CPU) rti() {
	cpu.memory.Tick()
	cpu.memory.Tick()
	cpu.SetStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
}

// nop consumes the operand bytes of the given mode without side effects
func (cpu *CPU) nop(mode AddressingMode) {
	switch mode {
	case Implied, Accumulator:
		cpu.memory.Tick()
	default:
		cpu.readOperand(mode)
	}
}

// instructionEntry is the compact form used to build the lookup table
type instructionEntry struct {
	opcode    uint8
	name      string
	mode      AddressingMode
	bytes     uint8
	cycles    uint8
	pageCycle bool
}

var officialInstructions = []instructionEntry{
	// Load/Store
	{0xA9, "LDA", Immediate, 2, 2, false},
	{0xA5, "LDA", ZeroPage, 2, 3, false},
	{0xB5, "LDA", ZeroPageX, 2, 4, false},
	{0xAD, "LDA", Absolute, 3, 4, false},
	{0xBD, "LDA", AbsoluteX, 3, 4, true},
	{0xB9, "LDA", AbsoluteY, 3, 4, true},
	{0xA1, "LDA", IndexedIndirect, 2, 6, false},
	{0xB1, "LDA", IndirectIndexed, 2, 5, true},

	{0xA2, "LDX", Immediate, 2, 2, false},
	{0xA6, "LDX", ZeroPage, 2, 3, false},
	{0xB6, "LDX", ZeroPageY, 2, 4, false},
	{0xAE, "LDX", Absolute, 3, 4, false},
	{0xBE, "LDX", AbsoluteY, 3, 4, true},

	{0xA0, "LDY", Immediate, 2, 2, false},
	{0xA4, "LDY", ZeroPage, 2, 3, false},
	{0xB4, "LDY", ZeroPageX, 2, 4, false},
	{0xAC, "LDY", Absolute, 3, 4, false},
	{0xBC, "LDY", AbsoluteX, 3, 4, true},

	{0x85, "STA", ZeroPage, 2, 3, false},
	{0x95, "STA", ZeroPageX, 2, 4, false},
	{0x8D, "STA", Absolute, 3, 4, false},
	{0x9D, "STA", AbsoluteX, 3, 5, false},
	{0x99, "STA", AbsoluteY, 3, 5, false},
	{0x81, "STA", IndexedIndirect, 2, 6, false},
	{0x91, "STA", IndirectIndexed, 2, 6, false},

	{0x86, "STX", ZeroPage, 2, 3, false},
	{0x96, "STX", ZeroPageY, 2, 4, false},
	{0x8E, "STX", Absolute, 3, 4, false},

	{0x84, "STY", ZeroPage, 2, 3, false},
	{0x94, "STY", ZeroPageX, 2, 4, false},
	{0x8C, "STY", Absolute, 3, 4, false},

	// Arithmetic
	{0x69, "ADC", Immediate, 2, 2, false},
	{0x65, "ADC", ZeroPage, 2, 3, false},
	{0x75, "ADC", ZeroPageX, 2, 4, false},
	{0x6D, "ADC", Absolute, 3, 4, false},
	{0x7D, "ADC", AbsoluteX, 3, 4, true},
	{0x79, "ADC", AbsoluteY, 3, 4, true},
	{0x61, "ADC", IndexedIndirect, 2, 6, false},
	{0x71, "ADC", IndirectIndexed, 2, 5, true},

	{0xE9, "SBC", Immediate, 2, 2, false},
	{0xE5, "SBC", ZeroPage, 2, 3, false},
	{0xF5, "SBC", ZeroPageX, 2, 4, false},
	{0xED, "SBC", Absolute, 3, 4, false},
	{0xFD, "SBC", AbsoluteX, 3, 4, true},
	{0xF9, "SBC", AbsoluteY, 3, 4, true},
	{0xE1, "SBC", IndexedIndirect, 2, 6, false},
	{0xF1, "SBC", IndirectIndexed, 2, 5, true},

	// Logical
	{0x29, "AND", Immediate, 2, 2, false},
	{0x25, "AND", ZeroPage, 2, 3, false},
	{0x35, "AND", ZeroPageX, 2, 4, false},
	{0x2D, "AND", Absolute, 3, 4, false},
	{0x3D, "AND", AbsoluteX, 3, 4, true},
	{0x39, "AND", AbsoluteY, 3, 4, true},
	{0x21, "AND", IndexedIndirect, 2, 6, false},
	{0x31, "AND", IndirectIndexed, 2, 5, true},

	{0x09, "ORA", Immediate, 2, 2, false},
	{0x05, "ORA", ZeroPage, 2, 3, false},
	{0x15, "ORA", ZeroPageX, 2, 4, false},
	{0x0D, "ORA", Absolute, 3, 4, false},
	{0x1D, "ORA", AbsoluteX, 3, 4, true},
	{0x19, "ORA", AbsoluteY, 3, 4, true},
	{0x01, "ORA", IndexedIndirect, 2, 6, false},
	{0x11, "ORA", IndirectIndexed, 2, 5, true},

	{0x49, "EOR", Immediate, 2, 2, false},
	{0x45, "EOR", ZeroPage, 2, 3, false},
	{0x55, "EOR", ZeroPageX, 2, 4, false},
	{0x4D, "EOR", Absolute, 3, 4, false},
	{0x5D, "EOR", AbsoluteX, 3, 4, true},
	{0x59, "EOR", AbsoluteY, 3, 4, true},
	{0x41, "EOR", IndexedIndirect, 2, 6, false},
	{0x51, "EOR", IndirectIndexed, 2, 5, true},

	{0x24, "BIT", ZeroPage, 2, 3, false},
	{0x2C, "BIT", Absolute, 3, 4, false},

	// Shifts and rotates
	{0x0A, "ASL", Accumulator, 1, 2, false},
	{0x06, "ASL", ZeroPage, 2, 5, false},
	{0x16, "ASL", ZeroPageX, 2, 6, false},
	{0x0E, "ASL", Absolute, 3, 6, false},
	{0x1E, "ASL", AbsoluteX, 3, 7, false},

	{0x4A, "LSR", Accumulator, 1, 2, false},
	{0x46, "LSR", ZeroPage, 2, 5, false},
	{0x56, "LSR", ZeroPageX, 2, 6, false},
	{0x4E, "LSR", Absolute, 3, 6, false},
	{0x5E, "LSR", AbsoluteX, 3, 7, false},

	{0x2A, "ROL", Accumulator, 1, 2, false},
	{0x26, "ROL", ZeroPage, 2, 5, false},
	{0x36, "ROL", ZeroPageX, 2, 6, false},
	{0x2E, "ROL", Absolute, 3, 6, false},
	{0x3E, "ROL", AbsoluteX, 3, 7, false},

	{0x6A, "ROR", Accumulator, 1, 2, false},
	{0x66, "ROR", ZeroPage, 2, 5, false},
	{0x76, "ROR", ZeroPageX, 2, 6, false},
	{0x6E, "ROR", Absolute, 3, 6, false},
	{0x7E, "ROR", AbsoluteX, 3, 7, false},

	// Comparisons
	{0xC9, "CMP", Immediate, 2, 2, false},
	{0xC5, "CMP", ZeroPage, 2, 3, false},
	{0xD5, "CMP", ZeroPageX, 2, 4, false},
	{0xCD, "CMP", Absolute, 3, 4, false},
	{0xDD, "CMP", AbsoluteX, 3, 4, true},
	{0xD9, "CMP", AbsoluteY, 3, 4, true},
	{0xC1, "CMP", IndexedIndirect, 2, 6, false},
	{0xD1, "CMP", IndirectIndexed, 2, 5, true},

	{0xE0, "CPX", Immediate, 2, 2, false},
	{0xE4, "CPX", ZeroPage, 2, 3, false},
	{0xEC, "CPX", Absolute, 3, 4, false},

	{0xC0, "CPY", Immediate, 2, 2, false},
	{0xC4, "CPY", ZeroPage, 2, 3, false},
	{0xCC, "CPY", Absolute, 3, 4, false},

	// Increments and decrements
	{0xE6, "INC", ZeroPage, 2, 5, false},
	{0xF6, "INC", ZeroPageX, 2, 6, false},
	{0xEE, "INC", Absolute, 3, 6, false},
	{0xFE, "INC", AbsoluteX, 3, 7, false},

	{0xC6, "DEC", ZeroPage, 2, 5, false},
	{0xD6, "DEC", ZeroPageX, 2, 6, false},
	{0xCE, "DEC", Absolute, 3, 6, false},
	{0xDE, "DEC", AbsoluteX, 3, 7, false},

	{0xE8, "INX", Implied, 1, 2, false},
	{0xCA, "DEX", Implied, 1, 2, false},
	{0xC8, "INY", Implied, 1, 2, false},
	{0x88, "DEY", Implied, 1, 2, false},

	// Transfers
	{0xAA, "TAX", Implied, 1, 2, false},
	{0x8A, "TXA", Implied, 1, 2, false},
	{0xA8, "TAY", Implied, 1, 2, false},
	{0x98, "TYA", Implied, 1, 2, false},
	{0xBA, "TSX", Implied, 1, 2, false},
	{0x9A, "TXS", Implied, 1, 2, false},

	// Stack
	{0x48, "PHA", Implied, 1, 3, false},
	{0x68, "PLA", Implied, 1, 4, false},
	{0x08, "PHP", Implied, 1, 3, false},
	{0x28, "PLP", Implied, 1, 4, false},

	// Flags
	{0x18, "CLC", Implied, 1, 2, false},
	{0x38, "SEC", Implied, 1, 2, false},
	{0x58, "CLI", Implied, 1, 2, false},
	{0x78, "SEI", Implied, 1, 2, false},
	{0xB8, "CLV", Implied, 1, 2, false},
	{0xD8, "CLD", Implied, 1, 2, false},
	{0xF8, "SED", Implied, 1, 2, false},

	// Control flow
	{0x4C, "JMP", Absolute, 3, 3, false},
	{0x6C, "JMP", Indirect, 3, 5, false},
	{0x20, "JSR", Absolute, 3, 6, false},
	{0x60, "RTS", Implied, 1, 6, false},
	{0x40, "RTI", Implied, 1, 6, false},
	{0x00, "BRK", Implied, 2, 7, false},

	// Branches
	{0x90, "BCC", Relative, 2, 2, false},
	{0xB0, "BCS", Relative, 2, 2, false},
	{0xD0, "BNE", Relative, 2, 2, false},
	{0xF0, "BEQ", Relative, 2, 2, false},
	{0x10, "BPL", Relative, 2, 2, false},
	{0x30, "BMI", Relative, 2, 2, false},
	{0x50, "BVC", Relative, 2, 2, false},
	{0x70, "BVS", Relative, 2, 2, false},

	{0xEA, "NOP", Implied, 1, 2, false},
}

// unofficialNOPs covers the undocumented opcodes with well-known lengths
// and timing. They execute as reads with no architectural effect.
var unofficialNOPs = []instructionEntry{
	{0x1A, "NOP", Implied, 1, 2, false},
	{0x3A, "NOP", Implied, 1, 2, false},
	{0x5A, "NOP", Implied, 1, 2, false},
	{0x7A, "NOP", Implied, 1, 2, false},
	{0xDA, "NOP", Implied, 1, 2, false},
	{0xFA, "NOP", Implied, 1, 2, false},

	{0x80, "NOP", Immediate, 2, 2, false},
	{0x82, "NOP", Immediate, 2, 2, false},
	{0x89, "NOP", Immediate, 2, 2, false},
	{0xC2, "NOP", Immediate, 2, 2, false},
	{0xE2, "NOP", Immediate, 2, 2, false},

	{0x04, "NOP", ZeroPage, 2, 3, false},
	{0x44, "NOP", ZeroPage, 2, 3, false},
	{0x64, "NOP", ZeroPage, 2, 3, false},

	{0x14, "NOP", ZeroPageX, 2, 4, false},
	{0x34, "NOP", ZeroPageX, 2, 4, false},
	{0x54, "NOP", ZeroPageX, 2, 4, false},
	{0x74, "NOP", ZeroPageX, 2, 4, false},
	{0xD4, "NOP", ZeroPageX, 2, 4, false},
	{0xF4, "NOP", ZeroPageX, 2, 4, false},

	{0x0C, "NOP", Absolute, 3, 4, false},
	{0x1C, "NOP", AbsoluteX, 3, 4, true},
	{0x3C, "NOP", AbsoluteX, 3, 4, true},
	{0x5C, "NOP", AbsoluteX, 3, 4, true},
	{0x7C, "NOP", AbsoluteX, 3, 4, true},
	{0xDC, "NOP", AbsoluteX, 3, 4, true},
	{0xFC, "NOP", AbsoluteX, 3, 4, true},
}

// initInstructions populates the 256-entry lookup table. Official opcodes
// and the documented unofficial NOPs get their real modes; anything left
// is a 2-cycle single-byte NOP.
func (cpu *CPU) initInstructions() {
	for _, entry := range officialInstructions {
		cpu.instructions[entry.opcode] = Instruction{
			Name:      entry.name,
			Mode:      entry.mode,
			Bytes:     entry.bytes,
			Cycles:    entry.cycles,
			PageCycle: entry.pageCycle,
		}
	}
	for _, entry := range unofficialNOPs {
		cpu.instructions[entry.opcode] = Instruction{
			Name:      entry.name,
			Mode:      entry.mode,
			Bytes:     entry.bytes,
			Cycles:    entry.cycles,
			PageCycle: entry.pageCycle,
		}
	}
	for i := range cpu.instructions {
		if cpu.instructions[i].Name == "" {
			cpu.instructions[i] = Instruction{Name: "NOP", Mode: Implied, Bytes: 1, Cycles: 2}
		}
	}
}

// InstructionAt returns the table entry for an opcode, for tests and
// debug output.
func (cpu *CPU) InstructionAt(opcode uint8) Instruction {
	return cpu.instructions[opcode]
}
