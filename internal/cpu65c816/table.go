package cpu65c816

// CycleModifiers describes the conditions under which an instruction's
// base cycle count is increased (spec.md §4.4).
type CycleModifiers struct {
	PlusMIf16             bool
	PlusXIf16             bool
	PlusPageBoundary      bool
	PlusBranchTaken       bool
	PlusBranchPageCrossed bool
}

// Descriptor is the static per-opcode record the rest of the pipeline
// consults (spec.md §3 Instruction Descriptor). BaseLength is the
// instruction's byte count assuming 8-bit M/X; callers add one byte via
// Descriptor.Length when the relevant flag is 16-bit and the mnemonic is
// flag-sensitive (spec.md §4.5).
type Descriptor struct {
	Opcode     byte
	Mnemonic   string
	Mode       AddressingMode
	BaseLength int
	BaseCycles int
	Modifiers  CycleModifiers
}

// mSensitive lists mnemonics whose Immediate-mode operand widens to two
// bytes when the M (accumulator width) flag is 16-bit. Per spec.md §4.5
// this set includes STA, even though STA has no Immediate-mode opcode in
// the table below and so the rule is inert for it.
var mSensitive = map[string]bool{
	"LDA": true, "STA": true, "CMP": true, "ADC": true,
	"SBC": true, "AND": true, "ORA": true, "EOR": true,
	"BIT": true,
}

// xSensitive lists mnemonics whose Immediate-mode operand widens to two
// bytes when the X (index width) flag is 16-bit.
var xSensitive = map[string]bool{
	"LDX": true, "LDY": true, "CPX": true, "CPY": true,
}

// Length returns the instruction's byte count given the current M and X
// flag widths.
func (d Descriptor) Length(m, x FlagWidth) int {
	n := d.BaseLength
	if d.Mode == Immediate {
		if mSensitive[d.Mnemonic] && m == Width16 {
			n++
		}
		if xSensitive[d.Mnemonic] && x == Width16 {
			n++
		}
	}
	return n
}

// IsBranch reports whether the instruction is a short conditional
// relative branch (BRx). BRA is unconditional and is excluded.
func (d Descriptor) IsBranch() bool {
	switch d.Mnemonic {
	case "BPL", "BMI", "BVC", "BVS", "BCC", "BCS", "BNE", "BEQ":
		return true
	}
	return false
}

// IsUnconditionalTransfer reports whether the instruction always
// transfers control away from the next sequential address (BRA/BRL/JMP/
// JML/RTS/RTL/RTI/BRK/COP/STP do not fall through the normal way;
// RTS/RTL/RTI have no successor at all).
func (d Descriptor) IsUnconditionalTransfer() bool {
	switch d.Mnemonic {
	case "BRA", "BRL", "JMP", "JML", "RTS", "RTL", "RTI", "BRK", "COP", "STP":
		return true
	}
	return false
}

// IsTerminator reports whether this instruction can end a basic block
// (spec.md §3 Basic Block: BRx, JMP, JSR, RTS/RTL/RTI, BRK, COP, WAI,
// STP, BRL).
func (d Descriptor) IsTerminator() bool {
	if d.IsBranch() {
		return true
	}
	switch d.Mnemonic {
	case "BRA", "JMP", "JML", "JSR", "JSL", "RTS", "RTL", "RTI", "BRK", "COP", "WAI", "STP", "BRL":
		return true
	}
	return false
}

// IsCall reports whether this instruction is a subroutine call.
func (d Descriptor) IsCall() bool {
	return d.Mnemonic == "JSR" || d.Mnemonic == "JSL"
}

// IsReturn reports whether this instruction returns from a subroutine
// or interrupt handler, producing no CFG successors.
func (d Descriptor) IsReturn() bool {
	switch d.Mnemonic {
	case "RTS", "RTL", "RTI":
		return true
	}
	return false
}

// IsIndirectJump reports whether this instruction is an indirect jump
// whose target must be resolved via a jump table (spec.md §4.10).
func (d Descriptor) IsIndirectJump() bool {
	switch d.Mode {
	case AbsoluteIndirect, AbsoluteIndexedIndirect, AbsoluteIndirectLong:
		return d.Mnemonic == "JMP" || d.Mnemonic == "JML" || d.Mnemonic == "JSR"
	}
	return false
}

// descriptors is the static 256-entry 65C816 opcode table. Grounded on
// the teacher's OpCodes []Opcode + OpCodesMap init() pattern
// (chriskillpack-bbcdisasm/opcodes.go), extended from 6502 to 65C816.
var descriptors = [256]Descriptor{
	0x00: {0x00, "BRK", Implied, 2, 7, CycleModifiers{}},
	0x01: {0x01, "ORA", DirectIndirectX, 2, 6, CycleModifiers{}},
	0x02: {0x02, "COP", Implied, 2, 7, CycleModifiers{}},
	0x03: {0x03, "ORA", StackRelative, 2, 4, CycleModifiers{}},
	0x04: {0x04, "TSB", ZeroPage, 2, 5, CycleModifiers{}},
	0x05: {0x05, "ORA", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x06: {0x06, "ASL", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x07: {0x07, "ORA", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x08: {0x08, "PHP", Implied, 1, 3, CycleModifiers{}},
	0x09: {0x09, "ORA", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0x0A: {0x0A, "ASL", Accumulator, 1, 2, CycleModifiers{}},
	0x0B: {0x0B, "PHD", Implied, 1, 4, CycleModifiers{}},
	0x0C: {0x0C, "TSB", Absolute, 3, 6, CycleModifiers{}},
	0x0D: {0x0D, "ORA", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x0E: {0x0E, "ASL", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0x0F: {0x0F, "ORA", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x10: {0x10, "BPL", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0x11: {0x11, "ORA", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x12: {0x12, "ORA", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x13: {0x13, "ORA", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0x14: {0x14, "TRB", ZeroPage, 2, 5, CycleModifiers{}},
	0x15: {0x15, "ORA", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x16: {0x16, "ASL", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x17: {0x17, "ORA", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x18: {0x18, "CLC", Implied, 1, 2, CycleModifiers{}},
	0x19: {0x19, "ORA", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x1A: {0x1A, "INC", Accumulator, 1, 2, CycleModifiers{}},
	0x1B: {0x1B, "TCS", Implied, 1, 2, CycleModifiers{}},
	0x1C: {0x1C, "TRB", Absolute, 3, 6, CycleModifiers{}},
	0x1D: {0x1D, "ORA", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x1E: {0x1E, "ASL", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0x1F: {0x1F, "ORA", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x20: {0x20, "JSR", Absolute, 3, 6, CycleModifiers{}},
	0x21: {0x21, "AND", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x22: {0x22, "JSL", AbsoluteLong, 4, 8, CycleModifiers{}},
	0x23: {0x23, "AND", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x24: {0x24, "BIT", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x25: {0x25, "AND", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x26: {0x26, "ROL", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x27: {0x27, "AND", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x28: {0x28, "PLP", Implied, 1, 4, CycleModifiers{}},
	0x29: {0x29, "AND", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0x2A: {0x2A, "ROL", Accumulator, 1, 2, CycleModifiers{}},
	0x2B: {0x2B, "PLD", Implied, 1, 5, CycleModifiers{}},
	0x2C: {0x2C, "BIT", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x2D: {0x2D, "AND", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x2E: {0x2E, "ROL", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0x2F: {0x2F, "AND", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x30: {0x30, "BMI", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0x31: {0x31, "AND", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x32: {0x32, "AND", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x33: {0x33, "AND", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0x34: {0x34, "BIT", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x35: {0x35, "AND", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x36: {0x36, "ROL", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x37: {0x37, "AND", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x38: {0x38, "SEC", Implied, 1, 2, CycleModifiers{}},
	0x39: {0x39, "AND", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x3A: {0x3A, "DEC", Accumulator, 1, 2, CycleModifiers{}},
	0x3B: {0x3B, "TSC", Implied, 1, 2, CycleModifiers{}},
	0x3C: {0x3C, "BIT", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x3D: {0x3D, "AND", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x3E: {0x3E, "ROL", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0x3F: {0x3F, "AND", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x40: {0x40, "RTI", Implied, 1, 6, CycleModifiers{}},
	0x41: {0x41, "EOR", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x42: {0x42, "WDM", Implied, 2, 2, CycleModifiers{}},
	0x43: {0x43, "EOR", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x44: {0x44, "MVP", BlockMove, 3, 7, CycleModifiers{}},
	0x45: {0x45, "EOR", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x46: {0x46, "LSR", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x47: {0x47, "EOR", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x48: {0x48, "PHA", Implied, 1, 3, CycleModifiers{}},
	0x49: {0x49, "EOR", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0x4A: {0x4A, "LSR", Accumulator, 1, 2, CycleModifiers{}},
	0x4B: {0x4B, "PHK", Implied, 1, 3, CycleModifiers{}},
	0x4C: {0x4C, "JMP", Absolute, 3, 3, CycleModifiers{}},
	0x4D: {0x4D, "EOR", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x4E: {0x4E, "LSR", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0x4F: {0x4F, "EOR", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x50: {0x50, "BVC", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0x51: {0x51, "EOR", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x52: {0x52, "EOR", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x53: {0x53, "EOR", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0x54: {0x54, "MVN", BlockMove, 3, 7, CycleModifiers{}},
	0x55: {0x55, "EOR", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x56: {0x56, "LSR", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x57: {0x57, "EOR", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x58: {0x58, "CLI", Implied, 1, 2, CycleModifiers{}},
	0x59: {0x59, "EOR", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x5A: {0x5A, "PHY", Implied, 1, 3, CycleModifiers{PlusXIf16: true}},
	0x5B: {0x5B, "TCD", Implied, 1, 2, CycleModifiers{}},
	0x5C: {0x5C, "JML", AbsoluteLong, 4, 4, CycleModifiers{}},
	0x5D: {0x5D, "EOR", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x5E: {0x5E, "LSR", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0x5F: {0x5F, "EOR", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x60: {0x60, "RTS", Implied, 1, 6, CycleModifiers{}},
	0x61: {0x61, "ADC", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x62: {0x62, "PER", RelativeLong, 3, 6, CycleModifiers{}},
	0x63: {0x63, "ADC", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x64: {0x64, "STZ", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x65: {0x65, "ADC", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x66: {0x66, "ROR", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x67: {0x67, "ADC", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x68: {0x68, "PLA", Implied, 1, 4, CycleModifiers{PlusMIf16: true}},
	0x69: {0x69, "ADC", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0x6A: {0x6A, "ROR", Accumulator, 1, 2, CycleModifiers{}},
	0x6B: {0x6B, "RTL", Implied, 1, 6, CycleModifiers{}},
	0x6C: {0x6C, "JMP", AbsoluteIndirect, 3, 5, CycleModifiers{}},
	0x6D: {0x6D, "ADC", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x6E: {0x6E, "ROR", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0x6F: {0x6F, "ADC", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x70: {0x70, "BVS", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0x71: {0x71, "ADC", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x72: {0x72, "ADC", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x73: {0x73, "ADC", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0x74: {0x74, "STZ", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x75: {0x75, "ADC", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x76: {0x76, "ROR", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x77: {0x77, "ADC", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x78: {0x78, "SEI", Implied, 1, 2, CycleModifiers{}},
	0x79: {0x79, "ADC", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x7A: {0x7A, "PLY", Implied, 1, 4, CycleModifiers{PlusXIf16: true}},
	0x7B: {0x7B, "TDC", Implied, 1, 2, CycleModifiers{}},
	0x7C: {0x7C, "JMP", AbsoluteIndexedIndirect, 3, 6, CycleModifiers{}},
	0x7D: {0x7D, "ADC", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0x7E: {0x7E, "ROR", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0x7F: {0x7F, "ADC", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x80: {0x80, "BRA", Relative, 2, 3, CycleModifiers{PlusBranchPageCrossed: true}},
	0x81: {0x81, "STA", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x82: {0x82, "BRL", RelativeLong, 3, 4, CycleModifiers{}},
	0x83: {0x83, "STA", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x84: {0x84, "STY", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0x85: {0x85, "STA", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0x86: {0x86, "STX", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0x87: {0x87, "STA", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x88: {0x88, "DEY", Implied, 1, 2, CycleModifiers{}},
	0x89: {0x89, "BIT", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0x8A: {0x8A, "TXA", Implied, 1, 2, CycleModifiers{}},
	0x8B: {0x8B, "PHB", Implied, 1, 3, CycleModifiers{}},
	0x8C: {0x8C, "STY", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0x8D: {0x8D, "STA", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x8E: {0x8E, "STX", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0x8F: {0x8F, "STA", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0x90: {0x90, "BCC", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0x91: {0x91, "STA", DirectIndirectY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x92: {0x92, "STA", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0x93: {0x93, "STA", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0x94: {0x94, "STY", ZeroPageX, 2, 4, CycleModifiers{PlusXIf16: true}},
	0x95: {0x95, "STA", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0x96: {0x96, "STX", ZeroPageY, 2, 4, CycleModifiers{PlusXIf16: true}},
	0x97: {0x97, "STA", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0x98: {0x98, "TYA", Implied, 1, 2, CycleModifiers{}},
	0x99: {0x99, "STA", AbsoluteY, 3, 5, CycleModifiers{PlusMIf16: true}},
	0x9A: {0x9A, "TXS", Implied, 1, 2, CycleModifiers{}},
	0x9B: {0x9B, "TXY", Implied, 1, 2, CycleModifiers{}},
	0x9C: {0x9C, "STZ", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0x9D: {0x9D, "STA", AbsoluteX, 3, 5, CycleModifiers{PlusMIf16: true}},
	0x9E: {0x9E, "STZ", AbsoluteX, 3, 5, CycleModifiers{PlusMIf16: true}},
	0x9F: {0x9F, "STA", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xA0: {0xA0, "LDY", Immediate, 2, 2, CycleModifiers{PlusXIf16: true}},
	0xA1: {0xA1, "LDA", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xA2: {0xA2, "LDX", Immediate, 2, 2, CycleModifiers{PlusXIf16: true}},
	0xA3: {0xA3, "LDA", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xA4: {0xA4, "LDY", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0xA5: {0xA5, "LDA", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0xA6: {0xA6, "LDX", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0xA7: {0xA7, "LDA", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xA8: {0xA8, "TAY", Implied, 1, 2, CycleModifiers{}},
	0xA9: {0xA9, "LDA", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0xAA: {0xAA, "TAX", Implied, 1, 2, CycleModifiers{}},
	0xAB: {0xAB, "PLB", Implied, 1, 4, CycleModifiers{}},
	0xAC: {0xAC, "LDY", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0xAD: {0xAD, "LDA", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0xAE: {0xAE, "LDX", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0xAF: {0xAF, "LDA", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xB0: {0xB0, "BCS", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0xB1: {0xB1, "LDA", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xB2: {0xB2, "LDA", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0xB3: {0xB3, "LDA", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0xB4: {0xB4, "LDY", ZeroPageX, 2, 4, CycleModifiers{PlusXIf16: true}},
	0xB5: {0xB5, "LDA", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xB6: {0xB6, "LDX", ZeroPageY, 2, 4, CycleModifiers{PlusXIf16: true}},
	0xB7: {0xB7, "LDA", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xB8: {0xB8, "CLV", Implied, 1, 2, CycleModifiers{}},
	0xB9: {0xB9, "LDA", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xBA: {0xBA, "TSX", Implied, 1, 2, CycleModifiers{}},
	0xBB: {0xBB, "TYX", Implied, 1, 2, CycleModifiers{}},
	0xBC: {0xBC, "LDY", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusXIf16: true}},
	0xBD: {0xBD, "LDA", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xBE: {0xBE, "LDX", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusXIf16: true}},
	0xBF: {0xBF, "LDA", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xC0: {0xC0, "CPY", Immediate, 2, 2, CycleModifiers{PlusXIf16: true}},
	0xC1: {0xC1, "CMP", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xC2: {0xC2, "REP", Immediate, 2, 3, CycleModifiers{}},
	0xC3: {0xC3, "CMP", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xC4: {0xC4, "CPY", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0xC5: {0xC5, "CMP", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0xC6: {0xC6, "DEC", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0xC7: {0xC7, "CMP", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xC8: {0xC8, "INY", Implied, 1, 2, CycleModifiers{}},
	0xC9: {0xC9, "CMP", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0xCA: {0xCA, "DEX", Implied, 1, 2, CycleModifiers{}},
	0xCB: {0xCB, "WAI", Implied, 1, 3, CycleModifiers{}},
	0xCC: {0xCC, "CPY", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0xCD: {0xCD, "CMP", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0xCE: {0xCE, "DEC", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0xCF: {0xCF, "CMP", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xD0: {0xD0, "BNE", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0xD1: {0xD1, "CMP", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xD2: {0xD2, "CMP", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0xD3: {0xD3, "CMP", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0xD4: {0xD4, "PEI", DirectIndirect, 2, 6, CycleModifiers{}},
	0xD5: {0xD5, "CMP", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xD6: {0xD6, "DEC", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xD7: {0xD7, "CMP", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xD8: {0xD8, "CLD", Implied, 1, 2, CycleModifiers{}},
	0xD9: {0xD9, "CMP", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xDA: {0xDA, "PHX", Implied, 1, 3, CycleModifiers{PlusXIf16: true}},
	0xDB: {0xDB, "STP", Implied, 1, 3, CycleModifiers{}},
	0xDC: {0xDC, "JML", AbsoluteIndirectLong, 3, 6, CycleModifiers{}},
	0xDD: {0xDD, "CMP", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xDE: {0xDE, "DEC", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0xDF: {0xDF, "CMP", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xE0: {0xE0, "CPX", Immediate, 2, 2, CycleModifiers{PlusXIf16: true}},
	0xE1: {0xE1, "SBC", DirectIndirectX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xE2: {0xE2, "SEP", Immediate, 2, 3, CycleModifiers{}},
	0xE3: {0xE3, "SBC", StackRelative, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xE4: {0xE4, "CPX", ZeroPage, 2, 3, CycleModifiers{PlusXIf16: true}},
	0xE5: {0xE5, "SBC", ZeroPage, 2, 3, CycleModifiers{PlusMIf16: true}},
	0xE6: {0xE6, "INC", ZeroPage, 2, 5, CycleModifiers{PlusMIf16: true}},
	0xE7: {0xE7, "SBC", DirectIndirectLong, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xE8: {0xE8, "INX", Implied, 1, 2, CycleModifiers{}},
	0xE9: {0xE9, "SBC", Immediate, 2, 2, CycleModifiers{PlusMIf16: true}},
	0xEA: {0xEA, "NOP", Implied, 1, 2, CycleModifiers{}},
	0xEB: {0xEB, "XBA", Implied, 1, 3, CycleModifiers{}},
	0xEC: {0xEC, "CPX", Absolute, 3, 4, CycleModifiers{PlusXIf16: true}},
	0xED: {0xED, "SBC", Absolute, 3, 4, CycleModifiers{PlusMIf16: true}},
	0xEE: {0xEE, "INC", Absolute, 3, 6, CycleModifiers{PlusMIf16: true}},
	0xEF: {0xEF, "SBC", AbsoluteLong, 4, 5, CycleModifiers{PlusMIf16: true}},
	0xF0: {0xF0, "BEQ", Relative, 2, 2, CycleModifiers{PlusBranchTaken: true, PlusBranchPageCrossed: true}},
	0xF1: {0xF1, "SBC", DirectIndirectY, 2, 5, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xF2: {0xF2, "SBC", DirectIndirect, 2, 5, CycleModifiers{PlusMIf16: true}},
	0xF3: {0xF3, "SBC", StackRelativeIndirectIndexed, 2, 7, CycleModifiers{PlusMIf16: true}},
	0xF4: {0xF4, "PEA", Absolute, 3, 5, CycleModifiers{}},
	0xF5: {0xF5, "SBC", ZeroPageX, 2, 4, CycleModifiers{PlusMIf16: true}},
	0xF6: {0xF6, "INC", ZeroPageX, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xF7: {0xF7, "SBC", DirectIndirectLongY, 2, 6, CycleModifiers{PlusMIf16: true}},
	0xF8: {0xF8, "SED", Implied, 1, 2, CycleModifiers{}},
	0xF9: {0xF9, "SBC", AbsoluteY, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xFA: {0xFA, "PLX", Implied, 1, 4, CycleModifiers{PlusXIf16: true}},
	0xFB: {0xFB, "XCE", Implied, 1, 2, CycleModifiers{}},
	0xFC: {0xFC, "JSR", AbsoluteIndexedIndirect, 3, 8, CycleModifiers{}},
	0xFD: {0xFD, "SBC", AbsoluteX, 3, 4, CycleModifiers{PlusPageBoundary: true, PlusMIf16: true}},
	0xFE: {0xFE, "INC", AbsoluteX, 3, 7, CycleModifiers{PlusMIf16: true}},
	0xFF: {0xFF, "SBC", AbsoluteLongX, 4, 5, CycleModifiers{PlusMIf16: true}},
}

// Table returns the static opcode -> Descriptor mapping. Every byte
// value 0x00-0xFF has an entry; the 65C816, unlike the 6502 it extends,
// defines all 256 opcodes (WDM at 0x42 is reserved but documented).
func Table() [256]Descriptor {
	return descriptors
}

// Lookup returns the Descriptor for a given opcode byte.
func Lookup(opcode byte) Descriptor {
	return descriptors[opcode]
}
