package cpu65c816

import (
	"errors"
	"fmt"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// Decode error sentinels (spec.md §7 DecodeError kinds).
var (
	ErrTruncated     = errors.New("cpu65c816: instruction truncated at end of mapped data")
	ErrUnknownOpcode = errors.New("cpu65c816: unknown opcode")
)

// Line is one decoded instruction: its address, raw bytes, descriptor,
// and resolved operand (spec.md §3 Decoded Instruction).
type Line struct {
	Addr       rom.Address
	Bytes      []byte
	Descriptor Descriptor
	Operand    Operand
}

// Operand carries the resolved operand value(s) for a decoded
// instruction. Which fields are meaningful depends on Descriptor.Mode.
type Operand struct {
	Immediate   uint16
	ZeroPage    byte
	Absolute    uint16
	Long        uint32
	BranchDelta int16
	// Target is the CPU address the instruction would transfer control to
	// or read/write, when staticly resolvable from the operand alone
	// (Relative/RelativeLong/Absolute-in-bank/AbsoluteLong). For the
	// indexed and indirect absolute modes Target holds the operand's base
	// or pointer address, not the effective address; callers needing the
	// effective target must consult the jump-table recognizer (spec.md
	// §4.10).
	Target   rom.Address
	HasTarget bool
	SrcBank   byte // MVN/MVP
	DstBank   byte // MVN/MVP
}

// DecodeError wraps a sentinel with the address it occurred at.
type DecodeError struct {
	Addr rom.Address
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%06X: %v", uint32(e.Addr), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes a single instruction at cpuAddr. raw must contain at
// least the bytes of the instruction starting at offset 0; the caller is
// responsible for slicing the mapped file bytes at the correct file
// offset (spec.md §4.3 Address Mapper). m and x are the current
// accumulator/index flag widths, which size Immediate operands for
// flag-sensitive mnemonics (spec.md §4.5).
func Decode(raw []byte, cpuAddr rom.Address, m, x FlagWidth) (Line, error) {
	if len(raw) == 0 {
		return Line{}, &DecodeError{cpuAddr, ErrTruncated}
	}

	desc := Lookup(raw[0])
	need := desc.Length(m, x)
	if len(raw) < need {
		return Line{}, &DecodeError{cpuAddr, ErrTruncated}
	}

	line := Line{
		Addr:       cpuAddr,
		Bytes:      append([]byte(nil), raw[:need]...),
		Descriptor: desc,
	}

	op, err := decodeOperand(desc, line.Bytes, cpuAddr, m, x)
	if err != nil {
		return Line{}, err
	}
	line.Operand = op

	return line, nil
}

func decodeOperand(d Descriptor, b []byte, addr rom.Address, m, x FlagWidth) (Operand, error) {
	var op Operand

	switch d.Mode {
	case Implied, Accumulator:
		// no operand bytes

	case Immediate:
		width := Width8
		if mSensitive[d.Mnemonic] {
			width = m
		} else if xSensitive[d.Mnemonic] {
			width = x
		}
		if width == Width16 {
			op.Immediate = le16(b[1], b[2])
		} else {
			op.Immediate = uint16(b[1])
		}

	case ZeroPage, ZeroPageX, ZeroPageY,
		DirectIndirect, DirectIndirectX, DirectIndirectY,
		DirectIndirectLong, DirectIndirectLongY,
		StackRelative, StackRelativeIndirectIndexed:
		op.ZeroPage = b[1]

	case Absolute, AbsoluteX, AbsoluteY,
		AbsoluteIndirect, AbsoluteIndexedIndirect, AbsoluteIndirectLong:
		// AbsoluteIndirectLong (JML [abs]) carries a 2-byte pointer
		// address, like the other indirect-jump modes; the 3-byte
		// target it points to is resolved later by the jump-table
		// recognizer (spec.md §4.10), not here.
		op.Absolute = le16(b[1], b[2])
		op.Target = rom.NewAddress(addr.Bank(), op.Absolute)
		op.HasTarget = true

	case AbsoluteLong, AbsoluteLongX:
		op.Long = le24(b[1], b[2], b[3])
		op.Target = rom.Address(op.Long)
		op.HasTarget = true

	case Relative:
		delta := int8(b[1])
		op.BranchDelta = int16(delta)
		op.Target = rom.NewAddress(addr.Bank(), uint16(int32(addr.Offset())+int32(len(b))+int32(delta)))
		op.HasTarget = true

	case RelativeLong:
		delta := int16(le16(b[1], b[2]))
		op.BranchDelta = delta
		op.Target = rom.NewAddress(addr.Bank(), uint16(int32(addr.Offset())+int32(len(b))+int32(delta)))
		op.HasTarget = true

	case BlockMove:
		op.DstBank = b[1]
		op.SrcBank = b[2]

	default:
		return op, &DecodeError{addr, fmt.Errorf("%w: unhandled addressing mode %s", ErrUnknownOpcode, d.Mode)}
	}

	return op, nil
}

// DataByteLine builds the one-byte "data byte" placeholder line a caller
// substitutes for an address whose Decode call failed (spec.md §7
// DecodeError: "line becomes a 'data byte' with the unknown opcode
// retained"). The original byte is kept in Bytes and in the
// descriptor's Opcode field for inspection by a renderer.
func DataByteLine(addr rom.Address, value byte) Line {
	return Line{
		Addr:       addr,
		Bytes:      []byte{value},
		Descriptor: Descriptor{Opcode: value, Mnemonic: "???", Mode: Implied, BaseLength: 1},
	}
}

func le16(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

func le24(lo, mid, hi byte) uint32 {
	return uint32(lo) | uint32(mid)<<8 | uint32(hi)<<16
}
