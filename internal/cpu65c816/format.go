package cpu65c816

import "fmt"

// Text renders the instruction in conventional 65816 assembler syntax,
// e.g. "LDA $1234,X" or "JSL $7E8000". It does not resolve symbol names;
// callers wanting symbolic operands substitute them afterward (spec.md
// §4.13 Reference Enrichment).
func (l Line) Text() string {
	m := l.Descriptor.Mnemonic
	o := l.Operand

	switch l.Descriptor.Mode {
	case Implied:
		return m
	case Accumulator:
		return m + " A"
	case Immediate:
		if len(l.Bytes) == 3 {
			return fmt.Sprintf("%s #$%04X", m, o.Immediate)
		}
		return fmt.Sprintf("%s #$%02X", m, o.Immediate)
	case ZeroPage:
		return fmt.Sprintf("%s $%02X", m, o.ZeroPage)
	case ZeroPageX:
		return fmt.Sprintf("%s $%02X,X", m, o.ZeroPage)
	case ZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", m, o.ZeroPage)
	case Absolute:
		return fmt.Sprintf("%s $%04X", m, o.Absolute)
	case AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", m, o.Absolute)
	case AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", m, o.Absolute)
	case AbsoluteLong:
		return fmt.Sprintf("%s $%06X", m, o.Long)
	case AbsoluteLongX:
		return fmt.Sprintf("%s $%06X,X", m, o.Long)
	case DirectIndirect:
		return fmt.Sprintf("%s ($%02X)", m, o.ZeroPage)
	case DirectIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", m, o.ZeroPage)
	case DirectIndirectY:
		return fmt.Sprintf("%s ($%02X),Y", m, o.ZeroPage)
	case DirectIndirectLong:
		return fmt.Sprintf("%s [$%02X]", m, o.ZeroPage)
	case DirectIndirectLongY:
		return fmt.Sprintf("%s [$%02X],Y", m, o.ZeroPage)
	case AbsoluteIndirect:
		return fmt.Sprintf("%s ($%04X)", m, o.Absolute)
	case AbsoluteIndexedIndirect:
		return fmt.Sprintf("%s ($%04X,X)", m, o.Absolute)
	case AbsoluteIndirectLong:
		// The pointer address is 2 bytes (o.Absolute); the 3-byte target
		// it resolves to is not known here (decoder.go:115-119).
		return fmt.Sprintf("%s [$%04X]", m, o.Absolute)
	case Relative, RelativeLong:
		return fmt.Sprintf("%s $%06X", m, uint32(o.Target))
	case StackRelative:
		return fmt.Sprintf("%s $%02X,S", m, o.ZeroPage)
	case StackRelativeIndirectIndexed:
		return fmt.Sprintf("%s ($%02X,S),Y", m, o.ZeroPage)
	case BlockMove:
		return fmt.Sprintf("%s $%02X,$%02X", m, o.SrcBank, o.DstBank)
	default:
		return m
	}
}
