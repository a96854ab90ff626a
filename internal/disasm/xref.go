package disasm

import (
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// AccessKind tags how an operand references its target (spec.md §4.13).
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
	AccessExecute
	AccessJump
	AccessCall
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	case AccessExecute:
		return "Execute"
	case AccessJump:
		return "Jump"
	case AccessCall:
		return "Call"
	default:
		return "Unknown"
	}
}

// CrossReference is one (source, access-kind) pair recorded against a
// target address (spec.md §3 Cross-Reference).
type CrossReference struct {
	Source rom.Address
	Kind   AccessKind
	Text   string
}

var readMnemonics = map[string]bool{
	"LDA": true, "LDX": true, "LDY": true, "CMP": true, "CPX": true,
	"CPY": true, "BIT": true, "ADC": true, "SBC": true, "AND": true,
	"ORA": true, "EOR": true,
}

var writeMnemonics = map[string]bool{
	"STA": true, "STX": true, "STY": true, "STZ": true,
}

// classifyAccess implements the operand-classification rules of
// spec.md §4.13.
func classifyAccess(l cpu65c816.Line) AccessKind {
	switch {
	case l.Descriptor.IsCall():
		return AccessCall
	case l.Descriptor.Mnemonic == "JMP" || l.Descriptor.Mnemonic == "JML" || l.Descriptor.IsBranch() || l.Descriptor.Mnemonic == "BRL":
		return AccessJump
	case readMnemonics[l.Descriptor.Mnemonic]:
		return AccessRead
	case writeMnemonics[l.Descriptor.Mnemonic]:
		return AccessWrite
	default:
		return AccessExecute
	}
}

// BuildCrossReferenceIndex walks the ordered line list once (program
// order, matching the linear-walk enumeration order of spec.md §4.6) and
// builds the target -> ordered-source-list mapping of spec.md §3/§4.13.
func BuildCrossReferenceIndex(lines []cpu65c816.Line) map[rom.Address][]CrossReference {
	idx := make(map[rom.Address][]CrossReference)
	for _, l := range lines {
		if !l.Operand.HasTarget {
			continue
		}
		kind := classifyAccess(l)
		idx[l.Operand.Target] = append(idx[l.Operand.Target], CrossReference{
			Source: l.Addr,
			Kind:   kind,
			Text:   l.Text(),
		})
	}
	return idx
}
