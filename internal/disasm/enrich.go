package disasm

import (
	"fmt"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/regs"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// Enrichment is the set of per-address side maps built after the CFG,
// so the immutable decoded line never carries mutable label/comment
// state (spec.md §9 "dynamic mutation of line records" redesign note).
type Enrichment struct {
	Labels   map[rom.Address]string
	Comments map[rom.Address][]string
}

// Enrich builds label and comment side maps for the finalized line list:
// every symbol's name is recorded in Labels at the symbol's own address
// (formatted operand strings are not rewritten to symbol names),
// register operands get a description from the static register table,
// REP/SEP comment the flag bits affected, and recognized macros/inline
// patterns are attached as comments at their starting address (spec.md
// §4.13, §4.11).
func Enrich(lines []cpu65c816.Line, symbols map[rom.Address]*Symbol, macros []Macro) *Enrichment {
	e := &Enrichment{
		Labels:   make(map[rom.Address]string),
		Comments: make(map[rom.Address][]string),
	}

	for addr, sym := range symbols {
		e.Labels[addr] = sym.Name
	}

	for _, l := range lines {
		if l.Operand.HasTarget {
			if reg, ok := regs.Lookup(l.Operand.Target.Offset()); ok {
				dir := accessDirection(l.Descriptor.Mnemonic)
				e.Comments[l.Addr] = append(e.Comments[l.Addr],
					fmt.Sprintf("%s: %s (%s)", reg.Name, reg.Description, dir))
			}
		}

		if l.Descriptor.Mnemonic == "REP" || l.Descriptor.Mnemonic == "SEP" {
			e.Comments[l.Addr] = append(e.Comments[l.Addr], flagBitsComment(l.Descriptor.Mnemonic, byte(l.Operand.Immediate)))
		}
	}

	for _, m := range macros {
		e.Comments[m.Addr] = append(e.Comments[m.Addr], "macro: "+m.Kind.String())
	}

	return e
}

func accessDirection(mnemonic string) string {
	switch {
	case readMnemonics[mnemonic]:
		return "read"
	case writeMnemonics[mnemonic]:
		return "write"
	default:
		return "ref"
	}
}

func flagBitsComment(mnemonic string, imm byte) string {
	verb := "sets"
	if mnemonic == "REP" {
		verb = "clears"
	}
	var bits []string
	if imm&0x20 != 0 {
		bits = append(bits, "M")
	}
	if imm&0x10 != 0 {
		bits = append(bits, "X")
	}
	if imm&0x01 != 0 {
		bits = append(bits, "C")
	}
	if imm&0x04 != 0 {
		bits = append(bits, "I")
	}
	if len(bits) == 0 {
		return fmt.Sprintf("%s no named flags (imm=$%02X)", verb, imm)
	}
	out := bits[0]
	for _, b := range bits[1:] {
		out += "," + b
	}
	return fmt.Sprintf("%s %s", verb, out)
}
