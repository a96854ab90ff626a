package disasm

import (
	"sort"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// JumpTable is a resolved indirect-jump table: a base address and the
// ordered 16-bit little-endian targets read from it, within the
// program bank of the instruction that referenced it (spec.md §4.10).
type JumpTable struct {
	Base       rom.Address
	Entries    []rom.Address
	Confidence float64
}

// maxJumpTableEntries bounds table-size inference: entries stop being
// read at the first non-ROM-mapped entry or this cap, whichever first.
const maxJumpTableEntries = 256

// ResolveJumpTables finds every `JMP (abs)` / `JMP (abs,X)` /
// `JML [abs]` with a resolved table-base operand and reads its entries,
// as 16-bit targets in the jump's own bank, until the first unmapped
// slot (spec.md §4.10 jump-table detection).
func ResolveJumpTables(img *rom.Image, lines []cpu65c816.Line) map[rom.Address]JumpTable {
	tables := make(map[rom.Address]JumpTable)

	for _, l := range lines {
		if !l.Descriptor.IsIndirectJump() {
			continue
		}
		if l.Descriptor.Mnemonic != "JMP" && l.Descriptor.Mnemonic != "JML" {
			continue
		}
		if !l.Operand.HasTarget {
			continue
		}
		base := l.Operand.Target
		if _, done := tables[base]; done {
			continue
		}
		tables[base] = readJumpTable(img, base, l.Addr.Bank())
	}

	return tables
}

func readJumpTable(img *rom.Image, base rom.Address, bank byte) JumpTable {
	var entries []rom.Address
	for i := 0; i < maxJumpTableEntries; i++ {
		addr := rom.NewAddress(base.Bank(), base.Offset()+uint16(i*2))
		b, ok := img.ReadBytes(addr, 2)
		if !ok {
			break
		}
		target := rom.NewAddress(bank, uint16(b[0])|uint16(b[1])<<8)
		if _, mapped := img.Mapper.CPUToFile(target); !mapped {
			break
		}
		entries = append(entries, target)
	}
	return JumpTable{Base: base, Entries: entries, Confidence: 0.7}
}

// PointerTable is a resolved 16-bit pointer table recognized by the
// `LDA table,X / STA ptr / LDA table+1,X / STA ptr+1` pattern (spec.md
// §4.10 pointer-table detection).
type PointerTable struct {
	Base       rom.Address
	EntryCount int
	Confidence float64
}

// ResolvePointerTables scans a block's line list for the four-line
// pointer-table idiom.
func ResolvePointerTables(lines []cpu65c816.Line) []PointerTable {
	var out []PointerTable
	for i := 0; i+3 < len(lines); i++ {
		a, b, c, d := lines[i], lines[i+1], lines[i+2], lines[i+3]
		if a.Descriptor.Mnemonic != "LDA" || a.Descriptor.Mode != cpu65c816.AbsoluteX {
			continue
		}
		if b.Descriptor.Mnemonic != "STA" {
			continue
		}
		if c.Descriptor.Mnemonic != "LDA" || c.Descriptor.Mode != cpu65c816.AbsoluteX {
			continue
		}
		if d.Descriptor.Mnemonic != "STA" {
			continue
		}
		if c.Operand.Absolute != a.Operand.Absolute+1 {
			continue
		}
		out = append(out, PointerTable{
			Base:       rom.NewAddress(a.Addr.Bank(), a.Operand.Absolute),
			EntryCount: estimatePointerTableSize(lines, a.Operand.Absolute),
			Confidence: 0.7,
		})
	}
	return out
}

func estimatePointerTableSize(lines []cpu65c816.Line, base uint16) int {
	maxOffset := 0
	for _, l := range lines {
		if !isAbsoluteXAccess(l) {
			continue
		}
		if l.Operand.Absolute < base || l.Operand.Absolute-base > 256 {
			continue
		}
		if off := int(l.Operand.Absolute - base); off > maxOffset {
			maxOffset = off
		}
	}
	return maxOffset + 1
}

func isAbsoluteXAccess(l cpu65c816.Line) bool {
	return l.Descriptor.Mode == cpu65c816.AbsoluteX
}

// SwitchStatement marks the `CMP / BCC|BCS / ASL / JMP (abs,X)` window
// recognized in a function (spec.md §4.10 switch statement).
type SwitchStatement struct {
	Addr rom.Address
}

// FindSwitchStatements scans a line list for the four-instruction
// switch-dispatch window.
func FindSwitchStatements(lines []cpu65c816.Line) []SwitchStatement {
	var out []SwitchStatement
	for i := 0; i+3 < len(lines); i++ {
		a, b, c, d := lines[i], lines[i+1], lines[i+2], lines[i+3]
		if a.Descriptor.Mnemonic != "CMP" {
			continue
		}
		if b.Descriptor.Mnemonic != "BCC" && b.Descriptor.Mnemonic != "BCS" {
			continue
		}
		if c.Descriptor.Mnemonic != "ASL" {
			continue
		}
		if d.Descriptor.Mnemonic != "JMP" || d.Descriptor.Mode != cpu65c816.AbsoluteIndexedIndirect {
			continue
		}
		out = append(out, SwitchStatement{Addr: a.Addr})
	}
	return out
}

// Loop marks a recognized natural loop: a CFG edge from the block
// starting at BackEdge to the block starting at Header, where Header is
// at or before BackEdge (spec.md §3 Function's optional
// "recognized loops" list). This is the systems-language stand-in for
// the source's loop recognizer; the spec gives no exact algorithm, so
// the back-edge test is the narrowest heuristic consistent with "a
// function's set of recognized loops" being derivable purely from the
// CFG already built by §4.8.
type Loop struct {
	Header   rom.Address
	BackEdge rom.Address
}

// FindLoops scans a function's member blocks for CFG edges whose target
// block starts at or before the source block's start: a back edge, and
// therefore a natural loop header.
func FindLoops(cfg *CFG, fn *Function) []Loop {
	var out []Loop
	for id := range fn.Blocks {
		blk := cfg.Blocks[id]
		for succID := range blk.Successors {
			succ := cfg.Blocks[succID]
			if succ.Start <= blk.Start {
				out = append(out, Loop{Header: succ.Start, BackEdge: blk.Start})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Header != out[j].Header {
			return out[i].Header < out[j].Header
		}
		return out[i].BackEdge < out[j].BackEdge
	})
	return out
}
