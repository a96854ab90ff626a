package disasm

import (
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// DataStructureKind tags the recognized shape of a data region (spec.md
// §3 Data Structure).
type DataStructureKind int

const (
	PointerTableKind DataStructureKind = iota
	JumpTableKind
	StringTableKind
	GraphicsDataKind
	MusicDataKind
	MapDataKind
	SpriteDataKind
	TileDataKind
	LevelDataKind
	PaletteDataKind
)

func (k DataStructureKind) String() string {
	switch k {
	case PointerTableKind:
		return "PointerTable"
	case JumpTableKind:
		return "JumpTable"
	case StringTableKind:
		return "StringTable"
	case GraphicsDataKind:
		return "GraphicsData"
	case MusicDataKind:
		return "MusicData"
	case MapDataKind:
		return "MapData"
	case SpriteDataKind:
		return "SpriteData"
	case TileDataKind:
		return "TileData"
	case LevelDataKind:
		return "LevelData"
	case PaletteDataKind:
		return "PaletteData"
	default:
		return "Unknown"
	}
}

// DataStructure is a recognized region (spec.md §3 Data Structure).
// Confidence for pattern-derived structures is capped at 0.8.
type DataStructure struct {
	Addr        rom.Address
	Kind        DataStructureKind
	Size        int
	EntryCount  int
	Description string
	Confidence  float64
	Format      string
}

// maxPatternConfidence bounds pattern-derived structure confidence
// (spec.md §3 Data Structure).
const maxPatternConfidence = 0.8

// publicationThreshold is the minimum confidence for a recognized
// structure to be published; below it the candidate is dropped but
// counted in metrics (spec.md §7 PatternLowConfidence).
const publicationThreshold = 0.5

// ppuRegisterRange, apuRegisterRange, and dmaRegisterRange disambiguate
// register-adjacent data regions (spec.md §4.11).
var (
	ppuRegisterRange = [2]uint16{0x2100, 0x213F}
	apuRegisterRange = [2]uint16{0x2140, 0x2143}
	dmaRegisterRange = [2]uint16{0x4200, 0x43FF}
)

// BuildDataStructures combines jump tables and pointer tables into the
// published data-structure index, dropping anything below the
// publication threshold (spec.md §4.11). A candidate is also skipped
// when a structure already published at the same base address has equal
// or higher confidence; regions at different base addresses are not
// compared for overlap, and an earlier lower-confidence structure at the
// same base is not removed.
func BuildDataStructures(jumpTables map[rom.Address]JumpTable, pointerTables []PointerTable, warnings *Warnings) []DataStructure {
	var out []DataStructure
	occupied := make(map[rom.Address]float64)

	for base, jt := range jumpTables {
		conf := capConfidence(jt.Confidence)
		if conf < publicationThreshold {
			warnings.addLowConfidence(base, JumpTableKind.String(), conf)
			continue
		}
		if prior, ok := occupied[base]; ok && prior >= conf {
			continue
		}
		occupied[base] = conf
		out = append(out, DataStructure{
			Addr:        base,
			Kind:        JumpTableKind,
			Size:        len(jt.Entries) * 2,
			EntryCount:  len(jt.Entries),
			Description: "indirect jump target table",
			Confidence:  conf,
		})
	}

	for _, pt := range pointerTables {
		conf := capConfidence(pt.Confidence)
		if conf < publicationThreshold {
			warnings.addLowConfidence(pt.Base, PointerTableKind.String(), conf)
			continue
		}
		if prior, ok := occupied[pt.Base]; ok && prior >= conf {
			continue
		}
		occupied[pt.Base] = conf
		out = append(out, DataStructure{
			Addr:        pt.Base,
			Kind:        PointerTableKind,
			Size:        pt.EntryCount * 2,
			EntryCount:  pt.EntryCount,
			Description: "16-bit low/high split pointer table",
			Confidence:  conf,
		})
	}

	return out
}

func capConfidence(c float64) float64 {
	if c > maxPatternConfidence {
		return maxPatternConfidence
	}
	return c
}

// RegisterRegion reports which hardware register window, if any, a CPU
// address falls into, for disambiguating graphics/audio data heuristics
// (spec.md §4.11).
func RegisterRegion(addr rom.Address) string {
	off := addr.Offset()
	switch {
	case off >= ppuRegisterRange[0] && off <= ppuRegisterRange[1]:
		return "PPU"
	case off >= apuRegisterRange[0] && off <= apuRegisterRange[1]:
		return "APU"
	case off >= dmaRegisterRange[0] && off <= dmaRegisterRange[1]:
		return "DMA"
	case addr >= 0x7E0000 && addr <= 0x7FFFFF:
		return "WRAM"
	default:
		return ""
	}
}

// MacroKind tags a recognized instruction-sequence idiom (spec.md §4.11
// macros/inline-function patterns).
type MacroKind int

const (
	MacroDMASetup MacroKind = iota
	MacroVRAMAddressSetup
	MacroWaitVBlank
	MacroShiftLeftTwice
	Macro16BitComparePair
)

func (k MacroKind) String() string {
	switch k {
	case MacroDMASetup:
		return "DMASetup"
	case MacroVRAMAddressSetup:
		return "VRAMAddressSetup"
	case MacroWaitVBlank:
		return "WaitVBlank"
	case MacroShiftLeftTwice:
		return "ShiftLeftTwice"
	case Macro16BitComparePair:
		return "16BitComparePair"
	default:
		return "Unknown"
	}
}

// Macro is an attached-as-comment recognized idiom at an address.
type Macro struct {
	Addr rom.Address
	Kind MacroKind
}

// FindMacros scans the finalized line list for the small instruction
// idioms of spec.md §4.11: each STA to a DMA/CPU register
// (0x4200-0x43FF), each STA to a VRAM address register (0x2116 or
// 0x2117), a wait-vblank poll (LDA/BIT of 0x4212 or 0x4210 followed by a
// back-branch), back-to-back ASL (shift-left twice), and a 16-bit compare pair
// (CMP absolute followed immediately by CMP absolute+1, high byte).
func FindMacros(lines []cpu65c816.Line) []Macro {
	var out []Macro
	for i, l := range lines {
		if l.Descriptor.Mnemonic == "STA" && l.Operand.HasTarget {
			off := l.Operand.Target.Offset()
			if off >= dmaRegisterRange[0] && off <= dmaRegisterRange[1] {
				out = append(out, Macro{l.Addr, MacroDMASetup})
			}
			if off == 0x2116 || off == 0x2117 {
				out = append(out, Macro{l.Addr, MacroVRAMAddressSetup})
			}
		}

		if (l.Descriptor.Mnemonic == "LDA" || l.Descriptor.Mnemonic == "BIT") &&
			l.Descriptor.Mode == cpu65c816.Absolute &&
			(l.Operand.Absolute == 0x4212 || l.Operand.Absolute == 0x4210) {
			if j := i + 1; j < len(lines) && isBackBranch(lines[j], l.Addr) {
				out = append(out, Macro{l.Addr, MacroWaitVBlank})
			}
		}

		if i+1 < len(lines) && l.Descriptor.Mnemonic == "ASL" && lines[i+1].Descriptor.Mnemonic == "ASL" {
			out = append(out, Macro{l.Addr, MacroShiftLeftTwice})
		}

		if i+1 < len(lines) && l.Descriptor.Mnemonic == "CMP" && lines[i+1].Descriptor.Mnemonic == "CMP" &&
			l.Descriptor.Mode == cpu65c816.Absolute && lines[i+1].Descriptor.Mode == cpu65c816.Absolute &&
			lines[i+1].Operand.Absolute == l.Operand.Absolute+1 {
			out = append(out, Macro{l.Addr, Macro16BitComparePair})
		}
	}
	return out
}

// isBackBranch reports whether l is a conditional branch whose resolved
// target is at or before pollAddr, the vblank-flag poll it follows
// (spec.md §4.11 wait-vblank macro).
func isBackBranch(l cpu65c816.Line, pollAddr rom.Address) bool {
	return l.Descriptor.IsBranch() && l.Operand.HasTarget && l.Operand.Target <= pollAddr
}
