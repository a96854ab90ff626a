package disasm

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRegionClassifiesKnownWindows(t *testing.T) {
	assert.Equal(t, "PPU", RegisterRegion(rom.NewAddress(0x00, 0x2105)))
	assert.Equal(t, "APU", RegisterRegion(rom.NewAddress(0x00, 0x2140)))
	assert.Equal(t, "DMA", RegisterRegion(rom.NewAddress(0x00, 0x4300)))
	assert.Equal(t, "WRAM", RegisterRegion(rom.NewAddress(0x7E, 0x0000)))
	assert.Equal(t, "", RegisterRegion(rom.NewAddress(0x00, 0x8000)))
}

func TestBuildDataStructuresCapsConfidenceAndDropsLowConfidence(t *testing.T) {
	jt := map[rom.Address]JumpTable{
		rom.NewAddress(0x00, 0x9000): {Base: rom.NewAddress(0x00, 0x9000), Entries: []rom.Address{1, 2}, Confidence: 0.95},
		rom.NewAddress(0x00, 0xA000): {Base: rom.NewAddress(0x00, 0xA000), Entries: []rom.Address{1}, Confidence: 0.2},
	}
	warnings := &Warnings{}

	out := BuildDataStructures(jt, nil, warnings)
	require.Len(t, out, 1)
	assert.Equal(t, maxPatternConfidence, out[0].Confidence)
	assert.Equal(t, rom.NewAddress(0x00, 0x9000), out[0].Addr)

	require.Len(t, warnings.LowConfidence, 1)
	assert.Equal(t, rom.NewAddress(0x00, 0xA000), warnings.LowConfidence[0].Addr)
}

func TestFindMacrosDetectsDMASetupAndVRAMAddressSetup(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x8D, 0x00, 0x43}, // STA $4300 (DMA)
		[]byte{0x8D, 0x16, 0x21}, // STA $2116 (VRAM address low)
	)

	macros := FindMacros(lines)
	require.Len(t, macros, 2)
	assert.Equal(t, MacroDMASetup, macros[0].Kind)
	assert.Equal(t, MacroVRAMAddressSetup, macros[1].Kind)
}

func TestFindMacrosDetectsWaitVBlankPollFollowedByBackBranch(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xAD, 0x12, 0x42}, // LDA $4212 (HVBJOY)
		[]byte{0x10, 0xFB},       // BPL $8000 (back branch to the poll)
	)

	macros := FindMacros(lines)
	require.Len(t, macros, 1)
	assert.Equal(t, MacroWaitVBlank, macros[0].Kind)
	assert.Equal(t, rom.NewAddress(0x00, 0x8000), macros[0].Addr)
}

func TestFindMacrosDoesNotFlagForwardBranchAsWaitVBlank(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xAD, 0x12, 0x42}, // LDA $4212
		[]byte{0x10, 0x00},       // BPL $8005 (forward, not a poll loop)
		[]byte{0xEA},             // NOP
	)

	assert.Empty(t, FindMacros(lines))
}

func TestFindMacrosDetects16BitComparePair(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xCD, 0x00, 0x90}, // CMP $9000
		[]byte{0xCD, 0x01, 0x90}, // CMP $9001
	)

	macros := FindMacros(lines)
	require.Len(t, macros, 1)
	assert.Equal(t, Macro16BitComparePair, macros[0].Kind)
}
