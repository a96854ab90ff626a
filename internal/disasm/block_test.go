package disasm

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAt(t *testing.T, raw []byte, addr rom.Address) cpu65c816.Line {
	t.Helper()
	line, err := cpu65c816.Decode(raw, addr, cpu65c816.Width8, cpu65c816.Width8)
	require.NoError(t, err)
	return line
}

// buildLinearLines decodes a straight-line sequence ending in an
// unconditional jump back to the first instruction, at bank 0 starting
// at $8000: SEI ; CLC ; BRA $8000.
func buildLinearLines(t *testing.T) []cpu65c816.Line {
	t.Helper()
	l0 := decodeAt(t, []byte{0x78}, rom.NewAddress(0x00, 0x8000))          // SEI
	l1 := decodeAt(t, []byte{0x18}, rom.NewAddress(0x00, 0x8001))          // CLC
	l2 := decodeAt(t, []byte{0x80, 0xFC}, rom.NewAddress(0x00, 0x8002))    // BRA $8000
	return []cpu65c816.Line{l0, l1, l2}
}

func TestBuildBlocksBranchTargetAtSeedStaysSingleBlock(t *testing.T) {
	lines := buildLinearLines(t)
	blocks := BuildBlocks(lines, []rom.Address{rom.NewAddress(0x00, 0x8000)})

	require.Len(t, blocks, 1)
	for _, b := range blocks {
		assert.Equal(t, rom.NewAddress(0x00, 0x8000), b.Start)
		assert.Len(t, b.Lines, 3)
	}
}

func TestBuildBlocksEndSpanMatchesByteSum(t *testing.T) {
	lines := buildLinearLines(t)
	blocks := BuildBlocks(lines, []rom.Address{rom.NewAddress(0x00, 0x8000)})

	for _, b := range blocks {
		sum := 0
		for _, l := range b.Lines {
			sum += len(l.Bytes)
		}
		assert.Equal(t, sum, int(b.End)-int(b.Start)+1)
	}
}

func TestBuildBlocksEmpty(t *testing.T) {
	blocks := BuildBlocks(nil, nil)
	assert.Empty(t, blocks)
}

func TestBuildBlocksSplitsTwoTargets(t *testing.T) {
	// BNE $8005 ; NOP (fallthrough target) ; NOP ; NOP ; SEI (branch target)
	bne := decodeAt(t, []byte{0xD0, 0x03}, rom.NewAddress(0x00, 0x8000))
	nop1 := decodeAt(t, []byte{0xEA}, rom.NewAddress(0x00, 0x8002))
	nop2 := decodeAt(t, []byte{0xEA}, rom.NewAddress(0x00, 0x8003))
	nop3 := decodeAt(t, []byte{0xEA}, rom.NewAddress(0x00, 0x8004))
	sei := decodeAt(t, []byte{0x78}, rom.NewAddress(0x00, 0x8005))

	lines := []cpu65c816.Line{bne, nop1, nop2, nop3, sei}
	blocks := BuildBlocks(lines, []rom.Address{rom.NewAddress(0x00, 0x8000)})

	assert.Len(t, blocks, 3)
	first := blocks[blockID(rom.NewAddress(0x00, 0x8000))]
	require.NotNil(t, first)
	assert.Len(t, first.Lines, 1)
	middle := blocks[blockID(rom.NewAddress(0x00, 0x8002))]
	require.NotNil(t, middle)
	assert.Len(t, middle.Lines, 3)
	second := blocks[blockID(rom.NewAddress(0x00, 0x8005))]
	require.NotNil(t, second)
	assert.Len(t, second.Lines, 1)
}
