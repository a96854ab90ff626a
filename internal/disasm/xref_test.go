package disasm

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCrossReferenceIndexClassifiesAccessKinds(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x20, 0x00, 0x90}, // JSR $9000 -> Call
		[]byte{0x4C, 0x00, 0xA0}, // JMP $A000 -> Jump
		[]byte{0xAD, 0x00, 0xB0}, // LDA $B000 -> Read
		[]byte{0x8D, 0x00, 0xC0}, // STA $C000 -> Write
	)

	idx := BuildCrossReferenceIndex(lines)

	require.Len(t, idx[rom.NewAddress(0x00, 0x9000)], 1)
	assert.Equal(t, AccessCall, idx[rom.NewAddress(0x00, 0x9000)][0].Kind)

	require.Len(t, idx[rom.NewAddress(0x00, 0xA000)], 1)
	assert.Equal(t, AccessJump, idx[rom.NewAddress(0x00, 0xA000)][0].Kind)

	require.Len(t, idx[rom.NewAddress(0x00, 0xB000)], 1)
	assert.Equal(t, AccessRead, idx[rom.NewAddress(0x00, 0xB000)][0].Kind)

	require.Len(t, idx[rom.NewAddress(0x00, 0xC000)], 1)
	assert.Equal(t, AccessWrite, idx[rom.NewAddress(0x00, 0xC000)][0].Kind)
}

func TestBuildCrossReferenceIndexAccumulatesMultipleSourcesInOrder(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x20, 0x00, 0x90}, // JSR $9000
		[]byte{0x00, 0x00},       // BRK (padding, distinct addr)
		[]byte{0x20, 0x00, 0x90}, // JSR $9000 again
	)

	idx := BuildCrossReferenceIndex(lines)
	refs := idx[rom.NewAddress(0x00, 0x9000)]
	require.Len(t, refs, 2)
	assert.Equal(t, rom.NewAddress(0x00, 0x8000), refs[0].Source)
	assert.Equal(t, rom.NewAddress(0x00, 0x8005), refs[1].Source)
}

func TestBuildCrossReferenceIndexSkipsOperandsWithoutTargets(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000), []byte{0xA9, 0x12}) // LDA #$12
	assert.Empty(t, BuildCrossReferenceIndex(lines))
}
