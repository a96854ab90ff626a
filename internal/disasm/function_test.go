package disasm

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeSeq decodes a sequence of single/double-byte instructions laid
// out back to back starting at addr, one opcode byte (plus operand
// bytes where given) per entry.
func decodeSeq(t *testing.T, addr rom.Address, raws ...[]byte) []cpu65c816.Line {
	t.Helper()
	var out []cpu65c816.Line
	pc := addr
	for _, raw := range raws {
		line, err := cpu65c816.Decode(raw, pc, cpu65c816.Width8, cpu65c816.Width8)
		require.NoError(t, err)
		out = append(out, line)
		pc = rom.NewAddress(pc.Bank(), pc.Offset()+uint16(len(line.Bytes)))
	}
	return out
}

func TestMatchesProloguePHBPHKPLBRunOnlyBumpsAtFirstInstruction(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x8B}, // PHB
		[]byte{0x4B}, // PHK
		[]byte{0xAB}, // PLB
	)

	assert.True(t, matchesPrologue(lines, 0))
	assert.False(t, matchesPrologue(lines, 1), "PHK is mid-run, not a run start")
	assert.False(t, matchesPrologue(lines, 2), "PLB is the run's last instruction, not a start")
}

func TestMatchesProloguePHAPHXPHYRun(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x48}, // PHA
		[]byte{0xDA}, // PHX
		[]byte{0x5A}, // PHY
	)

	assert.True(t, matchesPrologue(lines, 0))
	assert.False(t, matchesPrologue(lines, 1))
	assert.False(t, matchesPrologue(lines, 2))
}

func TestMatchesPrologueRepSepEitherOrder(t *testing.T) {
	repFirst := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xC2, 0x30}, // REP #$30
		[]byte{0xE2, 0x30}, // SEP #$30
	)
	assert.True(t, matchesPrologue(repFirst, 0))

	sepFirst := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xE2, 0x30}, // SEP #$30
		[]byte{0xC2, 0x30}, // REP #$30
	)
	assert.True(t, matchesPrologue(sepFirst, 0))
}

func TestMatchesProloguePartialRunDoesNotMatch(t *testing.T) {
	// PHB, PHK with no trailing PLB: not the full 3-instruction run.
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x8B}, // PHB
		[]byte{0x4B}, // PHK
	)
	assert.False(t, matchesPrologue(lines, 0))
}

func TestMatchesProloguePHPAlone(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000), []byte{0x08}) // PHP
	assert.True(t, matchesPrologue(lines, 0))
}

func TestDetectFunctionsCallTargetConfidence(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x20, 0x00, 0x90}, // JSR $9000
		[]byte{0x00, 0x00},       // BRK
	)
	lines = append(lines, decodeSeq(t, rom.NewAddress(0x00, 0x9000), []byte{0x60})...) // RTS

	seeds := []rom.Address{rom.NewAddress(0x00, 0x8000)}
	blocks := BuildBlocks(lines, seeds)
	cfg := BuildCFG(blocks, seeds, nil)
	warnings := &Warnings{}

	funcs := DetectFunctions(cfg, lines, seeds, nil, warnings)

	entry, ok := funcs[rom.NewAddress(0x00, 0x8000)]
	require.True(t, ok)
	assert.Equal(t, 1.0, entry.Confidence)

	callee, ok := funcs[rom.NewAddress(0x00, 0x9000)]
	require.True(t, ok)
	assert.Equal(t, confCallTarget, callee.Confidence)
}

func TestDetectFunctionsConfidenceCapsAtOne(t *testing.T) {
	// A JSR that targets the same address as a vector seed must not push
	// that address's confidence above 1.0 (spec.md §3 Confidence
	// semantics: additive, capped).
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x20, 0x00, 0x80}, // JSR $8000 (self-call)
		[]byte{0x00, 0x00},       // BRK
	)

	seeds := []rom.Address{rom.NewAddress(0x00, 0x8000)}
	blocks := BuildBlocks(lines, seeds)
	cfg := BuildCFG(blocks, seeds, nil)
	warnings := &Warnings{}

	funcs := DetectFunctions(cfg, lines, seeds, nil, warnings)

	entry, ok := funcs[rom.NewAddress(0x00, 0x8000)]
	require.True(t, ok)
	assert.Equal(t, 1.0, entry.Confidence)
}

func TestDetectFunctionsPrologueEvidenceDoesNotDoubleCountMidRun(t *testing.T) {
	// PHB,PHK,PLB then RTS, with no vectors, calls or jump tables, so the
	// sole evidence source is the prologue pattern. Confidence at PHK's
	// address ($8001, mid-run) must stay at zero: only the run's first
	// instruction ($8000) gets the 0.7 bump.
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x8B}, // PHB
		[]byte{0x4B}, // PHK
		[]byte{0xAB}, // PLB
		[]byte{0x60}, // RTS
	)

	seeds := []rom.Address{rom.NewAddress(0x00, 0x8000)}
	blocks := BuildBlocks(lines, seeds)
	cfg := BuildCFG(blocks, seeds, nil)
	warnings := &Warnings{}

	funcs := DetectFunctions(cfg, lines, nil, nil, warnings)

	entry, ok := funcs[rom.NewAddress(0x00, 0x8000)]
	require.True(t, ok)
	assert.Equal(t, confPrologue, entry.Confidence)

	_, midRunStart := funcs[rom.NewAddress(0x00, 0x8001)]
	assert.False(t, midRunStart, "PHK's address must not become a separate function start")
}
