package disasm

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetricsCyclomaticComplexityExcludesUnconditionalBRA(t *testing.T) {
	// One conditional branch (BNE) and one unconditional branch (BRA)
	// inside the same function span: complexity must be 1+1, not 1+2
	// (table.go review fix: IsBranch() excludes BRA).
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0xD0, 0x00}, // BNE $8002
		[]byte{0x80, 0x00}, // BRA $8004
		[]byte{0xEA},       // NOP
		[]byte{0x60},       // RTS
	)
	fn := &Function{Start: rom.NewAddress(0x00, 0x8000), HasEnd: true, End: rom.NewAddress(0x00, 0x8005)}

	assert.Equal(t, 1, countConditionalBranches(lines, fn))
}

func TestComputeMetricsCountsSubroutineCallsAndIndirectJumps(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x20, 0x00, 0x90}, // JSR $9000
		[]byte{0x7C, 0x00, 0xA0}, // JMP (abs,X)
		[]byte{0x00, 0x00},       // BRK
	)
	seeds := []rom.Address{rom.NewAddress(0x00, 0x8000)}
	blocks := BuildBlocks(lines, seeds)
	cfg := BuildCFG(blocks, seeds, nil)
	funcs := map[rom.Address]*Function{}
	enrichment := &Enrichment{Labels: map[rom.Address]string{}, Comments: map[rom.Address][]string{}}

	m := ComputeMetrics(lines, cfg, funcs, enrichment, map[rom.Address]bool{})
	assert.Equal(t, 1, m.SubroutineCalls)
	assert.Equal(t, 1, m.IndirectJumps)
	assert.Equal(t, 3, m.TotalInstructions)
}

func TestComputeMetricsDetectsJumpToSelf(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000), []byte{0x80, 0xFE}) // BRA $8000 (self)
	enrichment := &Enrichment{Labels: map[rom.Address]string{}, Comments: map[rom.Address][]string{}}

	m := ComputeMetrics(lines, &CFG{}, map[rom.Address]*Function{}, enrichment, map[rom.Address]bool{})
	require.Len(t, m.PotentialBugs, 1)
	assert.Equal(t, BugJumpToSelf, m.PotentialBugs[0].Kind)
	assert.Equal(t, SeverityHigh, m.PotentialBugs[0].Severity)
}

func TestComputeMetricsDetectsStackImbalance(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x48}, // PHA
		[]byte{0x48}, // PHA
		[]byte{0x68}, // PLA (opcode 0x68)
		[]byte{0x60}, // RTS
	)
	fn := &Function{Start: rom.NewAddress(0x00, 0x8000), HasEnd: true, End: rom.NewAddress(0x00, 0x8003)}
	funcs := map[rom.Address]*Function{rom.NewAddress(0x00, 0x8000): fn}

	bugs := detectStackImbalance(lines, funcs)
	require.Len(t, bugs, 1)
	assert.Equal(t, BugStackImbalance, bugs[0].Kind)
}

func TestComputeMetricsNoStackImbalanceWhenBalanced(t *testing.T) {
	lines := decodeSeq(t, rom.NewAddress(0x00, 0x8000),
		[]byte{0x48}, // PHA
		[]byte{0x68}, // PLA
		[]byte{0x60}, // RTS
	)
	fn := &Function{Start: rom.NewAddress(0x00, 0x8000), HasEnd: true, End: rom.NewAddress(0x00, 0x8002)}
	funcs := map[rom.Address]*Function{rom.NewAddress(0x00, 0x8000): fn}

	assert.Empty(t, detectStackImbalance(lines, funcs))
}
