package disasm

import (
	"fmt"
	"sort"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// BlockID is a stable identifier derived from a block's start address
// (spec.md §3 Basic Block: "id (stable derived from start address)").
type BlockID string

func blockID(addr rom.Address) BlockID {
	return BlockID(fmt.Sprintf("blk_%06X", uint32(addr)))
}

// Block is a contiguous run of lines terminated by a control-flow
// instruction or by being the predecessor of a flow target (spec.md
// §3 Basic Block).
type Block struct {
	ID             BlockID
	Start, End     rom.Address
	Lines          []cpu65c816.Line
	Predecessors   map[BlockID]bool
	Successors     map[BlockID]bool
	IsFunctionEntry bool
	IsFunctionExit  bool
}

// BuildBlocks partitions an ordered, deduplicated line list into basic
// blocks per spec.md §4.7. seeds mark additional forced boundary starts.
func BuildBlocks(lines []cpu65c816.Line, seeds []rom.Address) map[BlockID]*Block {
	if len(lines) == 0 {
		return map[BlockID]*Block{}
	}

	byAddr := make(map[rom.Address]int, len(lines))
	for i, l := range lines {
		byAddr[l.Addr] = i
	}

	boundary := make(map[rom.Address]bool)
	for _, s := range seeds {
		if _, ok := byAddr[s]; ok {
			boundary[s] = true
		}
	}
	boundary[lines[0].Addr] = true

	for i, l := range lines {
		if l.Descriptor.IsTerminator() && i+1 < len(lines) {
			boundary[lines[i+1].Addr] = true
		}
		if l.Operand.HasTarget {
			if _, ok := byAddr[l.Operand.Target]; ok {
				boundary[l.Operand.Target] = true
			}
		}
	}

	var starts []rom.Address
	for a := range boundary {
		starts = append(starts, a)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	blocks := make(map[BlockID]*Block)
	for i, start := range starts {
		startIdx := byAddr[start]
		endIdx := len(lines) - 1
		if i+1 < len(starts) {
			if nextIdx, ok := byAddr[starts[i+1]]; ok {
				endIdx = nextIdx - 1
			}
		}
		if endIdx < startIdx {
			continue
		}
		blk := &Block{
			ID:           blockID(start),
			Start:        start,
			Lines:        append([]cpu65c816.Line(nil), lines[startIdx:endIdx+1]...),
			Predecessors: map[BlockID]bool{},
			Successors:   map[BlockID]bool{},
		}
		last := blk.Lines[len(blk.Lines)-1]
		blk.End = rom.NewAddress(last.Addr.Bank(), last.Addr.Offset()+uint16(len(last.Bytes)-1))
		blocks[blk.ID] = blk
	}

	return blocks
}
