package disasm

import (
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// CFG is the id-keyed control-flow graph, its entry-point set, and the
// function table keyed by start address (spec.md §3 Control-Flow Graph).
type CFG struct {
	Blocks      map[BlockID]*Block
	EntryPoints map[BlockID]bool
	Functions   map[rom.Address]*Function
}

// BuildCFG computes successor/predecessor sets per spec.md §4.8 and
// marks entry points against the seed set. jumpTables resolves indirect
// jump successors when available; pass nil for none resolved.
func BuildCFG(blocks map[BlockID]*Block, seeds []rom.Address, jumpTables map[rom.Address]JumpTable) *CFG {
	addrToBlock := make(map[rom.Address]BlockID, len(blocks))
	for id, b := range blocks {
		addrToBlock[b.Start] = id
	}

	for _, b := range blocks {
		if len(b.Lines) == 0 {
			continue
		}
		last := b.Lines[len(b.Lines)-1]
		desc := last.Descriptor

		switch {
		case desc.Mnemonic == "BRA" || desc.Mnemonic == "BRL" || desc.Mnemonic == "JMP" || desc.Mnemonic == "JML":
			if desc.IsIndirectJump() && jumpTables != nil {
				if jt, ok := jumpTables[last.Operand.Target]; ok {
					for _, target := range jt.Entries {
						if succID, ok := addrToBlock[target]; ok {
							linkEdge(blocks, b.ID, succID)
						}
					}
				}
			} else if last.Operand.HasTarget {
				if succID, ok := addrToBlock[last.Operand.Target]; ok {
					linkEdge(blocks, b.ID, succID)
				}
			}

		case desc.IsBranch():
			if last.Operand.HasTarget {
				if succID, ok := addrToBlock[last.Operand.Target]; ok {
					linkEdge(blocks, b.ID, succID)
				}
			}
			if fallID, ok := fallThroughBlock(addrToBlock, blocks, last); ok {
				linkEdge(blocks, b.ID, fallID)
			}

		case desc.IsCall():
			if fallID, ok := fallThroughBlock(addrToBlock, blocks, last); ok {
				linkEdge(blocks, b.ID, fallID)
			}
			if last.Operand.HasTarget {
				if calleeID, ok := addrToBlock[last.Operand.Target]; ok {
					blocks[calleeID].IsFunctionEntry = true
				}
			}

		case desc.IsReturn():
			b.IsFunctionExit = true

		default:
			if fallID, ok := fallThroughBlock(addrToBlock, blocks, last); ok {
				linkEdge(blocks, b.ID, fallID)
			}
		}
	}

	entries := make(map[BlockID]bool)
	for _, s := range seeds {
		if id, ok := addrToBlock[s]; ok {
			entries[id] = true
			blocks[id].IsFunctionEntry = true
		}
	}

	return &CFG{Blocks: blocks, EntryPoints: entries, Functions: map[rom.Address]*Function{}}
}

func linkEdge(blocks map[BlockID]*Block, from, to BlockID) {
	blocks[from].Successors[to] = true
	blocks[to].Predecessors[from] = true
}

// fallThroughBlock finds the block whose Start immediately follows the
// given line's address + its byte length.
func fallThroughBlock(addrToBlock map[rom.Address]BlockID, blocks map[BlockID]*Block, last cpu65c816.Line) (BlockID, bool) {
	next := rom.NewAddress(last.Addr.Bank(), last.Addr.Offset()+uint16(len(last.Bytes)))
	id, ok := addrToBlock[next]
	return id, ok
}
