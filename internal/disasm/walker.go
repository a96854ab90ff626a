package disasm

import (
	"context"
	"sort"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// flagState is the M/X width pair tracked per frontier entry (spec.md
// §4.6). REP/SEP in the instruction stream mutate it for the successors
// an entry enqueues.
type flagState struct {
	m, x cpu65c816.FlagWidth
}

// frontierEntry is one pending walk continuation.
type frontierEntry struct {
	pc    rom.Address
	flags flagState
}

// Walker performs the linear disassembly walk of spec.md §4.6: starting
// from a frontier of seed addresses, it decodes instructions, tracks
// M/X flag width across REP/SEP, and enqueues successors (fall-through,
// branch targets, call targets) while never re-walking an address
// already emitted.
type Walker struct {
	img      *rom.Image
	warnings *Warnings
}

// NewWalker constructs a Walker over the given ROM image.
func NewWalker(img *rom.Image, warnings *Warnings) *Walker {
	return &Walker{img: img, warnings: warnings}
}

// resetFlagState is the flag width after the simulated `SEP #0x30` at
// reset: both M and X start 8-bit (spec.md §4.6).
var resetFlagState = flagState{m: cpu65c816.Width8, x: cpu65c816.Width8}

// Walk runs the frontier walk from the given seed addresses, returning
// the ordered, deduplicated set of decoded lines. ctx is polled every
// 1024 lines and between major steps for cooperative cancellation
// (spec.md §5); on cancellation Walk returns ErrCancelled along with the
// partial line set gathered so far.
func (w *Walker) Walk(ctx context.Context, seeds []rom.Address) ([]cpu65c816.Line, error) {
	visited := make(map[rom.Address]bool)
	seenFlags := make(map[rom.Address]flagState)
	lines := make(map[rom.Address]cpu65c816.Line)

	var queue []frontierEntry
	for _, s := range seeds {
		queue = append(queue, frontierEntry{pc: s, flags: resetFlagState})
	}

	emitted := 0
	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if prior, ok := seenFlags[entry.pc]; ok && prior != entry.flags {
			w.warnings.addAmbiguity(FlagWidthConflict, entry.pc,
				"conflicting M/X flag widths at join; kept first-seen assumption")
		}
		seenFlags[entry.pc] = entry.flags

		if visited[entry.pc] {
			continue
		}

		emitted++
		if emitted%1024 == 0 {
			select {
			case <-ctx.Done():
				return w.sortedLines(lines), ErrCancelled
			default:
			}
		}

		off, ok := w.img.Mapper.CPUToFile(entry.pc)
		if !ok {
			// Unmapped: terminates this branch of the walk silently;
			// the seed-level Unmapped case is the caller's concern.
			continue
		}

		avail := len(w.img.Bytes) - off
		if avail <= 0 {
			continue
		}
		window := w.img.Bytes[off:]
		if len(window) > 8 {
			window = window[:8] // longest possible instruction is 4 bytes; 8 is generous headroom
		}

		line, err := cpu65c816.Decode(window, entry.pc, entry.flags.m, entry.flags.x)
		if err != nil {
			w.warnings.addDecodeError(entry.pc, window[0], err)
			visited[entry.pc] = true
			lines[entry.pc] = cpu65c816.DataByteLine(entry.pc, window[0])
			nextPC := rom.NewAddress(entry.pc.Bank(), entry.pc.Offset()+1)
			queue = append(queue, frontierEntry{nextPC, entry.flags})
			continue
		}

		visited[entry.pc] = true
		lines[entry.pc] = line

		next := entry.pc.Offset() + uint16(len(line.Bytes))
		nextPC := rom.NewAddress(entry.pc.Bank(), next)
		nextFlags := updateFlags(line, entry.flags, w.warnings, entry.pc)

		desc := line.Descriptor
		switch {
		case desc.Mnemonic == "BRA" || desc.Mnemonic == "BRL":
			if line.Operand.HasTarget {
				queue = append(queue, frontierEntry{line.Operand.Target, nextFlags})
			}
		case desc.IsBranch():
			if line.Operand.HasTarget {
				queue = append(queue, frontierEntry{line.Operand.Target, nextFlags})
			}
			queue = append(queue, frontierEntry{nextPC, nextFlags})
		case desc.IsCall():
			if line.Operand.HasTarget {
				queue = append(queue, frontierEntry{line.Operand.Target, nextFlags})
			}
			queue = append(queue, frontierEntry{nextPC, nextFlags})
		case desc.Mnemonic == "JMP" || desc.Mnemonic == "JML":
			if line.Operand.HasTarget {
				queue = append(queue, frontierEntry{line.Operand.Target, nextFlags})
			}
			// indirect targets are resolved later by the jump-table
			// recognizer (§4.10); nothing to enqueue here.
		case desc.IsReturn() || desc.Mnemonic == "BRK" || desc.Mnemonic == "COP" || desc.Mnemonic == "STP":
			// no fall-through successor
		default:
			queue = append(queue, frontierEntry{nextPC, nextFlags})
		}
	}

	return w.sortedLines(lines), nil
}

// updateFlags applies REP/SEP semantics: SEP narrows the named flags to
// 8-bit, REP widens them to 16-bit. Bit 0x20 is M, bit 0x10 is X.
func updateFlags(line cpu65c816.Line, cur flagState, warnings *Warnings, addr rom.Address) flagState {
	switch line.Descriptor.Mnemonic {
	case "SEP":
		imm := byte(line.Operand.Immediate)
		next := cur
		if imm&0x20 != 0 {
			next.m = cpu65c816.Width8
		}
		if imm&0x10 != 0 {
			next.x = cpu65c816.Width8
		}
		return next
	case "REP":
		imm := byte(line.Operand.Immediate)
		next := cur
		if imm&0x20 != 0 {
			next.m = cpu65c816.Width16
		}
		if imm&0x10 != 0 {
			next.x = cpu65c816.Width16
		}
		return next
	default:
		return cur
	}
}

func (w *Walker) sortedLines(lines map[rom.Address]cpu65c816.Line) []cpu65c816.Line {
	out := make([]cpu65c816.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
