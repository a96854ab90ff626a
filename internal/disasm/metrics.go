package disasm

import (
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// BugSeverity tags a potential-bug finding's severity.
type BugSeverity int

const (
	SeverityLow BugSeverity = iota
	SeverityMedium
	SeverityHigh
)

func (s BugSeverity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// BugKind tags the named potential-bug categories of spec.md §7.
type BugKind int

const (
	BugStackImbalance BugKind = iota
	BugUninitializedRAMRead
	BugJumpToSelf
)

func (k BugKind) String() string {
	switch k {
	case BugStackImbalance:
		return "StackImbalance"
	case BugUninitializedRAMRead:
		return "UninitializedRAMRead"
	case BugJumpToSelf:
		return "JumpToSelf"
	default:
		return "Unknown"
	}
}

// PotentialBug is one finding in the quality-metrics potential-bug list
// (spec.md §7).
type PotentialBug struct {
	Kind     BugKind
	Addr     rom.Address
	Severity BugSeverity
	Detail   string
}

// Metrics is the quality-metric record attached to the analysis result
// (spec.md §7).
type Metrics struct {
	TotalInstructions       int
	CodeBytes               int
	FunctionCount           int
	AverageFunctionSize     float64
	CyclomaticComplexity    map[rom.Address]int
	CommentedOrLabeledLines int
	HardwareRegisterAccesses int
	SubroutineCalls         int
	IndirectJumps           int
	SuspectedSelfModifying  []rom.Address
	InterruptHandlerCount   int
	PotentialBugs           []PotentialBug
}

// ComputeMetrics derives the spec.md §7 quality-metric record from the
// finalized analysis artifacts.
func ComputeMetrics(lines []cpu65c816.Line, cfg *CFG, funcs map[rom.Address]*Function, enrichment *Enrichment, vectors map[rom.Address]bool) *Metrics {
	m := &Metrics{CyclomaticComplexity: map[rom.Address]int{}}

	for _, l := range lines {
		m.TotalInstructions++
		m.CodeBytes += len(l.Bytes)

		if l.Operand.HasTarget {
			if _, ok := regLookup(l.Operand.Target); ok {
				m.HardwareRegisterAccesses++
			}
		}
		if l.Descriptor.IsCall() {
			m.SubroutineCalls++
		}
		if l.Descriptor.IsIndirectJump() {
			m.IndirectJumps++
		}
		if l.Descriptor.Mnemonic == "STA" && l.Operand.HasTarget &&
			l.Operand.Target.Offset() >= 0x8000 {
			m.SuspectedSelfModifying = append(m.SuspectedSelfModifying, l.Addr)
		}
		if _, hasLabel := enrichment.Labels[l.Addr]; hasLabel {
			m.CommentedOrLabeledLines++
		} else if _, hasComment := enrichment.Comments[l.Addr]; hasComment {
			m.CommentedOrLabeledLines++
		}
	}

	m.FunctionCount = len(funcs)
	if m.FunctionCount > 0 {
		total := 0
		for addr, fn := range funcs {
			if vectors[addr] {
				m.InterruptHandlerCount++
			}
			span := 1
			if fn.HasEnd {
				span = int(fn.End) - int(fn.Start) + 1
			}
			total += span
			m.CyclomaticComplexity[addr] = 1 + countConditionalBranches(lines, fn)
		}
		m.AverageFunctionSize = float64(total) / float64(m.FunctionCount)
	}

	m.PotentialBugs = append(m.PotentialBugs, detectStackImbalance(lines, funcs)...)
	m.PotentialBugs = append(m.PotentialBugs, detectJumpToSelf(lines, funcs)...)
	m.PotentialBugs = append(m.PotentialBugs, detectUninitializedRAMRead(lines)...)

	return m
}

func regLookup(addr rom.Address) (struct{}, bool) {
	switch RegisterRegion(addr) {
	case "PPU", "APU", "DMA":
		return struct{}{}, true
	default:
		return struct{}{}, false
	}
}

func countConditionalBranches(lines []cpu65c816.Line, fn *Function) int {
	n := 0
	for _, l := range lines {
		if l.Addr < fn.Start {
			continue
		}
		if fn.HasEnd && l.Addr > fn.End {
			continue
		}
		if l.Descriptor.IsBranch() {
			n++
		}
	}
	return n
}

// detectStackImbalance flags functions whose PHx/PLx (or PHA/PLA) counts
// within their span don't balance, a coarse but concrete version of the
// stack-imbalance check named in spec.md §7.
func detectStackImbalance(lines []cpu65c816.Line, funcs map[rom.Address]*Function) []PotentialBug {
	var out []PotentialBug
	pushes := map[string]bool{"PHA": true, "PHX": true, "PHY": true, "PHP": true, "PHB": true, "PHK": true, "PHD": true, "PEA": true, "PEI": true, "PER": true}
	pulls := map[string]bool{"PLA": true, "PLX": true, "PLY": true, "PLP": true, "PLB": true, "PLD": true}

	for addr, fn := range funcs {
		balance := 0
		for _, l := range lines {
			if l.Addr < fn.Start || (fn.HasEnd && l.Addr > fn.End) {
				continue
			}
			if pushes[l.Descriptor.Mnemonic] {
				balance++
			} else if pulls[l.Descriptor.Mnemonic] {
				balance--
			}
		}
		if balance != 0 {
			out = append(out, PotentialBug{
				Kind:     BugStackImbalance,
				Addr:     addr,
				Severity: SeverityMedium,
				Detail:   "push/pull instruction count does not balance across the function span",
			})
		}
	}
	return out
}

// detectUninitializedRAMRead flags the first read of a work-RAM address
// (0x7E0000-0x7FFFFF) in program order that is not preceded anywhere in
// the line list by a write to that same address: a coarse, whole-ROM
// approximation of the uninitialized-RAM-read check named in spec.md §7
// (it does not attempt per-path reachability).
func detectUninitializedRAMRead(lines []cpu65c816.Line) []PotentialBug {
	written := make(map[rom.Address]bool)
	reported := make(map[rom.Address]bool)
	var out []PotentialBug

	for _, l := range lines {
		if !l.Operand.HasTarget || RegisterRegion(l.Operand.Target) != "WRAM" {
			continue
		}
		switch {
		case writeMnemonics[l.Descriptor.Mnemonic]:
			written[l.Operand.Target] = true
		case readMnemonics[l.Descriptor.Mnemonic]:
			if !written[l.Operand.Target] && !reported[l.Operand.Target] {
				reported[l.Operand.Target] = true
				out = append(out, PotentialBug{
					Kind:     BugUninitializedRAMRead,
					Addr:     l.Addr,
					Severity: SeverityLow,
					Detail:   "reads work RAM address with no preceding write observed in the disassembly",
				})
			}
		}
	}
	return out
}

// detectJumpToSelf flags any JMP/BRA whose target equals its own
// address: an infinite loop (spec.md §8 boundary behavior, severity
// High).
func detectJumpToSelf(lines []cpu65c816.Line, funcs map[rom.Address]*Function) []PotentialBug {
	var out []PotentialBug
	for _, l := range lines {
		if !l.Operand.HasTarget {
			continue
		}
		if l.Operand.Target != l.Addr {
			continue
		}
		switch l.Descriptor.Mnemonic {
		case "JMP", "JML", "BRA", "BRL":
			out = append(out, PotentialBug{
				Kind:     BugJumpToSelf,
				Addr:     l.Addr,
				Severity: SeverityHigh,
				Detail:   "instruction jumps to its own address: infinite loop",
			})
		}
	}
	return out
}
