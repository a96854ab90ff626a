package disasm

import (
	"sort"
	"strconv"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// Function is a connected region of blocks with a single entry and
// return(s), discovered heuristically (spec.md §3 Function).
type Function struct {
	Start           rom.Address
	End             rom.Address
	HasEnd          bool
	Callers         map[rom.Address]bool
	Callees         map[rom.Address]bool
	Blocks          map[BlockID]bool
	Interrupt       bool
	Confidence      float64
	SwitchStatements []SwitchStatement
	Loops           []Loop
}

// confidence weights for each evidence source (spec.md §3 Confidence
// semantics, additive, cap at 1.0).
const (
	confVectorTarget   = 1.0
	confCallTarget     = 0.9
	confPrologue       = 0.7
	confDeadCodeBound  = 0.6
	// confJumpTableTarget scores a resolved indirect-jump-table entry as
	// a function start, at the jump table's own recognition confidence
	// (spec.md §4.10). §4.9 does not name this as one of its four
	// sources, but §8 scenario 3 requires a resolved dispatch-table
	// entry to surface as a discovered function; this folds the jump
	// table's own confidence in as the "other" category (spec.md §3
	// Confidence semantics: "other = caller max").
	confJumpTableTarget = 0.7
)

// prologueRuns are the 3-instruction sequential runs recognized as
// function prologues (spec.md §4.9 item 3). Unlike the REP/SEP pair
// below, these only match in the listed order.
var prologueRuns = [][3]string{
	{"PHB", "PHK", "PLB"},
	{"PHA", "PHX", "PHY"},
}

// prologuePair is the one 2-instruction prologue that matches in either
// order (spec.md §4.9 item 3).
var prologuePair = [2]string{"REP", "SEP"}

// DetectFunctions merges the four evidence sources of spec.md §4.9, plus
// resolved jump-table targets (see confJumpTableTarget), into a
// confidence-scored function set, then assigns every block to at most
// one function by shortest-distance BFS from each function start (ties
// broken by lowest start address).
func DetectFunctions(cfg *CFG, lines []cpu65c816.Line, vectors []rom.Address, jumpTables map[rom.Address]JumpTable, warnings *Warnings) map[rom.Address]*Function {
	starts := make(map[rom.Address]float64)
	bump := func(addr rom.Address, conf float64) {
		v := starts[addr] + conf
		if v > 1.0 {
			v = 1.0
		}
		starts[addr] = v
	}

	for _, v := range vectors {
		if v != 0 {
			bump(v, confVectorTarget)
		}
	}

	for _, l := range lines {
		if l.Descriptor.IsCall() && l.Operand.HasTarget {
			bump(l.Operand.Target, confCallTarget)
		}
	}

	for _, jt := range jumpTables {
		for _, target := range jt.Entries {
			bump(target, confJumpTableTarget)
		}
	}

	for i, l := range lines {
		if matchesPrologue(lines, i) {
			bump(l.Addr, confPrologue)
		}
	}

	for i, l := range lines {
		if !l.Descriptor.IsUnconditionalTransfer() {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		if !isKnownBranchTarget(lines, next.Addr) {
			bump(next.Addr, confDeadCodeBound)
		}
	}

	funcs := make(map[rom.Address]*Function, len(starts))
	for addr, conf := range starts {
		funcs[addr] = &Function{
			Start:      addr,
			Callers:    map[rom.Address]bool{},
			Callees:    map[rom.Address]bool{},
			Blocks:     map[BlockID]bool{},
			Confidence: conf,
		}
	}

	assignBlocksToFunctions(cfg, funcs, warnings)
	computeSpansAndCallSets(cfg, funcs, lines)
	annotatePatterns(cfg, funcs, lines)

	return funcs
}

// annotatePatterns fills each function's SwitchStatements and Loops
// lists (spec.md §3 Function) from its own member lines and CFG edges,
// restricting the window-based switch scan to lines within the
// function's span so a match in one function is never attributed to a
// neighbor.
func annotatePatterns(cfg *CFG, funcs map[rom.Address]*Function, lines []cpu65c816.Line) {
	for _, fn := range funcs {
		var span []cpu65c816.Line
		for _, l := range lines {
			if l.Addr < fn.Start || (fn.HasEnd && l.Addr > fn.End) {
				continue
			}
			span = append(span, l)
		}
		fn.SwitchStatements = FindSwitchStatements(span)
		fn.Loops = FindLoops(cfg, fn)
	}
}

// matchesPrologue reports whether a recognized prologue pattern starts
// at line i. Confidence is bumped only at the pattern's first
// instruction, never at an address mid-pattern (spec.md §4.9 item 3).
func matchesPrologue(lines []cpu65c816.Line, i int) bool {
	if lines[i].Descriptor.Mnemonic == "PHP" {
		return true
	}

	if i+1 < len(lines) {
		m1, m2 := lines[i].Descriptor.Mnemonic, lines[i+1].Descriptor.Mnemonic
		if (m1 == prologuePair[0] && m2 == prologuePair[1]) ||
			(m1 == prologuePair[1] && m2 == prologuePair[0]) {
			return true
		}
	}

	if i+2 < len(lines) {
		m1, m2, m3 := lines[i].Descriptor.Mnemonic, lines[i+1].Descriptor.Mnemonic, lines[i+2].Descriptor.Mnemonic
		for _, run := range prologueRuns {
			if run[0] == m1 && run[1] == m2 && run[2] == m3 {
				return true
			}
		}
	}

	return false
}

func isKnownBranchTarget(lines []cpu65c816.Line, addr rom.Address) bool {
	for _, l := range lines {
		if l.Operand.HasTarget && l.Operand.Target == addr {
			return true
		}
	}
	return false
}

// assignBlocksToFunctions runs a multi-source BFS from every function
// start simultaneously; each block is claimed by whichever start
// reaches it first, ties broken by lowest start address (spec.md §4.9).
func assignBlocksToFunctions(cfg *CFG, funcs map[rom.Address]*Function, warnings *Warnings) {
	addrToBlock := make(map[rom.Address]BlockID, len(cfg.Blocks))
	for id, b := range cfg.Blocks {
		addrToBlock[b.Start] = id
	}

	var starts []rom.Address
	for a := range funcs {
		starts = append(starts, a)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	dist := make(map[BlockID]int)
	owner := make(map[BlockID]rom.Address)

	type item struct {
		id BlockID
		d  int
	}

	for _, start := range starts {
		startID, ok := addrToBlock[start]
		if !ok {
			continue
		}
		queue := []item{{startID, 0}}
		seen := map[BlockID]bool{startID: true}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if prevOwner, ok := owner[cur.id]; ok {
				prevDist := dist[cur.id]
				if cur.d > prevDist || (cur.d == prevDist && prevOwner < start) {
					continue
				}
				if cur.d == prevDist && prevOwner != start {
					warnings.addAmbiguity(OverlappingFunctionSpans, cur.id.addr(),
						"block reachable from multiple function starts at equal distance")
				}
			}
			owner[cur.id] = start
			dist[cur.id] = cur.d

			blk := cfg.Blocks[cur.id]
			for succ := range blk.Successors {
				if seen[succ] {
					continue
				}
				if _, isStart := funcs[cfg.Blocks[succ].Start]; isStart && succ != startID {
					continue // stop at other function starts
				}
				seen[succ] = true
				queue = append(queue, item{succ, cur.d + 1})
			}
		}
	}

	for id, start := range owner {
		funcs[start].Blocks[id] = true
	}
}

// addr recovers the start address a BlockID was derived from; it is a
// best-effort convenience for warning messages only.
func (id BlockID) addr() rom.Address {
	s := string(id)
	if len(s) < 4 || s[:4] != "blk_" {
		return 0
	}
	v, err := strconv.ParseUint(s[4:], 16, 32)
	if err != nil {
		return 0
	}
	return rom.Address(v)
}

func computeSpansAndCallSets(cfg *CFG, funcs map[rom.Address]*Function, lines []cpu65c816.Line) {
	for _, fn := range funcs {
		var maxEnd rom.Address
		hasAny := false
		for id := range fn.Blocks {
			blk := cfg.Blocks[id]
			if !hasAny || blk.End > maxEnd {
				maxEnd = blk.End
				hasAny = true
			}
		}
		if hasAny {
			fn.End = maxEnd
			fn.HasEnd = true
		}
	}

	for _, l := range lines {
		if !l.Descriptor.IsCall() || !l.Operand.HasTarget {
			continue
		}
		if callee, ok := funcs[l.Operand.Target]; ok {
			callee.Callers[l.Addr] = true
		}
		if caller := containingFunction(funcs, l.Addr); caller != nil {
			caller.Callees[l.Operand.Target] = true
		}
	}
}

func containingFunction(funcs map[rom.Address]*Function, addr rom.Address) *Function {
	var best *Function
	for _, fn := range funcs {
		if addr >= fn.Start && (!fn.HasEnd || addr <= fn.End) {
			if best == nil || fn.Start > best.Start {
				best = fn
			}
		}
	}
	return best
}
