// Package pipeline orchestrates the full leaves-first analysis pipeline
// of spec.md §2: ROM shape resolution, instruction decoding, recursive-
// descent disassembly with control-flow reconstruction, pattern-driven
// asset and audio-state identification, and reference enrichment.
package pipeline

import (
	"context"
	"errors"
	"sort"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/audio"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/disasm"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// Result is the analysis result handed to renderers (spec.md §6
// Analysis result).
type Result struct {
	Cartridge  rom.CartridgeInfo
	Lines      []cpu65c816.Line
	CFG        *disasm.CFG
	Functions  map[rom.Address]*disasm.Function
	XRef       map[rom.Address][]disasm.CrossReference
	Symbols    map[rom.Address]*disasm.Symbol
	Structures []disasm.DataStructure
	Enrichment *disasm.Enrichment
	Audio      AudioResult
	Metrics    *disasm.Metrics
	Warnings   *disasm.Warnings
	Partial    bool
}

// AudioResult bundles everything the audio sub-pipeline extracts.
type AudioResult struct {
	Fingerprint   audio.Fingerprint
	UploadWindows []audio.UploadWindow
	Samples       []audio.Sample
	Sequences     []audio.Sequence
	State         *audio.ProgramState
}

// Run executes the full pipeline over raw ROM bytes (spec.md §2 data
// flow). ctx is polled cooperatively by the linear disassembler every
// 1024 lines (spec.md §5); on cancellation the returned Result is
// partial (Result.Partial = true) and err wraps disasm.ErrCancelled.
func Run(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	img, err := rom.Load(raw)
	if err != nil {
		return nil, err
	}

	warnings := &disasm.Warnings{}

	vectors := collectVectors(img)
	seeds := append(append([]rom.Address{}, vectors...), opts.Seeds...)

	walker := disasm.NewWalker(img, warnings)
	lines, walkErr := walker.Walk(ctx, seeds)

	partial := false
	if walkErr != nil {
		if errors.Is(walkErr, disasm.ErrCancelled) {
			partial = true
		} else {
			return nil, walkErr
		}
	}

	jumpTables := disasm.ResolveJumpTables(img, lines)

	// A resolved indirect-jump table's entries are new seeds the initial
	// walk had no way to know about (spec.md §4.7's fourth boundary rule:
	// "the target of every indirect jump if its table has been
	// resolved"). Re-walk from those targets and fold the result in
	// before building blocks, so the discovered functions actually carry
	// disassembled lines (spec.md §8 scenario 3).
	if !partial {
		if extra := unwalkedJumpTargets(jumpTables, lines); len(extra) > 0 {
			moreLines, walkErr2 := walker.Walk(ctx, extra)
			if walkErr2 != nil && errors.Is(walkErr2, disasm.ErrCancelled) {
				partial = true
			} else if walkErr2 != nil {
				return nil, walkErr2
			}
			lines = mergeLines(lines, moreLines)
			seeds = append(seeds, extra...)
			jumpTables = disasm.ResolveJumpTables(img, lines)
		}
	}

	blocks := disasm.BuildBlocks(lines, seeds)
	cfg := disasm.BuildCFG(blocks, seeds, jumpTables)

	vectorSet := make(map[rom.Address]bool, len(vectors))
	for _, v := range vectors {
		vectorSet[v] = true
	}
	functions := disasm.DetectFunctions(cfg, lines, vectors, jumpTables, warnings)
	cfg.Functions = functions

	xref := disasm.BuildCrossReferenceIndex(lines)
	pointerTables := disasm.ResolvePointerTables(lines)
	structures := disasm.BuildDataStructures(jumpTables, pointerTables, warnings)

	symbolHints := opts.SymbolHints
	if symbolHints == nil {
		symbolHints = map[rom.Address]string{}
	}
	symbols := disasm.BuildSymbolTable(functions, structures, xref, symbolHints)
	macros := disasm.FindMacros(lines)
	enrichment := disasm.Enrich(lines, symbols, macros)
	metrics := disasm.ComputeMetrics(lines, cfg, functions, enrichment, vectorSet)

	audioResult := runAudioSubPipeline(img, lines, functions)

	result := &Result{
		Cartridge:  img.Cartridge,
		Lines:      lines,
		CFG:        cfg,
		Functions:  functions,
		XRef:       xref,
		Symbols:    symbols,
		Structures: structures,
		Enrichment: enrichment,
		Audio:      audioResult,
		Metrics:    metrics,
		Warnings:   warnings,
		Partial:    partial,
	}

	if partial {
		return result, disasm.ErrCancelled
	}
	return result, nil
}

// unwalkedJumpTargets returns the resolved jump-table entries that have
// no corresponding decoded line yet, deduplicated.
func unwalkedJumpTargets(jumpTables map[rom.Address]disasm.JumpTable, lines []cpu65c816.Line) []rom.Address {
	have := make(map[rom.Address]bool, len(lines))
	for _, l := range lines {
		have[l.Addr] = true
	}
	seen := make(map[rom.Address]bool)
	var out []rom.Address
	for _, jt := range jumpTables {
		for _, target := range jt.Entries {
			if have[target] || seen[target] {
				continue
			}
			seen[target] = true
			out = append(out, target)
		}
	}
	return out
}

// mergeLines combines two decoded-line sets by address, preferring a's
// entry on collision, and returns them sorted by CPU address (spec.md
// §5 ordering guarantees).
func mergeLines(a, b []cpu65c816.Line) []cpu65c816.Line {
	byAddr := make(map[rom.Address]cpu65c816.Line, len(a)+len(b))
	for _, l := range b {
		byAddr[l.Addr] = l
	}
	for _, l := range a {
		byAddr[l.Addr] = l
	}
	out := make([]cpu65c816.Line, 0, len(byAddr))
	for _, l := range byAddr {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

func collectVectors(img *rom.Image) []rom.Address {
	var out []rom.Address
	add := func(v uint16) {
		if v != 0 {
			out = append(out, rom.NewAddress(0x00, v))
		}
	}
	for _, e := range img.Header.Emulation.Entries() {
		add(e.Addr)
	}
	for _, e := range img.Header.Native.Entries() {
		add(e.Addr)
	}
	return out
}

// runAudioSubPipeline runs the audio sub-pipeline of spec.md §4.12 after
// the CFG is built. Without a full SPC700 simulation (spec.md §1
// Non-goals), there is no traced audio RAM image to scan; the ROM bytes
// themselves serve as the "designated ROM region" spec.md §4.12 allows
// as a BRR/engine-fingerprint scan target, and upload-window detection
// runs directly against the CPU-side disassembly.
func runAudioSubPipeline(img *rom.Image, lines []cpu65c816.Line, functions map[rom.Address]*disasm.Function) AudioResult {
	fp := audio.FingerprintEngine(img.Bytes)
	samples := audio.ScanBRRSamples(img.Bytes)

	funcSpan := func(addr rom.Address) (rom.Address, bool) {
		for _, fn := range functions {
			if addr >= fn.Start && (!fn.HasEnd || addr <= fn.End) {
				if fn.HasEnd {
					return fn.End, true
				}
				return 0, false
			}
		}
		return 0, false
	}
	windows := audio.FindUploadWindows(lines, funcSpan)

	var sequences []audio.Sequence
	switch fp.Engine {
	case audio.EngineNSPC:
		if _, mask, tempo, ptrs, ok := audio.FindNSPCHeader(img.Bytes); ok {
			sequences = append(sequences, audio.ParseNSPCSequence(img.Bytes, mask, tempo, ptrs))
		}
	case audio.EngineAkao:
		if off, count, ok := audio.FindAkaoHeader(img.Bytes); ok {
			sequences = append(sequences, audio.ParseAkaoSequence(img.Bytes, off, count))
		}
	case audio.EngineHAL:
		if off, count, ok := audio.FindHALHeader(img.Bytes); ok {
			sequences = append(sequences, audio.ParseHALSequence(img.Bytes, off, count))
		}
	case audio.EngineKankichiKun:
		if off, ok := audio.FindKankichiHeader(img.Bytes); ok {
			sequences = append(sequences, audio.ParseKankichiSequence(img.Bytes, off))
		}
	default:
		if _, tempo, ptr, ok := audio.FindGenericHeader(img.Bytes); ok {
			sequences = append(sequences, audio.ParseGenericSequence(img.Bytes, tempo, ptr))
		}
	}

	state := audio.BuildProgramState(windows)

	return AudioResult{
		Fingerprint:   fp,
		UploadWindows: windows,
		Samples:       samples,
		Sequences:     sequences,
		State:         state,
	}
}
