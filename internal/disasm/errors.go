// Package disasm implements recursive-descent disassembly with
// control-flow reconstruction: linear walking, basic-block formation,
// CFG construction, function detection, jump-table recognition,
// cross-referencing, and reference enrichment (spec.md §2, §4.6-§4.13).
package disasm

import (
	"errors"
	"fmt"

	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// ErrUnmappedSeed is an InputError: a seed address does not resolve to
// any mapped ROM byte (spec.md §7 InputError).
var ErrUnmappedSeed = errors.New("disasm: seed address is unmapped")

// ErrCancelled is returned when the cooperative cancellation token was
// observed during a run (spec.md §5, §7 Cancelled).
var ErrCancelled = errors.New("disasm: run cancelled")

// InputError wraps a fatal, caller-surfaced error.
type InputError struct {
	Addr rom.Address
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error at %06X: %v", uint32(e.Addr), e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// AmbiguityKind tags the shape of a non-fatal ambiguity recorded during
// disassembly (spec.md §7 AmbiguityWarning).
type AmbiguityKind int

const (
	FlagWidthConflict AmbiguityKind = iota
	OverlappingFunctionSpans
	ConflictingFunctionConfidence
)

func (k AmbiguityKind) String() string {
	switch k {
	case FlagWidthConflict:
		return "FlagWidthConflict"
	case OverlappingFunctionSpans:
		return "OverlappingFunctionSpans"
	case ConflictingFunctionConfidence:
		return "ConflictingFunctionConfidence"
	default:
		return "Unknown"
	}
}

// AmbiguityWarning is a non-fatal record attached to the result rather
// than returned as an error.
type AmbiguityWarning struct {
	Kind    AmbiguityKind
	Addr    rom.Address
	Message string
}

// DecodedByte represents a byte the decoder could not interpret as a
// known instruction (spec.md §7 DecodeError): it becomes a one-byte
// "data byte" line and disassembly continues at the next boundary.
type DecodedByte struct {
	Addr  rom.Address
	Value byte
	Err   error
}

// Warnings accumulates non-fatal issues observed during a run, grouped
// the way spec.md §7 asks renderers to summarize them: category x count
// x representative location.
type Warnings struct {
	Ambiguities  []AmbiguityWarning
	DecodeErrors []DecodedByte
	LowConfidence []DroppedPattern
}

// DroppedPattern records a pattern-matcher candidate that scored below
// the publication threshold (spec.md §7 PatternLowConfidence).
type DroppedPattern struct {
	Addr       rom.Address
	Kind       string
	Confidence float64
}

func (w *Warnings) addAmbiguity(kind AmbiguityKind, addr rom.Address, msg string) {
	w.Ambiguities = append(w.Ambiguities, AmbiguityWarning{kind, addr, msg})
}

func (w *Warnings) addDecodeError(addr rom.Address, value byte, err error) {
	w.DecodeErrors = append(w.DecodeErrors, DecodedByte{addr, value, err})
}

func (w *Warnings) addLowConfidence(addr rom.Address, kind string, confidence float64) {
	w.LowConfidence = append(w.LowConfidence, DroppedPattern{addr, kind, confidence})
}
