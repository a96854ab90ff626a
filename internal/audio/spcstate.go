package audio

import (
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/cpu65c816"
	"github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"
)

// spcRAMSize is the fixed SPC700 RAM size (spec.md §3 SPC Program State).
const spcRAMSize = 64 * 1024

// Timer is one of the SPC700's three hardware timers.
type Timer struct {
	Value, Target byte
	Enabled       bool
}

// IOPort is one of the four bidirectional CPU<->APU I/O ports.
type IOPort struct {
	ToSPC, FromSPC byte
}

// Voice is one of the DSP's 8 voice descriptors (spec.md §3 SPC Program
// State).
type Voice struct {
	VolumeLeft, VolumeRight byte
	Pitch                   uint16
	Source                  byte
	ADSR                    [2]byte
	Gain                    byte
	Envelope                byte
	Output                  byte
}

// DSPState is the frozen 128-register DSP snapshot plus its 8 voices and
// global fields.
type DSPState struct {
	Registers [128]byte
	Voices    [8]Voice
	Echo      bool
	Noise     byte
	KeyOn     byte
	KeyOff    byte
}

// ProgramState is the frozen SPC700 snapshot built from an upload trace
// (spec.md §3 SPC Program State).
type ProgramState struct {
	PC                uint16
	A, X, Y, PSW, SP byte
	RAM              [spcRAMSize]byte
	Timers           [3]Timer
	Ports            [4]IOPort
	DSP              DSPState
}

// UploadWindow is a scored candidate SPC-upload trace (spec.md §4.12).
type UploadWindow struct {
	Start      rom.Address
	Lines      []cpu65c816.Line
	Score      float64
	TargetAddr uint16
	HasTarget  bool
	DataSize   uint16
	HasSize    bool
}

const (
	maxUploadWindowLines   = 50
	minUploadWindowScore   = 0.3
	scorePerAPUPort        = 0.1
	scoreIPLBootPattern    = 0.3
	scoreDMAChannelSetup   = 0.2
	scorePerConditionalBr  = 0.1
)

func isAPUPortAddr(addr rom.Address) bool {
	off := addr.Offset()
	return off >= 0x2140 && off <= 0x2143
}

func isDMASetupAddr(addr rom.Address) bool {
	off := addr.Offset()
	return off >= 0x4300 && off <= 0x437F
}

// FindUploadWindows scans the finalized line list for forward windows
// of up to 50 lines (within the same function) starting at any APU port
// write, scoring each per spec.md §4.12 and keeping those scoring >=0.3.
func FindUploadWindows(lines []cpu65c816.Line, funcSpan func(rom.Address) (rom.Address, bool)) []UploadWindow {
	byAddr := make(map[rom.Address]int, len(lines))
	for i, l := range lines {
		byAddr[l.Addr] = i
	}

	var windows []UploadWindow
	for i, l := range lines {
		if l.Descriptor.Mnemonic != "STA" || !l.Operand.HasTarget || !isAPUPortAddr(l.Operand.Target) {
			continue
		}
		end, ok := funcSpan(l.Addr)
		window, score, targetAddr, hasTarget, dataSize, hasSize := scoreWindow(lines, i, end, ok)
		if score < minUploadWindowScore {
			continue
		}
		windows = append(windows, UploadWindow{
			Start: l.Addr, Lines: window, Score: score,
			TargetAddr: targetAddr, HasTarget: hasTarget,
			DataSize: dataSize, HasSize: hasSize,
		})
	}
	return windows
}

func scoreWindow(lines []cpu65c816.Line, start int, funcEnd rom.Address, hasFuncEnd bool) ([]cpu65c816.Line, float64, uint16, bool, uint16, bool) {
	score := 0.0
	var window []cpu65c816.Line
	var targetAddr, dataSize uint16
	var hasTarget, hasSize bool

	for i := start; i < len(lines) && len(window) < maxUploadWindowLines; i++ {
		l := lines[i]
		if hasFuncEnd && l.Addr > funcEnd {
			break
		}
		window = append(window, l)

		if l.Operand.HasTarget && isAPUPortAddr(l.Operand.Target) {
			score += scorePerAPUPort
		}
		if i > start && isIPLBootPattern(lines, i-1) {
			score += scoreIPLBootPattern
		}
		if l.Operand.HasTarget && isDMASetupAddr(l.Operand.Target) {
			score += scoreDMAChannelSetup
		}
		if l.Descriptor.IsBranch() {
			score += scorePerConditionalBr
		}
		if l.Descriptor.Mnemonic == "LDX" && !hasTarget && l.Operand.Immediate <= 0xFFFF {
			targetAddr = l.Operand.Immediate
			hasTarget = true
		}
		if l.Descriptor.Mnemonic == "LDY" && !hasSize && l.Operand.Immediate < 0x8000 {
			dataSize = l.Operand.Immediate
			hasSize = true
		}

		switch l.Descriptor.Mnemonic {
		case "RTS", "RTL", "JMP", "JML":
			return window, score, targetAddr, hasTarget, dataSize, hasSize
		}
	}

	return window, score, targetAddr, hasTarget, dataSize, hasSize
}

// isIPLBootPattern reports whether lines[i] is `LDA #$CC` immediately
// followed by `STA $2141` (spec.md §4.12 IPL boot pattern).
func isIPLBootPattern(lines []cpu65c816.Line, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	a, b := lines[i], lines[i+1]
	if a.Descriptor.Mnemonic != "LDA" || a.Operand.Immediate != 0xCC {
		return false
	}
	return b.Descriptor.Mnemonic == "STA" && b.Operand.HasTarget && b.Operand.Target.Offset() == 0x2141
}

// BuildProgramState returns a zeroed SPC700 snapshot. The upload
// windows are accepted but not consulted: no RAM contents, load address
// or upload size is copied from them into the returned state.
func BuildProgramState(windows []UploadWindow) *ProgramState {
	state := &ProgramState{}
	// Reconstructing actual RAM contents would require simulating the
	// SPC700 bootloader handshake, which is out of scope (spec.md §1
	// Non-goals); nothing from the windows is recorded in the snapshot.
	_ = windows
	return state
}
