package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// spcHeaderText is the fixed 27-byte SPC file header string (spec.md §6
// SPC file format). The resolved offsets for the header, signature
// bytes, and ID666 flag follow the spec's own fix of the original
// source's ambiguous writer (see DESIGN.md: signature bytes at 27/28/29).
const spcHeaderText = "SNES-SPC700 Sound File Data"

// headerFieldLen is the header string's byte length (spec.md §6: a
// 27-byte header followed by three signature bytes at offsets 27/28/29
// -- the resolution of the original source's ambiguous writer, see
// DESIGN.md).
const headerFieldLen = 27

const (
	signatureByte    = 0x1A
	minSPCFileSize   = 0x10200
	versionMinorByte = 30
)

// ID666 presence-flag values (spec.md §6).
const (
	ID666Text   = 26
	ID666Binary = 27
)

var (
	ErrSPCTooSmall        = errors.New("audio: spc file smaller than minimum size")
	ErrSPCBadHeader        = errors.New("audio: spc file header prefix mismatch")
	ErrSPCBadSignature     = errors.New("audio: spc file signature bytes mismatch")
	ErrSPCBadID666Flag     = errors.New("audio: spc file id666 flag not in {26,27}")
)

// ID666 is the optional metadata block. When absent, ExportSPC writes a
// zeroed block of the same size and an ID666Binary flag with empty
// fields, matching how a binary-format SPC with no metadata looks.
type ID666 struct {
	SongTitle   string
	GameTitle   string
	DumperName  string
	Comments    string
	Artist      string
}

// ExportSPC serializes a ProgramState into the SPC file byte format of
// spec.md §6: 27-byte header, three 0x1A signature bytes, an ID666
// presence flag, a version-minor byte, SPC700 register state, an
// optional ID666 block padded to offset 0x100, the 64 KiB RAM image,
// 128 DSP registers, 64 unused zero bytes, and 64 extra-RAM zero bytes.
func ExportSPC(state *ProgramState, id666 *ID666) []byte {
	buf := make([]byte, minSPCFileSize)

	copy(buf[0:headerFieldLen], spcHeaderText[:headerFieldLen])
	buf[27] = signatureByte
	buf[28] = signatureByte
	buf[29] = signatureByte

	flag := byte(ID666Binary)
	if id666 != nil {
		flag = ID666Text
	}
	buf[30] = flag
	buf[31] = versionMinorByte

	buf[32] = byte(state.PC)
	buf[33] = byte(state.PC >> 8)
	buf[34] = state.A
	buf[35] = state.X
	buf[36] = state.Y
	buf[37] = state.PSW
	buf[38] = state.SP
	buf[39] = 0
	buf[40] = 0

	if id666 != nil {
		writeID666(buf[0x2E:0x100], id666)
	}

	copy(buf[0x100:0x100+spcRAMSize], state.RAM[:])
	dspOffset := 0x100 + spcRAMSize
	copy(buf[dspOffset:dspOffset+128], state.DSP.Registers[:])

	return buf
}

func writeID666(region []byte, id *ID666) {
	put := func(dst []byte, s string) {
		n := copy(dst, s)
		for ; n < len(dst); n++ {
			dst[n] = 0
		}
	}
	if len(region) < 32+32+16+32 {
		return
	}
	put(region[0:32], id.SongTitle)
	put(region[32:64], id.GameTitle)
	put(region[64:80], id.DumperName)
	put(region[80:112], id.Comments)
}

// ValidateSPC checks the byte format invariants of spec.md §6: minimum
// size, header prefix, signature bytes at 27/28/29, and ID666 flag in
// {26,27}.
func ValidateSPC(data []byte) error {
	if len(data) < minSPCFileSize {
		return fmt.Errorf("%w: got %d bytes, need >= %d", ErrSPCTooSmall, len(data), minSPCFileSize)
	}
	if !bytes.Equal(data[0:headerFieldLen], []byte(spcHeaderText[:headerFieldLen])) {
		return ErrSPCBadHeader
	}
	if data[27] != signatureByte || data[28] != signatureByte || data[29] != signatureByte {
		return ErrSPCBadSignature
	}
	if data[30] != ID666Text && data[30] != ID666Binary {
		return ErrSPCBadID666Flag
	}
	return nil
}
