package rom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderLoROM(t *testing.T) {
	data := buildTestROM(0x80000, false, 0x00, 0x00)
	h, _, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, HeaderLoROM, h.Location)
	assert.Equal(t, "TEST ROM", h.Title)
	assert.True(t, h.ChecksumOK)
	assert.Equal(t, uint16(0x8000), h.Emulation.RESET)
}

func TestParseHeaderHiROM(t *testing.T) {
	data := buildTestROM(0x100000, true, 0x00, 0x00)
	h, _, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, HeaderHiROM, h.Location)
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, _, err := ParseHeader(make([]byte, 0x1000))
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestParseHeaderNotFound(t *testing.T) {
	data := make([]byte, 0x80000)
	_, _, err := ParseHeader(data)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestStripCopierHeader(t *testing.T) {
	raw := buildTestROM(0x80000, false, 0x00, 0x00)
	withCopier := append(make([]byte, copierHeaderSize), raw...)
	stripped := StripCopierHeader(withCopier)
	assert.Equal(t, raw, stripped)
}

func TestStripCopierHeaderNoOp(t *testing.T) {
	raw := buildTestROM(0x80000, false, 0x00, 0x00)
	assert.Equal(t, raw, StripCopierHeader(raw))
}
