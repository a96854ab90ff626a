package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanBRRSamplesSingleChainEndFlagSet(t *testing.T) {
	// Two blocks: first header 0x00 (filter 0, no loop, no end), second
	// header 0x01 (filter 0, no loop, end flag set). Data bytes all 0x11
	// so the non-all-zero/0xFF guard passes.
	ram := make([]byte, 18)
	ram[0] = 0x00
	for i := 1; i < 9; i++ {
		ram[i] = 0x11
	}
	ram[9] = 0x01
	for i := 10; i < 18; i++ {
		ram[i] = 0x11
	}

	samples := ScanBRRSamples(ram)
	require.Len(t, samples, 1)
	s := samples[0]
	assert.Equal(t, 18, len(s.Raw))
	assert.True(t, s.EndFlag)
	assert.False(t, s.LoopFlag)
	assert.Equal(t, -1, s.LoopStartOffset)
	assert.Len(t, s.Blocks, 2)
}

func TestScanBRRSamplesLoopFlagRecordsLoopStart(t *testing.T) {
	ram := make([]byte, 27)
	ram[0] = 0x02 // loop flag set, no end
	for i := 1; i < 9; i++ {
		ram[i] = 0x22
	}
	ram[9] = 0x00
	for i := 10; i < 18; i++ {
		ram[i] = 0x33
	}
	ram[18] = 0x01 // end flag set
	for i := 19; i < 27; i++ {
		ram[i] = 0x44
	}

	samples := ScanBRRSamples(ram)
	require.Len(t, samples, 1)
	s := samples[0]
	assert.True(t, s.LoopFlag)
	assert.Equal(t, 0, s.LoopStartOffset)
	assert.Equal(t, 18, s.LoopEndOffset)
}

func TestScanBRRSamplesStopsAtAllZeroRun(t *testing.T) {
	ram := make([]byte, 9)
	ram[0] = 0x00 // valid filter/shift, no end flag
	// all data bytes zero -> invalid per the all-zero guard
	samples := ScanBRRSamples(ram)
	assert.Empty(t, samples)
}

func TestFingerprintEngineNSPC(t *testing.T) {
	ram := make([]byte, 4)
	ram[0], ram[1] = 0x40, 0x12
	fp := FingerprintEngine(ram)
	assert.Equal(t, EngineNSPC, fp.Engine)
	assert.Equal(t, uint16(0x0200), fp.DriverBase)
	assert.Equal(t, 0.9, fp.Confidence)
}

func TestFingerprintEngineAkao(t *testing.T) {
	ram := []byte{0x7C, 0x95, 0x00, 0x00}
	fp := FingerprintEngine(ram)
	assert.Equal(t, EngineAkao, fp.Engine)
	assert.Equal(t, 0.8, fp.Confidence)
}

func TestFingerprintEngineUnknown(t *testing.T) {
	ram := []byte{0x01, 0x02, 0x03, 0x04}
	fp := FingerprintEngine(ram)
	assert.Equal(t, EngineUnknown, fp.Engine)
	assert.Equal(t, 0.5, fp.Confidence)
}
