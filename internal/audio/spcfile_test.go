package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSPCValidatesUnderOwnValidator(t *testing.T) {
	state := &ProgramState{PC: 0x1234, A: 0x01, X: 0x02, Y: 0x03, PSW: 0x04, SP: 0xFF}
	data := ExportSPC(state, nil)
	require.Len(t, data, minSPCFileSize)
	assert.NoError(t, ValidateSPC(data))
	assert.Equal(t, byte(ID666Binary), data[30])
}

func TestExportSPCWithID666(t *testing.T) {
	state := &ProgramState{}
	id := &ID666{SongTitle: "Test Song", GameTitle: "Test Game"}
	data := ExportSPC(state, id)
	require.NoError(t, ValidateSPC(data))
	assert.Equal(t, byte(ID666Text), data[30])
}

func TestValidateSPCRejectsTooSmall(t *testing.T) {
	err := ValidateSPC(make([]byte, 100))
	assert.ErrorIs(t, err, ErrSPCTooSmall)
}

func TestValidateSPCRejectsBadSignature(t *testing.T) {
	state := &ProgramState{}
	data := ExportSPC(state, nil)
	data[28] = 0x00
	err := ValidateSPC(data)
	assert.ErrorIs(t, err, ErrSPCBadSignature)
}

func TestValidateSPCRejectsBadID666Flag(t *testing.T) {
	state := &ProgramState{}
	data := ExportSPC(state, nil)
	data[30] = 5
	err := ValidateSPC(data)
	assert.ErrorIs(t, err, ErrSPCBadID666Flag)
}
