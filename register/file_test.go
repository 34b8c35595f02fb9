package register

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFile_Lookup(t *testing.T) {
	assert := assert.New(t)

	rf := NewFile(GPR_DEFAULT)
	assert.Equal(GPR_DEFAULT, len(rf.General))

	reg, err := rf.Lookup("pc")
	assert.NoError(err)
	assert.Same(&rf.ProgramCounter.Register, reg)

	reg, err = rf.Lookup("fl")
	assert.NoError(err)
	assert.Same(&rf.Flags.Register, reg)

	reg, err = rf.Lookup("00")
	assert.NoError(err)
	assert.Same(&rf.General[0], reg)

	reg, err = rf.Lookup("0f")
	assert.NoError(err)
	assert.Same(&rf.General[15], reg)

	for _, id := range []string{"10", "0F", "ab", "", "0", "000", "zz", "PC"} {
		_, err = rf.Lookup(id)
		assert.True(errors.Is(err, ErrIdUnknown), id)
	}
}

func TestFile_Ids(t *testing.T) {
	assert := assert.New(t)

	rf := NewFile(3)
	var ids []string
	for id := range rf.Ids() {
		ids = append(ids, id)
	}
	assert.Equal([]string{"pc", "fl", "00", "01", "02"}, ids)

	assert.Equal(0, len(NewFile(-4).General))
	assert.Equal(GPR_LIMIT, len(NewFile(1000).General))
	assert.Equal("ff", GeneralId(255))
}

func TestFile_Reset(t *testing.T) {
	assert := assert.New(t)

	rf := NewFile(2)
	rf.ProgramCounter.Jump(99)
	rf.Flags.SetOverflow(1)
	rf.General[1].SetUint64(7)

	rf.Reset()
	for id, reg := range rf.Ids() {
		assert.Equal(uint64(0), reg.Uint64(), id)
	}
}

func TestFile_String(t *testing.T) {
	assert := assert.New(t)

	rf := NewFile(1)
	rf.General[0].SetUint64(0x10)
	assert.Equal("  pc: 00000000_00000000\n  fl: 00000000_00000000\n  00: 00000000_00000010\n", rf.String())

	defines := map[string]string{}
	for k, v := range rf.Defines() {
		defines[k] = v
	}
	assert.Equal("1", defines["GPR_COUNT"])
}
