package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		image []byte
		text  string
	}){
		{[]byte{byte(OP_HALT)}, "halt"},
		{[]byte{byte(OP_OUTU), 65}, "outu 65"},
		{[]byte{byte(OP_OUTC), 10, 0xff}, "outc 10"},
		{[]byte{byte(OP_COUT), 'h', 'i', 0, 'x'}, "cout \"hi\""},
		{[]byte{byte(OP_COUT), '"', '\n', 0}, "cout \"\\\"\\n\""},
		{[]byte{byte(OP_MOUT), 0x04, 0x00, 0x00, 0x01, 0x00}, "mout m4@0x100"},
		{[]byte{byte(OP_STA), 0b1001_1111, 'f', 'l'}, "sta flhhh"},
		{[]byte{byte(OP_UADD), 0x81, '0', '1', 0x85, '0', '1', 0x81, '0', '2'}, "uadd 01l 01h 02l"},
	}

	for _, entry := range table {
		text, size, err := Disassemble(entry.image, 0)
		assert.NoError(err, entry.text)
		assert.Equal(entry.text, text)
		if entry.image[0] == byte(OP_COUT) {
			assert.Equal(strings.IndexByte(string(entry.image), 0)+1, size, entry.text)
		} else if entry.image[0] == byte(OP_OUTC) {
			assert.Equal(2, size, entry.text)
		} else {
			assert.Equal(len(entry.image), size, entry.text)
		}
	}
}

func TestDisassemble_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		image   []byte
		address int
		size    int
		err     error
	}){
		{"past end", []byte{byte(OP_HALT)}, 1, 0, ErrOutOfBounds},
		{"negative", []byte{byte(OP_HALT)}, -1, 0, ErrOutOfBounds},
		{"opcode", []byte{0xff}, 0, 1, ErrInvalidOperand},
		{"outu", []byte{byte(OP_OUTU)}, 0, 1, ErrOutOfBounds},
		{"cout", []byte{byte(OP_COUT), 'a'}, 0, 2, ErrOutOfBounds},
		{"operand", []byte{byte(OP_MOUT), 0x80, 'p'}, 0, 3, ErrOutOfBounds},
	}

	for _, entry := range table {
		_, size, err := Disassemble(entry.image, entry.address)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Equal(entry.size, size, entry.name)
	}
}

func TestDisassemble_Program(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"outu 65",
		"outc 10",
		"cout \"hello, world\"",
		"mout m4@0x100",
		"mout pc",
		"sta 0fhl",
		"uadd 01l 01h 02l",
		"halt",
	}

	prog := doParse(t, program)
	image := prog.Binary()

	for _, st := range prog.Statements {
		text, size, err := Disassemble(image, st.Address)
		assert.NoError(err)
		assert.Equal(strings.Join(st.Words, " "), text)
		assert.Equal(len(st.Bytes), size)
	}
}
