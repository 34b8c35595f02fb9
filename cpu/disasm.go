package cpu

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/ezrec/regvm/operand"
)

// Disassemble decodes the instruction at address of image, returning its
// assembler text and encoded size.
func Disassemble(image []byte, address int) (text string, size int, err error) {
	if address < 0 || address >= len(image) {
		err = ErrOutOfBounds
		return
	}

	stream := bytes.NewReader(image[address:])
	defer func() {
		size = len(image) - address - stream.Len()
		if err != nil {
			if kind := kindOf(err); kind != nil {
				err = errors.Join(kind, err)
			} else {
				err = errors.Join(ErrOutOfBounds, err)
			}
		}
	}()

	value, _ := stream.ReadByte()
	code := Opcode(value)
	inst, ok := instructions[code]
	if !ok {
		err = ErrOpcode(code)
		return
	}

	words := []string{inst.Name}

	switch inst.Format {
	case FORMAT_BYTE:
		value, err = stream.ReadByte()
		if err != nil {
			return
		}
		words = append(words, strconv.Itoa(int(value)))
	case FORMAT_STRING:
		var str []byte
		for {
			value, err = stream.ReadByte()
			if err != nil {
				return
			}
			if value == 0 {
				break
			}
			str = append(str, value)
		}
		words = append(words, strconv.Quote(string(str)))
	case FORMAT_OPERAND:
		for range inst.Operands {
			var op operand.Descriptor
			op, err = operand.Decode(stream)
			if err != nil {
				return
			}
			words = append(words, op.String())
		}
	}

	text = strings.Join(words, " ")

	return
}
