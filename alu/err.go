package alu

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrInvalid       = errors.New(f("alu operand invalid"))
	ErrOpcodeUnknown = errors.New(f("alu opcode unknown"))
	ErrOperandCount  = errors.New(f("alu operand count"))
	ErrInputWidth    = errors.New(f("alu input widths differ"))
	ErrOutputWidth   = errors.New(f("alu output width"))
)
