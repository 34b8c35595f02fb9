package cpu

import (
	"errors"

	"github.com/ezrec/regvm/alu"
	"github.com/ezrec/regvm/bus"
	"github.com/ezrec/regvm/memory"
	"github.com/ezrec/regvm/operand"
	"github.com/ezrec/regvm/register"
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Execution error kinds
	ErrOutOfBounds         = errors.New(f("out of bounds"))
	ErrInvalidOperand      = errors.New(f("invalid operand"))
	ErrBusWidthMismatch    = errors.New(f("bus width mismatch"))
	ErrUnimplementedOpcode = errors.New(f("unimplemented opcode"))

	// Control unit errors
	ErrHalted    = errors.New(f("halted"))
	ErrFaulted   = errors.New(f("faulted"))
	ErrCancelled = errors.New(f("cancelled"))
	ErrFetch     = errors.New(f("fetch"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrStringZero         = errors.New(f("string contains a zero byte"))
	ErrStringUnterminated = errors.New(f("string unterminated"))
	ErrExprUnterminated   = errors.New(f("$( without )"))
)

// ErrOpcode is an opcode missing from the instruction table.
type ErrOpcode Opcode

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", byte(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrExecute locates a failed instruction.
type ErrExecute struct {
	Pc      uint64 // Address of the opcode byte.
	Opcode  Opcode // Opcode, if it was fetched.
	Fetched bool   // Set if the opcode byte was fetched.
	Err     error
}

func (err *ErrExecute) Error() string {
	if !err.Fetched {
		return f("pc 0x%x: %v", err.Pc, err.Err)
	}
	return f("pc 0x%x opcode 0x%02x (%v): %v", err.Pc, byte(err.Opcode), err.Opcode.String(), err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}

// kindOf returns the execution error kind of an error, or nil.
func kindOf(err error) error {
	switch {
	case errors.Is(err, memory.ErrOutOfBounds),
		errors.Is(err, register.ErrCounterOverflow):
		return ErrOutOfBounds
	case errors.Is(err, bus.ErrWidthMismatch),
		errors.Is(err, register.ErrWidthMismatch):
		return ErrBusWidthMismatch
	case errors.Is(err, operand.ErrInvalid),
		errors.Is(err, register.ErrSectorInvalid),
		errors.Is(err, register.ErrIdUnknown),
		errors.Is(err, alu.ErrInvalid),
		errors.Is(err, ErrOpcode(0)):
		return ErrInvalidOperand
	}

	return nil
}

// ErrLabelMissing is a reference to an undefined label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an assembler error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseNumber is a word that is not a number.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression is an invalid $(...) expression.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrMacro locates an error inside a macro expansion.
type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
