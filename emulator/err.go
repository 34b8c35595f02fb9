package emulator

import (
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int    // Source line of the failed instruction, or 0.
	Code   string // Disassembly of the failed instruction, if available.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if len(err.Code) == 0 {
		return f("line %d %v", err.LineNo, err.Err)
	}
	return f("line %d '%v' %v", err.LineNo, err.Code, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
