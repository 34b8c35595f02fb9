package operand

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrInvalid       = errors.New(f("operand invalid"))
	ErrIdInvalid     = errors.New(f("register id must be two ASCII characters"))
	ErrWidthInvalid  = errors.New(f("memory width out of range"))
	ErrSyntaxInvalid = errors.New(f("operand syntax"))
)

// ErrParse names the operand text that failed to parse.
type ErrParse struct {
	Text string
	Err  error
}

func (err ErrParse) Error() string {
	return f("operand '%v' %v", err.Text, err.Err)
}

func (err ErrParse) Unwrap() error {
	return err.Err
}
