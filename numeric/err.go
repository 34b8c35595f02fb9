package numeric

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrDigit    = errors.New(f("bit string digit not 0 or 1"))
	ErrEmpty    = errors.New(f("bit string empty"))
	ErrTooWide  = errors.New(f("bit string wider than 64 bits"))
	ErrOverflow = errors.New(f("value does not fit bit width"))
)
