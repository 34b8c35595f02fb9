package bus

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// ErrWidthMismatch is returned when a write length differs from the
	// declared transaction width.
	ErrWidthMismatch = errors.New(f("bus width mismatch"))
	// ErrWidthInvalid is returned for negative bus widths.
	ErrWidthInvalid = errors.New(f("bus width invalid"))
)

// ErrWidth describes a width mismatch on a single transaction.
type ErrWidth struct {
	Width  int
	Length int
}

func (err ErrWidth) Error() string {
	return f("bus width %v, wrote %v bytes", err.Width, err.Length)
}

func (err ErrWidth) Unwrap() error {
	return ErrWidthMismatch
}
