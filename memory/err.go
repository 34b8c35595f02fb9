package memory

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrOutOfBounds = errors.New(f("memory out of bounds"))
	ErrImageSize   = errors.New(f("memory image larger than capacity"))
)

// ErrAccess locates an out of bounds access.
type ErrAccess struct {
	Address  uint64
	Width    int
	Capacity int
}

func (err ErrAccess) Error() string {
	return f("access 0x%x+%v exceeds capacity 0x%x", err.Address, err.Width, err.Capacity)
}

func (err ErrAccess) Unwrap() error {
	return ErrOutOfBounds
}
