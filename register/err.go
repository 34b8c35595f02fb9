package register

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrSectorInvalid   = errors.New(f("sector path invalid"))
	ErrWidthMismatch   = errors.New(f("sector width mismatch"))
	ErrCounterOverflow = errors.New(f("program counter overflow"))
	ErrIdUnknown       = errors.New(f("register id unknown"))
)

// ErrSector names the invalid sector path.
type ErrSector string

func (err ErrSector) Error() string {
	return f("sector '%v' invalid", string(err))
}

func (err ErrSector) Unwrap() error {
	return ErrSectorInvalid
}

// ErrId names the unknown register id.
type ErrId string

func (err ErrId) Error() string {
	return f("register '%v' unknown", string(err))
}

func (err ErrId) Unwrap() error {
	return ErrIdUnknown
}
