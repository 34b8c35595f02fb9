// Package numeric converts between bit strings and numbers.
//
// Bit strings are written most significant bit first, using the characters
// '0' and '1'. The converters are pure functions; the machine's opcodes do
// not use them yet.
package numeric

import (
	"math"
	"math/bits"
	"strings"
)

const (
	BITS_LIMIT = 64 // Widest bit string.
)

// parse returns the raw bits of a bit string.
func parse(text string) (value uint64, err error) {
	if len(text) == 0 {
		err = ErrEmpty
		return
	}

	if len(text) > BITS_LIMIT {
		err = ErrTooWide
		return
	}

	for _, c := range []byte(text) {
		value <<= 1
		switch c {
		case '0':
		case '1':
			value |= 1
		default:
			err = ErrDigit
			return
		}
	}

	return
}

// format returns the low size bits of value as a bit string.
func format(value uint64, size int) string {
	var text strings.Builder
	for n := size - 1; n >= 0; n-- {
		if ((value >> n) & 1) != 0 {
			text.WriteByte('1')
		} else {
			text.WriteByte('0')
		}
	}

	return text.String()
}

// UnsignedFromBits converts an unsigned bit string.
func UnsignedFromBits(text string) (value uint64, err error) {
	return parse(text)
}

// UnsignedToBits converts value to a bit string of size bits.
// A size of zero uses the fewest bits that hold the value, and at least one.
func UnsignedToBits(value uint64, size int) (text string, err error) {
	need := max(bits.Len64(value), 1)
	if size == 0 {
		size = need
	}

	if size > BITS_LIMIT {
		err = ErrTooWide
		return
	}

	if size < need {
		err = ErrOverflow
		return
	}

	text = format(value, size)

	return
}

// SignedFromBits converts a two's complement bit string. The first bit is
// the sign.
func SignedFromBits(text string) (value int64, err error) {
	raw, err := parse(text)
	if err != nil {
		return
	}

	// Sign extend from the top bit of the string.
	shift := BITS_LIMIT - len(text)
	value = int64(raw<<shift) >> shift

	return
}

// signedWidth returns the fewest two's complement bits that hold value.
func signedWidth(value int64) int {
	if value < 0 {
		return bits.Len64(uint64(^value)) + 1
	}

	return bits.Len64(uint64(value)) + 1
}

// SignedToBits converts value to a two's complement bit string of size
// bits. A size of zero uses the fewest bits that hold the value.
func SignedToBits(value int64, size int) (text string, err error) {
	need := signedWidth(value)
	if size == 0 {
		size = need
	}

	if size > BITS_LIMIT {
		err = ErrTooWide
		return
	}

	if size < need {
		err = ErrOverflow
		return
	}

	text = format(uint64(value), size)

	return
}

// FloatFromBits converts a signed mantissa and signed exponent pair.
// The value is mantissa / 2**len(mantissa) * 2**exponent.
func FloatFromBits(mantissa, exponent string) (value float64, err error) {
	m, err := SignedFromBits(mantissa)
	if err != nil {
		return
	}

	e, err := SignedFromBits(exponent)
	if err != nil {
		return
	}

	value = math.Ldexp(float64(m), int(e)-len(mantissa))

	return
}

// FloatToBits converts value to a mantissa of mantissa_size bits and an
// exponent of exponent_size bits, rounding the mantissa to nearest.
func FloatToBits(value float64, mantissa_size, exponent_size int) (mantissa, exponent string, err error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		err = ErrOverflow
		return
	}

	if mantissa_size < 1 || mantissa_size > BITS_LIMIT || exponent_size < 1 {
		err = ErrTooWide
		return
	}

	var m int64
	var e int64
	if value != 0 {
		frac, exp := math.Frexp(value)
		// |frac| is in [0.5, 1); keep the mantissa inside the signed range.
		scaled := math.Round(math.Ldexp(frac, mantissa_size-1))
		e = int64(exp) + 1
		limit := math.Ldexp(1, mantissa_size-1)
		if scaled >= limit {
			scaled /= 2
			e++
		}
		m = int64(scaled)
	}

	mantissa, err = SignedToBits(m, mantissa_size)
	if err != nil {
		return
	}

	exponent, err = SignedToBits(e, exponent_size)

	return
}
