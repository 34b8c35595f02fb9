// Package bus implements the fixed-width transaction object that mediates
// every register and memory access.
//
// A Bus is either a source of data (read-only: it carries bytes supplied by
// an endpoint) or a destination of data (writable: it accepts bytes that a
// later stage will commit to an endpoint). Driving bytes onto a source bus is
// bus contention: the bus content becomes random noise of the same width, and
// no error is raised.
package bus

import (
	"encoding/hex"
	"math/big"
	"math/rand/v2"
	"slices"
)

// Direction is the data role of a bus.
type Direction int

const (
	DIRECTION_SOURCE      = Direction(0) // source
	DIRECTION_DESTINATION = Direction(1) // destination
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DIRECTION_SOURCE:
		return "source"
	case DIRECTION_DESTINATION:
		return "destination"
	}
	return "invalid"
}

// Noise is a random source used to model bus contention.
// *rand.Rand and *rand.PCG from math/rand/v2 both satisfy it.
type Noise interface {
	Uint64() uint64
}

// Bus is a single fixed-width transaction.
type Bus struct {
	content   []byte
	direction Direction
	noise     Noise
}

// NewSource creates a read-only bus carrying a copy of data.
// Writes to it are contention, filled from noise. A nil noise draws from
// the math/rand/v2 runtime generator.
func NewSource(data []byte, noise Noise) *Bus {
	return &Bus{
		content:   slices.Clone(data),
		direction: DIRECTION_SOURCE,
		noise:     noise,
	}
}

// NewDestination creates a zeroed, writable bus of width bytes.
func NewDestination(width int) (bus *Bus, err error) {
	if width < 0 {
		err = ErrWidthInvalid
		return
	}

	bus = &Bus{
		content:   make([]byte, width),
		direction: DIRECTION_DESTINATION,
	}

	return
}

// Width returns the transaction width in bytes.
func (bus *Bus) Width() int {
	return len(bus.content)
}

// Direction returns the data role of the bus.
func (bus *Bus) Direction() Direction {
	return bus.direction
}

// Writable returns true if the bus accepts data.
func (bus *Bus) Writable() bool {
	return bus.direction == DIRECTION_DESTINATION
}

// Read returns a copy of the bus content.
func (bus *Bus) Read() []byte {
	return slices.Clone(bus.content)
}

// Value returns the bus content as an unsigned big-endian integer.
func (bus *Bus) Value() *big.Int {
	return new(big.Int).SetBytes(bus.content)
}

// Write drives data onto the bus.
//
// A destination bus requires len(data) == Width(), and only this bus is
// modified. A source bus is contended: the content is replaced by Width()
// random bytes, and the call always succeeds.
func (bus *Bus) Write(data []byte) (err error) {
	if bus.direction == DIRECTION_SOURCE {
		bus.contend()
		return
	}

	if len(data) != len(bus.content) {
		err = ErrWidth{Width: len(bus.content), Length: len(data)}
		return
	}

	copy(bus.content, data)

	return
}

// contend fills the bus with noise.
func (bus *Bus) contend() {
	next := rand.Uint64
	if bus.noise != nil {
		next = bus.noise.Uint64
	}

	var word uint64
	for n := range bus.content {
		if n%8 == 0 {
			word = next()
		}
		bus.content[n] = byte(word)
		word >>= 8
	}
}

// String returns the direction and hex content.
func (bus *Bus) String() string {
	return bus.direction.String() + "[" + hex.EncodeToString(bus.content) + "]"
}
