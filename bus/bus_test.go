package bus

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_Source(t *testing.T) {
	assert := assert.New(t)

	data := []byte{0x11, 0x22, 0x33}
	bus := NewSource(data, rand.NewPCG(1, 2))
	assert.Equal(3, bus.Width())
	assert.False(bus.Writable())
	assert.Equal(DIRECTION_SOURCE, bus.Direction())
	assert.Equal(data, bus.Read())

	// No aliasing of the caller's slice.
	data[0] = 0xff
	assert.Equal([]byte{0x11, 0x22, 0x33}, bus.Read())

	// No aliasing of the returned copy.
	out := bus.Read()
	out[1] = 0xff
	assert.Equal([]byte{0x11, 0x22, 0x33}, bus.Read())
}

func TestBus_Destination(t *testing.T) {
	assert := assert.New(t)

	bus, err := NewDestination(4)
	assert.NoError(err)
	assert.True(bus.Writable())
	assert.Equal([]byte{0, 0, 0, 0}, bus.Read())

	in := []byte{1, 2, 3, 4}
	err = bus.Write(in)
	assert.NoError(err)
	in[0] = 9
	assert.Equal([]byte{1, 2, 3, 4}, bus.Read())
	assert.Equal(int64(0x01020304), bus.Value().Int64())

	err = bus.Write([]byte{1, 2, 3})
	assert.True(errors.Is(err, ErrWidthMismatch))
	assert.Equal([]byte{1, 2, 3, 4}, bus.Read())

	err = bus.Write([]byte{1, 2, 3, 4, 5})
	assert.True(errors.Is(err, ErrWidthMismatch))

	_, err = NewDestination(-1)
	assert.Equal(ErrWidthInvalid, err)
}

func TestBus_Contention(t *testing.T) {
	assert := assert.New(t)

	for _, width := range []int{0, 1, 3, 8, 13, 127} {
		original := make([]byte, width)
		attempt := make([]byte, width)
		for n := range attempt {
			attempt[n] = byte(0xa5 ^ n)
		}

		bus := NewSource(original, rand.NewPCG(uint64(width), 7))
		for range 4 {
			err := bus.Write(attempt)
			assert.NoError(err, "width %v", width)
			assert.Equal(width, bus.Width())
			if width > 0 {
				assert.NotEqual(attempt, bus.Read(), "width %v", width)
			}
		}

		// Mismatched lengths are contention too, never an error.
		err := bus.Write([]byte{1})
		assert.NoError(err)
		assert.Equal(width, len(bus.Read()))
	}
}

func TestBus_ContentionSeeded(t *testing.T) {
	assert := assert.New(t)

	a := NewSource(make([]byte, 11), rand.NewPCG(42, 42))
	b := NewSource(make([]byte, 11), rand.NewPCG(42, 42))

	a.Write([]byte("hello"))
	b.Write(nil)

	assert.Equal(a.Read(), b.Read())
	assert.Equal(11, a.Width())
}

func TestBus_ContentionNilNoise(t *testing.T) {
	assert := assert.New(t)

	bus := NewSource([]byte{1, 2}, nil)
	assert.NoError(bus.Write([]byte{3, 4}))
	assert.Equal(2, bus.Width())
}

func TestBus_String(t *testing.T) {
	assert := assert.New(t)

	bus := NewSource([]byte{0xca, 0xfe}, nil)
	assert.Equal("source[cafe]", bus.String())

	dst, _ := NewDestination(1)
	assert.Equal("destination[00]", dst.String())
}
