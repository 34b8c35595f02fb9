package memory

import (
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/regvm/bus"
)

func TestMemory_Zeros(t *testing.T) {
	assert := assert.New(t)

	mem := Zeros(64)
	assert.Equal(64, mem.Size())

	table := []struct {
		address uint64
		width   int
	}{
		{0, 0}, {0, 1}, {0, 64}, {7, 9}, {63, 1}, {64, 0},
	}

	for _, entry := range table {
		data, err := mem.Read(entry.address, entry.width)
		assert.NoError(err)
		assert.Equal(make([]byte, entry.width), data)

		pattern := make([]byte, entry.width)
		for n := range pattern {
			pattern[n] = byte(n + 1)
		}
		err = mem.Write(entry.address, pattern)
		assert.NoError(err)

		data, err = mem.Read(entry.address, entry.width)
		assert.NoError(err)
		assert.Equal(pattern, data)

		assert.NoError(mem.Write(entry.address, make([]byte, entry.width)))
	}
}

func TestMemory_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	mem := Zeros(16)

	_, err := mem.Read(16, 1)
	assert.True(errors.Is(err, ErrOutOfBounds))
	_, err = mem.Read(12, 5)
	assert.True(errors.Is(err, ErrOutOfBounds))
	_, err = mem.Read(^uint64(0), 2)
	assert.True(errors.Is(err, ErrOutOfBounds))
	_, err = mem.Read(0, -1)
	assert.True(errors.Is(err, ErrOutOfBounds))

	err = mem.Write(15, []byte{1, 2})
	assert.True(errors.Is(err, ErrOutOfBounds))

	// A rejected write leaves memory untouched.
	data, err := mem.Read(15, 1)
	assert.NoError(err)
	assert.Equal([]byte{0}, data)
}

func TestMemory_FromImage(t *testing.T) {
	assert := assert.New(t)

	mem, err := FromImage([]byte{1, 2, 3}, 8)
	assert.NoError(err)
	assert.Equal(8, mem.Size())
	data, _ := mem.Read(0, 8)
	assert.Equal([]byte{1, 2, 3, 0, 0, 0, 0, 0}, data)

	mem, err = FromImage([]byte{1, 2, 3}, 0)
	assert.NoError(err)
	assert.Equal(3, mem.Size())

	_, err = FromImage([]byte{1, 2, 3}, 2)
	assert.Equal(ErrImageSize, err)
}

func TestMemory_Random(t *testing.T) {
	assert := assert.New(t)

	a := Random(32, rand.NewPCG(3, 4))
	b := Random(32, rand.NewPCG(3, 4))
	assert.Equal(32, a.Size())

	da, _ := a.Read(0, 32)
	db, _ := b.Read(0, 32)
	assert.Equal(da, db)
	assert.NotEqual(make([]byte, 32), da)

	// Each draw fills eight bytes, low byte first.
	pcg := rand.NewPCG(3, 4)
	expected := binary.LittleEndian.AppendUint64(nil, pcg.Uint64())
	expected = binary.LittleEndian.AppendUint64(expected, pcg.Uint64())
	assert.Equal(expected[:12], da[:12])

	c := Random(32, nil)
	assert.Equal(32, c.Size())
	assert.Nil(c.Noise)
}

func TestMemory_NegativeSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, Zeros(-1).Size())
	assert.Equal(0, Random(-5, rand.NewPCG(1, 2)).Size())

	_, err := FromImage(nil, -1)
	assert.Equal(ErrImageSize, err)

	_, err = Zeros(-1).Read(0, 1)
	assert.ErrorIs(err, ErrOutOfBounds)
}

func TestMemory_PresentRead(t *testing.T) {
	assert := assert.New(t)

	mem, _ := FromImage([]byte{0, 0, 0xaa, 0xbb, 0xcc}, 16)

	addr := bus.NewSource([]byte{0, 0, 0, 2}, nil)
	data, _ := bus.NewDestination(3)

	out, err := mem.Present(addr, data)
	assert.NoError(err)
	assert.False(out.Writable())
	assert.Equal([]byte{0xaa, 0xbb, 0xcc}, out.Read())

	// The request bus itself is not loaded.
	assert.Equal([]byte{0, 0, 0}, data.Read())

	// Eight byte (program counter sized) addresses work too.
	addr = bus.NewSource([]byte{0, 0, 0, 0, 0, 0, 0, 4}, nil)
	data, _ = bus.NewDestination(1)
	out, err = mem.Present(addr, data)
	assert.NoError(err)
	assert.Equal([]byte{0xcc}, out.Read())
}

func TestMemory_PresentWrite(t *testing.T) {
	assert := assert.New(t)

	mem := Zeros(8)

	addr := bus.NewSource([]byte{5}, nil)
	data := bus.NewSource([]byte{7, 8}, nil)

	// The written range is bounded by the data bus width, not by the size
	// of the address value.
	out, err := mem.Present(addr, data)
	assert.NoError(err)
	assert.Nil(out)

	got, _ := mem.Read(0, 8)
	assert.Equal([]byte{0, 0, 0, 0, 0, 7, 8, 0}, got)

	data = bus.NewSource([]byte{1, 2, 3, 4}, nil)
	_, err = mem.Present(addr, data)
	assert.True(errors.Is(err, ErrOutOfBounds))
}

func TestMemory_PresentHugeAddress(t *testing.T) {
	assert := assert.New(t)

	mem := Zeros(8)
	addr := bus.NewSource([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0}, nil)
	data, _ := bus.NewDestination(1)

	_, err := mem.Present(addr, data)
	assert.True(errors.Is(err, ErrOutOfBounds))
}

func TestMemory_Defines(t *testing.T) {
	assert := assert.New(t)

	mem := Zeros(1024)
	defines := map[string]string{}
	for k, v := range mem.Defines() {
		defines[k] = v
	}
	assert.Equal("1024", defines["MEMORY_SIZE"])
}
