package register

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSector(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		path string
		lo   int
		hi   int
	}{
		{"", 0, 7},
		{"l", 0, 3},
		{"h", 4, 7},
		{"ll", 0, 1},
		{"lh", 2, 3},
		{"hl", 4, 5},
		{"hh", 6, 7},
		{"lll", 0, 0},
		{"llh", 1, 1},
		{"lhl", 2, 2},
		{"lhh", 3, 3},
		{"hll", 4, 4},
		{"hlh", 5, 5},
		{"hhl", 6, 6},
		{"hhh", 7, 7},
	}

	for _, entry := range table {
		lo, hi, err := Sector(entry.path)
		assert.NoError(err, entry.path)
		assert.Equal(entry.lo, lo, entry.path)
		assert.Equal(entry.hi, hi, entry.path)
	}
}

func TestSector_Invalid(t *testing.T) {
	assert := assert.New(t)

	for _, path := range []string{"llll", "hhhh", "x", "lx", "L", "H", "lh ", "0"} {
		_, _, err := Sector(path)
		assert.True(errors.Is(err, ErrSectorInvalid), path)
	}
}

func TestSectorWidth(t *testing.T) {
	assert := assert.New(t)

	for depth, width := range []int{8, 4, 2, 1} {
		for _, path := range Sectors(depth) {
			got, err := SectorWidth(path)
			assert.NoError(err)
			assert.Equal(width, got, path)
		}
	}

	_, err := SectorWidth("q")
	assert.Error(err)
}

func TestProgramCounter_Sectors(t *testing.T) {
	assert := assert.New(t)

	pc := &ProgramCounter{}
	pc.Jump(0x1122334455667788)

	table := map[string][]byte{
		"":    {0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
		"h":   {0x55, 0x66, 0x77, 0x88},
		"l":   {0x11, 0x22, 0x33, 0x44},
		"ll":  {0x11, 0x22},
		"lh":  {0x33, 0x44},
		"hl":  {0x55, 0x66},
		"hh":  {0x77, 0x88},
		"lll": {0x11},
		"hhh": {0x88},
	}

	for path, expected := range table {
		data, err := pc.Read(path)
		assert.NoError(err, path)
		assert.Equal(expected, data, path)
	}

	// The single byte sectors map one-to-one onto the bytes, in order.
	for n, path := range Sectors(3) {
		data, err := pc.Read(path)
		assert.NoError(err)
		assert.Equal([]byte{pc.Data[n]}, data, path)
	}

	assert.NoError(pc.Write("hhh", []byte{0x99}))
	data, _ := pc.Read("hhh")
	assert.Equal([]byte{0x99}, data)

	assert.NoError(pc.Write("l", []byte{0x22, 0x22, 0x22, 0x22}))
	data, _ = pc.Read("l")
	assert.Equal([]byte{0x22, 0x22, 0x22, 0x22}, data)
	assert.Equal(uint64(0x2222222255667799), pc.Uint64())
}

func TestRegister_WriteRead(t *testing.T) {
	assert := assert.New(t)

	for depth := range SECTOR_DEPTH + 1 {
		for _, path := range Sectors(depth) {
			reg := &Register{}
			for n := range reg.Data {
				reg.Data[n] = byte(0xf0 | n)
			}
			before := reg.Data

			lo, hi, _ := Sector(path)
			data := make([]byte, hi-lo+1)
			for n := range data {
				data[n] = byte(n + 1)
			}

			assert.NoError(reg.Write(path, data), path)
			got, err := reg.Read(path)
			assert.NoError(err)
			assert.Equal(data, got, path)

			for n := range reg.Data {
				if n < lo || n > hi {
					assert.Equal(before[n], reg.Data[n], "%v byte %v", path, n)
				}
			}
		}
	}
}

func TestRegister_ReadIsCopy(t *testing.T) {
	assert := assert.New(t)

	reg := &Register{}
	data, _ := reg.Read("l")
	data[0] = 0xff
	assert.Equal(byte(0), reg.Data[0])
}

func TestRegister_WidthMismatch(t *testing.T) {
	assert := assert.New(t)

	reg := &Register{}
	err := reg.Write("l", []byte{1, 2, 3})
	assert.Equal(ErrWidthMismatch, err)
	err = reg.Write("", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Equal(ErrWidthMismatch, err)
	err = reg.Write("hhhh", []byte{1})
	assert.True(errors.Is(err, ErrSectorInvalid))
	assert.Equal([SIZE]byte{}, reg.Data)
}

func TestProgramCounter_Increment(t *testing.T) {
	assert := assert.New(t)

	pc := &ProgramCounter{}
	assert.NoError(pc.Increment())
	assert.Equal(uint64(1), pc.Uint64())

	pc.Jump(0xff)
	assert.NoError(pc.Increment())
	assert.Equal([]byte{0, 0, 0, 0, 0, 0, 1, 0}, pc.Data[:])

	pc.Jump(^uint64(0))
	err := pc.Increment()
	assert.Equal(ErrCounterOverflow, err)
	assert.Equal(^uint64(0), pc.Uint64())
}

func TestFlagRegister(t *testing.T) {
	assert := assert.New(t)

	fl := &FlagRegister{}
	assert.Equal(byte(0), fl.Overflow())

	fl.SetOverflow(1)
	assert.Equal(byte(1), fl.Overflow())
	data, _ := fl.Read(SECTOR_OFLOW)
	assert.Equal([]byte{1}, data)
	assert.Equal(uint64(0x0100000000000000), fl.Uint64())

	// Only the overflow byte changes.
	fl.SetUint64(0xffffffffffffffff)
	fl.SetOverflow(0)
	assert.Equal(uint64(0x00ffffffffffffff), fl.Uint64())
}

func TestRegister_String(t *testing.T) {
	assert := assert.New(t)

	reg := &Register{}
	reg.SetUint64(0x0123456789abcdef)
	assert.Equal("01234567_89abcdef", reg.String())
}
