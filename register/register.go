package register

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
)

const (
	SIZE         = 8 // Register size in bytes.
	SECTOR_DEPTH = 3 // Maximum sector path length.
	SECTOR_LOW   = 'l'
	SECTOR_HIGH  = 'h'
	SECTOR_ALL   = ""
	SECTOR_OFLOW = "lll" // Overflow flag sector of the flag register.
)

// Sector resolves a sector path to the inclusive byte range [lo, hi] of a
// register.
//
// Starting from [0, 7], each character bisects the range: 'l' keeps the
// lower half, 'h' keeps the upper half.
func Sector(path string) (lo, hi int, err error) {
	if len(path) > SECTOR_DEPTH {
		err = ErrSector(path)
		return
	}

	lo, hi = 0, SIZE-1
	for _, c := range []byte(path) {
		mid := (lo + hi) / 2
		switch c {
		case SECTOR_HIGH:
			lo = mid + 1
		case SECTOR_LOW:
			hi = mid
		default:
			err = ErrSector(path)
			return
		}
	}

	return
}

// SectorWidth returns the byte width selected by a sector path.
func SectorWidth(path string) (width int, err error) {
	lo, hi, err := Sector(path)
	if err != nil {
		return
	}

	width = hi - lo + 1

	return
}

// Sectors returns all valid sector paths of a given depth, in byte order.
func Sectors(depth int) (paths []string) {
	paths = []string{""}
	for range depth {
		var next []string
		for _, path := range paths {
			next = append(next, path+"l", path+"h")
		}
		paths = next
	}

	return
}

// Register is an 8 byte, big-endian register.
type Register struct {
	Data [SIZE]byte
}

// view returns the sector bytes, aliasing the register storage.
func (reg *Register) view(path string) (data []byte, err error) {
	lo, hi, err := Sector(path)
	if err != nil {
		return
	}

	data = reg.Data[lo : hi+1]

	return
}

// Read returns a copy of the sector bytes.
func (reg *Register) Read(path string) (data []byte, err error) {
	data, err = reg.view(path)
	if err != nil {
		return
	}

	data = slices.Clone(data)

	return
}

// Write replaces the sector bytes. The length of data must equal the sector
// width.
func (reg *Register) Write(path string, data []byte) (err error) {
	view, err := reg.view(path)
	if err != nil {
		return
	}

	if len(data) != len(view) {
		err = ErrWidthMismatch
		return
	}

	copy(view, data)

	return
}

// Uint64 returns the register as an unsigned big-endian integer.
func (reg *Register) Uint64() uint64 {
	return binary.BigEndian.Uint64(reg.Data[:])
}

// SetUint64 sets the register from an unsigned integer.
func (reg *Register) SetUint64(value uint64) {
	binary.BigEndian.PutUint64(reg.Data[:], value)
}

// Reset clears the register.
func (reg *Register) Reset() {
	clear(reg.Data[:])
}

// String returns the register in hex, grouped by half.
func (reg *Register) String() string {
	return hex.EncodeToString(reg.Data[:4]) + "_" + hex.EncodeToString(reg.Data[4:])
}

// ProgramCounter is the instruction address register.
type ProgramCounter struct {
	Register
}

// Increment adds one to the counter. Overflow past 64 bits is an error,
// and leaves the counter unchanged.
func (pc *ProgramCounter) Increment() (err error) {
	value := pc.Uint64()
	if value == ^uint64(0) {
		err = ErrCounterOverflow
		return
	}

	pc.SetUint64(value + 1)

	return
}

// Jump sets the counter to address.
func (pc *ProgramCounter) Jump(address uint64) {
	pc.SetUint64(address)
}

// FlagRegister holds the ALU flags. Byte 0 (sector "lll") is the
// carry/overflow flag; the rest are reserved.
type FlagRegister struct {
	Register
}

// Overflow returns the overflow flag byte.
func (fl *FlagRegister) Overflow() byte {
	return fl.Data[0]
}

// SetOverflow sets the overflow flag byte.
func (fl *FlagRegister) SetOverflow(value byte) {
	fl.Data[0] = value
}
