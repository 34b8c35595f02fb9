// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package operand implements operand descriptors and their binary encoding
// in the instruction stream.
//
// The top bit of the first byte selects the addressing mode.
//
// Register-direct, 3 bytes:
//
//	1 x x M M M L L   id[0]   id[1]
//
// LL is the sector path length (0-3), and mask bit 2+i is 1 when the i-th
// path character is 'h'. Unused mask bits are reserved and written as zero.
//
// Memory-direct, 5 bytes:
//
//	0 W W W W W W W   a31..a24   a23..a16   a15..a8   a7..a0
//
// W is the operand width in bytes (0-127), followed by a 32 bit big-endian
// address.
package operand

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ezrec/regvm/register"
)

const (
	MODE_MASK     = 0b1000_0000 // Addressing mode bit.
	MODE_REGISTER = 0b1000_0000 // Register-direct mode.
	MODE_MEMORY   = 0b0000_0000 // Memory-direct mode.
	SECTOR_LEN    = 0b0000_0011 // Register-direct sector path length.
	SECTOR_SHIFT  = 2           // Register-direct sector mask position.
	WIDTH_MASK    = 0b0111_1111 // Memory-direct width.
	WIDTH_LIMIT   = 127         // Largest memory-direct width.

	REGISTER_SIZE = 3 // Encoded register-direct size.
	MEMORY_SIZE   = 5 // Encoded memory-direct size.
)

// Descriptor is a decoded instruction operand: either a Register or a
// Memory descriptor.
type Descriptor interface {
	// Encode returns the instruction stream encoding.
	Encode() ([]byte, error)
	// String returns the assembler text of the operand.
	String() string
	// Size returns the width in bytes of the range the operand names.
	Size() (int, error)
}

// Register is a register-direct operand: a sector of a register.
type Register struct {
	Id     string // Two character register id.
	Sector string // Sector path, 0 to 3 characters of 'l' or 'h'.
}

// Memory is a memory-direct operand: Width bytes starting at Address.
type Memory struct {
	Width   int
	Address uint32
}

var _ Descriptor = Register{}
var _ Descriptor = Memory{}

// validId checks that id is exactly two ASCII characters.
func validId(id string) bool {
	if len(id) != 2 {
		return false
	}

	for _, c := range []byte(id) {
		if c >= 0x80 {
			return false
		}
	}

	return true
}

// Encode returns the register-direct encoding.
func (op Register) Encode() (code []byte, err error) {
	if !validId(op.Id) {
		err = errors.Join(ErrInvalid, ErrIdInvalid)
		return
	}

	_, _, err = register.Sector(op.Sector)
	if err != nil {
		err = errors.Join(ErrInvalid, err)
		return
	}

	b1 := byte(MODE_REGISTER) | byte(len(op.Sector))
	for n, c := range []byte(op.Sector) {
		if c == register.SECTOR_HIGH {
			b1 |= 1 << (SECTOR_SHIFT + n)
		}
	}

	code = []byte{b1, op.Id[0], op.Id[1]}

	return
}

// String returns the operand as id followed by sector path.
func (op Register) String() string {
	return op.Id + op.Sector
}

// Size returns the sector width.
func (op Register) Size() (width int, err error) {
	width, err = register.SectorWidth(op.Sector)
	if err != nil {
		err = errors.Join(ErrInvalid, err)
	}
	return
}

// Encode returns the memory-direct encoding.
func (op Memory) Encode() (code []byte, err error) {
	if op.Width < 0 || op.Width > WIDTH_LIMIT {
		err = errors.Join(ErrInvalid, ErrWidthInvalid)
		return
	}

	code = make([]byte, MEMORY_SIZE)
	code[0] = byte(MODE_MEMORY) | byte(op.Width)
	binary.BigEndian.PutUint32(code[1:], op.Address)

	return
}

// String returns the operand as mWIDTH@ADDRESS.
func (op Memory) String() string {
	return fmt.Sprintf("m%d@0x%x", op.Width, op.Address)
}

// Size returns the memory range width.
func (op Memory) Size() (width int, err error) {
	if op.Width < 0 || op.Width > WIDTH_LIMIT {
		err = errors.Join(ErrInvalid, ErrWidthInvalid)
		return
	}

	width = op.Width
	return
}

// Encode returns the instruction stream encoding of a descriptor.
func Encode(op Descriptor) ([]byte, error) {
	return op.Encode()
}

// Decode reads one descriptor from an instruction stream.
// Errors from the stream are returned unchanged.
func Decode(stream io.ByteReader) (op Descriptor, err error) {
	b1, err := stream.ReadByte()
	if err != nil {
		return
	}

	if (b1 & MODE_MASK) == MODE_REGISTER {
		var id [2]byte
		for n := range id {
			id[n], err = stream.ReadByte()
			if err != nil {
				return
			}
		}

		length := int(b1 & SECTOR_LEN)
		sector := make([]byte, length)
		for n := range length {
			if (b1 & (1 << (SECTOR_SHIFT + n))) != 0 {
				sector[n] = register.SECTOR_HIGH
			} else {
				sector[n] = register.SECTOR_LOW
			}
		}

		op = Register{Id: string(id[:]), Sector: string(sector)}
		return
	}

	var address [4]byte
	for n := range address {
		address[n], err = stream.ReadByte()
		if err != nil {
			return
		}
	}

	op = Memory{Width: int(b1 & WIDTH_MASK), Address: binary.BigEndian.Uint32(address[:])}

	return
}
