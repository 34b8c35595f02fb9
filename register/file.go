// Package register implements the register file of the machine.
//
// Every register is 8 bytes, big-endian (byte 0 is most significant). Any
// power-of-two aligned sub-range of a register is named by a sector path of
// up to three characters from {l, h}: "" is the whole register, "l" and "h"
// the 4 byte halves, "ll".."hh" the 2 byte quarters, and "lll".."hhh" the
// single bytes.
//
// The register file maps 2 character ids to registers: "pc" is the program
// counter, "fl" the flag register, and "00", "01", ... the general purpose
// registers, in lowercase hex.
package register

import (
	"fmt"
	"iter"
	"maps"
	"strconv"
	"strings"
)

const (
	ID_PC       = "pc" // Program counter id.
	ID_FLAGS    = "fl" // Flag register id.
	GPR_DEFAULT = 16   // Default general purpose register count.
	GPR_LIMIT   = 256  // Ids are two hex digits.
)

// File is the register file.
type File struct {
	ProgramCounter ProgramCounter
	Flags          FlagRegister
	General        []Register
}

// NewFile creates a register file with gpr general purpose registers.
// The count is clamped to [0, GPR_LIMIT].
func NewFile(gpr int) *File {
	gpr = min(max(gpr, 0), GPR_LIMIT)

	return &File{
		General: make([]Register, gpr),
	}
}

// GeneralId returns the id of general purpose register n.
func GeneralId(n int) string {
	return fmt.Sprintf("%02x", n)
}

// Lookup returns the register for an id.
func (rf *File) Lookup(id string) (reg *Register, err error) {
	switch id {
	case ID_PC:
		reg = &rf.ProgramCounter.Register
		return
	case ID_FLAGS:
		reg = &rf.Flags.Register
		return
	}

	n, perr := strconv.ParseUint(id, 16, 8)
	if perr != nil || int(n) >= len(rf.General) || GeneralId(int(n)) != id {
		err = ErrId(id)
		return
	}

	reg = &rf.General[n]

	return
}

// Ids iterates over every register, special registers first.
func (rf *File) Ids() iter.Seq2[string, *Register] {
	return func(yield func(id string, reg *Register) bool) {
		if !yield(ID_PC, &rf.ProgramCounter.Register) {
			return
		}
		if !yield(ID_FLAGS, &rf.Flags.Register) {
			return
		}
		for n := range rf.General {
			if !yield(GeneralId(n), &rf.General[n]) {
				return
			}
		}
	}
}

// Defines returns the assembler defines for the register file.
func (rf *File) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"GPR_COUNT": strconv.Itoa(len(rf.General)),
	})
}

// Reset clears every register.
func (rf *File) Reset() {
	for _, reg := range rf.Ids() {
		reg.Reset()
	}
}

// String returns a dump of the register file.
func (rf *File) String() string {
	var text strings.Builder
	for id, reg := range rf.Ids() {
		fmt.Fprintf(&text, "% 4s: %v\n", id, reg.String())
	}

	return text.String()
}
