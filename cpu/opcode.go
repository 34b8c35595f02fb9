package cpu

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/regvm/alu"
)

// Opcode is a 1 byte instruction code.
type Opcode byte

const (
	OP_HALT = Opcode(0x00)            // halt
	OP_OUTU = Opcode(0x01)            // outu
	OP_OUTC = Opcode(0x02)            // outc
	OP_COUT = Opcode(0x03)            // cout
	OP_MOUT = Opcode(0x04)            // mout
	OP_STA  = Opcode(0x05)            // sta
	OP_UADD = Opcode(alu.ALU_OP_UADD) // uadd
)

// Format is the shape of the bytes following an opcode.
type Format int

const (
	FORMAT_NONE    = Format(0) // No operand bytes.
	FORMAT_BYTE    = Format(1) // One immediate byte.
	FORMAT_STRING  = Format(2) // Bytes up to and including a zero byte.
	FORMAT_OPERAND = Format(3) // Operand descriptors.
)

// Instruction is an entry in the instruction table.
type Instruction struct {
	Name     string // Assembler mnemonic.
	Format   Format // Operand byte format.
	Operands int    // Operand descriptor count, for FORMAT_OPERAND.

	execute func(cu *ControlUnit, code Opcode) error
}

var instructions map[Opcode]Instruction
var mnemonics map[string]Opcode

func init() {
	instructions = map[Opcode]Instruction{
		OP_HALT: {Name: "halt", Format: FORMAT_NONE, execute: (*ControlUnit).doHalt},
		OP_OUTU: {Name: "outu", Format: FORMAT_BYTE, execute: (*ControlUnit).doOutu},
		OP_OUTC: {Name: "outc", Format: FORMAT_BYTE, execute: (*ControlUnit).doOutc},
		OP_COUT: {Name: "cout", Format: FORMAT_STRING, execute: (*ControlUnit).doCout},
		OP_MOUT: {Name: "mout", Format: FORMAT_OPERAND, Operands: 1, execute: (*ControlUnit).doMout},
		OP_STA:  {Name: "sta", Format: FORMAT_OPERAND, Operands: 1, execute: (*ControlUnit).doSta},
	}

	// ALU operations share the opcode space, and are all dispatched the
	// same way: decode the operands, resolve them to buses, run the ALU,
	// commit the output.
	for code, op := range alu.Operations() {
		instructions[Opcode(code)] = Instruction{
			Name:     op.Name,
			Format:   FORMAT_OPERAND,
			Operands: op.Operands(),
			execute:  (*ControlUnit).doAlu,
		}
	}

	mnemonics = make(map[string]Opcode, len(instructions))
	for code, inst := range instructions {
		mnemonics[inst.Name] = code
	}
}

// Instructions iterates over the instruction table.
func Instructions() iter.Seq2[Opcode, Instruction] {
	return maps.All(instructions)
}

// LookupOpcode returns the table entry for an opcode.
func LookupOpcode(code Opcode) (inst Instruction, ok bool) {
	inst, ok = instructions[code]
	return
}

// LookupMnemonic returns the opcode for an assembler mnemonic.
func LookupMnemonic(name string) (code Opcode, ok bool) {
	code, ok = mnemonics[name]
	return
}

// String returns the mnemonic of the opcode.
func (code Opcode) String() string {
	inst, ok := instructions[code]
	if !ok {
		return fmt.Sprintf("op(0x%02x)", byte(code))
	}
	return inst.Name
}
