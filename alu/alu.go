// Package alu implements the arithmetic unit.
//
// The ALU is a stateless dispatcher keyed by a 1 byte opcode. Each operation
// consumes a fixed number of input buses followed by one output bus, and may
// update the flag register.
package alu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/big"
	"slices"

	"github.com/ezrec/regvm/bus"
	"github.com/ezrec/regvm/register"
)

// Opcode is an ALU operation code. ALU opcodes share the instruction
// opcode space of the control unit.
type Opcode byte

const (
	ALU_OP_UADD = Opcode(0b0001_0000) // uadd
)

// Operation is an entry in the ALU operation table.
type Operation struct {
	Name   string // Assembler mnemonic.
	Inputs int    // Input bus count. One output bus follows the inputs.
	Run    func(inputs []*bus.Bus, output *bus.Bus, flags *register.FlagRegister) error
}

// Operands returns the total bus count of the operation.
func (op Operation) Operands() int {
	return op.Inputs + 1
}

var operations = map[Opcode]Operation{
	ALU_OP_UADD: {Name: "uadd", Inputs: 2, Run: uadd},
}

// Operations iterates over the operation table.
func Operations() iter.Seq2[Opcode, Operation] {
	return maps.All(operations)
}

// Lookup returns the table entry for an opcode.
func Lookup(code Opcode) (op Operation, ok bool) {
	op, ok = operations[code]
	return
}

// String returns the mnemonic of the opcode.
func (code Opcode) String() string {
	op, ok := operations[code]
	if !ok {
		return fmt.Sprintf("alu(0x%02x)", byte(code))
	}
	return op.Name
}

// Alu is the arithmetic unit.
type Alu struct {
	Verbose bool // If set, logs every operation.
}

// Run executes an operation. The last bus is the output.
func (alu *Alu) Run(code Opcode, buses []*bus.Bus, flags *register.FlagRegister) (err error) {
	op, ok := operations[code]
	if !ok {
		err = errors.Join(ErrInvalid, ErrOpcodeUnknown)
		return
	}

	if len(buses) != op.Operands() {
		err = errors.Join(ErrInvalid, ErrOperandCount)
		return
	}

	inputs := buses[:op.Inputs]
	output := buses[op.Inputs]

	err = op.Run(inputs, output, flags)
	if err != nil {
		return
	}

	if alu.Verbose {
		log.Printf("alu: %v %v => %v fl:%02x", code, inputs, output, flags.Overflow())
	}

	return
}

// uadd adds two unsigned big-endian inputs of equal width.
//
// The sum is truncated to the input width. A carry out of the top byte is
// stored in the overflow flag; the flag is cleared otherwise.
func uadd(inputs []*bus.Bus, output *bus.Bus, flags *register.FlagRegister) (err error) {
	width := inputs[0].Width()
	if inputs[1].Width() != width {
		err = errors.Join(ErrInvalid, ErrInputWidth)
		return
	}

	if output.Writable() && output.Width() != width {
		err = errors.Join(ErrInvalid, ErrOutputWidth)
		return
	}

	sum := new(big.Int).Add(inputs[0].Value(), inputs[1].Value())

	data := sum.Bytes()
	if len(data) < width {
		data = append(make([]byte, width-len(data)), data...)
	}

	var overflow byte
	if len(data) > width {
		overflow = data[0]
		data = slices.Clone(data[len(data)-width:])
	}

	err = output.Write(data)
	if err != nil {
		return
	}

	flags.SetOverflow(overflow)

	return
}
