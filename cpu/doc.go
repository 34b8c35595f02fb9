// Package cpu implements the control unit and assembler of the regvm
// machine.
//
// The control unit owns a register file and a byte addressable memory, and
// runs a fetch-decode-execute loop over that memory. Every byte of an
// instruction, the opcode and any inline operand bytes, is fetched through a
// bus transaction addressed by the program counter, so code and data share
// one memory.
//
// Opcodes are one byte. I/O opcodes (halt, outu, outc, cout, mout, sta) and
// ALU opcodes (uadd) are dispatched from a single instruction table. Operand
// descriptors name either a register sector or a memory range; see package
// operand for their encoding.
//
// The assembler builds memory images from text, supporting macros, labels,
// equates, and compile-time expression evaluation.
package cpu
