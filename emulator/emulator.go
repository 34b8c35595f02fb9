// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/memory"
	"github.com/ezrec/regvm/register"
)

const (
	GPR_COUNT   = register.GPR_DEFAULT // Default general purpose register count.
	MEMORY_SIZE = memory.DEFAULT_SIZE  // Default memory size.
	TRACE_LIMIT = 256                  // Bytes inspected to disassemble an instruction.
)

// Emulator state. Control unit + program listing.
type Emulator struct {
	Verbose          bool         // If set, enables verbose logging.
	*cpu.ControlUnit              // Reference to the control unit simulation.
	Program          *cpu.Program // Reference to the currently running program listing.

	RandomFill bool // If set, memory is filled from Noise before the program is loaded.
}

// NewEmulator creates a new emulator with gpr general purpose registers
// and memsize bytes of memory. Negative counts are treated as zero.
func NewEmulator(gpr int, memsize int) (emu *Emulator) {
	emu = &Emulator{
		ControlUnit: cpu.NewControlUnit(gpr, memsize),
		Program:     &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	random_fill := "0"
	if emu.RandomFill {
		random_fill = "1"
	}

	return internal.IterSeq2Concat(maps.All(map[string]string{"RANDOM_FILL": random_fill}),
		emu.ControlUnit.Defines(),
	)
}

// Assemble parses a program, with all of the emulator defines predefined,
// and makes it the current program.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset loads the program image at address 0, clears the registers, and
// resets the control unit.
func (emu *Emulator) Reset() (err error) {
	cu := emu.ControlUnit

	size := cu.Memory.Size()
	if emu.Program.Size() > size {
		err = memory.ErrImageSize
		return
	}

	image := emu.Program.Binary()

	var mem *memory.Memory
	if emu.RandomFill {
		mem = memory.Random(size, cu.Noise)
		err = mem.Write(0, image)
	} else {
		mem, err = memory.FromImage(image, size)
	}
	if err != nil {
		return
	}

	mem.Verbose = emu.Verbose
	mem.Noise = cu.Noise

	cu.SetMemory(mem)
	cu.Registers.Reset()
	cu.Reset()

	return
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() uint64 {
	return emu.ControlUnit.Registers.ProgramCounter.Uint64()
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Pc())
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Code returns the disassembly of the instruction at the program counter,
// as it is currently in memory.
func (emu *Emulator) Code() (text string, err error) {
	mem := emu.ControlUnit.Memory

	pc := emu.Pc()
	if pc >= uint64(mem.Size()) {
		err = cpu.ErrOutOfBounds
		return
	}

	image, err := mem.Read(pc, min(mem.Size()-int(pc), TRACE_LIMIT))
	if err != nil {
		return
	}

	text, _, err = cpu.Disassemble(image, 0)

	return
}

// Tick performs a single instruction of the emulator. done is set once
// the control unit has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	cu := emu.ControlUnit

	// Set control unit verbosity
	cu.Verbose = emu.Verbose

	if cu.State == cpu.STATE_HALTED {
		done = true
		return
	}

	lineno := emu.LineNo()
	code, _ := emu.Code()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Code: code, Err: err}
		}
	}()

	if emu.Verbose {
		log.Printf("emulator: %v: 0x%x: %v", lineno, emu.Pc(), code)
	}

	err = cu.Tick()
	if err != nil {
		return
	}

	done = cu.State == cpu.STATE_HALTED

	return
}

// Run ticks the emulator until it halts, fails, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			err = errors.Join(cpu.ErrCancelled, err)
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
