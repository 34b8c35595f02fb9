package cpu

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"

	"github.com/ezrec/regvm/alu"
	"github.com/ezrec/regvm/bus"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/memory"
	"github.com/ezrec/regvm/operand"
	"github.com/ezrec/regvm/register"
)

// State is the execution state of the control unit.
type State int

const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	case STATE_FAULTED:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ControlUnit is the simulation context of the machine: a register file and
// a memory, driven by a fetch-decode-execute loop.
type ControlUnit struct {
	Verbose bool // Set to enable verbose logging.

	Registers *register.File // Register file.
	Memory    *memory.Memory // Memory the program executes from.
	Alu       alu.Alu        // Arithmetic unit.

	Noise  bus.Noise // Contention source for every bus the unit creates.
	Output io.Writer // Output sink of the I/O opcodes.

	State State // Execution state.
	Ticks int   // Instructions executed since reset.
}

// NewControlUnit creates a control unit with gpr general purpose registers
// and a zeroed memory of memsize bytes. Negative counts are treated as zero.
func NewControlUnit(gpr int, memsize int) (cu *ControlUnit) {
	cu = &ControlUnit{
		Registers: register.NewFile(gpr),
		Memory:    memory.Zeros(memsize),
	}

	return
}

// Defines returns the assembler defines for the control unit.
func (cu *ControlUnit) Defines() iter.Seq2[string, string] {
	defines := map[string]string{}
	for code, inst := range instructions {
		defines["OP_"+strings.ToUpper(inst.Name)] = fmt.Sprintf("0x%02x", byte(code))
	}

	return internal.IterSeq2Concat(maps.All(defines),
		cu.Registers.Defines(),
		cu.Memory.Defines(),
	)
}

// SetMemory replaces the memory.
func (cu *ControlUnit) SetMemory(mem *memory.Memory) {
	cu.Memory = mem
}

// Reset the execution state: the program counter is set to 0, and the
// unit is running. Registers other than the program counter, and the
// memory, are preserved.
func (cu *ControlUnit) Reset() {
	if cu.Verbose {
		log.Printf("cpu: reset")
	}

	cu.Registers.ProgramCounter.Jump(0)
	cu.State = STATE_RUNNING
	cu.Ticks = 0
}

// String returns the control unit state as a string.
func (cu *ControlUnit) String() string {
	return fmt.Sprintf("state: %v\nticks: %v\n%v", cu.State, cu.Ticks, cu.Registers.String())
}

// Fetch reads the byte at the program counter through a bus transaction,
// then increments the program counter.
func (cu *ControlUnit) Fetch() (value byte, err error) {
	pc := &cu.Registers.ProgramCounter

	address, err := pc.Read(register.SECTOR_ALL)
	if err != nil {
		return
	}

	addr_bus := bus.NewSource(address, cu.Noise)
	data_bus, err := bus.NewDestination(1)
	if err != nil {
		return
	}

	out_bus, err := cu.Memory.Present(addr_bus, data_bus)
	if err != nil {
		return
	}

	err = pc.Increment()
	if err != nil {
		return
	}

	value = out_bus.Read()[0]

	return
}

// ReadByte fetches the next instruction stream byte.
func (cu *ControlUnit) ReadByte() (byte, error) {
	return cu.Fetch()
}

var _ io.ByteReader = (*ControlUnit)(nil)

// Resolve returns a source bus loaded with the bytes named by an operand.
func (cu *ControlUnit) Resolve(op operand.Descriptor) (out *bus.Bus, err error) {
	switch op := op.(type) {
	case operand.Register:
		var reg *register.Register
		reg, err = cu.Registers.Lookup(op.Id)
		if err != nil {
			return
		}
		var data []byte
		data, err = reg.Read(op.Sector)
		if err != nil {
			return
		}
		out = bus.NewSource(data, cu.Noise)
	case operand.Memory:
		var data_bus *bus.Bus
		data_bus, err = bus.NewDestination(op.Width)
		if err != nil {
			return
		}
		out, err = cu.Memory.Present(cu.addressBus(op), data_bus)
	default:
		err = operand.ErrInvalid
	}

	return
}

// Commit writes the content of a bus to the range named by an operand.
func (cu *ControlUnit) Commit(op operand.Descriptor, data *bus.Bus) (err error) {
	switch op := op.(type) {
	case operand.Register:
		var reg *register.Register
		reg, err = cu.Registers.Lookup(op.Id)
		if err != nil {
			return
		}
		err = reg.Write(op.Sector, data.Read())
	case operand.Memory:
		if data.Width() != op.Width {
			err = bus.ErrWidth{Width: op.Width, Length: data.Width()}
			return
		}
		_, err = cu.Memory.Present(cu.addressBus(op), bus.NewSource(data.Read(), cu.Noise))
	default:
		err = operand.ErrInvalid
	}

	return
}

// addressBus returns the address bus of a memory operand.
func (cu *ControlUnit) addressBus(op operand.Memory) *bus.Bus {
	var address [4]byte
	binary.BigEndian.PutUint32(address[:], op.Address)
	return bus.NewSource(address[:], cu.Noise)
}

// decode reads count operand descriptors from the instruction stream.
func (cu *ControlUnit) decode(count int) (ops []operand.Descriptor, err error) {
	ops = make([]operand.Descriptor, count)
	for n := range ops {
		ops[n], err = operand.Decode(cu)
		if err != nil {
			return
		}
	}

	return
}

// Tick executes a single instruction.
func (cu *ControlUnit) Tick() (err error) {
	switch cu.State {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return ErrFaulted
	}

	failure := &ErrExecute{Pc: cu.Registers.ProgramCounter.Uint64()}
	defer func() {
		if err != nil {
			cu.State = STATE_FAULTED
			kind := kindOf(err)
			if kind != nil {
				err = errors.Join(kind, err)
			}
			failure.Err = err
			err = failure
		}
	}()

	value, err := cu.Fetch()
	if err != nil {
		err = errors.Join(ErrFetch, err)
		return
	}

	failure.Opcode = Opcode(value)
	failure.Fetched = true

	err = cu.Execute(Opcode(value))
	if err != nil {
		return
	}

	cu.Ticks++

	return
}

// Execute executes an instruction whose opcode byte has been fetched.
// Operand bytes are fetched from the instruction stream.
func (cu *ControlUnit) Execute(code Opcode) (err error) {
	inst, ok := instructions[code]
	if !ok {
		err = ErrOpcode(code)
		return
	}

	if cu.Verbose {
		log.Printf("cpu: %v", inst.Name)
	}

	err = inst.execute(cu, code)

	return
}

// Run executes instructions until the unit halts, faults, or ctx is done.
// The context is checked once per fetch cycle.
func (cu *ControlUnit) Run(ctx context.Context) (err error) {
	for cu.State == STATE_RUNNING {
		err = ctx.Err()
		if err != nil {
			err = errors.Join(ErrCancelled, err)
			return
		}

		err = cu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// emit writes text to the output sink.
func (cu *ControlUnit) emit(text string) (err error) {
	if cu.Output == nil {
		return
	}

	_, err = io.WriteString(cu.Output, text)

	return
}

func (cu *ControlUnit) doHalt(code Opcode) (err error) {
	cu.State = STATE_HALTED
	return
}

func (cu *ControlUnit) doOutu(code Opcode) (err error) {
	value, err := cu.Fetch()
	if err != nil {
		return
	}

	err = cu.emit(strconv.Itoa(int(value)) + "\n")

	return
}

func (cu *ControlUnit) doOutc(code Opcode) (err error) {
	value, err := cu.Fetch()
	if err != nil {
		return
	}

	err = cu.emit(string(rune(value)))

	return
}

func (cu *ControlUnit) doCout(code Opcode) (err error) {
	var text strings.Builder
	for {
		var value byte
		value, err = cu.Fetch()
		if err != nil {
			return
		}
		if value == 0 {
			break
		}
		text.WriteRune(rune(value))
	}

	err = cu.emit(text.String())

	return
}

func (cu *ControlUnit) doMout(code Opcode) (err error) {
	ops, err := cu.decode(1)
	if err != nil {
		return
	}

	data, err := cu.Resolve(ops[0])
	if err != nil {
		return
	}

	if cu.Verbose {
		log.Printf("cpu: mout %v => %v", ops[0], data)
	}

	values := make([]string, data.Width())
	for n, value := range data.Read() {
		values[n] = strconv.Itoa(int(value))
	}

	err = cu.emit(strings.Join(values, ", "))

	return
}

func (cu *ControlUnit) doSta(code Opcode) (err error) {
	ops, err := cu.decode(1)
	if err != nil {
		return
	}

	if cu.Verbose {
		log.Printf("cpu: sta %v", ops[0])
	}

	err = ErrUnimplementedOpcode

	return
}

func (cu *ControlUnit) doAlu(code Opcode) (err error) {
	op, ok := alu.Lookup(alu.Opcode(code))
	if !ok {
		err = ErrOpcode(code)
		return
	}

	ops, err := cu.decode(op.Operands())
	if err != nil {
		return
	}

	buses := make([]*bus.Bus, len(ops))
	for n, input := range ops[:op.Inputs] {
		buses[n], err = cu.Resolve(input)
		if err != nil {
			return
		}
	}

	target := ops[op.Inputs]
	width, err := target.Size()
	if err != nil {
		return
	}

	output, err := bus.NewDestination(width)
	if err != nil {
		return
	}
	buses[op.Inputs] = output

	err = cu.Alu.Run(alu.Opcode(code), buses, &cu.Registers.Flags)
	if err != nil {
		return
	}

	err = cu.Commit(target, output)

	return
}
