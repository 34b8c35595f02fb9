package cpu

import (
	"iter"
)

// Link is a 32 bit big-endian label address to patch into a statement.
type Link struct {
	Offset int    // Offset into the statement bytes.
	Label  string // Label whose address is patched in.
}

// Statement is a line of assembled code with its source location and
// generated bytes.
type Statement struct {
	LineNo  int
	Address int
	Words   []string
	Bytes   []byte
	Links   []Link
}

// Program is an assembled listing.
type Program struct {
	Statements []Statement
	Labels     map[string]int
}

// Debug is the statement covering an address, and the offset of the
// address within it.
type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement that generated the byte at address.
func (prog *Program) Debug(address uint64) (dbg Debug) {
	for n, st := range prog.Statements {
		start := uint64(st.Address)
		if address >= start && address < start+uint64(len(st.Bytes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address - start),
			}
			break
		}
	}

	return
}

// Size returns the size of the memory image.
func (prog *Program) Size() (size int) {
	for _, st := range prog.Statements {
		size = max(size, st.Address+len(st.Bytes))
	}

	return
}

// Binary returns the memory image, to be loaded at address 0.
func (prog *Program) Binary() (image []byte) {
	image = make([]byte, prog.Size())
	for address, value := range prog.Codes() {
		image[address] = value
	}

	return
}

// Codes iterates over every assembled byte and its address.
func (prog *Program) Codes() iter.Seq2[int, byte] {
	return func(yield func(address int, value byte) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Address+n, value) {
					return
				}
			}
		}
	}
}
