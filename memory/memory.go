// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory implements a flat, byte addressable memory that is
// serviced through bus transactions.
package memory

import (
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/ezrec/regvm/bus"
)

const (
	DEFAULT_SIZE = 524288 // Default memory capacity in bytes.
)

// Memory is a fixed capacity byte array.
type Memory struct {
	Verbose bool      // If set, logs every bus transaction.
	Noise   bus.Noise // Contention source for buses handed out by reads.

	storage []byte
}

// Zeros creates a zero filled memory. A negative size is an empty memory.
func Zeros(size int) *Memory {
	return &Memory{storage: make([]byte, max(size, 0))}
}

// FromImage creates a memory of capacity size, loaded with image at
// address 0. A size of zero uses the image length.
func FromImage(image []byte, size int) (mem *Memory, err error) {
	if size == 0 {
		size = len(image)
	}

	if len(image) > size {
		err = ErrImageSize
		return
	}

	mem = Zeros(size)
	copy(mem.storage, image)

	return
}

// Random creates a memory filled from noise, eight bytes per draw.
func Random(size int, noise bus.Noise) *Memory {
	next := rand.Uint64
	if noise != nil {
		next = noise.Uint64
	}

	mem := Zeros(size)
	mem.Noise = noise

	var word uint64
	for n := range mem.storage {
		if n%8 == 0 {
			word = next()
		}
		mem.storage[n] = byte(word)
		word >>= 8
	}

	return mem
}

// Defines returns the assembler defines for the memory.
func (mem *Memory) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE": strconv.Itoa(mem.Size()),
	})
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.storage)
}

// check verifies that [address, address+width) lies within the memory.
func (mem *Memory) check(address uint64, width int) (err error) {
	capacity := uint64(len(mem.storage))
	if width < 0 || address > capacity || uint64(width) > capacity-address {
		err = ErrAccess{Address: address, Width: width, Capacity: len(mem.storage)}
	}

	return
}

// Read returns a copy of width bytes at address.
func (mem *Memory) Read(address uint64, width int) (data []byte, err error) {
	err = mem.check(address, width)
	if err != nil {
		return
	}

	data = slices.Clone(mem.storage[address : address+uint64(width)])

	return
}

// Write replaces len(data) bytes at address.
func (mem *Memory) Write(address uint64, data []byte) (err error) {
	err = mem.check(address, len(data))
	if err != nil {
		return
	}

	copy(mem.storage[address:], data)

	return
}

// Present services a bus transaction.
//
// The address is the unsigned big-endian value of addr. If data is a
// destination bus, this is a memory read: a new source bus of data.Width()
// bytes is returned. If data is a source bus, this is a memory write of its
// content, and the returned bus is nil.
func (mem *Memory) Present(addr *bus.Bus, data *bus.Bus) (out *bus.Bus, err error) {
	value := addr.Value()
	if !value.IsUint64() {
		err = ErrAccess{Address: ^uint64(0), Width: data.Width(), Capacity: len(mem.storage)}
		return
	}
	address := value.Uint64()

	if data.Writable() {
		var content []byte
		content, err = mem.Read(address, data.Width())
		if err != nil {
			return
		}
		if mem.Verbose {
			log.Printf("memory: read 0x%x: % x", address, content)
		}
		out = bus.NewSource(content, mem.Noise)
		return
	}

	content := data.Read()
	if mem.Verbose {
		log.Printf("memory: write 0x%x: % x", address, content)
	}
	err = mem.Write(address, content)

	return
}
