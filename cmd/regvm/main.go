// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/register"
)

// listing writes a disassembly of image to w.
func listing(w io.Writer, image []byte) {
	for address := 0; address < len(image); {
		text, size, err := cpu.Disassemble(image, address)
		if err != nil {
			text = fmt.Sprintf(".byte 0x%02x", image[address])
			size = 1
		}
		fmt.Fprintf(w, "%08x: %v\n", address, text)
		address += size
	}
}

func main() {
	var compile string
	var image string
	var save string
	var output string
	var gpr int
	var memsize int
	var seed uint64
	var random bool
	var defines bool
	var disassemble bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".rvm file to compile")
	flag.StringVar(&image, "i", "", "Binary image file to load")
	flag.StringVar(&save, "s", "", "Save binary image to file, do not execute")
	flag.StringVar(&output, "o", "-", "Program output")
	flag.IntVar(&gpr, "g", emulator.GPR_COUNT, "General purpose register count")
	flag.IntVar(&memsize, "m", emulator.MEMORY_SIZE, "Memory size in bytes")
	flag.Uint64Var(&seed, "seed", 0, "Bus contention random seed (0 for unseeded)")
	flag.BoolVar(&random, "random", false, "Fill memory with random bytes before loading")
	flag.BoolVar(&defines, "D", false, "List assembler predefines, do not execute")
	flag.BoolVar(&disassemble, "d", false, "List disassembly, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(image) != 0 {
		log.Fatalf("%v: -c and -i are exclusive", os.Args[0])
	}

	if gpr < 0 || gpr > register.GPR_LIMIT {
		log.Fatalf("%v: -g %v out of range [0, %v]", os.Args[0], gpr, register.GPR_LIMIT)
	}

	if memsize < 0 {
		log.Fatalf("%v: -m %v must not be negative", os.Args[0], memsize)
	}

	emu := emulator.NewEmulator(gpr, memsize)
	emu.Verbose = verbose
	emu.RandomFill = random
	if seed != 0 {
		emu.Noise = rand.NewPCG(seed, seed)
	}

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
		return
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a binary image.
	if len(image) != 0 {
		data, err := os.ReadFile(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}

		emu.Program = &cpu.Program{
			Statements: []cpu.Statement{{Address: 0, Bytes: data}},
		}
	}

	if len(save) != 0 {
		err := os.WriteFile(save, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if disassemble {
		listing(os.Stdout, emu.Program.Binary())
		return
	}

	if output == "-" {
		emu.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Output = ouf
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
}
