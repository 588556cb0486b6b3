// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a cpu over a disassembled program, emitting
// the per-cycle trace.
package emulator

import (
	"io"
	"log"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/mipssim/cpu"
)

// Emulator state. CPU + program + trace output.
type Emulator struct {
	Verbose   bool         // If set, enables verbose logging.
	*cpu.Cpu               // Reference to the CPU simulation.
	Program   *cpu.Program // Reference to the currently running program.
	MaxCycles int          // If non-zero, the maximum number of cycles to run.
	Trace     io.Writer    // If set, receives the trace record of every cycle.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil),
		Program: &cpu.Program{},
	}

	return
}

// Reset the emulator state, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Program = emu.Program
	emu.Cpu.Reset()

	if emu.Verbose {
		log.Printf("emulator: %d instructions, %d data words at %d",
			len(emu.Program.Code), len(emu.Program.Data.Words), emu.Program.Data.Base)
	}

	return
}

// Ticks returns the number of cycles executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Cycle - 1
}

// Done returns true once the program has executed BREAK.
func (emu *Emulator) Done() bool {
	return emu.Cpu.Halted
}

// Tick performs a single cycle of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	cycle := emu.Cpu.Cycle
	defer func() {
		if err != nil {
			err = &ErrRuntime{Cycle: cycle, Addr: pc, Err: err}
		}
	}()

	if emu.Cpu.Halted {
		done = true
		return
	}

	if emu.MaxCycles > 0 && cycle > emu.MaxCycles {
		err = ErrCycleLimit
		return
	}

	trace, err := emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Trace != nil {
		_, err = trace.WriteTo(emu.Trace)
		if err != nil {
			return
		}
	}

	done = emu.Cpu.Halted
	return
}

// Run resets the emulator, then runs the program until BREAK or an error.
func (emu *Emulator) Run() (err error) {
	err = emu.Reset()
	if err != nil {
		return
	}

	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Simulate runs a program to completion, and returns its trace. On error,
// the returned trace holds the cycles completed before the failure.
func Simulate(prog *cpu.Program) (trace string, err error) {
	var sb strings.Builder

	emu := NewEmulator()
	emu.Program = prog
	emu.Trace = &sb

	err = emu.Run()
	trace = sb.String()
	return
}

// State is a snapshot of the machine state.
type State struct {
	Pc        int     `yaml:"pc"`
	Cycles    int     `yaml:"cycles"`
	Halted    bool    `yaml:"halted"`
	Registers []int64 `yaml:"registers,flow"`
	DataBase  int     `yaml:"data_base"`
	Data      []int64 `yaml:"data,flow"`

	Spill map[int]int64 `yaml:"spill,omitempty"` // Stores outside of the data image.
}

// State returns a snapshot of the current machine state.
func (emu *Emulator) State() (state State) {
	state = State{
		Pc:        emu.Cpu.Pc,
		Cycles:    emu.Ticks(),
		Halted:    emu.Cpu.Halted,
		Registers: append([]int64(nil), emu.Cpu.Register[:]...),
		DataBase:  emu.Cpu.Memory.Base,
		Data:      append([]int64(nil), emu.Cpu.Memory.Words...),
		Spill:     maps.Clone(emu.Cpu.Memory.Spill),
	}

	return
}

// WriteState writes the machine state as YAML.
func (emu *Emulator) WriteState(w io.Writer) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err = enc.Encode(emu.State())
	if err != nil {
		return
	}

	return enc.Close()
}
