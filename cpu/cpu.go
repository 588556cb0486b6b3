package cpu

import (
	"fmt"
	"log"
	"strings"
)

const (
	REGISTER_COUNT = 32 // Number of general purpose registers.
)

// Cpu is the simulation context for a single program run.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Program *Program // Program being executed. Read only.

	Pc       int                   // Current program counter.
	Cycle    int                   // Number of the next cycle to execute.
	Register [REGISTER_COUNT]int64 // Register bank.
	Memory   Memory                // Data memory, mutated by SW.
	Halted   bool                  // Set once BREAK has executed.
}

// NewCpu creates a new CPU for a program, ready to run.
func NewCpu(prog *Program) (cpu *Cpu) {
	cpu = &Cpu{
		Program: prog,
	}

	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears the registers.
// - Reloads the data image from the program.
// - Sets pc to BEGIN_ADDR, and the cycle counter to 1.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = BEGIN_ADDR
	cpu.Cycle = 1
	cpu.Halted = false
	cpu.Memory = Memory{}
	if cpu.Program != nil {
		cpu.Memory = cpu.Program.Data.Clone()
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("   pc: %d\ncycle: %d\n", cpu.Pc, cpu.Cycle)
	for n := 0; n < REGISTER_COUNT; n += 8 {
		var row []string
		for _, value := range cpu.Register[n : n+8] {
			row = append(row, fmt.Sprintf("%d", value))
		}
		text += fmt.Sprintf("  R%02d: %v\n", n, strings.Join(row, " "))
	}
	if cpu.Halted {
		text += "halted\n"
	}

	return
}

// Tick executes a single cycle, and returns the trace record of the
// machine state after the instruction.
func (cpu *Cpu) Tick() (trace *Trace, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	ins, ok := cpu.Program.Fetch(cpu.Pc)
	if !ok {
		err = &ErrAddress{Pc: cpu.Pc, Addr: cpu.Pc}
		return
	}

	next, err := cpu.Execute(ins)
	if err != nil {
		return
	}

	trace = &Trace{
		Cycle:       cpu.Cycle,
		Addr:        cpu.Pc,
		Instruction: ins,
		Register:    cpu.Register,
		Data:        cpu.Memory.Clone(),
	}

	cpu.Pc = next
	cpu.Cycle++

	return
}

// Execute executes a single decoded instruction, and returns the
// address of the next instruction.
func (cpu *Cpu) Execute(ins Instruction) (next int, err error) {
	if cpu.Verbose {
		log.Printf("%d: %v", cpu.Pc, ins)
	}

	next = cpu.Pc + WORD_SIZE

	reg := &cpu.Register

	switch ins.Opcode {
	case OP_J:
		next = int(ins.Imm)
	case OP_BEQ:
		if reg[ins.Rs] == reg[ins.Rt] {
			next += int(ins.Imm)
		}
	case OP_BGTZ:
		if reg[ins.Rs] > 0 {
			next += int(ins.Imm)
		}
	case OP_BREAK:
		cpu.Halted = true
	case OP_SW:
		cpu.Memory.Store(int(reg[ins.Rs]+ins.Imm), reg[ins.Rt])
	case OP_LW:
		addr := int(reg[ins.Rs] + ins.Imm)
		value, ok := cpu.Memory.Load(addr)
		if !ok {
			err = &ErrAddress{Pc: cpu.Pc, Addr: addr}
			return
		}
		reg[ins.Rt] = value
	case OP_ADD, OP_SUB, OP_MUL, OP_AND, OP_OR, OP_XOR, OP_NOR:
		reg[ins.Rd] = doAlu(ins.Opcode, reg[ins.Rs], reg[ins.Rt])
	case OP_ADDI, OP_ANDI, OP_ORI, OP_XORI:
		reg[ins.Rt] = doAlu(ins.Opcode, reg[ins.Rs], ins.Imm)
	default:
		err = ErrUnknownOpcode
		return
	}

	if cpu.Verbose && cpu.Halted {
		log.Printf("cpu: halted at %d", cpu.Pc)
	}

	return
}

// doAlu performs the requested ALU action, and returns the output value.
func doAlu(op Opcode, input int64, value int64) (output int64) {
	switch op {
	case OP_ADD, OP_ADDI:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MUL:
		output = input * value
	case OP_AND, OP_ANDI:
		output = input & value
	case OP_OR, OP_ORI:
		output = input | value
	case OP_XOR, OP_XORI:
		output = input ^ value
	case OP_NOR:
		output = ^(input | value)
	}

	return
}
