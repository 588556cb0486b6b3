// Package cpu implements the decoder, disassembler, simulator core and
// assembler for a reduced 32-bit MIPS style instruction set.
//
// Instruction words are carried as 32 character '0'/'1' strings. Three
// opcode categories are supported: branches and memory access (category 1),
// register-register ALU operations (category 2) and register-immediate ALU
// operations (category 3). Code is loaded at address 128; the words after
// the BREAK instruction form the data image.
//
// The CPU consists of a program counter, thirty-two general purpose
// registers and a word addressed data memory. None of the registers is
// hard-wired to zero.
//
// The assembler accepts the same mnemonic syntax the disassembler produces,
// plus labels, equates, macros, and compile-time expression evaluation.
package cpu
