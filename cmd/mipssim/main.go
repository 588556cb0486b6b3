// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/text/language"

	"github.com/ezrec/mipssim/cpu"
	"github.com/ezrec/mipssim/emulator"
	"github.com/ezrec/mipssim/io"
	"github.com/ezrec/mipssim/translate"
)

// openTape opens the input and output of a tape. A name of "-" is stdin
// or stdout. The returned closer must be called when done.
func openTape(input, output string) (tape *io.Tape, closer func(), err error) {
	var files []*os.File
	closer = func() {
		for _, file := range files {
			file.Close()
		}
	}

	tape = &io.Tape{Input: os.Stdin, Output: os.Stdout}

	if input != "-" {
		var inf *os.File
		inf, err = os.Open(input)
		if err != nil {
			return
		}
		files = append(files, inf)
		tape.Input = inf
	}

	if output != "-" {
		var ouf *os.File
		ouf, err = os.Create(output)
		if err != nil {
			closer()
			return
		}
		files = append(files, ouf)
		tape.Output = ouf
	}

	return
}

// loadProgram reads and disassembles the binary words on the tape.
func loadProgram(tape *io.Tape, verbose bool) (prog *cpu.Program, err error) {
	words, err := tape.Words()
	if err != nil {
		return
	}

	dis := &cpu.Disassembler{Verbose: verbose}
	return dis.Disassemble(words)
}

// writeListing writes the disassembly listing of a program to the named
// file, or to stdout for "-".
func writeListing(name string, prog *cpu.Program) (err error) {
	tape := &io.Tape{Output: os.Stdout}

	if name != "-" {
		var ouf *os.File
		ouf, err = os.Create(name)
		if err != nil {
			return
		}
		defer func() {
			err = errors.Join(err, ouf.Close())
		}()
		tape.Output = ouf
	}

	return tape.WriteFrom(prog)
}

// inputArg returns the single input file argument.
func inputArg(args []string) (input string, err error) {
	switch len(args) {
	case 0:
		input = "-"
	case 1:
		input = args[0]
	default:
		err = fmt.Errorf("%w: unknown arguments: %v", flag.ErrHelp, args[1:])
	}

	return
}

func disasmCommand(verbose *bool) *ffcli.Command {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	output := fs.String("o", "-", "Disassembly output")

	return &ffcli.Command{
		Name:       "disasm",
		ShortUsage: "mipssim disasm [-o file] [binary]",
		ShortHelp:  "Disassemble a binary program",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			input, err := inputArg(args)
			if err != nil {
				return err
			}

			tape, closer, err := openTape(input, *output)
			if err != nil {
				return err
			}
			defer closer()

			prog, err := loadProgram(tape, *verbose)
			if err != nil {
				return fmt.Errorf("%v: %w", input, err)
			}

			return tape.WriteFrom(prog)
		},
	}
}

func simCommand(verbose *bool) *ffcli.Command {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	output := fs.String("o", "-", "Simulation trace output")
	state := fs.String("state", "", "Final machine state output (YAML)")
	dis := fs.String("dis", "", "Disassembly output, written before simulating")
	maxCycles := fs.Int("max-cycles", 100000, "Maximum cycles to execute, 0 for unlimited")

	return &ffcli.Command{
		Name:       "sim",
		ShortUsage: "mipssim sim [-o file] [-dis file] [-state file] [-max-cycles n] [binary]",
		ShortHelp:  "Simulate a binary program, and write the cycle trace",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			input, err := inputArg(args)
			if err != nil {
				return err
			}

			tape, closer, err := openTape(input, *output)
			if err != nil {
				return err
			}
			defer closer()

			prog, err := loadProgram(tape, *verbose)
			if err != nil {
				return fmt.Errorf("%v: %w", input, err)
			}

			if len(*dis) != 0 {
				err = writeListing(*dis, prog)
				if err != nil {
					return err
				}
			}

			emu := emulator.NewEmulator()
			emu.Verbose = *verbose
			emu.Program = prog
			emu.MaxCycles = *maxCycles
			emu.Trace = tape.Output

			err = emu.Reset()
			for done := false; err == nil && !done; {
				if ctx.Err() != nil {
					err = ctx.Err()
					break
				}
				done, err = emu.Tick()
			}

			if len(*state) != 0 {
				ouf, serr := os.Create(*state)
				if serr != nil {
					return errors.Join(err, serr)
				}
				defer ouf.Close()
				serr = emu.WriteState(ouf)
				if serr != nil {
					return errors.Join(err, serr)
				}
			}

			if err != nil {
				return fmt.Errorf("%v: %w", input, err)
			}

			return nil
		},
	}
}

func asmCommand(verbose *bool) *ffcli.Command {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("o", "-", "Binary output")

	return &ffcli.Command{
		Name:       "asm",
		ShortUsage: "mipssim asm [-o file] [source]",
		ShortHelp:  "Assemble a source file into binary words",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			input, err := inputArg(args)
			if err != nil {
				return err
			}

			tape, closer, err := openTape(input, *output)
			if err != nil {
				return err
			}
			defer closer()

			asm := &cpu.Assembler{Verbose: *verbose}
			as, err := asm.Parse(tape.Input)
			if err != nil {
				return fmt.Errorf("%v: %w", input, err)
			}

			return as.WriteBinary(tape.Output)
		},
	}
}

func main() {
	appName := filepath.Base(os.Args[0])

	rootFlagSet := flag.NewFlagSet(appName, flag.ExitOnError)
	verbose := rootFlagSet.Bool("v", false, "Verbose mode")
	lang := rootFlagSet.String("lang", "", "Message language, overriding the system locale")
	_ = rootFlagSet.String("config", "", "Config file of 'flag value' lines")

	root := &ffcli.Command{
		ShortUsage: appName + " [flags] <subcommand>",
		FlagSet:    rootFlagSet,
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithAllowMissingConfigFile(true),
		},
		Subcommands: []*ffcli.Command{
			disasmCommand(verbose),
			simCommand(verbose),
			asmCommand(verbose),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	err := root.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("%v: %v", appName, err)
	}

	if len(*lang) != 0 {
		tag, err := language.Parse(*lang)
		if err != nil {
			log.Fatalf("%v: -lang: %v", appName, err)
		}
		translate.SetLanguage(tag)
	}

	err = root.Run(context.Background())
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(root))
			os.Exit(2)
		}
		log.Fatalf("%v: %v", appName, err)
	}
}
