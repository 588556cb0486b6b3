// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Statement is a single assembled word with its source location.
type Statement struct {
	LineNo      int         // Source line number.
	Addr        int         // Address of the word.
	Words       []string    // Source words, after equate expansion.
	IsData      bool        // Set for .word statements.
	Instruction Instruction // Instruction, unless IsData.
	Value       int64       // Data value, if IsData.
	LinkLabel   string      // Branch or jump target, resolved at link time.
}

// Word returns the binary encoding of the statement.
func (st *Statement) Word() (word Word, err error) {
	if st.IsData {
		var bits string
		bits, err = EncodeSigned(st.Value, WORD_BITS)
		word = Word(bits)
		return
	}

	return st.Instruction.Encode()
}

// Assembly is the output of the assembler.
type Assembly struct {
	Statements []Statement
}

// Binary returns the encoded words of the assembly.
func (as *Assembly) Binary() (words []Word, err error) {
	for n := range as.Statements {
		st := &as.Statements[n]
		var word Word
		word, err = st.Word()
		if err != nil {
			err = &ErrSyntax{LineNo: st.LineNo, Line: strings.Join(st.Words, " "), Err: err}
			return
		}
		words = append(words, word)
	}

	return
}

// WriteBinary writes the encoded words, one per line.
func (as *Assembly) WriteBinary(w io.Writer) (err error) {
	words, err := as.Binary()
	if err != nil {
		return
	}

	for _, word := range words {
		_, err = io.WriteString(w, string(word)+"\n")
		if err != nil {
			return
		}
	}

	return
}

// Program disassembles the encoded words.
func (as *Assembly) Program() (prog *Program, err error) {
	words, err := as.Binary()
	if err != nil {
		return
	}

	text := make([]string, len(words))
	for n, word := range words {
		text[n] = string(word)
	}

	return Disassemble(text)
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"BEGIN_ADDR": fmt.Sprintf("%d", BEGIN_ADDR),
	"WORD_SIZE":  fmt.Sprintf("%d", WORD_SIZE),
}

// Assembler is a single pass macro assembler, accepting the same syntax
// as the disassembly listing.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	terminated bool // Set once BREAK has been assembled.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple numeric word, with an optional
// leading '#'.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	word = strings.TrimPrefix(word, "#")
	if equate, ok := asm.Equate[word]; ok {
		word = strings.TrimPrefix(equate, "#")
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// registerOf returns the register index of an 'Rn' word.
func (asm *Assembler) registerOf(word string) (index int, err error) {
	if equate, ok := asm.Equate[word]; ok {
		word = equate
	}

	if len(word) < 2 || (word[0] != 'R' && word[0] != 'r') {
		err = ErrRegisterInvalid
		return
	}

	index, err = strconv.Atoi(word[1:])
	if err != nil || index < 0 || index >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	return
}

var memoryRe = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)

// memoryOf decodes an 'offset(Rn)' operand.
func (asm *Assembler) memoryOf(word string) (offset int64, base int, err error) {
	match := memoryRe.FindStringSubmatch(word)
	if match == nil {
		err = ErrAddressInvalid
		return
	}

	if len(match[1]) != 0 {
		offset, err = asm.valueOf(match[1])
		if err != nil {
			return
		}
	}

	base, err = asm.registerOf(match[2])
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, handling equates, labels
// and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^$()]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next statement.
func (asm *Assembler) currentAddr() int {
	return BEGIN_ADDR + len(asm.Statement)*WORD_SIZE
}

// Parse parses an input stream into an Assembly.
func (asm *Assembler) Parse(input io.Reader) (as *Assembly, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.terminated = false
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump and branch labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		addr, ok := asm.Label[st.LinkLabel]
		if !ok {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(st.LinkLabel)
			return
		}
		if st.Instruction.Opcode == OP_J {
			st.Instruction.Imm = int64(addr)
		} else {
			st.Instruction.Imm = int64(addr - (st.Addr + WORD_SIZE))
		}
	}

	if !asm.terminated {
		err = ErrMissingTerminator
		return
	}

	as = &Assembly{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// targetOf decodes a branch or jump target; either a number, or a label
// to be resolved at link time.
func (asm *Assembler) targetOf(word string) (value int64, label string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	label = strings.TrimPrefix(word, "#")
	if len(label) == 0 || !(label[0] == '_' || (label[0] >= 'A' && label[0] <= 'Z') || (label[0] >= 'a' && label[0] <= 'z')) {
		return
	}

	err = nil
	return
}

// operandCount is the number of operands each opcode takes.
func operandCount(op Opcode) int {
	switch op {
	case OP_BREAK:
		return 0
	case OP_J:
		return 1
	case OP_BGTZ, OP_SW, OP_LW:
		return 2
	default:
		return 3
	}
}

// parseWords assembles the words of a single statement.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	st := Statement{
		LineNo: lineno,
		Addr:   asm.currentAddr(),
		Words:  slices.Clone(words),
	}

	if words[0] == ".word" {
		if !asm.terminated {
			err = ErrDataBeforeBreak
			return
		}
		switch {
		case len(words) < 2:
			err = ErrOpcodeMissingArgs
			return
		case len(words) > 2:
			err = ErrOpcodeExtraArgs
			return
		}
		st.IsData = true
		st.Value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		asm.Statement = append(asm.Statement, st)
		return
	}

	if asm.terminated {
		err = ErrCodeAfterBreak
		return
	}

	op, ok := LookupOpcode(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	switch need := operandCount(op); {
	case len(args) < need:
		err = ErrOpcodeMissingArgs
		return
	case len(args) > need:
		err = ErrOpcodeExtraArgs
		return
	}

	ins := Instruction{Opcode: op}
	switch op {
	case OP_BREAK:
		asm.terminated = true
	case OP_J:
		ins.Imm, st.LinkLabel, err = asm.targetOf(args[0])
	case OP_BEQ:
		if ins.Rs, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if ins.Rt, err = asm.registerOf(args[1]); err != nil {
			return
		}
		ins.Imm, st.LinkLabel, err = asm.targetOf(args[2])
	case OP_BGTZ:
		if ins.Rs, err = asm.registerOf(args[0]); err != nil {
			return
		}
		ins.Imm, st.LinkLabel, err = asm.targetOf(args[1])
	case OP_SW, OP_LW:
		if ins.Rt, err = asm.registerOf(args[0]); err != nil {
			return
		}
		ins.Imm, ins.Rs, err = asm.memoryOf(args[1])
	default:
		dst := &ins.Rd
		if op.Category() == CATEGORY_3 {
			dst = &ins.Rt
		}
		if *dst, err = asm.registerOf(args[0]); err != nil {
			return
		}
		if ins.Rs, err = asm.registerOf(args[1]); err != nil {
			return
		}
		if op.Category() == CATEGORY_3 {
			ins.Imm, err = asm.valueOf(args[2])
		} else {
			ins.Rt, err = asm.registerOf(args[2])
		}
	}
	if err != nil {
		return
	}

	st.Instruction = ins
	asm.Statement = append(asm.Statement, st)

	return
}
