package cpu

import (
	"errors"

	"github.com/ezrec/mipssim/translate"
)

var f = translate.From

var (
	// Decode errors
	ErrMalformedWord     = errors.New(f("malformed word"))
	ErrUnknownOpcode     = errors.New(f("unknown opcode"))
	ErrMissingTerminator = errors.New(f("missing BREAK terminator"))

	// Cpu errors
	ErrUnmappedAddress = errors.New(f("unmapped address"))
	ErrHalted          = errors.New(f("cpu halted"))

	// Encode errors
	ErrImmediateRange = errors.New(f("immediate out of range"))
	ErrRegisterRange  = errors.New(f("register out of range"))

	// Assembler errors
	ErrEquateSyntax      = errors.New(f(".equ syntax"))
	ErrEquateDuplicate   = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate    = errors.New(f("label duplicated"))
	ErrMacroSyntax       = errors.New(f(".macro syntax"))
	ErrMacroNesting      = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate    = errors.New(f(".macro duplicated"))
	ErrMacroLonely       = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm   = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs   = errors.New(f("excessive arguments"))
	ErrOpcodeMissingArgs = errors.New(f("missing arguments"))
	ErrOpcodeInvalid     = errors.New(f("opcode invalid"))
	ErrRegisterInvalid   = errors.New(f("register invalid"))
	ErrAddressInvalid    = errors.New(f("address invalid"))
	ErrCodeAfterBreak    = errors.New(f("instruction after BREAK"))
	ErrDataBeforeBreak   = errors.New(f(".word before BREAK"))
)

// ErrWord reports a word that is not 32 binary digits.
type ErrWord string

func (ew ErrWord) Error() string {
	return f("'%v' %v", string(ew), ErrMalformedWord)
}

func (ew ErrWord) Is(err error) bool {
	return err == ErrMalformedWord
}

// ErrOpcode reports a word whose opcode bits have no mapping.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	return f("bad opcode %v.%v.%v", Word(eo).Field(0, 3), Word(eo).Field(3, 6), Word(eo).Field(13, 16))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrUnknownOpcode
}

// ErrDecode locates a disassembly failure.
type ErrDecode struct {
	Addr int
	Word string
	Err  error
}

func (err *ErrDecode) Error() string {
	return f("address %v '%v' %v", err.Addr, err.Word, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}

// ErrAddress locates an execution access outside of the program or data image.
type ErrAddress struct {
	Pc   int
	Addr int
}

func (err *ErrAddress) Error() string {
	return f("pc %v: %v %v", err.Pc, ErrUnmappedAddress, err.Addr)
}

func (err *ErrAddress) Unwrap() error {
	return ErrUnmappedAddress
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
