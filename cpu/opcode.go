package cpu

import (
	"fmt"
	"strings"
)

// CodeCategory is the major opcode group, bits [0:3) of a word.
type CodeCategory int

const (
	CATEGORY_1 = CodeCategory(0b000) // branch, jump, memory
	CATEGORY_2 = CodeCategory(0b110) // register-register ALU
	CATEGORY_3 = CodeCategory(0b111) // register-immediate ALU
)

//go:generate go tool stringer -linecomment -type=Opcode

// Opcode is the decoded operation of an instruction.
type Opcode int

const (
	OP_J Opcode = iota // J
	OP_BEQ             // BEQ
	OP_BGTZ            // BGTZ
	OP_BREAK           // BREAK
	OP_SW              // SW
	OP_LW              // LW
	OP_ADD             // ADD
	OP_SUB             // SUB
	OP_MUL             // MUL
	OP_AND             // AND
	OP_OR              // OR
	OP_XOR             // XOR
	OP_NOR             // NOR
	OP_ADDI            // ADDI
	OP_ANDI            // ANDI
	OP_ORI             // ORI
	OP_XORI            // XORI
	opcodeCount
)

// LookupOpcode finds an opcode by its (case insensitive) mnemonic.
func LookupOpcode(mnemonic string) (op Opcode, ok bool) {
	mnemonic = strings.ToUpper(mnemonic)
	for op = range opcodeCount {
		if op.String() == mnemonic {
			return op, true
		}
	}
	return 0, false
}

// Category returns the major opcode group of the operation.
func (op Opcode) Category() CodeCategory {
	switch {
	case op >= OP_ADDI:
		return CATEGORY_3
	case op >= OP_ADD:
		return CATEGORY_2
	default:
		return CATEGORY_1
	}
}

// subcode returns the 3 bit sub-opcode of the operation within its category.
func (op Opcode) subcode() string {
	switch op {
	case OP_J:
		return "000"
	case OP_BEQ:
		return "010"
	case OP_BGTZ:
		return "100"
	case OP_BREAK:
		return "101"
	case OP_SW:
		return "110"
	case OP_LW:
		return "111"
	case OP_ADD, OP_ADDI:
		return "000"
	case OP_SUB, OP_ANDI:
		return "001"
	case OP_MUL, OP_ORI:
		return "010"
	case OP_AND, OP_XORI:
		return "011"
	case OP_OR:
		return "100"
	case OP_XOR:
		return "101"
	case OP_NOR:
		return "110"
	}
	panic("unknown opcode")
}

// Instruction is a decoded instruction word.
//
// Operand use by opcode:
//   - J: Imm is the absolute target address.
//   - BEQ: Rs, Rt, Imm is the branch offset in bytes.
//   - BGTZ: Rs, Imm is the branch offset in bytes.
//   - SW, LW: Rt is the value register, Rs the base register, Imm the offset.
//   - ADD..NOR: Rd = Rs op Rt.
//   - ADDI..XORI: Rt = Rs op Imm.
type Instruction struct {
	Opcode Opcode
	Rs     int
	Rt     int
	Rd     int
	Imm    int64
}

// reg decodes a 5 bit register index.
func reg(word Word, start int) int {
	return int(Unsigned(word.Field(start, start+5)))
}

// Decode decodes a single instruction word.
func Decode(word Word) (ins Instruction, err error) {
	if valid, verr := ParseWord(string(word)); verr != nil || valid != word {
		err = ErrWord(word)
		return
	}

	switch CodeCategory(Unsigned(word.Field(0, 3))) {
	case CATEGORY_1:
		return decodeCategory1(word)
	case CATEGORY_2:
		return decodeCategory2(word)
	case CATEGORY_3:
		return decodeCategory3(word)
	}

	err = ErrOpcode(word)
	return
}

// decodeCategory1 decodes jumps, branches, BREAK, and memory access.
func decodeCategory1(word Word) (ins Instruction, err error) {
	switch word.Field(3, 6) {
	case "000":
		ins = Instruction{Opcode: OP_J, Imm: Unsigned(word.Field(6, 32) + "00")}
	case "010":
		ins = Instruction{Opcode: OP_BEQ, Rs: reg(word, 6), Rt: reg(word, 11),
			Imm: SignedValue(word.Field(16, 32) + "00")}
	case "100":
		ins = Instruction{Opcode: OP_BGTZ, Rs: reg(word, 6),
			Imm: SignedValue(word.Field(16, 32) + "00")}
	case "101":
		ins = Instruction{Opcode: OP_BREAK}
	case "110":
		ins = Instruction{Opcode: OP_SW, Rs: reg(word, 6), Rt: reg(word, 11),
			Imm: SignedValue(word.Field(16, 32))}
	case "111":
		ins = Instruction{Opcode: OP_LW, Rs: reg(word, 6), Rt: reg(word, 11),
			Imm: SignedValue(word.Field(16, 32))}
	default:
		err = ErrOpcode(word)
	}

	return
}

// decodeCategory2 decodes the register-register ALU operations.
func decodeCategory2(word Word) (ins Instruction, err error) {
	var op Opcode
	switch word.Field(13, 16) {
	case "000":
		op = OP_ADD
	case "001":
		op = OP_SUB
	case "010":
		op = OP_MUL
	case "011":
		op = OP_AND
	case "100":
		op = OP_OR
	case "101":
		op = OP_XOR
	case "110":
		op = OP_NOR
	default:
		err = ErrOpcode(word)
		return
	}

	ins = Instruction{Opcode: op, Rd: reg(word, 16), Rs: reg(word, 3), Rt: reg(word, 8)}
	return
}

// decodeCategory3 decodes the register-immediate ALU operations.
func decodeCategory3(word Word) (ins Instruction, err error) {
	var op Opcode
	switch word.Field(13, 16) {
	case "000":
		op = OP_ADDI
	case "001":
		op = OP_ANDI
	case "010":
		op = OP_ORI
	case "011":
		op = OP_XORI
	default:
		err = ErrOpcode(word)
		return
	}

	ins = Instruction{Opcode: op, Rt: reg(word, 8), Rs: reg(word, 3), Imm: SignedValue(word.Field(16, 32))}
	return
}

// Encode is the inverse of Decode.
func (ins Instruction) Encode() (word Word, err error) {
	regs := func(indexes ...int) (out string, err error) {
		for _, index := range indexes {
			var bits string
			bits, err = EncodeUnsigned(int64(index), 5)
			if err != nil {
				err = ErrRegisterRange
				return
			}
			out += bits
		}
		return
	}

	// scaled encodes a byte displacement that must be word aligned.
	scaled := func(value int64) (string, error) {
		if value%WORD_SIZE != 0 {
			return "", ErrImmediateRange
		}
		return EncodeSigned(value/WORD_SIZE, 16)
	}

	op := ins.Opcode
	if op < 0 || op >= opcodeCount {
		err = ErrOpcodeInvalid
		return
	}

	var text, rr, imm string
	switch op.Category() {
	case CATEGORY_1:
		text = "000" + op.subcode()
		switch op {
		case OP_J:
			if ins.Imm%WORD_SIZE != 0 {
				err = ErrImmediateRange
				return
			}
			imm, err = EncodeUnsigned(ins.Imm/WORD_SIZE, 26)
			text += imm
		case OP_BEQ:
			if rr, err = regs(ins.Rs, ins.Rt); err != nil {
				return
			}
			imm, err = scaled(ins.Imm)
			text += rr + imm
		case OP_BGTZ:
			if rr, err = regs(ins.Rs, 0); err != nil {
				return
			}
			imm, err = scaled(ins.Imm)
			text += rr + imm
		case OP_BREAK:
			text += strings.Repeat("0", 26)
		case OP_SW, OP_LW:
			if rr, err = regs(ins.Rs, ins.Rt); err != nil {
				return
			}
			imm, err = EncodeSigned(ins.Imm, 16)
			text += rr + imm
		}
	case CATEGORY_2:
		var rd string
		if rr, err = regs(ins.Rs, ins.Rt); err != nil {
			return
		}
		if rd, err = regs(ins.Rd); err != nil {
			return
		}
		text = "110" + rr + op.subcode() + rd + strings.Repeat("0", 11)
	case CATEGORY_3:
		if rr, err = regs(ins.Rs, ins.Rt); err != nil {
			return
		}
		imm, err = EncodeSigned(ins.Imm, 16)
		text = "111" + rr + op.subcode() + imm
	}
	if err != nil {
		return
	}

	word = Word(text)
	return
}

// String returns the assembly language representation of this instruction.
func (ins Instruction) String() string {
	op := ins.Opcode
	switch op {
	case OP_J:
		return fmt.Sprintf("J #%d", ins.Imm)
	case OP_BEQ:
		return fmt.Sprintf("BEQ R%d, R%d, #%d", ins.Rs, ins.Rt, ins.Imm)
	case OP_BGTZ:
		return fmt.Sprintf("BGTZ R%d, #%d", ins.Rs, ins.Imm)
	case OP_BREAK:
		return "BREAK"
	case OP_SW, OP_LW:
		return fmt.Sprintf("%v R%d, %d(R%d)", op, ins.Rt, ins.Imm, ins.Rs)
	}

	switch op.Category() {
	case CATEGORY_2:
		return fmt.Sprintf("%v R%d, R%d, R%d", op, ins.Rd, ins.Rs, ins.Rt)
	default:
		return fmt.Sprintf("%v R%d, R%d, #%d", op, ins.Rt, ins.Rs, ins.Imm)
	}
}
