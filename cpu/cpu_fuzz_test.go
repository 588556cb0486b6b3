package cpu

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for _, entry := range decodeTable {
		value, _ := strconv.ParseUint(entry.word, 2, 32)
		f.Add(uint32(value), int64(0), int64(0))
		f.Add(uint32(value), int64(-1), int64(7))
	}

	f.Fuzz(func(t *testing.T, opcode uint32, rs_value int64, rt_value int64) {
		assert := assert.New(t)

		word := Word(fmt.Sprintf("%032b", opcode))
		ins, err := Decode(word)
		if err != nil {
			assert.ErrorIs(err, ErrUnknownOpcode, word)
			return
		}

		prog := &Program{
			Code: []Instruction{ins},
			Data: Memory{Base: BEGIN_ADDR + WORD_SIZE, Words: []int64{1, 2, 3, 4}},
		}
		cpu := NewCpu(prog)

		for n := range cpu.Register {
			cpu.Register[n] = int64(n) * 0x1001
		}
		cpu.Register[ins.Rs] = rs_value
		if ins.Rt != ins.Rs {
			cpu.Register[ins.Rt] = rt_value
		}
		pre := cpu.Register
		pre_data := cpu.Memory.Clone()

		next, err := cpu.Execute(ins)

		code_str := fmt.Sprintf("%v (%v)\ncpu:%v", word, ins, cpu.String())

		expect_next := BEGIN_ADDR + WORD_SIZE
		expect := pre
		switch ins.Opcode {
		case OP_J:
			expect_next = int(ins.Imm)
		case OP_BEQ:
			if pre[ins.Rs] == pre[ins.Rt] {
				expect_next += int(ins.Imm)
			}
		case OP_BGTZ:
			if pre[ins.Rs] > 0 {
				expect_next += int(ins.Imm)
			}
		case OP_BREAK:
			assert.True(cpu.Halted, code_str)
		case OP_LW:
			addr := pre[ins.Rs] + ins.Imm
			value, ok := pre_data.Load(int(addr))
			if !ok {
				assert.ErrorIs(err, ErrUnmappedAddress, code_str)
				var ea *ErrAddress
				if assert.True(errors.As(err, &ea), code_str) {
					assert.Equal(int(addr), ea.Addr, code_str)
				}
				return
			}
			expect[ins.Rt] = value
		case OP_SW:
			addr := int(pre[ins.Rs] + ins.Imm)
			assert.Equal(len(pre_data.Words), len(cpu.Memory.Words), code_str)
			value, ok := cpu.Memory.Load(addr)
			assert.True(ok, code_str)
			assert.Equal(pre[ins.Rt], value, code_str)
		case OP_ADD:
			expect[ins.Rd] = pre[ins.Rs] + pre[ins.Rt]
		case OP_SUB:
			expect[ins.Rd] = pre[ins.Rs] - pre[ins.Rt]
		case OP_MUL:
			expect[ins.Rd] = pre[ins.Rs] * pre[ins.Rt]
		case OP_AND:
			expect[ins.Rd] = pre[ins.Rs] & pre[ins.Rt]
		case OP_OR:
			expect[ins.Rd] = pre[ins.Rs] | pre[ins.Rt]
		case OP_XOR:
			expect[ins.Rd] = pre[ins.Rs] ^ pre[ins.Rt]
		case OP_NOR:
			expect[ins.Rd] = ^(pre[ins.Rs] | pre[ins.Rt])
		case OP_ADDI:
			expect[ins.Rt] = pre[ins.Rs] + ins.Imm
		case OP_ANDI:
			expect[ins.Rt] = pre[ins.Rs] & ins.Imm
		case OP_ORI:
			expect[ins.Rt] = pre[ins.Rs] | ins.Imm
		case OP_XORI:
			expect[ins.Rt] = pre[ins.Rs] ^ ins.Imm
		default:
			t.Fatalf("unexpected opcode: %v", code_str)
		}

		assert.NoError(err, code_str)
		assert.Equal(expect_next, next, code_str)
		assert.Equal(expect, cpu.Register, code_str)
		assert.Equal(ins.Opcode == OP_BREAK, cpu.Halted, code_str)
	})
}
