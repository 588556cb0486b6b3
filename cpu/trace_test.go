package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceString(t *testing.T) {
	assert := assert.New(t)

	trace := &Trace{
		Cycle:       3,
		Addr:        136,
		Instruction: Instruction{Opcode: OP_ADDI, Rt: 1, Rs: 0, Imm: 5},
		Data: Memory{
			Base:  148,
			Words: []int64{1, 2, 3, 4, 5, 6, 7, 8, -9},
		},
	}
	trace.Register[1] = 5
	trace.Register[8] = -1
	trace.Register[31] = 31

	expected := strings.Join([]string{
		"--------------------",
		"Cycle:3\t136\tADDI R1, R0, #5",
		"",
		"Registers",
		"R00:\t0\t5\t0\t0\t0\t0\t0\t0",
		"R08:\t-1\t0\t0\t0\t0\t0\t0\t0",
		"R16:\t0\t0\t0\t0\t0\t0\t0\t0",
		"R24:\t0\t0\t0\t0\t0\t0\t0\t31",
		"",
		"Data",
		"148:\t1\t2\t3\t4\t5\t6\t7\t8",
		"180:\t-9",
		"",
		"",
	}, "\n")

	assert.Equal(expected, trace.String())

	buf := &bytes.Buffer{}
	n, err := trace.WriteTo(buf)
	assert.NoError(err)
	assert.Equal(int64(len(expected)), n)
	assert.Equal(expected, buf.String())
}

func TestTraceEmptyData(t *testing.T) {
	assert := assert.New(t)

	trace := &Trace{
		Cycle:       1,
		Addr:        128,
		Instruction: Instruction{Opcode: OP_BREAK},
		Data:        Memory{Base: 132},
	}

	expected := "--------------------\n" +
		"Cycle:1\t128\tBREAK\n" +
		"\n" +
		"Registers\n" +
		"R00:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"R08:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"R16:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"R24:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"\n" +
		"Data\n" +
		"\n"

	assert.Equal(expected, trace.String())
}
