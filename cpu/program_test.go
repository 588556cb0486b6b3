package cpu

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wordAddi  = "11100000000010000000000000000101" // ADDI R1, R0, #5
	wordBreak = "00010100000000000000000000000000" // BREAK
	wordNeg1  = "11111111111111111111111111111111" // -1
	wordSeven = "00000000000000000000000000000111" // 7
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	prog, err := Disassemble([]string{wordAddi, wordBreak, wordNeg1, wordSeven, wordBreak})
	require.NoError(err)

	assert.Equal(2, len(prog.Code))
	assert.Equal(Instruction{Opcode: OP_ADDI, Rt: 1, Imm: 5}, prog.Code[0])
	assert.Equal(OP_BREAK, prog.Code[1].Opcode)
	assert.Equal(132, prog.BreakAddr())

	assert.Equal(136, prog.Data.Base)
	assert.Equal([]int64{-1, 7, 335544320}, prog.Data.Words)
	assert.Equal(148, prog.Data.End())

	expected := strings.Join([]string{
		wordAddi + "\t128\tADDI R1, R0, #5",
		wordBreak + "\t132\tBREAK",
		wordNeg1 + "\t136\t-1",
		wordSeven + "\t140\t7",
		wordBreak + "\t144\t335544320",
		"",
	}, "\n")
	assert.Equal(expected, prog.String())

	var addrs []int
	for line := range prog.Listing() {
		addrs = append(addrs, line.Addr)
	}
	assert.Equal([]int{128, 132, 136, 140, 144}, addrs)
}

func TestDisassembleBreakOnly(t *testing.T) {
	assert := assert.New(t)

	prog, err := Disassemble([]string{wordBreak})
	assert.NoError(err)
	assert.Equal(1, len(prog.Code))
	assert.Equal(0, len(prog.Data.Words))
	assert.Equal(132, prog.Data.Base)
	assert.Equal(wordBreak+"\t128\tBREAK\n", prog.String())
}

func TestDisassembleSizes(t *testing.T) {
	assert := assert.New(t)

	for k := range 6 {
		var words []string
		for range k {
			words = append(words, wordAddi)
		}
		words = append(words, wordBreak)
		for range 5 - k {
			words = append(words, wordSeven)
		}

		prog, err := Disassemble(words)
		assert.NoError(err)
		assert.Equal(k+1, len(prog.Code))
		assert.Equal(5-k, len(prog.Data.Words))
		assert.Equal(BEGIN_ADDR+(k+1)*WORD_SIZE, prog.Data.Base)

		lines := slices.Collect(prog.Listing())
		assert.Equal(6, len(lines))
		for n, line := range lines {
			assert.Equal(BEGIN_ADDR+n*WORD_SIZE, line.Addr)
		}
	}
}

func TestDisassembleErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name  string
		words []string
		err   error
		addr  int
	}{
		{"empty", nil, ErrMissingTerminator, 128},
		{"no_break", []string{wordAddi, wordAddi}, ErrMissingTerminator, 136},
		{"short", []string{wordAddi, "0101"}, ErrMalformedWord, 132},
		{"data_malformed", []string{wordBreak, "2222222222222222222222222222222x"}, ErrMalformedWord, 132},
		{"unknown", []string{wordAddi, "01000000000000000000000000000000", wordBreak}, ErrUnknownOpcode, 132},
	}

	for _, entry := range table {
		prog, err := Disassemble(entry.words)
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var ed *ErrDecode
		if assert.True(errors.As(err, &ed), entry.name) {
			assert.Equal(entry.addr, ed.Addr, entry.name)
		}
	}
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := Memory{Base: 200, Words: []int64{1, 2}}

	value, ok := mem.Load(204)
	assert.True(ok)
	assert.Equal(int64(2), value)

	_, ok = mem.Load(208)
	assert.False(ok)
	_, ok = mem.Load(202)
	assert.False(ok)
	_, ok = mem.Load(196)
	assert.False(ok)

	clone := mem.Clone()

	mem.Store(200, 9)
	mem.Store(216, 4)
	mem.Store(198, 5)
	mem.Store(128, 6)
	assert.Equal([]int64{9, 2}, mem.Words)
	assert.Equal(208, mem.End())
	assert.Equal(map[int]int64{216: 4, 198: 5, 128: 6}, mem.Spill)

	for addr, expect := range map[int]int64{200: 9, 216: 4, 198: 5, 128: 6} {
		value, ok = mem.Load(addr)
		assert.True(ok, addr)
		assert.Equal(expect, value, addr)
	}
	_, ok = mem.Load(212)
	assert.False(ok)

	assert.Equal([]int64{1, 2}, clone.Words)
	assert.Nil(clone.Spill)

	again := mem.Clone()
	again.Store(128, 7)
	value, _ = mem.Load(128)
	assert.Equal(int64(6), value)

	var addrs []int
	for addr := range mem.All() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]int{200, 204}, addrs)
}

func TestProgramFetch(t *testing.T) {
	assert := assert.New(t)

	prog, err := Disassemble([]string{wordAddi, wordBreak})
	assert.NoError(err)

	ins, ok := prog.Fetch(128)
	assert.True(ok)
	assert.Equal(OP_ADDI, ins.Opcode)

	for _, addr := range []int{124, 130, 136, 0} {
		_, ok = prog.Fetch(addr)
		assert.False(ok, addr)
	}
}
