package cpu

import (
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/ezrec/mipssim/internal"
)

const (
	BEGIN_ADDR = 128 // Address of the first program word.
	WORD_SIZE  = 4   // Bytes per word.
)

// Memory is a contiguous, word addressed data image. Stores to addresses
// outside of the image are kept in Spill; they can be loaded back, but are
// not part of the image.
type Memory struct {
	Base  int           // Address of Words[0].
	Words []int64       // Data values.
	Spill map[int]int64 // Values stored outside of Words.
}

// End returns the address following the last word.
func (mem *Memory) End() int {
	return mem.Base + len(mem.Words)*WORD_SIZE
}

// index returns the word index of addr, if addr is word aligned within the image.
func (mem *Memory) index(addr int) (index int, ok bool) {
	if addr < mem.Base || (addr-mem.Base)%WORD_SIZE != 0 {
		return
	}
	index = (addr - mem.Base) / WORD_SIZE
	ok = index < len(mem.Words)
	return
}

// Load reads the word at addr, from the image or from a previous store
// outside of it.
func (mem *Memory) Load(addr int) (value int64, ok bool) {
	index, ok := mem.index(addr)
	if ok {
		value = mem.Words[index]
		return
	}
	value, ok = mem.Spill[addr]
	return
}

// Store writes the word at addr. Any address is accepted.
func (mem *Memory) Store(addr int, value int64) {
	if index, ok := mem.index(addr); ok {
		mem.Words[index] = value
		return
	}
	if mem.Spill == nil {
		mem.Spill = make(map[int]int64)
	}
	mem.Spill[addr] = value
}

// Clone returns an independent copy of the image.
func (mem *Memory) Clone() Memory {
	return Memory{Base: mem.Base, Words: slices.Clone(mem.Words), Spill: maps.Clone(mem.Spill)}
}

// All iterates over the (address, value) pairs of the image.
func (mem *Memory) All() iter.Seq2[int, int64] {
	return func(yield func(addr int, value int64) bool) {
		for n, value := range mem.Words {
			if !yield(mem.Base+n*WORD_SIZE, value) {
				return
			}
		}
	}
}

// Line is a single line of the disassembly listing.
type Line struct {
	Word Word
	Addr int
	Text string
}

// String renders the listing line, without a line terminator.
func (line Line) String() string {
	return string(line.Word) + "\t" + strconv.Itoa(line.Addr) + "\t" + line.Text
}

// Program is a disassembled binary: the program image, followed by the
// initial data image.
type Program struct {
	Code  []Instruction // Instructions, from BEGIN_ADDR.
	Words []Word        // Raw words, code followed by data.
	Data  Memory        // Initial data image.
}

// BreakAddr returns the address of the terminating BREAK.
func (prog *Program) BreakAddr() int {
	return BEGIN_ADDR + (len(prog.Code)-1)*WORD_SIZE
}

// Fetch returns the instruction at addr.
func (prog *Program) Fetch(addr int) (ins Instruction, ok bool) {
	if addr < BEGIN_ADDR || (addr-BEGIN_ADDR)%WORD_SIZE != 0 {
		return
	}
	index := (addr - BEGIN_ADDR) / WORD_SIZE
	if index >= len(prog.Code) {
		return
	}
	return prog.Code[index], true
}

// Codes iterates over the (address, instruction) pairs of the program image.
func (prog *Program) Codes() iter.Seq2[int, Instruction] {
	return func(yield func(addr int, ins Instruction) bool) {
		for n, ins := range prog.Code {
			if !yield(BEGIN_ADDR+n*WORD_SIZE, ins) {
				return
			}
		}
	}
}

// Listing iterates over the disassembly, code lines first, then data.
func (prog *Program) Listing() iter.Seq[Line] {
	code := internal.IterSeq2Map(prog.Codes(), func(addr int, ins Instruction) Line {
		return Line{Word: prog.Words[(addr-BEGIN_ADDR)/WORD_SIZE], Addr: addr, Text: ins.String()}
	})
	data := internal.IterSeq2Map(prog.Data.All(), func(addr int, value int64) Line {
		return Line{Word: prog.Words[(addr-BEGIN_ADDR)/WORD_SIZE], Addr: addr, Text: strconv.FormatInt(value, 10)}
	})

	return internal.IterSeqConcat(code, data)
}

// WriteListing writes the disassembly listing to w.
func (prog *Program) WriteListing(w io.Writer) (n int64, err error) {
	for line := range prog.Listing() {
		var wrote int
		wrote, err = io.WriteString(w, line.String()+"\n")
		n += int64(wrote)
		if err != nil {
			return
		}
	}

	return
}

// String returns the full disassembly listing.
func (prog *Program) String() string {
	var sb strings.Builder
	prog.WriteListing(&sb)
	return sb.String()
}

// WriteTo writes the disassembly listing to w.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	return prog.WriteListing(w)
}

// Disassembler converts binary words into a Program.
type Disassembler struct {
	Verbose bool // If set, logs each decoded word.
}

// Disassemble decodes a sequence of binary words.
func Disassemble(words []string) (prog *Program, err error) {
	dis := &Disassembler{}
	return dis.Disassemble(words)
}

// Disassemble decodes words in order, starting at BEGIN_ADDR. Words up to
// and including the first BREAK are instructions; the remainder are signed
// data values.
func (dis *Disassembler) Disassemble(words []string) (prog *Program, err error) {
	prog = &Program{
		Code:  make([]Instruction, 0, len(words)),
		Words: make([]Word, 0, len(words)),
	}

	addr := BEGIN_ADDR
	text := ""

	defer func() {
		if err != nil {
			err = &ErrDecode{Addr: addr, Word: text, Err: err}
			prog = nil
		}
	}()

	is_code := true
	for _, text = range words {
		var word Word
		word, err = ParseWord(text)
		if err != nil {
			return
		}
		prog.Words = append(prog.Words, word)

		if is_code {
			var ins Instruction
			ins, err = Decode(word)
			if err != nil {
				return
			}
			if dis.Verbose {
				log.Printf("dis: %v: %v %s", addr, ins, spew.Sdump(ins))
			}
			prog.Code = append(prog.Code, ins)
			if ins.Opcode == OP_BREAK {
				is_code = false
				prog.Data.Base = addr + WORD_SIZE
			}
		} else {
			prog.Data.Words = append(prog.Data.Words, SignedValue(string(word)))
		}

		addr += WORD_SIZE
	}

	if is_code {
		text = ""
		err = ErrMissingTerminator
		return
	}

	return
}
