package cpu

import (
	"io"
	"strconv"
	"strings"
)

const (
	TRACE_SEPARATOR = "--------------------"
	TRACE_ROW_WORDS = 8 // Values per register and data row.
)

// Trace is the machine state after a single executed cycle.
type Trace struct {
	Cycle       int
	Addr        int
	Instruction Instruction
	Register    [REGISTER_COUNT]int64
	Data        Memory
}

// writeRow appends a labelled, tab separated row of values.
func writeRow(sb *strings.Builder, label string, values []int64) {
	sb.WriteString(label)
	sb.WriteByte(':')
	for _, value := range values {
		sb.WriteByte('\t')
		sb.WriteString(strconv.FormatInt(value, 10))
	}
	sb.WriteByte('\n')
}

// String renders the trace record.
func (tr *Trace) String() string {
	var sb strings.Builder

	sb.WriteString(TRACE_SEPARATOR + "\n")
	sb.WriteString("Cycle:" + strconv.Itoa(tr.Cycle) + "\t" + strconv.Itoa(tr.Addr) + "\t" + tr.Instruction.String() + "\n")
	sb.WriteString("\n")

	sb.WriteString("Registers\n")
	for n := 0; n < REGISTER_COUNT; n += TRACE_ROW_WORDS {
		label := "R" + strconv.Itoa(n/10) + strconv.Itoa(n%10)
		writeRow(&sb, label, tr.Register[n:n+TRACE_ROW_WORDS])
	}
	sb.WriteString("\n")

	sb.WriteString("Data\n")
	words := tr.Data.Words
	for n := 0; n < len(words); n += TRACE_ROW_WORDS {
		end := min(n+TRACE_ROW_WORDS, len(words))
		writeRow(&sb, strconv.Itoa(tr.Data.Base+n*WORD_SIZE), words[n:end])
	}
	sb.WriteString("\n")

	return sb.String()
}

// WriteTo writes the rendered trace record to w.
func (tr *Trace) WriteTo(w io.Writer) (n int64, err error) {
	wrote, err := io.WriteString(w, tr.String())
	return int64(wrote), err
}
