// Package io provides the text ports of the simulator: reading binary
// program words, and writing listings and traces.
package io

import (
	"bufio"
	"io"
	"strings"
)

// Tape provides sequential I/O for the simulator. Input holds one binary
// word per line; Output receives the rendered text.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	lineNo int
}

// LineNo returns the number of input lines consumed.
func (tc *Tape) LineNo() int {
	return tc.lineNo
}

// Words reads all remaining words from the input. Carriage returns and
// blank lines are ignored.
func (tc *Tape) Words() (words []string, err error) {
	if tc.Input == nil {
		err = ErrNoInput
		return
	}

	scanner := bufio.NewScanner(tc.Input)
	for scanner.Scan() {
		tc.lineNo++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}
		words = append(words, text)
	}

	err = scanner.Err()
	return
}

// Write sends text to the output.
func (tc *Tape) Write(text string) (err error) {
	if tc.Output == nil {
		return ErrNoOutput
	}

	_, err = io.WriteString(tc.Output, text)
	return
}

// WriteFrom sends the output of a writer-to to the output.
func (tc *Tape) WriteFrom(src io.WriterTo) (err error) {
	if tc.Output == nil {
		return ErrNoOutput
	}

	_, err = src.WriteTo(tc.Output)
	return
}
