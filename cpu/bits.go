package cpu

import (
	"strings"
)

const (
	WORD_BITS = 32 // Characters in an instruction word.
)

// Word is a single 32 character binary instruction or data word.
type Word string

// ParseWord validates a textual word.
func ParseWord(text string) (word Word, err error) {
	text = strings.TrimSpace(text)
	if len(text) != WORD_BITS {
		err = ErrWord(text)
		return
	}
	for _, c := range text {
		if c != '0' && c != '1' {
			err = ErrWord(text)
			return
		}
	}

	word = Word(text)
	return
}

// Field returns the bits in the range [start, end).
func (word Word) Field(start, end int) string {
	return string(word[start:end])
}

// Unsigned returns the unsigned magnitude of a bit string.
func Unsigned(bits string) (value int64) {
	for _, c := range bits {
		value <<= 1
		if c == '1' {
			value |= 1
		}
	}

	return
}

// SignedValue decodes a two's complement bit string.
// The first character is the sign bit.
func SignedValue(bits string) int64 {
	if bits[0] == '0' {
		return Unsigned(bits[1:])
	}

	var inverted int64
	for _, c := range bits[1:] {
		inverted <<= 1
		if c == '0' {
			inverted |= 1
		}
	}

	return -(inverted + 1)
}

// EncodeUnsigned renders value as a width bit unsigned string.
func EncodeUnsigned(value int64, width int) (bits string, err error) {
	if value < 0 || (width < 63 && value >= int64(1)<<width) {
		err = ErrImmediateRange
		return
	}

	return encodeBits(uint64(value), width), nil
}

// EncodeSigned renders value as a width bit two's complement string.
func EncodeSigned(value int64, width int) (bits string, err error) {
	limit := int64(1) << (width - 1)
	if value < -limit || value >= limit {
		err = ErrImmediateRange
		return
	}

	return encodeBits(uint64(value), width), nil
}

// encodeBits renders the low width bits of value, MSB first.
func encodeBits(value uint64, width int) string {
	out := make([]byte, width)
	for n := range width {
		out[width-1-n] = '0' + byte((value>>n)&1)
	}
	return string(out)
}
