package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeqConcat(t *testing.T) {
	assert := assert.New(t)

	seq := IterSeqConcat(slices.Values([]int{1, 2}), slices.Values([]int{}), slices.Values([]int{3}))
	assert.Equal([]int{1, 2, 3}, slices.Collect(seq))

	var first []int
	for v := range seq {
		first = append(first, v)
		if v == 2 {
			break
		}
	}
	assert.Equal([]int{1, 2}, first)
}

func TestIterSeq2Map(t *testing.T) {
	assert := assert.New(t)

	seq := IterSeq2Map(slices.All([]string{"a", "b"}), func(n int, s string) string {
		return s + string(rune('0'+n))
	})
	assert.Equal([]string{"a0", "b1"}, slices.Collect(seq))

	keys := IterSeq2Map(maps.All(map[int]int{4: 16}), func(k, v int) int { return k + v })
	assert.Equal([]int{20}, slices.Collect(keys))
}
