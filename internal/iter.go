package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterSeq2Map converts a dual-return iterator into a single-value iterator.
func IterSeq2Map[K any, V any, T any](seq iter.Seq2[K, V], fn func(K, V) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for key, val := range seq {
			if !yield(fn(key, val)) {
				return
			}
		}
	}
}
