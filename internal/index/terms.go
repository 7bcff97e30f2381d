// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// termFilterFPRate is the target false positive rate of per-record filters.
const termFilterFPRate = 0.01

// termFilter records the unigrams and bigrams of a folded text. A negative
// answer proves a term is absent; a positive one only says it may occur.
type termFilter struct {
	f *bloom.BloomFilter
}

func newTermFilter(texts ...string) *termFilter {
	var grams []string
	for _, text := range texts {
		grams = appendGrams(grams, []rune(text))
	}
	n := uint(len(grams))
	if n == 0 {
		n = 1
	}
	tf := &termFilter{f: bloom.NewWithEstimates(n, termFilterFPRate)}
	for _, g := range grams {
		tf.f.AddString(g)
	}
	return tf
}

// appendGrams adds every rune and every pair of adjacent runes, never
// spanning a space.
func appendGrams(grams []string, rs []rune) []string {
	for i, r := range rs {
		if r == ' ' {
			continue
		}
		grams = append(grams, string(r))
		if i+1 < len(rs) && rs[i+1] != ' ' {
			grams = append(grams, string(rs[i:i+2]))
		}
	}
	return grams
}

// mayContain reports whether the folded term could occur in the text.
func (tf *termFilter) mayContain(term []rune) bool {
	switch len(term) {
	case 0:
		return true
	case 1:
		return tf.f.TestString(string(term))
	}
	for i := 0; i+1 < len(term); i++ {
		if !tf.f.TestString(string(term[i : i+2])) {
			return false
		}
	}
	return true
}
