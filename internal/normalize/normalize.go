// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes Chinese regulatory text for matching.
// Corpus text, titles and queries all pass through the same folding so that
// full-width digits, punctuation variants and display whitespace never cause
// a missed match. Book-title marks (《》) are preserved because the citation
// parser uses them as law delimiters.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// punct maps CJK punctuation that NFKC leaves alone onto ASCII forms.
// Enumeration comma (、) and book-title marks are kept.
var punct = map[rune]rune{
	'。': '.',
	'“': '"',
	'”': '"',
	'‘': '\'',
	'’': '\'',
	'【': '[',
	'】': ']',
	'〔': '(',
	'〕': ')',
	'〖': '[',
	'〗': ']',
	'—': '-',
	'－': '-',
	'～': '~',
}

// Normalize folds s for matching: NFKC width folding, CJK punctuation to
// ASCII, lower-case, and whitespace runs (including U+3000 and line breaks)
// collapsed to a single space. The result is trimmed. Normalize is
// idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(foldPunct(unicode.ToLower(r)))
	}
	return b.String()
}

// FoldRune folds a single rune the way Normalize does, without composition
// or whitespace handling. It keeps a one-to-one rune mapping so callers can
// translate match offsets back into the original text.
func FoldRune(r rune) rune {
	p := width.LookupRune(r)
	if p.Kind() == width.EastAsianFullwidth {
		if n := p.Narrow(); n != 0 {
			r = n
		}
	}
	if unicode.IsSpace(r) {
		return ' '
	}
	return foldPunct(unicode.ToLower(r))
}

// FoldRunes applies FoldRune to every rune of s.
func FoldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = FoldRune(r)
	}
	return rs
}

// FoldMapped folds s for term matching. Each rune is expanded through NFKC
// and then folded with FoldRune, so compatibility forms such as "⑴" and
// "Ⅻ" match their plain spellings ("(1)", "xii"). offsets[i] is the index in
// []rune(s) of the rune that produced folded[i].
func FoldMapped(s string) (folded []rune, offsets []int) {
	folded = make([]rune, 0, len(s))
	offsets = make([]int, 0, len(s))
	i := 0
	for _, r := range s {
		if exp := string(r); !norm.NFKC.IsNormalString(exp) {
			for _, e := range norm.NFKC.String(exp) {
				folded = append(folded, FoldRune(e))
				offsets = append(offsets, i)
			}
		} else {
			folded = append(folded, FoldRune(r))
			offsets = append(offsets, i)
		}
		i++
	}
	return folded, offsets
}

// FoldText returns the folded form of s produced by FoldMapped.
func FoldText(s string) string {
	folded, _ := FoldMapped(s)
	return string(folded)
}

func foldPunct(r rune) rune {
	if m, ok := punct[r]; ok {
		return m
	}
	return r
}

// titleStrip lists runes removed from titles before comparison.
var titleStrip = map[rune]bool{
	'《': true, '》': true, '<': true, '>': true,
	'"': true, '\'': true, ' ': true, '·': true,
}

// TitleKey returns the comparison key for a law title: the normalized form
// with book-title marks, quotes and spaces removed.
func TitleKey(s string) string {
	s = Normalize(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if titleStrip[r] {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripBookMarks removes surrounding 《》 (in either width) from a title
// and trims whitespace.
func StripBookMarks(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "《")
	s = strings.TrimSuffix(s, "》")
	return strings.TrimSpace(s)
}
