// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strings"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Breaks are folded runes after which a 第 or ( starts a new expression.
var (
	delimiters = map[rune]bool{
		' ': true, ',': true, '、': true, ';': true, '.': true, ':': true, '\t': true,
	}
	connectors = map[rune]bool{
		'及': true, '和': true, '与': true, '或': true, '跟': true, '其': true, '并': true,
	}
)

func isBreak(r rune) bool { return delimiters[r] || connectors[r] }

// Level words. 条 and 点 both address the article level; 点 is how
// notices number their top-level provisions.
var levelUnits = map[string]types.Level{
	"条": types.LevelArticle,
	"点": types.LevelArticle,
	"款": types.LevelParagraph,
	"段": types.LevelParagraph,
	"项": types.LevelItem,
	"目": types.LevelPoint,
}

// Unit words kept verbatim as opaque labels.
var opaqueUnits = []string{"部分", "编", "章", "节", "篇", "部"}

// expression is one clause expression in folded form plus the raw runes it
// was folded from; both have the same length.
type expression struct {
	folded []rune
	raw    []rune
}

// splitExpressions cuts a clause list before every 第 or ( that follows a
// delimiter or connector.
func splitExpressions(text string) []expression {
	raw := []rune(text)
	folded := normalize.FoldRunes(text)

	var out []expression
	emit := func(from, to int) {
		for from < to && (isBreak(folded[from]) || folded[from] == '\n') {
			from++
		}
		for to > from && (isBreak(folded[to-1]) || folded[to-1] == '\n') {
			to--
		}
		if from < to {
			out = append(out, expression{folded: folded[from:to], raw: raw[from:to]})
		}
	}
	start := 0
	for i := 1; i < len(folded); i++ {
		if (folded[i] == '第' || folded[i] == '(') && isBreak(folded[i-1]) {
			emit(start, i)
			start = i
		}
	}
	emit(start, len(folded))
	return out
}

// token is one numbered level reference inside an expression.
type token struct {
	key  types.NumKey
	unit string // level or opaque unit word, empty for a bare 第N
	raw  string
}

// tokens scans an expression left to right. Text that is not a numbered
// reference ("的规定", "中") is skipped.
func (e expression) tokens() []token {
	f := e.folded
	var out []token
	for i := 0; i < len(f); {
		start := i
		switch {
		case f[i] == '第':
			j := i + 1
			for j < len(f) && f[j] == ' ' {
				j++
			}
			key, j, ok := readNumber(f, j)
			if !ok {
				i++
				continue
			}
			unit, j := readUnit(f, j)
			key, j, _ = readSub(f, j, key)
			out = append(out, token{key: key, unit: unit, raw: string(e.raw[start:j])})
			i = j
		case f[i] == '(':
			key, j, ok := readNumber(f, i)
			if !ok {
				i++
				continue
			}
			unit, j := readUnit(f, j)
			if unit == "" {
				unit = "项"
			}
			out = append(out, token{key: key, unit: unit, raw: string(e.raw[start:j])})
			i = j
		case normalize.IsNumeralRune(f[i]):
			key, j, ok := readNumber(f, i)
			if !ok {
				i++
				continue
			}
			unit, k := readUnit(f, j)
			if unit == "" {
				i = j
				continue
			}
			key, k, _ = readSub(f, k, key)
			out = append(out, token{key: key, unit: unit, raw: string(e.raw[start:k])})
			i = k
		default:
			i++
		}
	}
	return out
}

// readNumber reads "八", "８", "(八)" or "八之一" starting at j.
func readNumber(f []rune, j int) (types.NumKey, int, bool) {
	if j >= len(f) {
		return types.NumKey{}, j, false
	}
	if f[j] == '(' {
		end := j + 1
		for end < len(f) && end-j <= 8 && f[end] != ')' {
			end++
		}
		if end >= len(f) || f[end] != ')' {
			return types.NumKey{}, j, false
		}
		n, ok := normalize.ParseNumber(string(f[j+1 : end]))
		if !ok {
			return types.NumKey{}, j, false
		}
		return readSub(f, end+1, types.NumKey{Major: n})
	}
	end := j
	for end < len(f) && normalize.IsNumeralRune(f[end]) {
		end++
	}
	if end == j {
		return types.NumKey{}, j, false
	}
	n, ok := normalize.ParseNumber(string(f[j:end]))
	if !ok {
		return types.NumKey{}, j, false
	}
	return readSub(f, end, types.NumKey{Major: n})
}

func readSub(f []rune, j int, key types.NumKey) (types.NumKey, int, bool) {
	if j < len(f) && f[j] == '之' {
		end := j + 1
		for end < len(f) && normalize.IsNumeralRune(f[end]) {
			end++
		}
		if n, ok := normalize.ParseNumber(string(f[j+1 : end])); ok && end > j+1 {
			key.Sub = n
			return key, end, true
		}
	}
	return key, j, true
}

func readUnit(f []rune, j int) (string, int) {
	if j >= len(f) {
		return "", j
	}
	rest := string(f[j:])
	for unit := range levelUnits {
		if strings.HasPrefix(rest, unit) {
			return unit, j + 1
		}
	}
	for _, unit := range opaqueUnits {
		if strings.HasPrefix(rest, unit) {
			return unit, j + len([]rune(unit))
		}
	}
	return "", j
}

// refs turns an expression into clause references. Tokens chain into one
// reference until a level repeats or goes shallower, which starts a new
// one. A bare 第N is an article, or a paragraph when an article is already
// known from this expression or an earlier one.
func (e expression) refs(haveArticle bool) []types.ClauseRef {
	var out []types.ClauseRef
	var cur types.ClauseRef
	var raw []string
	flush := func() {
		if !cur.IsEmpty() {
			cur.Raw = strings.Join(raw, "")
			out = append(out, cur)
		}
		cur, raw = types.ClauseRef{}, nil
	}

	for _, tok := range e.tokens() {
		key := tok.key
		level, known := levelUnits[tok.unit]
		if tok.unit == "" {
			level, known = types.LevelArticle, true
			if cur.Article != nil || (haveArticle && !cur.HasLevels()) {
				level = types.LevelParagraph
			}
		}
		if !known {
			if cur.HasLevels() {
				flush()
			}
			cur.Opaque = append(cur.Opaque, tok.raw)
			raw = append(raw, tok.raw)
			continue
		}
		if deepestDepth(cur) >= level.Depth() {
			flush()
		}
		switch level {
		case types.LevelArticle:
			cur.Article, cur.ArticleUnit = &key, tok.unit
		case types.LevelParagraph:
			cur.Paragraph, cur.ParagraphUnit = &key, tok.unit
		case types.LevelItem:
			cur.Item, cur.ItemUnit = &key, tok.unit
		case types.LevelPoint:
			cur.Point = &key
		}
		raw = append(raw, tok.raw)
	}
	flush()
	return out
}

func deepestDepth(r types.ClauseRef) int {
	d := -1
	for _, l := range []types.Level{types.LevelArticle, types.LevelParagraph, types.LevelItem, types.LevelPoint} {
		if r.At(l) != nil {
			d = l.Depth()
		}
	}
	return d
}
