// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// num matches one numeral in any style ParseNumber accepts.
const num = `[0-9零〇○一二三四五六七八九十百千万两俩壹贰叁肆伍陆柒捌玖拾佰仟]+`

// Heading patterns run on width-folded lines (see normalize.FoldRunes), so
// byte offsets can be mapped back to rune offsets of the raw line.
var (
	chapterRe   = regexp.MustCompile(`^第(` + num + `)([编章])\s*`)
	sectionRe   = regexp.MustCompile(`^第(` + num + `)节\s*`)
	articleRe   = regexp.MustCompile(`^第(` + num + `)条(?:之(` + num + `))?\s*`)
	paragraphRe = regexp.MustCompile(`^第(` + num + `)([款段])\s*`)
	itemRe      = regexp.MustCompile(`^\((` + num + `)\)\s*`)
	pointRe     = regexp.MustCompile(`^(` + num + `)([、.:])\s*`)
	arabicRe    = regexp.MustCompile(`^[0-9]+$`)

	conclusionRe = regexp.MustCompile(`^(本通知|本办法|本规定|本细则|本决定|本规则|本指引|本意见|本公告|本条例|本法|本准则|本指南|本制度)自.+(实施|施行|执行|印发|公布|发布)`)
	closingRe    = regexp.MustCompile(`^特此(通知|公告|通告|说明)`)
)

// heading is one classified line.
type heading struct {
	level  types.Level
	key    types.NumKey
	unit   string
	label  string
	rest   string // raw text after the heading marker
	arabic bool   // point-style marker written with Arabic digits
	marker string // "、", "." or ":" for point-style markers
}

// Build parses text into an Outline. Breakpoints the extractor already
// identified take precedence over pattern detection for their lines. Text
// without any recognizable structure yields a lone document node holding
// the full text.
func Build(text string, breakpoints []types.Breakpoint) *Outline {
	b := &builder{
		o:       newOutline(),
		forced:  make(map[int]types.Breakpoint, len(breakpoints)),
		chapter: NoNode, section: NoNode, article: NoNode,
		para: NoNode, item: NoNode, point: NoNode,
	}
	for _, bp := range breakpoints {
		b.forced[bp.Line] = bp
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	b.hasArticles = hasArticleHeadings(lines, b.forced)
	for i, line := range lines {
		raw := strings.TrimSpace(strings.Trim(line, "　"))
		if raw == "" {
			continue
		}
		b.line(i, raw)
	}
	return b.o
}

type builder struct {
	o           *Outline
	forced      map[int]types.Breakpoint
	hasArticles bool

	chapter, section, article, para, item, point NodeID
}

func hasArticleHeadings(lines []string, forced map[int]types.Breakpoint) bool {
	for _, bp := range forced {
		if bp.Level == types.LevelArticle {
			return true
		}
	}
	for _, line := range lines {
		folded := string(normalize.FoldRunes(strings.TrimSpace(line)))
		if articleRe.MatchString(folded) {
			return true
		}
	}
	return false
}

func (b *builder) line(i int, raw string) {
	h, ok := classify(raw)
	if bp, forced := b.forced[i]; forced && bp.Level.Depth() > 0 {
		h = forcedHeading(bp, h, ok, raw)
		ok = true
	}
	if !ok {
		b.body(i, raw)
		return
	}

	switch h.level {
	case types.LevelChapter:
		b.chapter = b.o.add(b.o.Root(), b.node(h, i, raw))
		b.section = NoNode
		b.resetArticle()
	case types.LevelSection:
		b.section = b.o.add(b.container(), b.node(h, i, raw))
		b.resetArticle()
	case types.LevelArticle:
		b.resetArticle()
		b.article = b.o.add(b.container(), b.node(h, i, h.label))
		if h.rest != "" {
			b.implicitParagraph(i, h.rest)
		}
	case types.LevelParagraph:
		if b.article == NoNode {
			b.body(i, raw)
			return
		}
		b.item, b.point = NoNode, NoNode
		b.para = b.o.add(b.article, b.node(h, i, h.rest))
	case types.LevelItem, types.LevelPoint:
		b.enumerated(h, i, raw)
	default:
		b.body(i, raw)
	}
}

// enumerated places "（一）", "一、" and "1." style lines.
func (b *builder) enumerated(h heading, i int, raw string) {
	if h.level == types.LevelPoint {
		switch {
		case !h.arabic && h.marker == "、" && !b.hasArticles:
			// Documents numbered 一、二、 instead of 第N条 use those
			// markers as their article level.
			h.level, h.unit = types.LevelArticle, "点"
			b.resetArticle()
			b.article = b.o.add(b.container(), b.node(h, i, h.label))
			if h.rest != "" {
				b.implicitParagraph(i, h.rest)
			}
			return
		case b.item == NoNode:
			h.level, h.unit = types.LevelItem, "项"
		}
	}

	if h.level == types.LevelItem {
		b.point = NoNode
		b.item = b.o.add(b.itemParent(), b.node(h, i, raw))
		return
	}
	b.point = b.o.add(b.item, b.node(h, i, raw))
}

func (b *builder) body(i int, raw string) {
	if b.article == NoNode {
		b.o.appendText(b.container(), raw)
		return
	}
	if len(b.o.Children(b.article)) > 0 && isConclusion(raw) {
		b.resetArticle()
		b.o.appendText(b.o.Root(), raw)
		return
	}
	b.implicitParagraph(i, raw)
}

func (b *builder) implicitParagraph(i int, text string) {
	b.item, b.point = NoNode, NoNode
	key := b.o.nextKey(b.article, types.LevelParagraph)
	b.para = b.o.add(b.article, Node{
		Level: types.LevelParagraph,
		Key:   &key,
		Unit:  "款",
		Label: "第" + normalize.IntToChinese(key.Major) + "款",
		Text:  text,
		Line:  i,
	})
}

func (b *builder) node(h heading, i int, text string) Node {
	key := h.key
	return Node{Level: h.level, Key: &key, Unit: h.unit, Label: h.label, Text: text, Line: i}
}

func (b *builder) container() NodeID {
	switch {
	case b.section != NoNode:
		return b.section
	case b.chapter != NoNode:
		return b.chapter
	}
	return b.o.Root()
}

func (b *builder) itemParent() NodeID {
	switch {
	case b.para != NoNode:
		return b.para
	case b.article != NoNode:
		return b.article
	}
	return b.container()
}

func (b *builder) resetArticle() {
	b.article, b.para, b.item, b.point = NoNode, NoNode, NoNode, NoNode
}

func isConclusion(raw string) bool {
	n := normalize.Normalize(raw)
	return conclusionRe.MatchString(n) || closingRe.MatchString(n)
}

// classify recognizes a heading marker at the start of raw.
func classify(raw string) (heading, bool) {
	folded := string(normalize.FoldRunes(raw))
	rest := func(m []int) string {
		runes := []rune(raw)
		return strings.TrimSpace(string(runes[utf8.RuneCountInString(folded[:m[1]]):]))
	}

	if m := chapterRe.FindStringSubmatchIndex(folded); m != nil {
		n, ok := normalize.ParseNumber(folded[m[2]:m[3]])
		if ok {
			unit := folded[m[4]:m[5]]
			return heading{level: types.LevelChapter, key: types.NumKey{Major: n}, unit: unit,
				label: "第" + folded[m[2]:m[3]] + unit, rest: rest(m)}, true
		}
	}
	if m := sectionRe.FindStringSubmatchIndex(folded); m != nil {
		if n, ok := normalize.ParseNumber(folded[m[2]:m[3]]); ok {
			return heading{level: types.LevelSection, key: types.NumKey{Major: n}, unit: "节",
				label: "第" + folded[m[2]:m[3]] + "节", rest: rest(m)}, true
		}
	}
	if m := articleRe.FindStringSubmatchIndex(folded); m != nil {
		if n, ok := normalize.ParseNumber(folded[m[2]:m[3]]); ok {
			h := heading{level: types.LevelArticle, key: types.NumKey{Major: n}, unit: "条", rest: rest(m)}
			h.label = "第" + folded[m[2]:m[3]] + "条"
			if m[4] >= 0 {
				sub, ok := normalize.ParseNumber(folded[m[4]:m[5]])
				if ok {
					h.key.Sub = sub
					h.label += "之" + folded[m[4]:m[5]]
				}
			}
			return h, true
		}
	}
	if m := paragraphRe.FindStringSubmatchIndex(folded); m != nil {
		if n, ok := normalize.ParseNumber(folded[m[2]:m[3]]); ok {
			unit := folded[m[4]:m[5]]
			return heading{level: types.LevelParagraph, key: types.NumKey{Major: n}, unit: unit,
				label: "第" + folded[m[2]:m[3]] + unit, rest: rest(m)}, true
		}
	}
	if m := itemRe.FindStringSubmatchIndex(folded); m != nil {
		if n, ok := normalize.ParseNumber(folded[m[2]:m[3]]); ok {
			return heading{level: types.LevelItem, key: types.NumKey{Major: n}, unit: "项",
				label: "（" + folded[m[2]:m[3]] + "）", rest: rest(m),
				arabic: arabicRe.MatchString(folded[m[2]:m[3]])}, true
		}
	}
	if m := pointRe.FindStringSubmatchIndex(folded); m != nil {
		digits, marker := folded[m[2]:m[3]], folded[m[4]:m[5]]
		arabic := arabicRe.MatchString(digits)
		after := folded[m[5]:]
		// "1.5倍" and "2024.1" are numbers, not list markers; so is "10:30".
		if marker != "、" && (!arabic || startsWithDigit(after)) {
			return heading{}, false
		}
		if n, ok := normalize.ParseNumber(digits); ok {
			return heading{level: types.LevelPoint, key: types.NumKey{Major: n}, unit: "目",
				label: digits + marker, rest: rest(m), arabic: arabic, marker: marker}, true
		}
	}
	return heading{}, false
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r >= '0' && r <= '9'
}

// forcedHeading turns an extractor breakpoint into a heading, keeping any
// number the pattern detection found on the same line.
func forcedHeading(bp types.Breakpoint, detected heading, ok bool, raw string) heading {
	h := heading{level: bp.Level, label: bp.Label, rest: raw}
	if ok {
		h.key, h.unit, h.rest = detected.key, detected.unit, detected.rest
		h.arabic, h.marker = detected.arabic, detected.marker
		if h.label == "" {
			h.label = detected.label
		}
	} else if k, found := labelKey(bp.Label); found {
		h.key = k
	}
	if h.label == "" {
		h.label = raw
	}
	if h.unit == "" {
		h.unit = defaultUnit[bp.Level]
	}
	if h.level == types.LevelPoint && h.marker == "" {
		// A forced point never gets promoted to an article.
		h.arabic = true
	}
	return h
}

var defaultUnit = map[types.Level]string{
	types.LevelChapter:   "章",
	types.LevelSection:   "节",
	types.LevelArticle:   "条",
	types.LevelParagraph: "款",
	types.LevelItem:      "项",
	types.LevelPoint:     "目",
}

var labelNumRe = regexp.MustCompile(`(` + num + `)`)

func labelKey(label string) (types.NumKey, bool) {
	m := labelNumRe.FindString(string(normalize.FoldRunes(label)))
	if m == "" {
		return types.NumKey{}, false
	}
	n, ok := normalize.ParseNumber(m)
	return types.NumKey{Major: n}, ok
}
