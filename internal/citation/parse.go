// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation parses citation keys such as
// "《中华人民共和国反洗钱法》第一条，第三条\n《证券法》第八条，第三款" into
// structured law groups and clause references.
//
// Parsing is lenient: clause syntax the parser does not understand yields a
// reference with fewer levels set, or an opaque label, never an error. The
// only failure is a key with no law title to anchor it.
package citation

import (
	"fmt"
	"strings"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// ParseError reports a citation key without any recognizable law title.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing citation %q: %s", e.Input, e.Reason)
}

// Parse splits raw into law groups and parses each group's clauses. Groups
// start at a newline or at each 《…》 title. A line without book-title marks
// may name its law bare ("反洗钱法第三条" or "反洗钱法：第三条"); a line that
// starts with 第 continues the previous group.
func Parse(raw string) (types.CitationQuery, error) {
	if strings.TrimSpace(raw) == "" {
		return types.CitationQuery{}, &ParseError{Input: raw, Reason: "empty citation"}
	}

	p := &parser{}
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' }) {
		p.line(line)
	}
	if len(p.groups) == 0 {
		return types.CitationQuery{}, &ParseError{Input: raw, Reason: "no law title found"}
	}
	return types.CitationQuery{Groups: p.groups}, nil
}

// ParseClauses builds a single-group query from a separate title and clause
// string, the {title, item} request form. An empty clause string selects the
// whole policy.
func ParseClauses(title, clauses string) (types.CitationQuery, error) {
	t := cleanTitle(title)
	if t == "" {
		return types.CitationQuery{}, &ParseError{Input: title, Reason: "no law title found"}
	}
	return types.CitationQuery{Groups: []types.LawGroup{{
		RawTitle: t,
		Clauses:  parseClauseList(clauses),
	}}}, nil
}

type parser struct {
	groups []types.LawGroup
}

func (p *parser) line(line string) {
	rs := []rune(line)
	open := indexRune(rs, 0, '《')
	if open < 0 {
		p.bare(line)
		return
	}
	if prefix := string(rs[:open]); strings.TrimSpace(prefix) != "" {
		p.bare(prefix)
	}

	for open >= 0 {
		next := indexRune(rs, open+1, '《')
		end := len(rs)
		if next >= 0 {
			end = next
		}
		title, rest := splitMarked(rs[open+1 : end])
		if t := cleanTitle(title); t != "" {
			p.groups = append(p.groups, types.LawGroup{RawTitle: t, Clauses: parseClauseList(rest)})
		} else {
			p.continueLast(rest)
		}
		open = next
	}
}

// splitMarked separates the text after a 《 into the title and the clause
// text. An unclosed mark ends the title at the first 第.
func splitMarked(rs []rune) (title, rest string) {
	if c := indexRune(rs, 0, '》'); c >= 0 {
		return string(rs[:c]), string(rs[c+1:])
	}
	if d := indexRune(rs, 0, '第'); d >= 0 {
		return string(rs[:d]), string(rs[d:])
	}
	return string(rs), ""
}

// bare handles text without book-title marks.
func (p *parser) bare(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if startsClause(text) {
		p.continueLast(text)
		return
	}

	rs := []rune(text)
	for i, r := range rs {
		if r != '：' && r != ':' {
			continue
		}
		if rest := strings.TrimSpace(string(rs[i+1:])); rest == "" || startsClause(rest) {
			p.add(string(rs[:i]), rest)
			return
		}
	}
	if d := indexRune(rs, 0, '第'); d > 0 {
		p.add(string(rs[:d]), string(rs[d:]))
		return
	}
	p.add(text, "")
}

func (p *parser) add(title, clauses string) {
	if t := cleanTitle(title); t != "" {
		p.groups = append(p.groups, types.LawGroup{RawTitle: t, Clauses: parseClauseList(clauses)})
		return
	}
	p.continueLast(clauses)
}

// continueLast attaches clauses to the most recent group. Clauses before
// any title have nothing to attach to and are dropped.
func (p *parser) continueLast(clauses string) {
	if len(p.groups) == 0 || strings.TrimSpace(clauses) == "" {
		return
	}
	g := &p.groups[len(p.groups)-1]
	g.Clauses = mergeClauses(g.Clauses, clauses)
}

func startsClause(s string) bool {
	r := []rune(strings.TrimSpace(s))
	if len(r) == 0 {
		return false
	}
	return r[0] == '第' || r[0] == '(' || r[0] == '（'
}

// titleTrim lists runes trimmed from both ends of a title.
const titleTrim = " \t　,，、;；:：.。\"'“”‘’《》<>的"

// cleanTitle trims punctuation, quotes and connectors around a title.
func cleanTitle(s string) string {
	s = strings.Trim(strings.TrimSpace(s), titleTrim)
	for _, c := range []string{"根据", "依据", "按照", "参照"} {
		s = strings.TrimPrefix(s, c)
	}
	return strings.Trim(s, titleTrim)
}

func indexRune(rs []rune, from int, r rune) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

// Normalized renders q back into a canonical key, one law per line, for
// logging and cache keys.
func Normalized(q types.CitationQuery) string {
	var b strings.Builder
	for i, g := range q.Groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("《" + normalize.StripBookMarks(g.RawTitle) + "》")
		for j, c := range g.Clauses {
			if j > 0 {
				b.WriteString("，")
			}
			b.WriteString(c.Label())
		}
	}
	return b.String()
}
