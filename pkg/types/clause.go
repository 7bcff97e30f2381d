// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Level is the structural depth of an outline node.
type Level string

const (
	LevelDocument  Level = "document"
	LevelChapter   Level = "chapter"
	LevelSection   Level = "section"
	LevelArticle   Level = "article"
	LevelParagraph Level = "paragraph"
	LevelItem      Level = "item"
	LevelPoint     Level = "point"
)

// levelDepth orders levels from the document root downwards.
var levelDepth = map[Level]int{
	LevelDocument:  0,
	LevelChapter:   1,
	LevelSection:   2,
	LevelArticle:   3,
	LevelParagraph: 4,
	LevelItem:      5,
	LevelPoint:     6,
}

// Depth returns the nesting depth of the level, or -1 for unknown levels.
func (l Level) Depth() int {
	if d, ok := levelDepth[l]; ok {
		return d
	}
	return -1
}

// Above reports whether l sits strictly above other in the hierarchy.
func (l Level) Above(other Level) bool {
	return l.Depth() >= 0 && other.Depth() >= 0 && l.Depth() < other.Depth()
}

// NumKey is a normalized clause number. Major is the number as written in
// any numeral style; Sub distinguishes sub-articles ("第九条之一") and
// otherwise-duplicate siblings. Sub is zero when absent.
type NumKey struct {
	Major int `json:"major" yaml:"major"`
	Sub   int `json:"sub,omitempty" yaml:"sub,omitempty"`
}

// String renders the key as "9" or "9-1".
func (k NumKey) String() string {
	if k.Sub == 0 {
		return fmt.Sprintf("%d", k.Major)
	}
	return fmt.Sprintf("%d-%d", k.Major, k.Sub)
}

// Key returns a pointer to a NumKey with the given major number.
func Key(major int) *NumKey {
	return &NumKey{Major: major}
}

// ClauseRef is a partial path into a policy outline. Nil levels are
// unspecified and match any node at that level.
type ClauseRef struct {
	Article   *NumKey `json:"article,omitempty" yaml:"article,omitempty"`
	Paragraph *NumKey `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`
	Item      *NumKey `json:"item,omitempty" yaml:"item,omitempty"`
	Point     *NumKey `json:"point,omitempty" yaml:"point,omitempty"`

	// Units record the level word the citation used, e.g. "条" or "点"
	// for articles and "款" or "段" for paragraphs.
	ArticleUnit   string `json:"article_unit,omitempty" yaml:"article_unit,omitempty"`
	ParagraphUnit string `json:"paragraph_unit,omitempty" yaml:"paragraph_unit,omitempty"`
	ItemUnit      string `json:"item_unit,omitempty" yaml:"item_unit,omitempty"`

	// Opaque holds labels whose level keyword was not recognized
	// (e.g. "第三章"). They are matched literally against node labels.
	Opaque []string `json:"opaque,omitempty" yaml:"opaque,omitempty"`

	// Raw is the clause expression as written.
	Raw string `json:"raw" yaml:"raw"`
}

// IsEmpty reports whether no level and no opaque label is set.
func (r ClauseRef) IsEmpty() bool {
	return !r.HasLevels() && len(r.Opaque) == 0
}

// HasLevels reports whether at least one numbered level is specified.
func (r ClauseRef) HasLevels() bool {
	return r.Article != nil || r.Paragraph != nil || r.Item != nil || r.Point != nil
}

// At returns the key specified for a level, or nil.
func (r ClauseRef) At(level Level) *NumKey {
	switch level {
	case LevelArticle:
		return r.Article
	case LevelParagraph:
		return r.Paragraph
	case LevelItem:
		return r.Item
	case LevelPoint:
		return r.Point
	}
	return nil
}

// Label renders the reference in conventional Chinese citation form,
// e.g. "第8条第3款第2项".
func (r ClauseRef) Label() string {
	var b strings.Builder
	write := func(k *NumKey, unit, fallback string) {
		if k == nil {
			return
		}
		if unit == "" {
			unit = fallback
		}
		fmt.Fprintf(&b, "第%s%s", k, unit)
	}
	write(r.Article, r.ArticleUnit, "条")
	write(r.Paragraph, r.ParagraphUnit, "款")
	write(r.Item, r.ItemUnit, "项")
	write(r.Point, "", "目")
	for _, label := range r.Opaque {
		b.WriteString(label)
	}
	return b.String()
}

// LawGroup is one law named in a citation together with the clauses cited
// from it, in the order written.
type LawGroup struct {
	RawTitle string      `json:"raw_title" yaml:"raw_title"`
	Clauses  []ClauseRef `json:"clauses" yaml:"clauses"`
}

// CitationQuery is the parsed form of a citation key. Group order follows
// the order laws were written in.
type CitationQuery struct {
	Groups []LawGroup `json:"groups" yaml:"groups"`
}

// ClauseCount returns the total number of clause references across groups.
func (q CitationQuery) ClauseCount() int {
	n := 0
	for _, g := range q.Groups {
		n += len(g.Clauses)
	}
	return n
}
