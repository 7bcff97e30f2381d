// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"github.com/pdiddy/policy-engine/pkg/types"
)

// grouper accumulates the clause references of one law group.
//
// An expression that names an article sets the base for the expressions
// after it. An expression without an article ("第三款", "（二）项") is read
// against that base: 款 and 段 attach to the base article, 项 and 目 to the
// base paragraph when there is one. The combined reference replaces the
// previous reference when it only adds levels below it, so "第八条，第三款"
// is the single reference 8/3, while "第八条，第三款，第四款" is 8/3 and 8/4
// and "第一条，第三条" stays two references.
type grouper struct {
	out         []types.ClauseRef
	articleBase *types.ClauseRef
	paraBase    *types.ClauseRef
}

func parseClauseList(text string) []types.ClauseRef {
	var g grouper
	g.addText(text)
	return g.out
}

// mergeClauses continues an existing group with more clause text.
func mergeClauses(existing []types.ClauseRef, text string) []types.ClauseRef {
	g := grouper{out: append([]types.ClauseRef(nil), existing...)}
	for i := len(existing) - 1; i >= 0; i-- {
		if existing[i].Article != nil {
			g.setBase(existing[i])
			break
		}
	}
	g.addText(text)
	return g.out
}

func (g *grouper) addText(text string) {
	for _, e := range splitExpressions(text) {
		for _, ref := range e.refs(g.articleBase != nil) {
			g.add(ref)
		}
	}
}

func (g *grouper) setBase(ref types.ClauseRef) {
	base := types.ClauseRef{
		Article:     ref.Article,
		ArticleUnit: ref.ArticleUnit,
		Opaque:      ref.Opaque,
		Raw:         ref.Raw,
	}
	g.articleBase = &base
	g.paraBase = nil
	if ref.Paragraph != nil {
		pb := base
		pb.Paragraph, pb.ParagraphUnit = ref.Paragraph, ref.ParagraphUnit
		g.paraBase = &pb
	}
}

func (g *grouper) add(ref types.ClauseRef) {
	if ref.Article != nil {
		g.out = append(g.out, ref)
		g.setBase(ref)
		return
	}
	if g.articleBase == nil || !ref.HasLevels() {
		g.out = append(g.out, ref)
		return
	}

	var combined types.ClauseRef
	if ref.Paragraph != nil {
		combined = *g.articleBase
		combined.Paragraph, combined.ParagraphUnit = ref.Paragraph, ref.ParagraphUnit
		pb := combined
		pb.Raw = pb.Raw + "，" + ref.Raw
		g.paraBase = &pb
	} else {
		base := g.articleBase
		if g.paraBase != nil {
			base = g.paraBase
		}
		combined = *base
	}
	combined.Item, combined.ItemUnit, combined.Point = ref.Item, ref.ItemUnit, ref.Point
	combined.Opaque = append(append([]string(nil), combined.Opaque...), ref.Opaque...)
	if ref.Paragraph != nil {
		combined.Raw = g.paraBase.Raw
	} else {
		combined.Raw = combined.Raw + "，" + ref.Raw
	}

	if n := len(g.out); n > 0 && refines(g.out[n-1], combined) {
		g.out[n-1] = combined
		return
	}
	g.out = append(g.out, combined)
}

// refines reports whether b keeps every level a sets, so b is a or a
// reference below it.
func refines(a, b types.ClauseRef) bool {
	for _, l := range []types.Level{types.LevelArticle, types.LevelParagraph, types.LevelItem, types.LevelPoint} {
		ka := a.At(l)
		if ka == nil {
			continue
		}
		kb := b.At(l)
		if kb == nil || *ka != *kb {
			return false
		}
	}
	return true
}
