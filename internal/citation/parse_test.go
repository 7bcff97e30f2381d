// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// labels renders each group's clauses with ClauseRef.Label.
func labels(q types.CitationQuery) map[string][]string {
	out := map[string][]string{}
	for _, g := range q.Groups {
		ls := []string{}
		for _, c := range g.Clauses {
			ls = append(ls, c.Label())
		}
		out[g.RawTitle] = ls
	}
	return out
}

func TestParseMultiLaw(t *testing.T) {
	q, err := Parse("《A》第一条，第三条\n《B》第八条，第三款")
	require.NoError(t, err)
	require.Len(t, q.Groups, 2)

	a := q.Groups[0]
	assert.Equal(t, "A", a.RawTitle)
	require.Len(t, a.Clauses, 2)
	assert.Equal(t, types.Key(1), a.Clauses[0].Article)
	assert.Equal(t, types.Key(3), a.Clauses[1].Article)

	// "第八条，第三款" reads as one compound reference.
	b := q.Groups[1]
	assert.Equal(t, "B", b.RawTitle)
	require.Len(t, b.Clauses, 1)
	assert.Equal(t, types.Key(8), b.Clauses[0].Article)
	assert.Equal(t, types.Key(3), b.Clauses[0].Paragraph)
	assert.Equal(t, "第八条，第三款", b.Clauses[0].Raw)
	assert.Equal(t, 3, q.ClauseCount())
}

func TestParseNumeralEquivalence(t *testing.T) {
	forms := []string{"《L》第（八）条", "《L》第八条", "《L》第8条", "《L》第(８)条", "《L》8条"}
	var want *types.NumKey
	for _, f := range forms {
		q, err := Parse(f)
		require.NoError(t, err, f)
		require.Len(t, q.Groups, 1, f)
		require.Len(t, q.Groups[0].Clauses, 1, f)
		got := q.Groups[0].Clauses[0].Article
		require.NotNil(t, got, f)
		if want == nil {
			want = got
		}
		assert.Equal(t, *want, *got, f)
	}
}

func TestParseClauseGrouping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"independent articles", "《L》第一条，第三条", []string{"第1条", "第3条"}},
		{"compound article and paragraph", "《L》第八条，第三款", []string{"第8条第3款"}},
		{"second paragraph after compound", "《L》第八条，第三款，第四款", []string{"第8条第3款", "第8条第4款"}},
		{"chained in one expression", "《L》第八条第三款", []string{"第8条第3款"}},
		{"chained then sibling paragraph", "《L》第八条第三款，第四款", []string{"第8条第3款", "第8条第4款"}},
		{"items share the article", "《L》第十条第（一）项、第（二）项", []string{"第10条第1项", "第10条第2项"}},
		{"item attaches to base paragraph", "《L》第十条第一款，第（二）项", []string{"第10条第1款第2项"}},
		{"connector splits", "《L》第一条及第三条", []string{"第1条", "第3条"}},
		{"bare number after article is paragraph", "《L》第八条第三", []string{"第8条第3款"}},
		{"bare number after earlier article", "《L》第八条，第三", []string{"第8条第3款"}},
		{"sub-article", "《L》第十条之一第二款", []string{"第10-1条第2款"}},
		{"point unit kept", "《L》第四点，第五项", []string{"第4点第5项"}},
		{"parenthesized item alone", "《L》（八）", []string{"第8项"}},
		{"trailing words ignored", "《L》第三条的规定", []string{"第3条"}},
		{"no clauses", "《L》", []string{}},
		{"point level", "《L》第二条第一款第三项第4目", []string{"第2条第1款第3项第4目"}},
		{"segment paragraph unit", "《L》第二条第一段", []string{"第2条第1段"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, map[string][]string{"L": tt.want}, labels(q))
		})
	}
}

func TestParsePointAndItemAreNotErrors(t *testing.T) {
	q, err := Parse("反洗钱法第四点，第五项")
	require.NoError(t, err)
	require.Len(t, q.Groups, 1)
	assert.Equal(t, "反洗钱法", q.Groups[0].RawTitle)
	require.Len(t, q.Groups[0].Clauses, 1)

	ref := q.Groups[0].Clauses[0]
	assert.Equal(t, "点", ref.ArticleUnit)
	assert.Equal(t, "项", ref.ItemUnit)
	assert.Equal(t, types.Key(4), ref.Article)
	assert.Equal(t, types.Key(5), ref.Item)
}

func TestParseOpaqueLabels(t *testing.T) {
	q, err := Parse("《L》第三章第五条")
	require.NoError(t, err)
	require.Len(t, q.Groups[0].Clauses, 1)
	ref := q.Groups[0].Clauses[0]
	assert.Equal(t, []string{"第三章"}, ref.Opaque)
	assert.Equal(t, types.Key(5), ref.Article)

	q, err = Parse("《L》第二部分")
	require.NoError(t, err)
	require.Len(t, q.Groups[0].Clauses, 1)
	assert.Equal(t, []string{"第二部分"}, q.Groups[0].Clauses[0].Opaque)
	assert.False(t, q.Groups[0].Clauses[0].HasLevels())
}

func TestParseTitleForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string][]string
	}{
		{"bare title", "反洗钱法第三条", map[string][]string{"反洗钱法": {"第3条"}}},
		{"colon form", "反洗钱法：第三条，第五条", map[string][]string{"反洗钱法": {"第3条", "第5条"}}},
		{"ascii colon", "证券法: 第一条", map[string][]string{"证券法": {"第1条"}}},
		{"title only", "中华人民共和国证券法", map[string][]string{"中华人民共和国证券法": {}}},
		{"two marked titles on one line", "《A》第一条和《B》第二条", map[string][]string{"A": {"第1条"}, "B": {"第2条"}}},
		{"unclosed mark", "《A第一条", map[string][]string{"A": {"第1条"}}},
		{"leading preposition", "根据《A》第一条", map[string][]string{"A": {"第1条"}}},
		{"continuation line", "《A》第一条\n第二条", map[string][]string{"A": {"第1条", "第2条"}}},
		{"continuation keeps base", "《A》第八条\n第三款", map[string][]string{"A": {"第8条第3款"}}},
		{"crlf lines", "《A》第一条\r\n《B》第二条", map[string][]string{"A": {"第1条"}, "B": {"第2条"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(q))
		})
	}
}

func TestParseGroupOrder(t *testing.T) {
	q, err := Parse("《乙》第一条\n《甲》第一条")
	require.NoError(t, err)
	require.Len(t, q.Groups, 2)
	assert.Equal(t, "乙", q.Groups[0].RawTitle)
	assert.Equal(t, "甲", q.Groups[1].RawTitle)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "第一条，第三条", "\n\n"} {
		_, err := Parse(in)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), "input %q", in)
		assert.NotEmpty(t, pe.Reason)
	}
}

func TestParseClauses(t *testing.T) {
	q, err := ParseClauses("《反洗钱法》", "第八条，第三款")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"反洗钱法": {"第8条第3款"}}, labels(q))

	q, err = ParseClauses("反洗钱法", "")
	require.NoError(t, err)
	require.Len(t, q.Groups, 1)
	assert.Empty(t, q.Groups[0].Clauses)

	_, err = ParseClauses(" 《》 ", "第一条")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestNormalized(t *testing.T) {
	q, err := Parse("《A》第一条，第三条\n《B》第八条，第三款")
	require.NoError(t, err)
	assert.Equal(t, "《A》第1条，第3条\n《B》第8条第3款", Normalized(q))
}
