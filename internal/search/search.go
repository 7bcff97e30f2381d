// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search ranks indexed policies against a free-text query and
// returns scored hits with highlighted snippets.
//
// Metadata filters are applied before any scoring work, so a filtered-out
// policy never appears whatever its score.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/internal/outline"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Query holds the search parameters.
type Query struct {
	Text    string
	Filters types.Filters
	Limit   int
}

// Terms returns the distinct whitespace-separated terms of the query,
// folded for matching, in the order written.
func (q Query) Terms() [][]rune {
	var terms [][]rune
	seen := map[string]bool{}
	for _, f := range strings.Fields(q.Text) {
		folded, _ := normalize.FoldMapped(f)
		if seen[string(folded)] {
			continue
		}
		seen[string(folded)] = true
		terms = append(terms, folded)
	}
	return terms
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// Limit clamps a requested result count to the configured bounds.
func Limit(requested int, cfg types.SearchConfig) int {
	cfg = cfg.WithDefaults()
	switch {
	case requested <= 0:
		return cfg.DefaultTopK
	case requested > cfg.MaxTopK:
		return cfg.MaxTopK
	}
	return requested
}

type scored struct {
	rec   *index.PolicyRecord
	score float64
	hit   types.SearchHit
}

// Search scores every policy that passes q.Filters and returns the best
// Limit(q.Limit) hits. Ties in score go to the shorter title, then to the
// earlier indexed policy.
func Search(idx *index.Index, q Query, cfg types.SearchConfig) []types.SearchHit {
	cfg = cfg.WithDefaults()
	terms := q.Terms()
	if len(terms) == 0 {
		return nil
	}

	var results []scored
	for _, rec := range idx.All() {
		if !q.Filters.Match(rec.Meta) || !mayMatch(rec, terms) {
			continue
		}
		score := scoreRecord(rec, terms, cfg)
		if score <= 0 {
			continue
		}
		results = append(results, scored{rec: rec, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.score != b.score {
			return a.score > b.score
		}
		la, lb := utf8.RuneCountInString(a.rec.Title), utf8.RuneCountInString(b.rec.Title)
		if la != lb {
			return la < lb
		}
		return a.rec.Order() < b.rec.Order()
	})

	if limit := Limit(q.Limit, cfg); len(results) > limit {
		results = results[:limit]
	}
	hits := make([]types.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, buildHit(r.rec, r.score, terms, cfg))
	}
	return hits
}

func mayMatch(rec *index.PolicyRecord, terms [][]rune) bool {
	for _, t := range terms {
		if rec.MayContain(t) {
			return true
		}
	}
	return false
}

// scoreRecord sums, per term, the damped term frequency in the title,
// the heading lines and the body, weighting the first two by their boosts.
func scoreRecord(rec *index.PolicyRecord, terms [][]rune, cfg types.SearchConfig) float64 {
	score := 0.0
	for _, t := range terms {
		term := string(t)
		score += cfg.TitleBoost * damp(strings.Count(rec.FoldedTitle(), term))
		score += cfg.HeadingBoost * damp(strings.Count(rec.FoldedHeadings(), term))
		score += damp(strings.Count(rec.FoldedBody(), term))
	}
	return score
}

func damp(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 1 + math.Log(float64(tf))
}

func buildHit(rec *index.PolicyRecord, score float64, terms [][]rune, cfg types.SearchConfig) types.SearchHit {
	hit := types.SearchHit{PolicyID: rec.ID, Title: rec.Title, Score: score}

	body := rec.FoldedBody()
	pos, length := -1, 0
	for _, t := range terms {
		if i := strings.Index(body, string(t)); i >= 0 && (pos < 0 || i < pos) {
			pos, length = i, len(t)
		}
	}
	raw := []rune(rec.RawText)
	if pos < 0 {
		hit.Snippet = window(raw, 0, 0, cfg)
		return hit
	}
	first := utf8.RuneCountInString(body[:pos])
	at := rec.RawOffset(first)
	hit.Snippet = window(raw, at, rec.RawOffset(first+length-1)+1-at, cfg)
	hit.Clause = clauseAt(rec, raw, at)
	return hit
}

// window cuts SnippetLength runes of raw around the match [at, at+length),
// wrapping the match in the highlight markers. Line breaks become spaces.
func window(raw []rune, at, length int, cfg types.SearchConfig) string {
	size := cfg.SnippetLength
	if size < length {
		size = length
	}
	start := at - (size-length)/3
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > len(raw) {
		end = len(raw)
		if start = end - size; start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("…")
	}
	if length == 0 {
		b.WriteString(string(raw[start:end]))
	} else {
		b.WriteString(string(raw[start:at]))
		b.WriteString(cfg.HighlightPre)
		b.WriteString(string(raw[at : at+length]))
		b.WriteString(cfg.HighlightPost)
		b.WriteString(string(raw[at+length : end]))
	}
	if end < len(raw) {
		b.WriteString("…")
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// clauseAt returns the outline node whose source line holds rune offset at.
func clauseAt(rec *index.PolicyRecord, raw []rune, at int) *types.NodeRef {
	line := 0
	for _, r := range raw[:at] {
		if r == '\n' {
			line++
		}
	}
	o := rec.Outline
	owner := outline.NoNode
	for _, n := range o.Nodes() {
		if n.ID == o.Root() {
			continue
		}
		if n.Line > line {
			break
		}
		owner = n.ID
	}
	if owner == outline.NoNode {
		return nil
	}
	n := o.Node(owner)
	return &types.NodeRef{
		PolicyID: rec.ID,
		Node:     int(owner),
		Level:    n.Level,
		Label:    o.QualifiedLabel(owner),
	}
}

// FormatTable writes hits as a human-readable table to w.
func FormatTable(hits []types.SearchHit, w io.Writer) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-7s  %-40s  %-16s  %s\n", "Rank", "Score", "Title", "Clause", "Snippet")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, h := range hits {
		clause := ""
		if h.Clause != nil {
			clause = h.Clause.Label
		}
		fmt.Fprintf(w, "%-4d  %-7.2f  %-40s  %-16s  %s\n",
			i+1, h.Score, truncate(h.Title, 40), truncate(clause, 16), h.Snippet)
	}
	fmt.Fprintf(w, "\n%d results\n", len(hits))
}

// FormatJSON writes hits as indented JSON to w.
func FormatJSON(hits []types.SearchHit, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(hits)
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max-1]) + "…"
}
