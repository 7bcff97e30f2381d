// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"strconv"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// refLevels is the order Locate narrows a reference in.
var refLevels = []types.Level{
	types.LevelArticle,
	types.LevelParagraph,
	types.LevelItem,
	types.LevelPoint,
}

// Locate returns the nodes ref points at, in document order. Each specified
// level narrows the candidates to descendants of that level whose key
// matches; unspecified levels are skipped. The deepest specified level's
// nodes are returned as subtree roots and are not expanded further. A
// specified level with no match yields nil rather than a nearby node.
//
// Opaque labels (e.g. "第三章") are matched literally against node labels
// before the numbered levels are applied. An empty ref selects the root.
func Locate(o *Outline, ref types.ClauseRef) []NodeID {
	cands := []NodeID{o.Root()}

	for _, label := range ref.Opaque {
		want := labelMatchKey(label)
		var next []NodeID
		for _, c := range cands {
			o.Walk(c, func(n Node) bool {
				if n.ID != c && labelMatchKey(n.Label) == want {
					next = append(next, n.ID)
					return false
				}
				return true
			})
		}
		if len(next) == 0 {
			return nil
		}
		cands = next
	}

	for _, level := range refLevels {
		key := ref.At(level)
		if key == nil {
			continue
		}
		var next []NodeID
		for _, c := range cands {
			for _, d := range o.descendantsAt(c, level) {
				if k := o.nodes[d].Key; k != nil && *k == *key {
					next = append(next, d)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		cands = next
	}
	return cands
}

// descendantsAt collects descendants of id at level, descending only through
// nodes that sit above level.
func (o *Outline) descendantsAt(id NodeID, level types.Level) []NodeID {
	var out []NodeID
	for _, c := range o.nodes[id].Children {
		n := o.nodes[c]
		switch {
		case n.Level == level:
			out = append(out, c)
		case n.Level.Above(level):
			out = append(out, o.descendantsAt(c, level)...)
		}
	}
	return out
}

// labelMatchKey folds a label so "第3章", "第三章" and "第 三 章" compare
// equal.
func labelMatchKey(label string) string {
	folded := []rune(normalize.TitleKey(label))
	var out []rune
	for i := 0; i < len(folded); {
		if !normalize.IsNumeralRune(folded[i]) {
			out = append(out, folded[i])
			i++
			continue
		}
		j := i
		for j < len(folded) && normalize.IsNumeralRune(folded[j]) {
			j++
		}
		if n, ok := normalize.ParseNumber(string(folded[i:j])); ok {
			out = append(out, []rune(strconv.Itoa(n))...)
		} else {
			out = append(out, folded[i:j]...)
		}
		i = j
	}
	return string(out)
}
