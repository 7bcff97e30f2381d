// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline splits policy text into a chapter → section → article →
// paragraph → item → point hierarchy and locates clause references in it.
//
// An Outline is an arena: nodes live in one slice and refer to their parent
// and children by index. Node 0 is always the document root. Outlines are
// immutable once Build returns and are safe for concurrent readers.
package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// NodeID indexes a node inside its Outline.
type NodeID int

// NoNode marks an absent parent.
const NoNode NodeID = -1

// Node is one structural unit of a policy. Text holds only the node's own
// text; descendant text is reached through Children.
type Node struct {
	ID       NodeID        `json:"id"`
	Level    types.Level   `json:"level"`
	Label    string        `json:"label,omitempty"`
	Key      *types.NumKey `json:"key,omitempty"`
	Unit     string        `json:"unit,omitempty"`
	Text     string        `json:"text,omitempty"`
	Line     int           `json:"line"`
	Parent   NodeID        `json:"parent"`
	Children []NodeID      `json:"children,omitempty"`
}

// IsHeading reports whether the node is a chapter, section or article
// heading.
func (n Node) IsHeading() bool {
	switch n.Level {
	case types.LevelChapter, types.LevelSection, types.LevelArticle:
		return true
	}
	return false
}

// Outline is the arena of nodes for one policy.
type Outline struct {
	nodes []Node
}

func newOutline() *Outline {
	return &Outline{nodes: []Node{{ID: 0, Level: types.LevelDocument, Parent: NoNode}}}
}

// Root returns the document node id.
func (o *Outline) Root() NodeID { return 0 }

// Len returns the number of nodes including the root.
func (o *Outline) Len() int { return len(o.nodes) }

// Node returns the node with the given id. It panics on an out-of-range id.
func (o *Outline) Node(id NodeID) Node { return o.nodes[id] }

// Nodes returns all nodes in document order. The slice must not be modified.
func (o *Outline) Nodes() []Node { return o.nodes }

// Children returns the ordered child ids of id.
func (o *Outline) Children(id NodeID) []NodeID { return o.nodes[id].Children }

// Parent returns the parent of id, or NoNode for the root.
func (o *Outline) Parent(id NodeID) NodeID { return o.nodes[id].Parent }

// Path returns the ids from the first node below the root down to id.
func (o *Outline) Path(id NodeID) []NodeID {
	var path []NodeID
	for cur := id; cur != NoNode && cur != o.Root(); cur = o.nodes[cur].Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// QualifiedLabel joins the article-and-below labels on the path to id,
// e.g. "第九条第二款（一）". Chapter and section labels are omitted.
func (o *Outline) QualifiedLabel(id NodeID) string {
	var b strings.Builder
	for _, p := range o.Path(id) {
		n := o.nodes[p]
		if n.Level == types.LevelChapter || n.Level == types.LevelSection {
			continue
		}
		b.WriteString(n.Label)
	}
	if b.Len() == 0 {
		return o.nodes[id].Label
	}
	return b.String()
}

// Walk visits id and its descendants in document order. Returning false from
// fn skips the node's children.
func (o *Outline) Walk(id NodeID, fn func(Node) bool) {
	n := o.nodes[id]
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		o.Walk(c, fn)
	}
}

// SubtreeText returns the text of id and all of its descendants, one node
// per line, in document order.
func (o *Outline) SubtreeText(id NodeID) string {
	var parts []string
	o.Walk(id, func(n Node) bool {
		if n.Text != "" {
			parts = append(parts, n.Text)
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// titleBrackets pairs the opening and closing marks of a bracketed article
// title such as "【立法目的】".
var titleBrackets = map[rune]rune{'【': '】', '〔': '〕', '[': ']'}

// HeadingText returns the heading of a chapter, section or article node:
// its marker and title, never body text. Chapter and section headings keep
// the whole heading line ("第一章 总则"). An article contributes its label
// plus a bracketed title leading its first paragraph, if any. Other levels
// return "".
func (o *Outline) HeadingText(id NodeID) string {
	n := o.nodes[id]
	switch n.Level {
	case types.LevelChapter, types.LevelSection:
		return n.Text
	case types.LevelArticle:
	default:
		return ""
	}
	if len(n.Children) == 0 {
		return n.Label
	}
	first := o.nodes[n.Children[0]]
	if first.Line != n.Line || first.Level != types.LevelParagraph {
		return n.Label
	}
	lead, size := utf8.DecodeRuneInString(first.Text)
	if closing, ok := titleBrackets[lead]; ok {
		if end := strings.IndexRune(first.Text[size:], closing); end >= 0 {
			return n.Label + first.Text[:size+end+utf8.RuneLen(closing)]
		}
	}
	return n.Label
}

// Count returns how many nodes of the given level the outline holds.
func (o *Outline) Count(level types.Level) int {
	n := 0
	for _, node := range o.nodes {
		if node.Level == level {
			n++
		}
	}
	return n
}

// TreeNode is the nested rendering of an outline used in API responses.
type TreeNode struct {
	Level    types.Level `json:"level" yaml:"level"`
	Label    string      `json:"label,omitempty" yaml:"label,omitempty"`
	Key      string      `json:"key,omitempty" yaml:"key,omitempty"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Children []TreeNode  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree renders the subtree rooted at id as nested values.
func (o *Outline) Tree(id NodeID) TreeNode {
	n := o.nodes[id]
	t := TreeNode{Level: n.Level, Label: n.Label, Text: n.Text}
	if n.Key != nil {
		t.Key = n.Key.String()
	}
	for _, c := range n.Children {
		t.Children = append(t.Children, o.Tree(c))
	}
	return t
}

func (o *Outline) add(parent NodeID, n Node) NodeID {
	id := NodeID(len(o.nodes))
	n.ID = id
	n.Parent = parent
	if n.Key != nil {
		k := o.freeKey(parent, n.Level, *n.Key)
		n.Key = &k
	}
	o.nodes = append(o.nodes, n)
	o.nodes[parent].Children = append(o.nodes[parent].Children, id)
	return id
}

// freeKey returns k, or k with the next unused Sub when a sibling of the
// same level already holds k.
func (o *Outline) freeKey(parent NodeID, level types.Level, k types.NumKey) types.NumKey {
	used := map[types.NumKey]bool{}
	for _, c := range o.nodes[parent].Children {
		sib := o.nodes[c]
		if sib.Level == level && sib.Key != nil {
			used[*sib.Key] = true
		}
	}
	for used[k] {
		k.Sub++
	}
	return k
}

// nextKey returns the ordinal key for a new implicit child of parent.
func (o *Outline) nextKey(parent NodeID, level types.Level) types.NumKey {
	n := 0
	for _, c := range o.nodes[parent].Children {
		if o.nodes[c].Level == level {
			n++
		}
	}
	return types.NumKey{Major: n + 1}
}

func (o *Outline) appendText(id NodeID, text string) {
	n := &o.nodes[id]
	if n.Text == "" {
		n.Text = text
		return
	}
	n.Text += "\n" + text
}
