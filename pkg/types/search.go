// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the policy-engine:
// extractor artifacts, policy metadata, clause references, search hits and
// engine configuration.
package types

import (
	"strings"
	"time"
)

// NodeRef points at one outline node of an indexed policy.
type NodeRef struct {
	PolicyID PolicyID `json:"policy_id" yaml:"policy_id"`
	Node     int      `json:"node" yaml:"node"`
	Level    Level    `json:"level" yaml:"level"`
	Label    string   `json:"label" yaml:"label"`
}

// SearchHit is one ranked result of a free-text query.
type SearchHit struct {
	// PolicyID identifies the matching policy.
	PolicyID PolicyID `json:"policy_id" yaml:"policy_id"`

	// Title is the canonical policy title.
	Title string `json:"title" yaml:"title"`

	// Score is the combined relevance score; higher is better.
	Score float64 `json:"score" yaml:"score"`

	// Clause is the outline node holding the first body match, if any.
	Clause *NodeRef `json:"matched_clause,omitempty" yaml:"matched_clause,omitempty"`

	// Snippet is a window of text around the first match with the matched
	// term wrapped in highlight markers.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// DateRange bounds a policy's effective date (falling back to its issue
// date). Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from,omitempty" yaml:"from,omitempty"`
	To   time.Time `json:"to,omitempty" yaml:"to,omitempty"`
}

// Contains reports whether t falls inside the range. A zero t never matches
// a bounded range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From.IsZero() && r.To.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Filters restrict a search to policies whose metadata matches every
// non-empty field. Values within one field are alternatives.
type Filters struct {
	IssuingAuthority []string   `json:"issuing_authority,omitempty" yaml:"issuing_authority,omitempty"`
	Status           []string   `json:"status,omitempty" yaml:"status,omitempty"`
	LawLevel         []string   `json:"law_level,omitempty" yaml:"law_level,omitempty"`
	DateRange        *DateRange `json:"date_range,omitempty" yaml:"date_range,omitempty"`
}

// IsEmpty reports whether no filter field is set.
func (f Filters) IsEmpty() bool {
	return len(f.IssuingAuthority) == 0 && len(f.Status) == 0 && len(f.LawLevel) == 0 && f.DateRange == nil
}

// Match reports whether meta satisfies every set filter field. Authority
// matches on substring so "中国人民银行" selects joint issuances too.
func (f Filters) Match(meta PolicyMeta) bool {
	if len(f.IssuingAuthority) > 0 && !anyContains(meta.IssuingAuthority, f.IssuingAuthority) {
		return false
	}
	if len(f.Status) > 0 && !anyEqual(meta.Status, f.Status) {
		return false
	}
	if len(f.LawLevel) > 0 && !anyEqual(meta.LawLevel, f.LawLevel) {
		return false
	}
	if f.DateRange != nil {
		var t time.Time
		switch {
		case meta.EffectiveAt != nil:
			t = *meta.EffectiveAt
		case meta.IssuedAt != nil:
			t = *meta.IssuedAt
		}
		if !f.DateRange.Contains(t) {
			return false
		}
	}
	return true
}

func anyEqual(value string, wanted []string) bool {
	for _, w := range wanted {
		if strings.EqualFold(strings.TrimSpace(w), value) {
			return true
		}
	}
	return false
}

func anyContains(value string, wanted []string) bool {
	if value == "" {
		return false
	}
	for _, w := range wanted {
		if w = strings.TrimSpace(w); w != "" && strings.Contains(value, w) {
			return true
		}
	}
	return false
}
