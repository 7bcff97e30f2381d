// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// minSubstringTitle is the shortest whitelisted title that may match as a
// substring of a longer policy title.
const minSubstringTitle = 6

// Whitelist is the curated set of policies shown by the default catalog
// scope.
type Whitelist struct {
	ids    map[types.PolicyID]bool
	titles map[string]bool
}

// LoadWhitelist reads a whitelist file. JSON and YAML are both accepted; the
// document may be a list of titles, a list of {id, title} objects, or an
// object with ids, titles, policy_ids, policy_titles, policies or entries
// keys nesting any of these. A missing file yields nil and no error.
func LoadWhitelist(path string) (*Whitelist, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing whitelist %s: %w", path, err)
	}
	w := NewWhitelist(nil, nil)
	w.collect(doc)
	return w, nil
}

// NewWhitelist builds a whitelist from policy ids and titles.
func NewWhitelist(ids []types.PolicyID, titles []string) *Whitelist {
	w := &Whitelist{ids: map[types.PolicyID]bool{}, titles: map[string]bool{}}
	for _, id := range ids {
		w.ids[id] = true
	}
	for _, t := range titles {
		w.addTitle(t)
	}
	return w
}

func (w *Whitelist) addTitle(t string) {
	if k := normalize.TitleKey(t); k != "" {
		w.titles[k] = true
	}
}

// collect walks a decoded document. A bare string is taken as both an id
// and a title.
func (w *Whitelist) collect(v any) {
	switch v := v.(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			w.ids[types.PolicyID(v)] = true
			w.addTitle(v)
		}
	case []any:
		for _, item := range v {
			w.collect(item)
		}
	case map[string]any:
		if id, ok := v["id"].(string); ok && strings.TrimSpace(id) != "" {
			w.ids[types.PolicyID(strings.TrimSpace(id))] = true
		}
		if title, ok := v["title"].(string); ok {
			w.addTitle(title)
		}
		for _, key := range []string{"policy_ids", "policy_titles", "policies", "ids", "titles", "entries"} {
			if child, ok := v[key]; ok {
				w.collect(child)
			}
		}
	}
}

// Len returns the number of ids and titles listed.
func (w *Whitelist) Len() int { return len(w.ids) + len(w.titles) }

// Match reports whether rec is whitelisted by id, by title or title
// variant, or by a whitelisted title of at least six runes contained in
// one of them.
func (w *Whitelist) Match(rec *index.PolicyRecord) bool {
	if w.ids[rec.ID] {
		return true
	}
	for _, key := range rec.TitleKeys() {
		if w.titles[key] {
			return true
		}
		for t := range w.titles {
			if utf8.RuneCountInString(t) >= minSubstringTitle && strings.Contains(key, t) {
				return true
			}
		}
	}
	return false
}
