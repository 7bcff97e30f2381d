// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/outline"
	"github.com/pdiddy/policy-engine/internal/resolve"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Projections a policy lookup can include.
const (
	IncludeMeta    = "meta"
	IncludeOutline = "outline"
	IncludeText    = "text"
	IncludeAll     = "all"
)

// PolicyRequest names a policy by id or title. Include selects the
// projections returned; it defaults to meta. Entries may be comma-joined.
type PolicyRequest struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title,omitempty"`
	Include []string `json:"include,omitempty"`
}

// PolicyResponse carries only the projections requested.
type PolicyResponse struct {
	Policy  *types.PolicyMeta  `json:"policy,omitempty"`
	Outline *outline.TreeNode  `json:"outline,omitempty"`
	Text    string             `json:"text,omitempty"`
	Match   *resolve.Candidate `json:"match,omitempty"`
}

// GetPolicy returns the requested projections of one policy. A title that
// resolves to several equally good policies fails with ErrTitleAmbiguous.
func (s *Service) GetPolicy(_ context.Context, req PolicyRequest) (resp *PolicyResponse, err error) {
	defer func(start time.Time) { s.observe("policy", start, err) }(time.Now())

	include, err := parseInclude(req.Include)
	if err != nil {
		return nil, err
	}

	idx := s.holder.Current()
	resp = &PolicyResponse{}
	var rec *index.PolicyRecord
	switch {
	case strings.TrimSpace(req.ID) != "":
		r, ok := idx.Get(types.PolicyID(strings.TrimSpace(req.ID)))
		if !ok {
			return nil, fmt.Errorf("%w: id %s", ErrPolicyNotFound, req.ID)
		}
		rec = r
	case strings.TrimSpace(req.Title) != "":
		cands := resolve.Resolve(idx, req.Title, s.resolver)
		if len(cands) == 0 {
			return nil, fmt.Errorf("%w: %w: %s", ErrPolicyNotFound, ErrTitleNotFound, req.Title)
		}
		if resolve.Ambiguous(cands) {
			return nil, &AmbiguousError{Title: req.Title, Candidates: cands}
		}
		rec = cands[0].Record()
		resp.Match = &cands[0]
	default:
		return nil, fmt.Errorf("%w: id or title is required", ErrInvalidRequest)
	}

	if include[IncludeMeta] {
		meta := rec.Meta
		resp.Policy = &meta
	}
	if include[IncludeOutline] {
		tree := rec.Outline.Tree(rec.Outline.Root())
		resp.Outline = &tree
	}
	if include[IncludeText] {
		resp.Text = rec.RawText
	}
	return resp, nil
}

// AmbiguousError lists the tied candidates for a title.
type AmbiguousError struct {
	Title      string
	Candidates []resolve.Candidate
}

func (e *AmbiguousError) Error() string {
	titles := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		titles = append(titles, c.Title)
	}
	return fmt.Sprintf("%s: %q matches %s", ErrTitleAmbiguous, e.Title, strings.Join(titles, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrTitleAmbiguous }

func parseInclude(values []string) (map[string]bool, error) {
	include := map[string]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			switch part {
			case "":
			case IncludeMeta, IncludeOutline, IncludeText:
				include[part] = true
			case IncludeAll:
				include[IncludeMeta], include[IncludeOutline], include[IncludeText] = true, true, true
			default:
				return nil, fmt.Errorf("%w: unknown include %q", ErrInvalidRequest, part)
			}
		}
	}
	if len(include) == 0 {
		include[IncludeMeta] = true
	}
	return include, nil
}

// Catalog scopes.
const (
	ScopeDefault = "default"
	ScopeAll     = "all"
)

// CatalogRequest selects the catalog scope. An empty scope is the default
// (curated) scope.
type CatalogRequest struct {
	Scope string `json:"scope,omitempty"`
}

// CatalogEntry is one listed policy.
type CatalogEntry struct {
	Title string           `json:"title"`
	Meta  types.PolicyMeta `json:"meta"`
}

// CatalogResponse lists policies sorted by title.
type CatalogResponse struct {
	Scope    string         `json:"scope"`
	Count    int            `json:"result_count"`
	Policies []CatalogEntry `json:"policies"`
}

// Catalog lists the policies in scope. The default scope keeps only the
// whitelisted policies; without a whitelist it lists everything.
func (s *Service) Catalog(_ context.Context, req CatalogRequest) (resp *CatalogResponse, err error) {
	defer func(start time.Time) { s.observe("catalog", start, err) }(time.Now())

	scope := strings.ToLower(strings.TrimSpace(req.Scope))
	switch scope {
	case "", ScopeDefault, "whitelist":
		scope = ScopeDefault
	case ScopeAll:
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidRequest, req.Scope)
	}

	resp = &CatalogResponse{Scope: scope, Policies: []CatalogEntry{}}
	for _, rec := range s.holder.Current().All() {
		if scope == ScopeDefault && s.whitelist != nil && !s.whitelist.Match(rec) {
			continue
		}
		resp.Policies = append(resp.Policies, CatalogEntry{Title: rec.Title, Meta: rec.Meta})
	}
	sort.SliceStable(resp.Policies, func(i, j int) bool {
		return resp.Policies[i].Title < resp.Policies[j].Title
	})
	resp.Count = len(resp.Policies)
	return resp, nil
}
