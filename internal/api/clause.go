// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/policy-engine/internal/citation"
	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/outline"
	"github.com/pdiddy/policy-engine/internal/resolve"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Per-clause lookup statuses.
const (
	StatusResolved       = "resolved"
	StatusTitleAmbiguous = "title_ambiguous"
	StatusTitleNotFound  = "title_not_found"
	StatusClauseNotFound = "clause_not_found"
)

// ClauseRequest asks for clause text. Either Title and Item are set, or
// Key/Keys hold free-form citations such as "《反洗钱法》第三条".
type ClauseRequest struct {
	Title string   `json:"title,omitempty"`
	Item  string   `json:"item,omitempty"`
	Key   string   `json:"key,omitempty"`
	Keys  []string `json:"keys,omitempty"`
}

// ClauseQuery echoes the title and clause one result answers.
type ClauseQuery struct {
	Title  string `json:"title"`
	Clause string `json:"clause"`
}

// ClauseMatch is one outline node selected by a clause reference.
type ClauseMatch struct {
	Node  int         `json:"node"`
	Label string      `json:"label"`
	Level types.Level `json:"level"`
	Text  string      `json:"text"`
}

// ClauseResult is the answer for one cited clause.
type ClauseResult struct {
	Query      ClauseQuery         `json:"query"`
	Status     string              `json:"status"`
	Policy     *types.PolicyMeta   `json:"policy,omitempty"`
	Candidates []resolve.Candidate `json:"candidates,omitempty"`
	Matches    []ClauseMatch       `json:"matches,omitempty"`
	ClauseText string              `json:"clause_text,omitempty"`
}

// Err returns the sentinel matching the result status, or nil when resolved.
func (r ClauseResult) Err() error {
	switch r.Status {
	case StatusTitleAmbiguous:
		return ErrTitleAmbiguous
	case StatusTitleNotFound:
		return ErrTitleNotFound
	case StatusClauseNotFound:
		return ErrClauseNotFound
	}
	return nil
}

// ClauseResponse holds one result per cited clause, in citation order.
type ClauseResponse struct {
	Generation uint64         `json:"index_generation"`
	Results    []ClauseResult `json:"results"`
}

// LookupClause parses the citation(s) in req, resolves each law title and
// locates each clause. Resolution failures are reported per clause; only a
// malformed request fails as a whole.
func (s *Service) LookupClause(_ context.Context, req ClauseRequest) (resp *ClauseResponse, err error) {
	defer func(start time.Time) { s.observe("clause", start, err) }(time.Now())

	q, err := clauseQuery(req)
	if err != nil {
		return nil, err
	}

	idx := s.holder.Current()
	resp = &ClauseResponse{Generation: idx.Generation()}
	for _, g := range q.Groups {
		for _, r := range s.lookupGroup(idx, g) {
			s.metrics.ObserveLookup(r.Status)
			resp.Results = append(resp.Results, r)
		}
	}
	return resp, nil
}

func clauseQuery(req ClauseRequest) (types.CitationQuery, error) {
	keys := req.Keys
	if k := strings.TrimSpace(req.Key); k != "" {
		keys = append([]string{k}, keys...)
	}

	var q types.CitationQuery
	if len(keys) > 0 {
		for _, k := range keys {
			if strings.TrimSpace(k) == "" {
				continue
			}
			parsed, err := citation.Parse(k)
			if err != nil {
				return q, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
			}
			q.Groups = append(q.Groups, parsed.Groups...)
		}
		if len(q.Groups) == 0 {
			return q, fmt.Errorf("%w: key did not contain any clause references", ErrInvalidRequest)
		}
		return q, nil
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Item) == "" {
		return q, fmt.Errorf("%w: title and item are required", ErrInvalidRequest)
	}
	q, err := citation.ParseClauses(req.Title, req.Item)
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return q, nil
}

// lookupGroup resolves the group's title once and locates each clause. A
// group that cites no clause yields the whole document.
func (s *Service) lookupGroup(idx *index.Index, g types.LawGroup) []ClauseResult {
	refs := g.Clauses
	if len(refs) == 0 {
		refs = []types.ClauseRef{{}}
	}

	cands := resolve.Resolve(idx, g.RawTitle, s.resolver)
	var (
		rec    *index.PolicyRecord
		status string
	)
	switch {
	case len(cands) == 0:
		status = StatusTitleNotFound
	case resolve.Ambiguous(cands):
		status = StatusTitleAmbiguous
	default:
		rec = cands[0].Record()
	}

	results := make([]ClauseResult, 0, len(refs))
	for _, ref := range refs {
		r := ClauseResult{
			Query:  ClauseQuery{Title: g.RawTitle, Clause: clauseLabel(ref)},
			Status: status,
		}
		if rec == nil {
			if status == StatusTitleAmbiguous {
				r.Candidates = cands
			}
			results = append(results, r)
			continue
		}

		meta := rec.Meta
		r.Policy = &meta
		r.Matches = locate(rec, ref)
		if len(r.Matches) == 0 {
			r.Status = StatusClauseNotFound
		} else {
			r.Status = StatusResolved
			r.ClauseText = r.Matches[0].Text
		}
		results = append(results, r)
	}
	return results
}

func clauseLabel(ref types.ClauseRef) string {
	if ref.Raw != "" {
		return ref.Raw
	}
	return ref.Label()
}

func locate(rec *index.PolicyRecord, ref types.ClauseRef) []ClauseMatch {
	o := rec.Outline
	var out []ClauseMatch
	for _, id := range outline.Locate(o, ref) {
		n := o.Node(id)
		out = append(out, ClauseMatch{
			Node:  int(id),
			Label: o.QualifiedLabel(id),
			Level: n.Level,
			Text:  o.SubtreeText(id),
		})
	}
	return out
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound) || errors.Is(err, ErrTitleNotFound) || errors.Is(err, ErrClauseNotFound)
}
