// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/policy-engine/internal/search"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// SearchRequest is a free-text query. MetaFilter is the JSON filter object
// accepted by search.DecodeFilters; TopK is clamped to the configured
// maximum.
type SearchRequest struct {
	Query      string          `json:"query"`
	TopK       int             `json:"top_k,omitempty"`
	MetaFilter json.RawMessage `json:"meta_filter,omitempty"`
}

// SearchResponse holds the ranked hits.
type SearchResponse struct {
	Query      string            `json:"query"`
	Generation uint64            `json:"index_generation"`
	Count      int               `json:"result_count"`
	Results    []types.SearchHit `json:"results"`
}

// Search ranks the policies passing the metadata filter against the query.
func (s *Service) Search(_ context.Context, req SearchRequest) (resp *SearchResponse, err error) {
	defer func(start time.Time) { s.observe("search", start, err) }(time.Now())

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if req.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative", ErrInvalidRequest)
	}
	filters, err := search.DecodeFilters(req.MetaFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	idx := s.holder.Current()
	hits := search.Search(idx, search.Query{Text: req.Query, Filters: filters, Limit: req.TopK}, s.search)
	if hits == nil {
		hits = []types.SearchHit{}
	}
	s.metrics.ObserveSearch(len(hits))
	return &SearchResponse{
		Query:      req.Query,
		Generation: idx.Generation(),
		Count:      len(hits),
		Results:    hits,
	}, nil
}
