// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results, so
// a reviewer can revisit a result list without re-running the query.
type QueryFile struct {
	Query   QueryParams       `yaml:"query"`
	Results []types.SearchHit `yaml:"results"`
	Summary QuerySummary      `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Text             string   `yaml:"text"`
	Limit            int      `yaml:"limit,omitempty"`
	IssuingAuthority []string `yaml:"issuing_authority,omitempty"`
	Status           []string `yaml:"status,omitempty"`
	LawLevel         []string `yaml:"law_level,omitempty"`
	DateFrom         string   `yaml:"date_from,omitempty"`
	DateTo           string   `yaml:"date_to,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total      int       `yaml:"total"`
	Generation uint64    `yaml:"index_generation"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its hits to a YAML file.
func WriteQueryFile(path string, query Query, generation uint64, hits []types.SearchHit) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:             query.Text,
			Limit:            query.Limit,
			IssuingAuthority: query.Filters.IssuingAuthority,
			Status:           query.Filters.Status,
			LawLevel:         query.Filters.LawLevel,
		},
		Results: hits,
		Summary: QuerySummary{
			Total:      len(hits),
			Generation: generation,
			Timestamp:  time.Now(),
		},
	}
	if dr := query.Filters.DateRange; dr != nil {
		if !dr.From.IsZero() {
			qf.Query.DateFrom = dr.From.Format(dateFmt)
		}
		if !dr.To.IsZero() {
			qf.Query.DateTo = dr.To.Format(dateFmt)
		}
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() (Query, error) {
	q := Query{
		Text:  p.Text,
		Limit: p.Limit,
		Filters: types.Filters{
			IssuingAuthority: p.IssuingAuthority,
			Status:           p.Status,
			LawLevel:         p.LawLevel,
		},
	}
	dr, err := ParseDateRange(p.DateFrom, p.DateTo)
	if err != nil {
		return q, err
	}
	q.Filters.DateRange = dr
	return q, nil
}
