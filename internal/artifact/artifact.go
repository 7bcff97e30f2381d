// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact reads extractor output into types.Artifact values for
// index.Build. Two sources are supported: a directory of YAML or JSON files
// and the extractor's SQLite database.
//
// A malformed file or row never fails a load. It is reported as a
// LoadWarning and the remaining artifacts are returned.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// ErrNoSource is returned when neither a directory nor a database is configured.
var ErrNoSource = errors.New("no artifact source configured (set corpus.dir or corpus.sqlite)")

// Source loads every artifact it holds.
type Source interface {
	Load(ctx context.Context) (LoadResult, error)
}

// LoadResult holds the artifacts read from a source and the entries skipped.
type LoadResult struct {
	Artifacts []types.Artifact
	Warnings  []LoadWarning
}

// LoadWarning records one file or row that could not be read.
type LoadWarning struct {
	// Location is the file path, or the database path and row id.
	Location string
	Err      error
}

func (w LoadWarning) Error() string {
	return fmt.Sprintf("%s: %v", w.Location, w.Err)
}

func (w LoadWarning) Unwrap() error { return w.Err }

// FromConfig picks the source named by cfg. The database wins when both
// are set.
func FromConfig(cfg types.CorpusConfig) (Source, error) {
	switch {
	case cfg.SQLitePath != "":
		return SQLiteSource{Path: cfg.SQLitePath}, nil
	case cfg.Dir != "":
		return DirSource{Dir: cfg.Dir}, nil
	}
	return nil, ErrNoSource
}

// record is the on-disk shape shared by both sources. Dates are kept as
// strings because extractors write several layouts.
type record struct {
	Title            string             `json:"title" yaml:"title"`
	SourcePath       string             `json:"source_path" yaml:"source_path"`
	TitleVariants    []string           `json:"title_variants" yaml:"title_variants"`
	IssuingAuthority string             `json:"issuing_authority" yaml:"issuing_authority"`
	Status           string             `json:"status" yaml:"status"`
	LawLevel         string             `json:"law_level" yaml:"law_level"`
	DocNo            string             `json:"doc_no" yaml:"doc_no"`
	IssuedAt         string             `json:"issued_at" yaml:"issued_at"`
	EffectiveAt      string             `json:"effective_at" yaml:"effective_at"`
	Text             string             `json:"text" yaml:"text"`
	TextPath         string             `json:"text_path" yaml:"text_path"`
	TextFilename     string             `json:"text_filename" yaml:"text_filename"`
	Breakpoints      []types.Breakpoint `json:"breakpoints" yaml:"breakpoints"`
}

func (r record) artifact() (types.Artifact, error) {
	a := types.Artifact{
		Title:            strings.TrimSpace(r.Title),
		SourcePath:       strings.TrimSpace(r.SourcePath),
		TitleVariants:    r.TitleVariants,
		IssuingAuthority: strings.TrimSpace(r.IssuingAuthority),
		Status:           strings.ToLower(strings.TrimSpace(r.Status)),
		LawLevel:         strings.TrimSpace(r.LawLevel),
		DocNo:            strings.TrimSpace(r.DocNo),
		Text:             r.Text,
		TextPath:         r.TextPath,
		Breakpoints:      r.Breakpoints,
	}
	if a.TextPath == "" {
		a.TextPath = r.TextFilename
	}
	var err error
	if a.IssuedAt, err = parseDate(r.IssuedAt); err != nil {
		return a, fmt.Errorf("issued_at: %w", err)
	}
	if a.EffectiveAt, err = parseDate(r.EffectiveAt); err != nil {
		return a, fmt.Errorf("effective_at: %w", err)
	}
	return a, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"2006年1月2日",
}

// parseDate accepts the date layouts seen in extractor output. An empty
// string is the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
