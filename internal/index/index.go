// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the immutable, in-memory policy index that citation
// lookups and free-text search run against. Each Build produces one
// generation; Holder publishes generations atomically so readers never see a
// half-built index.
package index

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/internal/outline"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Reasons an artifact is skipped during a build.
var (
	ErrEmptyTitle  = errors.New("artifact has no title")
	ErrEmptyText   = errors.New("artifact has no body text")
	ErrDuplicateID = errors.New("duplicate policy id")
)

// BuildWarning records one artifact that was left out of an index.
type BuildWarning struct {
	Position   int    // position of the artifact in the build input
	Title      string
	SourcePath string
	Err        error
}

func (w BuildWarning) Error() string {
	name := w.Title
	if name == "" {
		name = w.SourcePath
	}
	return fmt.Sprintf("artifact %d (%s): %v", w.Position, name, w.Err)
}

func (w BuildWarning) Unwrap() error { return w.Err }

// PolicyRecord is one indexed policy. Records are owned by their Index and
// must not be modified.
type PolicyRecord struct {
	ID       types.PolicyID
	Title    string
	Variants []string
	Meta     types.PolicyMeta
	Outline  *outline.Outline
	RawText  string

	order          int
	titleKeys      []string
	foldedTitle    string
	foldedBody     string
	bodyOffsets    []int
	foldedHeadings string
	terms          *termFilter
}

// Order returns the record's insertion position in its index.
func (r *PolicyRecord) Order() int { return r.order }

// TitleKeys returns the normalized keys of the canonical title followed by
// every distinct variant.
func (r *PolicyRecord) TitleKeys() []string { return r.titleKeys }

// FoldedTitle returns the title folded with normalize.FoldText.
func (r *PolicyRecord) FoldedTitle() string { return r.foldedTitle }

// FoldedBody returns RawText folded with normalize.FoldMapped.
func (r *PolicyRecord) FoldedBody() string { return r.foldedBody }

// RawOffset maps a rune offset in FoldedBody to the offset of the RawText
// rune it came from.
func (r *PolicyRecord) RawOffset(folded int) int {
	if folded >= len(r.bodyOffsets) {
		return utf8.RuneCountInString(r.RawText)
	}
	return r.bodyOffsets[folded]
}

// FoldedHeadings returns the chapter, section and article headings (marker
// and title, never body text), folded and joined by newlines.
func (r *PolicyRecord) FoldedHeadings() string { return r.foldedHeadings }

// MayContain reports whether the folded term could occur in the title or
// body. False is definitive.
func (r *PolicyRecord) MayContain(folded []rune) bool {
	return r.terms.mayContain(folded)
}

// EffectiveDate returns the effective date, falling back to the issue date.
// It is zero when neither is known.
func (r *PolicyRecord) EffectiveDate() time.Time {
	switch {
	case r.Meta.EffectiveAt != nil:
		return *r.Meta.EffectiveAt
	case r.Meta.IssuedAt != nil:
		return *r.Meta.IssuedAt
	}
	return time.Time{}
}

// Options configures a build.
type Options struct {
	// Generation is stamped on the resulting index.
	Generation uint64

	// Logger receives one warning per skipped artifact. Nil disables logging.
	Logger *zerolog.Logger

	// Workers bounds concurrent outline parsing. Zero uses GOMAXPROCS.
	Workers int
}

// Index is one immutable generation of the policy corpus. All methods are
// safe for concurrent use.
type Index struct {
	generation uint64
	builtAt    time.Time
	records    []*PolicyRecord
	byID       map[types.PolicyID]*PolicyRecord
	titles     map[string][]int
	warnings   []BuildWarning
}

// Build indexes artifacts in order. Malformed artifacts are skipped and
// reported through Warnings; Build itself never fails.
func Build(artifacts []types.Artifact, opts Options) *Index {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	idx := &Index{
		generation: opts.Generation,
		builtAt:    time.Now(),
		byID:       make(map[types.PolicyID]*PolicyRecord, len(artifacts)),
		titles:     make(map[string][]int, len(artifacts)),
	}

	// Outlines are parsed concurrently; records are assembled afterwards
	// in input order so insertion order equals build order.
	outlines := make([]*outline.Outline, len(artifacts))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range artifacts {
		a := &artifacts[i]
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Text) == "" {
			continue
		}
		g.Go(func() error {
			outlines[i] = outline.Build(a.Text, a.Breakpoints)
			return nil
		})
	}
	_ = g.Wait()

	for i := range artifacts {
		a := &artifacts[i]
		if err := idx.add(a, outlines[i]); err != nil {
			w := BuildWarning{Position: i, Title: a.Title, SourcePath: a.SourcePath, Err: err}
			idx.warnings = append(idx.warnings, w)
			log.Warn().
				Int("position", i).
				Str("title", a.Title).
				Str("source_path", a.SourcePath).
				Err(err).
				Msg("skipping artifact")
		}
	}

	log.Info().
		Uint64("generation", idx.generation).
		Int("policies", len(idx.records)).
		Int("warnings", len(idx.warnings)).
		Msg("index built")
	return idx
}

func (idx *Index) add(a *types.Artifact, o *outline.Outline) error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(a.Text) == "" || o == nil {
		return ErrEmptyText
	}
	id := PolicyIDFor(title, a.SourcePath)
	if prev, ok := idx.byID[id]; ok {
		return fmt.Errorf("%w %s (first seen as %q)", ErrDuplicateID, id, prev.Title)
	}

	rec := &PolicyRecord{
		ID:          id,
		Title:       title,
		Outline:     o,
		RawText:     a.Text,
		order:       len(idx.records),
		foldedTitle: normalize.FoldText(title),
	}
	body, offsets := normalize.FoldMapped(a.Text)
	rec.foldedBody, rec.bodyOffsets = string(body), offsets
	rec.Meta = types.PolicyMeta{
		ID:               id,
		Title:            title,
		SourcePath:       a.SourcePath,
		IssuingAuthority: a.IssuingAuthority,
		Status:           a.Status,
		LawLevel:         a.LawLevel,
		DocNo:            a.DocNo,
		IssuedAt:         timePtr(a.IssuedAt),
		EffectiveAt:      timePtr(a.EffectiveAt),
	}

	seen := map[string]bool{}
	for _, t := range append([]string{title}, a.TitleVariants...) {
		key := normalize.TitleKey(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		rec.titleKeys = append(rec.titleKeys, key)
		if t != title {
			rec.Variants = append(rec.Variants, t)
		}
		idx.titles[key] = append(idx.titles[key], rec.order)
	}
	rec.foldedHeadings = headings(o)
	rec.terms = newTermFilter(rec.foldedTitle, rec.foldedBody)

	idx.records = append(idx.records, rec)
	idx.byID[id] = rec
	return nil
}

func headings(o *outline.Outline) string {
	var out []string
	for _, n := range o.Nodes() {
		if h := o.HeadingText(n.ID); h != "" {
			out = append(out, normalize.FoldText(h))
		}
	}
	return strings.Join(out, "\n")
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Generation returns the build generation.
func (idx *Index) Generation() uint64 { return idx.generation }

// BuiltAt returns when the index was built.
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

// Len returns the number of indexed policies.
func (idx *Index) Len() int { return len(idx.records) }

// Warnings returns the artifacts skipped during the build.
func (idx *Index) Warnings() []BuildWarning { return idx.warnings }

// Get returns the record with the given id.
func (idx *Index) Get(id types.PolicyID) (*PolicyRecord, bool) {
	rec, ok := idx.byID[id]
	return rec, ok
}

// All returns every record in insertion order. The slice must not be
// modified.
func (idx *Index) All() []*PolicyRecord { return idx.records }

// LookupTitle returns the ids whose canonical title or a variant has the
// same normalize.TitleKey as candidate, in insertion order.
func (idx *Index) LookupTitle(candidate string) []types.PolicyID {
	positions := idx.titles[normalize.TitleKey(candidate)]
	ids := make([]types.PolicyID, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, idx.records[p].ID)
	}
	return ids
}
