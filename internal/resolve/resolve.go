// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve matches a raw law title against the index. Matching runs
// in stages (exact key, containment, bigram overlap); a stage runs only when
// the earlier ones produced no candidate at or above the high-confidence
// threshold.
package resolve

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/normalize"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Stage names the matcher that produced a candidate.
type Stage string

const (
	StageExact       Stage = "exact"
	StageContainment Stage = "containment"
	StageFuzzy       Stage = "fuzzy"
)

// Candidate is one policy a title may refer to.
type Candidate struct {
	PolicyID   types.PolicyID `json:"policy_id"`
	Title      string         `json:"title"`
	Confidence float64        `json:"confidence"`
	Stage      Stage          `json:"stage"`

	rec *index.PolicyRecord
}

// Record returns the indexed policy behind the candidate.
func (c Candidate) Record() *index.PolicyRecord { return c.rec }

// fuzzyScale caps fuzzy scores below containment matches.
const fuzzyScale = 0.8

// minContainRunes is the shortest key allowed to match by containment.
const minContainRunes = 2

// stopWords carry no identifying weight in regulatory titles.
var stopWords = []string{
	"进一步", "关于", "有关", "通知", "公告", "决定", "规定", "办法", "细则",
	"实施", "印发", "试行", "意见", "答复", "解读", "发布", "的",
}

// Resolve returns candidates for raw ordered by confidence, then newer
// effective date, then shorter canonical title, then insertion order. It
// returns nil when nothing reaches cfg.MinConfidence.
func Resolve(idx *index.Index, raw string, cfg types.ResolverConfig) []Candidate {
	cfg = cfg.WithDefaults()
	key := normalize.TitleKey(raw)
	if key == "" {
		return nil
	}

	best := map[types.PolicyID]Candidate{}
	keep := func(rec *index.PolicyRecord, conf float64, stage Stage) {
		if conf < cfg.MinConfidence {
			return
		}
		if prev, ok := best[rec.ID]; ok && prev.Confidence >= conf {
			return
		}
		best[rec.ID] = Candidate{PolicyID: rec.ID, Title: rec.Title, Confidence: conf, Stage: stage, rec: rec}
	}

	for _, id := range idx.LookupTitle(raw) {
		if rec, ok := idx.Get(id); ok {
			keep(rec, 1.0, StageExact)
		}
	}
	if confident(best, cfg) {
		return ranked(best, 0)
	}

	for _, rec := range idx.All() {
		conf := 0.0
		for _, tk := range rec.TitleKeys() {
			conf = math.Max(conf, containment(key, tk))
		}
		if conf > 0 {
			keep(rec, conf, StageContainment)
		}
	}
	if confident(best, cfg) {
		return ranked(best, cfg.TopN)
	}

	grams := bigrams(stripStopWords(key))
	for _, rec := range idx.All() {
		conf := 0.0
		for _, tk := range rec.TitleKeys() {
			conf = math.Max(conf, fuzzyScale*jaccard(grams, bigrams(stripStopWords(tk))))
		}
		if conf > 0 {
			keep(rec, conf, StageFuzzy)
		}
	}
	return ranked(best, cfg.TopN)
}

// Ambiguous reports whether the top two candidates cannot be told apart:
// they tie on confidence, effective date and title length, the keys
// candidates are ranked by before corpus order.
func Ambiguous(cands []Candidate) bool {
	if len(cands) < 2 {
		return false
	}
	a, b := cands[0], cands[1]
	return math.Abs(a.Confidence-b.Confidence) < 1e-9 &&
		a.effectiveDate().Equal(b.effectiveDate()) &&
		utf8.RuneCountInString(a.Title) == utf8.RuneCountInString(b.Title)
}

func (c Candidate) effectiveDate() time.Time {
	if c.rec == nil {
		return time.Time{}
	}
	return c.rec.EffectiveDate()
}

func confident(best map[types.PolicyID]Candidate, cfg types.ResolverConfig) bool {
	for _, c := range best {
		if c.Confidence >= cfg.HighConfidence {
			return true
		}
	}
	return false
}

func ranked(best map[types.PolicyID]Candidate, limit int) []Candidate {
	if len(best) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		da, db := a.rec.EffectiveDate(), b.rec.EffectiveDate()
		if !da.Equal(db) {
			return da.After(db)
		}
		la, lb := utf8.RuneCountInString(a.Title), utf8.RuneCountInString(b.Title)
		if la != lb {
			return la < lb
		}
		return a.rec.Order() < b.rec.Order()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// containment scores key against an indexed title key when either contains
// the other: 0.6 plus up to 0.4 for how much of the longer one is covered.
func containment(key, title string) float64 {
	if key == title {
		return 1.0
	}
	short, long := key, title
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	ns := utf8.RuneCountInString(short)
	if ns < minContainRunes || !strings.Contains(long, short) {
		return 0
	}
	return 0.6 + 0.4*float64(ns)/float64(utf8.RuneCountInString(long))
}

func stripStopWords(s string) string {
	out := s
	for _, w := range stopWords {
		out = strings.ReplaceAll(out, w, "")
	}
	if out == "" {
		return s
	}
	return out
}

// bigrams returns the set of adjacent rune pairs of s, or its single rune.
func bigrams(s string) map[string]struct{} {
	rs := []rune(s)
	set := make(map[string]struct{}, len(rs))
	if len(rs) == 1 {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(rs); i++ {
		set[string(rs[i:i+2])] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
