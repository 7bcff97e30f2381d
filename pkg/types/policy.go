// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PolicyID identifies one regulation or normative document. It is derived
// from the title and source path, so it survives index rebuilds as long as
// neither changes.
type PolicyID string

// PolicyStatus values used by the extraction pipeline.
const (
	StatusValid    = "valid"
	StatusAmended  = "amended"
	StatusRepealed = "repealed"
	StatusExpired  = "expired"
)

// Breakpoint is a heading line the extractor already identified. Line is the
// zero-based line index in Text.
type Breakpoint struct {
	Line  int    `json:"line" yaml:"line"`
	Level Level  `json:"level" yaml:"level"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Artifact is the extractor's output for one policy: normalized body text
// plus metadata. Artifacts are read from disk or from the extractor database
// by package artifact and handed to index.Build.
type Artifact struct {
	// Title is the canonical title as published.
	Title string `json:"title" yaml:"title"`

	// SourcePath locates the original document (URL or local path).
	SourcePath string `json:"source_path" yaml:"source_path"`

	// TitleVariants lists alternate spellings, including raw and OCR forms.
	TitleVariants []string `json:"title_variants,omitempty" yaml:"title_variants,omitempty"`

	IssuingAuthority string    `json:"issuing_authority,omitempty" yaml:"issuing_authority,omitempty"`
	Status           string    `json:"status,omitempty" yaml:"status,omitempty"`
	LawLevel         string    `json:"law_level,omitempty" yaml:"law_level,omitempty"`
	DocNo            string    `json:"doc_no,omitempty" yaml:"doc_no,omitempty"`
	IssuedAt         time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	EffectiveAt      time.Time `json:"effective_at,omitempty" yaml:"effective_at,omitempty"`

	// Text is the extracted body text.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// TextPath points at a plain-text file holding the body when Text is
	// empty. Relative paths are resolved against the artifact file.
	TextPath string `json:"text_path,omitempty" yaml:"text_path,omitempty"`

	Breakpoints []Breakpoint `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`
}

// PolicyMeta is the metadata projection of an indexed policy.
type PolicyMeta struct {
	ID               PolicyID   `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	SourcePath       string     `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	IssuingAuthority string     `json:"issuing_authority,omitempty" yaml:"issuing_authority,omitempty"`
	Status           string     `json:"status,omitempty" yaml:"status,omitempty"`
	LawLevel         string     `json:"law_level,omitempty" yaml:"law_level,omitempty"`
	DocNo            string     `json:"doc_no,omitempty" yaml:"doc_no,omitempty"`
	IssuedAt         *time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	EffectiveAt      *time.Time `json:"effective_at,omitempty" yaml:"effective_at,omitempty"`
}
