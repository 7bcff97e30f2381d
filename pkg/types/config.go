package types

// CorpusConfig locates the extractor artifacts the index is built from.
type CorpusConfig struct {
	// Dir holds one YAML or JSON artifact file per policy.
	Dir string `json:"dir" yaml:"dir"`

	// SQLitePath is the extractor database; used instead of Dir when set.
	SQLitePath string `json:"sqlite" yaml:"sqlite"`

	// WhitelistPath lists the curated policies shown by the default catalog scope.
	WhitelistPath string `json:"whitelist" yaml:"whitelist"`
}

// ResolverConfig holds title matching thresholds.
type ResolverConfig struct {
	// MinConfidence is the lowest fuzzy score returned (default 0.3).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// HighConfidence stops the stage cascade once reached (default 0.6).
	HighConfidence float64 `json:"high_confidence" yaml:"high_confidence"`

	// TopN caps the number of fuzzy candidates (default 5).
	TopN int `json:"top_n" yaml:"top_n"`
}

// WithDefaults fills zero fields with default values.
func (c ResolverConfig) WithDefaults() ResolverConfig {
	if c.MinConfidence <= 0 {
		c.MinConfidence = 0.3
	}
	if c.HighConfidence <= 0 {
		c.HighConfidence = 0.6
	}
	if c.TopN <= 0 {
		c.TopN = 5
	}
	return c
}

// SearchConfig holds settings for the free-text ranker.
type SearchConfig struct {
	// SnippetLength is the snippet window in runes (default 100).
	SnippetLength int `json:"snippet_length" yaml:"snippet_length"`

	// DefaultTopK applies when a query does not set a limit (default 10).
	DefaultTopK int `json:"default_top_k" yaml:"default_top_k"`

	// MaxTopK bounds caller-supplied limits (default 50).
	MaxTopK int `json:"max_top_k" yaml:"max_top_k"`

	// TitleBoost weighs title matches over body matches (default 5).
	TitleBoost float64 `json:"title_boost" yaml:"title_boost"`

	// HeadingBoost weighs chapter and article heading matches (default 2).
	HeadingBoost float64 `json:"heading_boost" yaml:"heading_boost"`

	// HighlightPre and HighlightPost wrap the matched term in snippets.
	HighlightPre  string `json:"highlight_pre" yaml:"highlight_pre"`
	HighlightPost string `json:"highlight_post" yaml:"highlight_post"`
}

// WithDefaults fills zero fields with default values.
func (c SearchConfig) WithDefaults() SearchConfig {
	if c.SnippetLength <= 0 {
		c.SnippetLength = 100
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 10
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = 50
	}
	if c.TitleBoost <= 0 {
		c.TitleBoost = 5
	}
	if c.HeadingBoost <= 0 {
		c.HeadingBoost = 2
	}
	if c.HighlightPre == "" && c.HighlightPost == "" {
		c.HighlightPre, c.HighlightPost = "<mark>", "</mark>"
	}
	return c
}

// ServerConfig holds settings for the HTTP transport.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// EngineConfig groups all configuration sections.
type EngineConfig struct {
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
