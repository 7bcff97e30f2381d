// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// envKeyReplacer maps nested keys to env names: search.max_top_k becomes
// POLICY_ENGINE_SEARCH_MAX_TOP_K.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("resolver.min_confidence", 0.3)
	viper.SetDefault("resolver.high_confidence", 0.6)
	viper.SetDefault("resolver.top_n", 5)
	viper.SetDefault("search.snippet_length", 100)
	viper.SetDefault("search.default_top_k", 10)
	viper.SetDefault("search.max_top_k", 50)
	viper.SetDefault("search.title_boost", 5.0)
	viper.SetDefault("search.heading_boost", 2.0)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.level", "info")
}

// engineConfig reads every configuration section from viper. Flags bound
// in init take precedence over the environment, which takes precedence
// over the config file.
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		Corpus: types.CorpusConfig{
			Dir:           viper.GetString("corpus.dir"),
			SQLitePath:    viper.GetString("corpus.sqlite"),
			WhitelistPath: viper.GetString("corpus.whitelist"),
		},
		Resolver: types.ResolverConfig{
			MinConfidence:  viper.GetFloat64("resolver.min_confidence"),
			HighConfidence: viper.GetFloat64("resolver.high_confidence"),
			TopN:           viper.GetInt("resolver.top_n"),
		},
		Search: types.SearchConfig{
			SnippetLength: viper.GetInt("search.snippet_length"),
			DefaultTopK:   viper.GetInt("search.default_top_k"),
			MaxTopK:       viper.GetInt("search.max_top_k"),
			TitleBoost:    viper.GetFloat64("search.title_boost"),
			HeadingBoost:  viper.GetFloat64("search.heading_boost"),
			HighlightPre:  viper.GetString("search.highlight_pre"),
			HighlightPost: viper.GetString("search.highlight_post"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Pretty: viper.GetBool("log.pretty"),
		},
	}
}
