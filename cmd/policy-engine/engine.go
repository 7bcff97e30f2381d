// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/policy-engine/internal/api"
	"github.com/pdiddy/policy-engine/internal/artifact"
	"github.com/pdiddy/policy-engine/internal/logger"
	"github.com/pdiddy/policy-engine/internal/metrics"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// engine bundles what every subcommand needs after loading the corpus.
type engine struct {
	cfg     types.EngineConfig
	log     zerolog.Logger
	source  artifact.Source
	metrics *metrics.Metrics
	svc     *api.Service
}

// loadEngine reads the configuration, loads the artifacts and builds the
// first index generation.
func loadEngine(ctx context.Context) (*engine, error) {
	cfg := engineConfig()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	src, err := artifact.FromConfig(cfg.Corpus)
	if err != nil {
		return nil, err
	}
	whitelist, err := api.LoadWhitelist(cfg.Corpus.WhitelistPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	svc := api.NewService(nil, api.Options{
		Resolver:  cfg.Resolver,
		Search:    cfg.Search,
		Whitelist: whitelist,
		Metrics:   m,
		Logger:    &log,
	})
	idx, err := svc.Reload(ctx, src)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("policies", idx.Len()).Int("warnings", len(idx.Warnings())).Msg("corpus loaded")

	return &engine{cfg: cfg, log: log, source: src, metrics: m, svc: svc}, nil
}

// writeJSON writes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max-1]) + "…"
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
