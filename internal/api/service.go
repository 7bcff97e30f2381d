// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the engine's query operations (clause lookup, policy
// lookup, catalog listing and full-text search) behind one Service, and
// serves that Service over HTTP and MCP.
//
// Every request reads the index snapshot once, so a concurrent rebuild
// never mixes two generations in one response.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/policy-engine/internal/artifact"
	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/metrics"
	"github.com/pdiddy/policy-engine/pkg/types"
)

// Sentinel errors. The title and clause errors also name per-clause lookup
// statuses; the others fail the whole request.
var (
	ErrTitleNotFound  = errors.New("title_not_found")
	ErrTitleAmbiguous = errors.New("title_ambiguous")
	ErrClauseNotFound = errors.New("clause_not_found")
	ErrPolicyNotFound = errors.New("policy_not_found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Options configures a Service.
type Options struct {
	Resolver  types.ResolverConfig
	Search    types.SearchConfig
	Whitelist *Whitelist
	Metrics   *metrics.Metrics
	Logger    *zerolog.Logger
}

// Service answers queries against the current index snapshot.
type Service struct {
	holder    *index.Holder
	resolver  types.ResolverConfig
	search    types.SearchConfig
	whitelist *Whitelist
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewService creates a Service reading snapshots from holder.
func NewService(holder *index.Holder, opts Options) *Service {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if holder == nil {
		holder = index.NewHolder(nil)
	}
	s := &Service{
		holder:    holder,
		resolver:  opts.Resolver.WithDefaults(),
		search:    opts.Search.WithDefaults(),
		whitelist: opts.Whitelist,
		metrics:   opts.Metrics,
		log:       log,
	}
	s.publish(holder.Current())
	return s
}

// Index returns the snapshot currently served.
func (s *Service) Index() *index.Index { return s.holder.Current() }

// Reload reads every artifact from src, builds a new index and swaps it in.
// Readers holding the previous snapshot are unaffected.
func (s *Service) Reload(ctx context.Context, src artifact.Source) (*index.Index, error) {
	res, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading artifacts: %w", err)
	}
	for _, w := range res.Warnings {
		s.log.Warn().Str("location", w.Location).Err(w.Err).Msg("skipping artifact file")
	}
	idx := s.holder.Rebuild(res.Artifacts, index.Options{Logger: &s.log})
	s.publish(idx)
	return idx, nil
}

func (s *Service) publish(idx *index.Index) {
	s.metrics.SetIndex(idx.Generation(), idx.Len(), len(idx.Warnings()), idx.BuiltAt())
}

// observe records a finished operation in metrics and the debug log.
func (s *Service) observe(op string, start time.Time, err error) {
	d := time.Since(start)
	s.metrics.ObserveRequest(op, err, d)
	ev := s.log.Debug()
	if err != nil {
		ev = s.log.Info().Err(err)
	}
	ev.Str("operation", op).Dur("duration", d).Msg("request handled")
}
