// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/policy-engine/internal/metrics"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Token, when set, is required as a bearer token on every query route.
	Token   string
	Metrics *metrics.Metrics
	Logger  *zerolog.Logger
}

// NewRouter serves svc over HTTP:
//
//	GET|POST /clause          clause lookup
//	GET      /policies        catalog (?scope=default|all)
//	GET      /policies/lookup policy lookup (?id= or ?title=, &include=)
//	GET|POST /search          full-text search
//	GET      /healthz         liveness and index generation
//	GET      /metrics         Prometheus metrics
func NewRouter(svc *Service, opts RouterOptions) http.Handler {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		idx := svc.Index()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"index_generation": idx.Generation(),
			"policies":         idx.Len(),
		})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if opts.Token != "" {
			r.Use(bearerAuth(opts.Token))
		}
		h := handlers{svc: svc}
		r.Get("/clause", h.clauseGet)
		r.Post("/clause", h.clausePost)
		r.Get("/policies", h.catalog)
		r.Get("/policies/lookup", h.policy)
		r.Get("/search", h.searchGet)
		r.Post("/search", h.searchPost)
	})
	return r
}

type handlers struct {
	svc *Service
}

func (h handlers) clauseGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ClauseRequest{
		Title: q.Get("title"),
		Item:  firstNonEmpty(q.Get("item"), q.Get("clause"), q.Get("article")),
		Keys:  q["key"],
	}
	resp, err := h.svc.LookupClause(r.Context(), req)
	respond(w, resp, err)
}

func (h handlers) clausePost(w http.ResponseWriter, r *http.Request) {
	var req ClauseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.LookupClause(r.Context(), req)
	respond(w, resp, err)
}

func (h handlers) catalog(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Catalog(r.Context(), CatalogRequest{Scope: r.URL.Query().Get("scope")})
	respond(w, resp, err)
}

func (h handlers) policy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.svc.GetPolicy(r.Context(), PolicyRequest{
		ID:      q.Get("id"),
		Title:   q.Get("title"),
		Include: q["include"],
	})
	respond(w, resp, err)
}

func (h handlers) searchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SearchRequest{Query: firstNonEmpty(q.Get("query"), q.Get("q"))}
	if v := firstNonEmpty(q.Get("top_k"), q.Get("topk")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid top_k parameter"))
			return
		}
		req.TopK = n
	}
	if v := q.Get("meta_filter"); v != "" {
		req.MetaFilter = json.RawMessage(v)
	}
	resp, err := h.svc.Search(r.Context(), req)
	respond(w, resp, err)
}

func (h handlers) searchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.Search(r.Context(), req)
	respond(w, resp, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

// respond writes v, or maps err onto an HTTP status.
func respond(w http.ResponseWriter, v any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, v)
		return
	}
	var amb *AmbiguousError
	switch {
	case errors.As(err, &amb):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "candidates": amb.Candidates})
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err)
	case IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="policy-engine"`)
				writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
