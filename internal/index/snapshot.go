// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"sync"
	"sync/atomic"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// Holder publishes index generations. Current is lock-free; a caller that
// obtained an *Index keeps using it for as long as it holds the pointer,
// regardless of later swaps.
type Holder struct {
	cur atomic.Pointer[Index]
	mu  sync.Mutex // serializes rebuilds
}

// NewHolder returns a Holder publishing idx. A nil idx publishes an empty
// generation-zero index.
func NewHolder(idx *Index) *Holder {
	if idx == nil {
		idx = Build(nil, Options{})
	}
	h := &Holder{}
	h.cur.Store(idx)
	return h
}

// Current returns the active generation.
func (h *Holder) Current() *Index { return h.cur.Load() }

// Swap publishes next and returns the generation it replaced.
func (h *Holder) Swap(next *Index) *Index {
	return h.cur.Swap(next)
}

// Rebuild builds a new generation from artifacts, numbered one past the
// current one, and publishes it.
func (h *Holder) Rebuild(artifacts []types.Artifact, opts Options) *Index {
	h.mu.Lock()
	defer h.mu.Unlock()
	opts.Generation = h.Current().Generation() + 1
	next := Build(artifacts, opts)
	h.Swap(next)
	return next
}
