package feed

import (
	"sync"

	"flowScope/internal/projector"
)

// Holder keeps the displayed projection steady while a dependent transaction
// is pending. Resolve records every fresh projection; after Hold it keeps
// returning the last one recorded until Release.
type Holder struct {
	mu   sync.Mutex
	held bool
	last *projector.FlowChangeProjection
}

// Hold pins the last resolved projection.
func (h *Holder) Hold() {
	h.mu.Lock()
	h.held = true
	h.mu.Unlock()
}

// Release lets fresh projections through again.
func (h *Holder) Release() {
	h.mu.Lock()
	h.held = false
	h.mu.Unlock()
}

// Seed records p as the last projection if none has been resolved yet.
func (h *Holder) Seed(p projector.FlowChangeProjection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		h.last = &p
	}
}

// Held reports whether a projection is pinned.
func (h *Holder) Held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.held && h.last != nil
}

// Resolve returns the pinned projection while held, otherwise records and
// returns fresh. The boolean reports whether the pinned value was returned.
func (h *Holder) Resolve(fresh projector.FlowChangeProjection) (projector.FlowChangeProjection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held && h.last != nil {
		return *h.last, true
	}
	h.last = &fresh
	return fresh, false
}
