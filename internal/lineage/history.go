package lineage

import (
	"sync"

	"biomorph/internal/model"
)

// DefaultHistoryCapacity bounds retained history when the caller does not.
const DefaultHistoryCapacity = 500

// History is the bounded, id-indexed arena of everything ever selected or
// auto-advanced-to. Parent links are ids resolved through this arena, never
// embedded references. Appends past capacity evict the oldest entries,
// which may sever lineage reconstruction for very old ancestors; that is
// documented behavior, not a bug.
type History struct {
	mu       sync.RWMutex
	capacity int
	byID     map[string]model.Biomorph
	order    []string
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		byID:     make(map[string]model.Biomorph, capacity),
	}
}

// Append retains a biomorph, evicting the oldest entries beyond capacity.
// Re-appending a retained id refreshes the stored record without growing
// the arena.
func (h *History) Append(b model.Biomorph) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byID[b.ID]; exists {
		h.byID[b.ID] = b
		return
	}
	for len(h.order) >= h.capacity {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.byID, oldest)
	}
	h.byID[b.ID] = b
	h.order = append(h.order, b.ID)
}

func (h *History) Get(id string) (model.Biomorph, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	b, ok := h.byID[id]
	return b, ok
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

// Evict drops one id from the arena. Used by tests to simulate truncation.
func (h *History) Evict(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.byID[id]; !ok {
		return
	}
	delete(h.byID, id)
	for i, retained := range h.order {
		if retained == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
