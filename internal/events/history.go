package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistorySize is how many invocations a History remembers.
const DefaultHistorySize = 100

// InvocationStatus is where an invocation stands as seen through events.
type InvocationStatus string

const (
	InvocationPending InvocationStatus = "pending"
	InvocationDone    InvocationStatus = "done"
	InvocationFailed  InvocationStatus = "failed"
)

// InvocationRecord is the history entry for one invocation. Result is set
// once the invocation has finished.
type InvocationRecord struct {
	InvocationID uuid.UUID           `json:"invocation_id"`
	TabID        int                 `json:"tab_id"`
	Status       InvocationStatus    `json:"status"`
	RequestedAt  time.Time           `json:"requested_at"`
	Result       *InvocationFinished `json:"result,omitempty"`
}

// requested is the part of a generation.requested payload History reads.
// The selection itself is never kept.
type requested struct {
	ID          uuid.UUID `json:"id"`
	TabID       int       `json:"tab_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// History is an EventHandler that remembers the most recent invocations so
// their outcome and diagnosis can be looked up after the request returned.
type History struct {
	size int

	mu      sync.RWMutex
	records map[uuid.UUID]*InvocationRecord
	order   []uuid.UUID // oldest first
}

var _ EventHandler = (*History)(nil)

// NewHistory creates a History holding up to size entries. A size <= 0 uses
// DefaultHistorySize.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		records: make(map[uuid.UUID]*InvocationRecord, size),
	}
}

// HandleEvent records generation.requested as pending and
// invocation.finished as its outcome. Other types are ignored.
func (h *History) HandleEvent(_ context.Context, event *Event) error {
	switch event.Type {
	case TypeGenerationRequested:
		var req requested
		if err := event.UnmarshalPayload(&req); err != nil {
			return fmt.Errorf("history: decode request: %w", err)
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		// A fast invocation can finish before this handler runs.
		if _, ok := h.records[req.ID]; ok {
			return nil
		}
		h.insertLocked(&InvocationRecord{
			InvocationID: req.ID,
			TabID:        req.TabID,
			Status:       InvocationPending,
			RequestedAt:  req.RequestedAt,
		})

	case TypeInvocationFinished:
		var fin InvocationFinished
		if err := event.UnmarshalPayload(&fin); err != nil {
			return fmt.Errorf("history: decode result: %w", err)
		}
		status := InvocationDone
		if fin.FailedIn != "" {
			status = InvocationFailed
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		rec, ok := h.records[fin.InvocationID]
		if !ok {
			rec = &InvocationRecord{InvocationID: fin.InvocationID, RequestedAt: event.CreatedAt}
			h.insertLocked(rec)
		}
		rec.TabID = fin.TabID
		rec.Status = status
		rec.Result = &fin
	}
	return nil
}

func (h *History) insertLocked(rec *InvocationRecord) {
	if len(h.order) == h.size {
		delete(h.records, h.order[0])
		h.order = h.order[1:]
	}
	h.records[rec.InvocationID] = rec
	h.order = append(h.order, rec.InvocationID)
}

// Get returns the record for id.
func (h *History) Get(id uuid.UUID) (InvocationRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[id]
	if !ok {
		return InvocationRecord{}, false
	}
	return rec.copy(), true
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (h *History) Recent(limit int) []InvocationRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > len(h.order) {
		limit = len(h.order)
	}
	out := make([]InvocationRecord, 0, limit)
	for i := len(h.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[h.order[i]].copy())
	}
	return out
}

func (r *InvocationRecord) copy() InvocationRecord {
	c := *r
	if r.Result != nil {
		res := *r.Result
		res.States = append([]string(nil), r.Result.States...)
		c.Result = &res
	}
	return c
}
