package handlers

import (
	"sync"
	"time"

	"github.com/maintlog/backend/internal/models"
)

// HistoryStore keeps the recent Q/A history of the process in memory. It is
// capped and never persisted across restarts.
type HistoryStore struct {
	mu    sync.Mutex
	limit int
	items []models.QAEntry
}

func NewHistoryStore(limit int) *HistoryStore {
	if limit <= 0 {
		limit = 30
	}
	return &HistoryStore{limit: limit}
}

func (h *HistoryStore) Push(question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, models.QAEntry{
		TS:       time.Now().UTC(),
		Question: question,
		Answer:   answer,
	})
	if len(h.items) > h.limit {
		h.items = h.items[len(h.items)-h.limit:]
	}
}

func (h *HistoryStore) List() []models.QAEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.QAEntry, len(h.items))
	copy(out, h.items)
	return out
}

func (h *HistoryStore) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
