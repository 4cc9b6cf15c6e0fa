package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps history in process memory, newest last, capped per
// visitor. It is used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string][]Entry)}
}

func (r *MemoryRepo) Append(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.entries[e.VisitorID], e)
	if len(list) > maxPerVisitor {
		list = list[len(list)-maxPerVisitor:]
	}
	r.entries[e.VisitorID] = list
	return nil
}

func (r *MemoryRepo) List(_ context.Context, visitorID string, limit int) ([]Entry, error) {
	r.mu.RLock()
	list := make([]Entry, len(r.entries[visitorID]))
	copy(list, r.entries[visitorID])
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryRepo) Clear(_ context.Context, visitorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.entries[visitorID]))
	delete(r.entries, visitorID)
	return n, nil
}
