package review

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores review items in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Item
	order []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Item)}
}

// Create stores the item.
func (r *MemoryRepo) Create(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[item.ID]; !exists {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// Get returns the item by id.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

// Decide records a terminal status for a pending item.
func (r *MemoryRepo) Decide(ctx context.Context, id, status, reviewer, note string, decidedAt time.Time) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	if item.Status != StatusPending {
		return item, nil
	}
	item.Status = status
	item.Reviewer = reviewer
	if note != "" {
		item.Notes = append(item.Notes, note)
	}
	item.DecidedAt = &decidedAt
	r.items[id] = item
	return item, nil
}

// ListExpiredPending returns pending items of a tier enqueued before cutoff.
func (r *MemoryRepo) ListExpiredPending(ctx context.Context, tier string, cutoff time.Time, limit int) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var out []Item
	for _, id := range r.order {
		item := r.items[id]
		if item.Status != StatusPending || item.Tier != tier {
			continue
		}
		if !item.EnqueuedAt.Before(cutoff) {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
