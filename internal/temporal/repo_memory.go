package temporal

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo keeps per-farm timelines in memory. A per-farm mutex serializes
// appends for the same farm while letting unrelated farms proceed in
// parallel.
type MemoryRepo struct {
	mu     sync.RWMutex
	byFarm map[string][]Entry
	locks  map[string]*sync.Mutex
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byFarm: make(map[string][]Entry),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *MemoryRepo) farmLock(farmToken string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[farmToken]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[farmToken] = lock
	}
	return lock
}

// Append stores the entry at the end of the farm's timeline.
func (r *MemoryRepo) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := r.farmLock(entry.FarmToken)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	r.byFarm[entry.FarmToken] = append(r.byFarm[entry.FarmToken], entry)
	r.mu.Unlock()
	return nil
}

// LatestMatch returns the most recent entry for the farm matching the action
// type (and crop, when given) recorded at or after since.
func (r *MemoryRepo) LatestMatch(ctx context.Context, farmToken, actionType, crop string, since time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.byFarm[farmToken]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.RecordedAt.Before(since) {
			continue
		}
		if !strings.EqualFold(e.ActionType, actionType) {
			continue
		}
		if crop != "" && !strings.EqualFold(e.Crop, crop) {
			continue
		}
		return e, nil
	}
	return Entry{}, ErrNoEntry
}

// ListByFarm returns the most recent entries for a farm, newest first.
func (r *MemoryRepo) ListByFarm(ctx context.Context, farmToken string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.byFarm[farmToken]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
