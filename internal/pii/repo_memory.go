package pii

import (
	"context"
	"sync"
)

// MemoryAuditRepo stores audit records in memory and is safe for concurrent
// use. Appends only; records are never mutated or removed.
type MemoryAuditRepo struct {
	mu      sync.RWMutex
	records []AuditRecord
	byFarm  map[string][]int
}

// NewMemoryAuditRepo constructs a MemoryAuditRepo.
func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{byFarm: make(map[string][]int)}
}

// Append stores the audit record.
func (r *MemoryAuditRepo) Append(ctx context.Context, record AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	r.byFarm[record.FarmToken] = append(r.byFarm[record.FarmToken], len(r.records)-1)
	return nil
}

// ListByFarmToken returns the most recent records for a farm token.
func (r *MemoryAuditRepo) ListByFarmToken(ctx context.Context, farmToken string, limit int) ([]AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idxs := r.byFarm[farmToken]
	if limit <= 0 || limit > len(idxs) {
		limit = len(idxs)
	}
	out := make([]AuditRecord, 0, limit)
	for i := len(idxs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[idxs[i]])
	}
	return out, nil
}

var _ AuditRepo = (*MemoryAuditRepo)(nil)
