package pii

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no audit records exist for a farm token.
var ErrNotFound = errors.New("audit record not found")

// AuditRecord captures what the gateway stripped from a request: category
// counts and SHA-256 hashes of the removed values. Raw values are never
// stored. Records are append-only.
type AuditRecord struct {
	ID             string           `json:"id"`
	FarmToken      string           `json:"farmToken"`
	RequestID      string           `json:"requestId"`
	CategoryCounts map[Category]int `json:"categoryCounts"`
	ValueHashes    []string         `json:"valueHashes"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// AuditRepo defines append-only persistence for audit records.
type AuditRepo interface {
	Append(ctx context.Context, record AuditRecord) error
	ListByFarmToken(ctx context.Context, farmToken string, limit int) ([]AuditRecord, error)
}
