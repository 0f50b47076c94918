package review

import (
	"context"
	"errors"
	"time"
)

// Review tiers assigned by validation scoring.
const (
	TierAutoApproved = "auto_approved"
	TierAsyncReview  = "pending_async_review"
	TierSyncReview   = "blocked_pending_sync_review"
)

// Item statuses.
const (
	StatusPending      = "pending"
	StatusApproved     = "approved"
	StatusRejected     = "rejected"
	StatusAutoApproved = "auto_approved"
)

// ErrNotFound is returned when a review item does not exist.
var ErrNotFound = errors.New("review item not found")

// Item is one recommendation awaiting expert review. RecommendationText is
// the sanitized text; no raw farmer identifiers are ever stored here.
type Item struct {
	ID                 string     `json:"id"`
	RecommendationID   string     `json:"recommendationId"`
	FarmToken          string     `json:"farmToken"`
	Tier               string     `json:"tier"`
	RecommendationText string     `json:"recommendationText"`
	Confidence         float64    `json:"confidence"`
	Status             string     `json:"status"`
	Reviewer           string     `json:"reviewer,omitempty"`
	Notes              []string   `json:"notes"`
	EnqueuedAt         time.Time  `json:"enqueuedAt"`
	DecidedAt          *time.Time `json:"decidedAt,omitempty"`
}

// Repo defines persistence for review items.
type Repo interface {
	Create(ctx context.Context, item Item) error
	Get(ctx context.Context, id string) (Item, error)
	Decide(ctx context.Context, id, status, reviewer, note string, decidedAt time.Time) (Item, error)
	ListExpiredPending(ctx context.Context, tier string, cutoff time.Time, limit int) ([]Item, error)
}
