package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agro-backend/internal/shared/telemetry"
)

// EscalationNote is appended when an async review expires without a human
// decision.
const EscalationNote = "time-expired: auto-approved after review window elapsed"

// Service owns the expert review workflow: enqueueing flagged
// recommendations, recording expert decisions and escalating expired async
// reviews.
type Service struct {
	repo  Repo
	queue QueueClient
	now   func() time.Time
}

// NewService constructs a review Service; now is overridable for tests.
func NewService(repo Repo, queue QueueClient, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, queue: queue, now: now}
}

// EnqueueInput carries the fields needed to open a review item.
type EnqueueInput struct {
	RecommendationID   string
	FarmToken          string
	Tier               string
	RecommendationText string
	Confidence         float64
	Notes              []string
	RequestID          string
}

// Enqueue persists a review item and notifies the expert queue. Queue
// delivery is best effort; the item is authoritative in the store.
func (s *Service) Enqueue(ctx context.Context, input EnqueueInput) (Item, error) {
	if input.Tier != TierAsyncReview && input.Tier != TierSyncReview {
		return Item{}, fmt.Errorf("tier %q is not reviewable", input.Tier)
	}
	item := Item{
		ID:                 uuid.NewString(),
		RecommendationID:   input.RecommendationID,
		FarmToken:          input.FarmToken,
		Tier:               input.Tier,
		RecommendationText: input.RecommendationText,
		Confidence:         input.Confidence,
		Status:             StatusPending,
		Notes:              append([]string(nil), input.Notes...),
		EnqueuedAt:         s.now(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Item{}, fmt.Errorf("create review item: %w", err)
	}

	msg := Message{
		ReviewItemID:     item.ID,
		RecommendationID: item.RecommendationID,
		FarmToken:        item.FarmToken,
		Tier:             item.Tier,
		RequestID:        input.RequestID,
		EnqueuedAt:       item.EnqueuedAt.Format(time.RFC3339),
		Version:          1,
	}
	if err := s.queue.Send(ctx, msg); err != nil {
		telemetry.Error("review.queue_send_failed", map[string]any{
			"review_item_id": item.ID,
			"tier":           item.Tier,
			"error":          err.Error(),
		})
	}
	return item, nil
}

// Decide applies an expert decision to a pending item.
func (s *Service) Decide(ctx context.Context, id string, approve bool, reviewer, note string) (Item, error) {
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	item, err := s.repo.Decide(ctx, id, status, reviewer, note, s.now())
	if err != nil {
		return Item{}, err
	}
	telemetry.Info("review.decided", map[string]any{
		"review_item_id": item.ID,
		"status":         item.Status,
		"tier":           item.Tier,
	})
	return item, nil
}

// Get returns a review item.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

// EscalateExpired auto-approves async reviews whose window has elapsed
// without an expert decision. Sync-blocked items never expire. Returns the
// number of items escalated.
func (s *Service) EscalateExpired(ctx context.Context, window time.Duration) (int, error) {
	cutoff := s.now().Add(-window)
	expired, err := s.repo.ListExpiredPending(ctx, TierAsyncReview, cutoff, 100)
	if err != nil {
		return 0, fmt.Errorf("list expired reviews: %w", err)
	}
	escalated := 0
	for _, item := range expired {
		if _, err := s.repo.Decide(ctx, item.ID, StatusAutoApproved, "", EscalationNote, s.now()); err != nil {
			telemetry.Error("review.escalate_failed", map[string]any{
				"review_item_id": item.ID,
				"error":          err.Error(),
			})
			continue
		}
		escalated++
	}
	if escalated > 0 {
		telemetry.Info("review.escalated", map[string]any{"count": escalated})
	}
	return escalated, nil
}
