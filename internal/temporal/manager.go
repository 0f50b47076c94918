package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Manager maintains the per-farm action timeline used to gate and boost rule
// relevance.
type Manager struct {
	repo Repo
	now  func() time.Time
}

// NewManager constructs a Manager; now is overridable for tests.
func NewManager(repo Repo, now func() time.Time) *Manager {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{repo: repo, now: now}
}

// Record appends an action to the farm's timeline.
func (m *Manager) Record(ctx context.Context, farmToken, actionType, crop string) (Entry, error) {
	if farmToken == "" || actionType == "" {
		return Entry{}, fmt.Errorf("farmToken and actionType are required")
	}
	entry := Entry{
		ID:         uuid.NewString(),
		FarmToken:  farmToken,
		ActionType: actionType,
		Crop:       crop,
		RecordedAt: m.now(),
	}
	if err := m.repo.Append(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("append temporal entry: %w", err)
	}
	return entry, nil
}

// RelevantContext returns the most recent matching entry within the lookback
// window, or ErrNoEntry.
func (m *Manager) RelevantContext(ctx context.Context, farmToken, actionType, crop string, lookbackDays int) (Entry, error) {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	since := m.now().Add(-time.Duration(lookbackDays) * 24 * time.Hour)
	return m.repo.LatestMatch(ctx, farmToken, actionType, crop, since)
}

// IntervalWarning checks the soft minimum-interval constraint for repeating
// an action. It returns a human-readable warning when the last matching
// entry falls inside the interval, and "" otherwise.
func (m *Manager) IntervalWarning(ctx context.Context, farmToken, actionType, crop string) string {
	interval, ok := MinInterval(actionType)
	if !ok {
		return ""
	}
	lookbackDays := int(interval/(24*time.Hour)) + 1
	last, err := m.RelevantContext(ctx, farmToken, actionType, crop, lookbackDays)
	if err != nil {
		if !errors.Is(err, ErrNoEntry) {
			// Lookback failures must not fail the request; skip the check.
			return ""
		}
		return ""
	}
	elapsed := m.now().Sub(last.RecordedAt)
	if elapsed >= interval {
		return ""
	}
	return fmt.Sprintf("%s for %s was already recorded %s ago; the recommended minimum interval is %s",
		actionType, crop, elapsed.Round(time.Hour), interval)
}

// Timeline returns the most recent entries for a farm.
func (m *Manager) Timeline(ctx context.Context, farmToken string, limit int) ([]Entry, error) {
	return m.repo.ListByFarm(ctx, farmToken, limit)
}
