package temporal

import (
	"context"
	"errors"
	"time"
)

// ErrNoEntry is returned when no timeline entry matches a lookback query.
var ErrNoEntry = errors.New("no matching temporal entry")

// Entry is one recorded farm action. Entries are append-only; the engine
// never deletes them (retention is an external concern).
type Entry struct {
	ID         string    `json:"id"`
	FarmToken  string    `json:"farmToken"`
	ActionType string    `json:"actionType"`
	Crop       string    `json:"crop"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Repo defines persistence for per-farm timelines. Appends for the same farm
// must serialize; reads may be slightly stale but never observe a partial
// write.
type Repo interface {
	Append(ctx context.Context, entry Entry) error
	LatestMatch(ctx context.Context, farmToken, actionType, crop string, since time.Time) (Entry, error)
	ListByFarm(ctx context.Context, farmToken string, limit int) ([]Entry, error)
}
