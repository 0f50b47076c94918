package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the review item.
func (r *PGRepo) Create(ctx context.Context, item Item) error {
	const query = `
INSERT INTO review_items (id, recommendation_id, farm_token, tier, recommendation_text, confidence, status, reviewer, notes, enqueued_at, decided_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	notes, err := marshalNotes(item.Notes)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		item.ID,
		item.RecommendationID,
		item.FarmToken,
		item.Tier,
		item.RecommendationText,
		item.Confidence,
		item.Status,
		nullString(item.Reviewer),
		notes,
		item.EnqueuedAt,
		item.DecidedAt,
	)
	return err
}

// Get returns the item by id.
func (r *PGRepo) Get(ctx context.Context, id string) (Item, error) {
	const query = `
SELECT id, recommendation_id, farm_token, tier, recommendation_text, confidence, status, reviewer, notes, enqueued_at, decided_at
FROM review_items
WHERE id = $1`

	return scanItem(r.DB.QueryRowContext(ctx, query, id))
}

// Decide records a terminal status for a pending item and returns the updated
// row. Already-decided items are returned unchanged.
func (r *PGRepo) Decide(ctx context.Context, id, status, reviewer, note string, decidedAt time.Time) (Item, error) {
	const query = `
UPDATE review_items
SET status = $2,
    reviewer = $3,
    notes = CASE WHEN $4 = '' THEN notes ELSE notes || to_jsonb($4::text) END,
    decided_at = $5
WHERE id = $1 AND status = 'pending'`

	if _, err := r.DB.ExecContext(ctx, query, id, status, nullString(reviewer), note, decidedAt); err != nil {
		return Item{}, err
	}
	// Zero rows means missing or already decided; Get disambiguates.
	return r.Get(ctx, id)
}

// ListExpiredPending returns pending items of a tier enqueued before cutoff.
func (r *PGRepo) ListExpiredPending(ctx context.Context, tier string, cutoff time.Time, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT id, recommendation_id, farm_token, tier, recommendation_text, confidence, status, reviewer, notes, enqueued_at, decided_at
FROM review_items
WHERE status = 'pending' AND tier = $1 AND enqueued_at < $2
ORDER BY enqueued_at ASC
LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, query, tier, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var reviewer sql.NullString
	var notes []byte
	var decidedAt sql.NullTime
	err := row.Scan(
		&item.ID,
		&item.RecommendationID,
		&item.FarmToken,
		&item.Tier,
		&item.RecommendationText,
		&item.Confidence,
		&item.Status,
		&reviewer,
		&notes,
		&item.EnqueuedAt,
		&decidedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	if reviewer.Valid {
		item.Reviewer = reviewer.String
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		item.DecidedAt = &t
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &item.Notes); err != nil {
			return Item{}, fmt.Errorf("unmarshal review notes: %w", err)
		}
	}
	return item, nil
}

func marshalNotes(notes []string) ([]byte, error) {
	if notes == nil {
		notes = []string{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("marshal review notes: %w", err)
	}
	return data, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
