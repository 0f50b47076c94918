package temporal

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Append ordering per farm rides on
// the database; no in-process locking is needed.
type PGRepo struct {
	DB *sql.DB
}

// Append inserts the entry.
func (r *PGRepo) Append(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO temporal_entries (id, farm_token, action_type, crop, recorded_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.FarmToken,
		entry.ActionType,
		entry.Crop,
		entry.RecordedAt,
	)
	return err
}

// LatestMatch returns the most recent matching entry at or after since.
func (r *PGRepo) LatestMatch(ctx context.Context, farmToken, actionType, crop string, since time.Time) (Entry, error) {
	const query = `
SELECT id, farm_token, action_type, crop, recorded_at
FROM temporal_entries
WHERE farm_token = $1
  AND lower(action_type) = lower($2)
  AND ($3 = '' OR lower(crop) = lower($3))
  AND recorded_at >= $4
ORDER BY recorded_at DESC
LIMIT 1`

	var entry Entry
	err := r.DB.QueryRowContext(ctx, query, farmToken, actionType, crop, since).
		Scan(&entry.ID, &entry.FarmToken, &entry.ActionType, &entry.Crop, &entry.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoEntry
	}
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ListByFarm returns the most recent entries for a farm, newest first.
func (r *PGRepo) ListByFarm(ctx context.Context, farmToken string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, farm_token, action_type, crop, recorded_at
FROM temporal_entries
WHERE farm_token = $1
ORDER BY recorded_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, farmToken, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.FarmToken, &entry.ActionType, &entry.Crop, &entry.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
