package pii

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGAuditRepo implements AuditRepo using Postgres.
type PGAuditRepo struct {
	DB *sql.DB
}

// Append inserts the audit record.
func (r *PGAuditRepo) Append(ctx context.Context, record AuditRecord) error {
	const query = `
INSERT INTO pii_audit_records (id, farm_token, request_id, category_counts, value_hashes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	counts, err := json.Marshal(record.CategoryCounts)
	if err != nil {
		return fmt.Errorf("marshal category counts: %w", err)
	}
	hashes, err := json.Marshal(record.ValueHashes)
	if err != nil {
		return fmt.Errorf("marshal value hashes: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.FarmToken,
		record.RequestID,
		counts,
		hashes,
		record.CreatedAt,
	)
	return err
}

// ListByFarmToken returns the most recent records for a farm token.
func (r *PGAuditRepo) ListByFarmToken(ctx context.Context, farmToken string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, farm_token, request_id, category_counts, value_hashes, created_at
FROM pii_audit_records
WHERE farm_token = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, farmToken, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var record AuditRecord
		var counts, hashes []byte
		if err := rows.Scan(&record.ID, &record.FarmToken, &record.RequestID, &counts, &hashes, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(counts, &record.CategoryCounts); err != nil {
			return nil, fmt.Errorf("unmarshal category counts: %w", err)
		}
		if err := json.Unmarshal(hashes, &record.ValueHashes); err != nil {
			return nil, fmt.Errorf("unmarshal value hashes: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

var _ AuditRepo = (*PGAuditRepo)(nil)
