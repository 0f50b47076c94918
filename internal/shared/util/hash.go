package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashValue returns the hex SHA-256 of a stripped PII value. Audit records
// store only this digest, never the original.
func HashValue(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// FarmToken derives a stable synthetic identifier for a farm. The same
// (farmID, salt) pair always maps to the same token, so timelines and audit
// records correlate without exposing the real identifier.
func FarmToken(farmID, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + farmID))
	return "farm-" + hex.EncodeToString(sum[:8])
}
