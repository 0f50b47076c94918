package pii

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"agro-backend/internal/shared/telemetry"
	"agro-backend/internal/shared/util"
)

// Gateway sanitizes inbound text before it can reach the generative model or
// any log, and re-personalizes responses at egress. Detection is regex-based
// and best-effort.
type Gateway struct {
	salt  string
	audit AuditRepo
}

// NewGateway constructs a Gateway with the given farm-token salt.
func NewGateway(salt string, audit AuditRepo) *Gateway {
	return &Gateway{salt: salt, audit: audit}
}

// Sanitized is the de-identified view of an inbound request. It carries the
// synthetic farm token instead of the real identifier; the original values
// stay with the caller and are never persisted here.
type Sanitized struct {
	FarmToken string
	Query     string
	Audit     AuditRecord
}

// Sanitize strips direct identifiers from the query text, derives the
// deterministic farm token and appends an audit record containing only
// hashes and category counts.
func (g *Gateway) Sanitize(ctx context.Context, farmID, farmerName, query, requestID string) (Sanitized, error) {
	counts := make(map[Category]int)
	var hashes []string

	record := func(cat Category, value string) {
		counts[cat]++
		hashes = append(hashes, util.HashValue(value))
	}

	clean := query

	// The caller-supplied farmer name is an identifier regardless of pattern
	// shape; scrub exact occurrences first.
	if name := strings.TrimSpace(farmerName); name != "" {
		if strings.Contains(clean, name) {
			clean = strings.ReplaceAll(clean, name, CategoryName.Placeholder())
			record(CategoryName, name)
		}
	}

	clean = nameCuePattern.ReplaceAllStringFunc(clean, func(m string) string {
		sub := nameCuePattern.FindStringSubmatch(m)
		record(CategoryName, sub[2])
		return sub[1] + " " + CategoryName.Placeholder()
	})

	clean = ibanPattern.ReplaceAllStringFunc(clean, func(m string) string {
		record(CategoryIBAN, m)
		return CategoryIBAN.Placeholder()
	})

	clean = phonePattern.ReplaceAllStringFunc(clean, func(m string) string {
		record(CategoryPhone, m)
		return CategoryPhone.Placeholder()
	})

	clean = emailPattern.ReplaceAllStringFunc(clean, func(m string) string {
		record(CategoryEmail, m)
		return CategoryEmail.Placeholder()
	})

	clean = gpsPattern.ReplaceAllStringFunc(clean, func(m string) string {
		record(CategoryGPS, m)
		return CategoryGPS.Placeholder()
	})

	clean = finPattern.ReplaceAllStringFunc(clean, func(m string) string {
		if !isFINCandidate(m) {
			return m
		}
		record(CategoryFIN, m)
		return CategoryFIN.Placeholder()
	})

	token := util.FarmToken(farmID, g.salt)
	audit := AuditRecord{
		ID:             uuid.NewString(),
		FarmToken:      token,
		RequestID:      requestID,
		CategoryCounts: counts,
		ValueHashes:    hashes,
		CreatedAt:      time.Now().UTC(),
	}

	if g.audit != nil && (len(counts) > 0 || farmID != "") {
		if err := g.audit.Append(ctx, audit); err != nil {
			// Audit failure must not block the request; counts are still
			// visible in the log stream.
			telemetry.Error("pii.audit_append_failed", map[string]any{
				"farm_token": token,
				"error":      err.Error(),
			})
		}
	}

	return Sanitized{
		FarmToken: token,
		Query:     clean,
		Audit:     audit,
	}, nil
}

// Personalize reinserts only the farmer's display name into the final text.
// No other stripped field is ever reconstituted.
func (g *Gateway) Personalize(text, farmerName string) string {
	name := strings.TrimSpace(farmerName)
	if name == "" {
		return strings.ReplaceAll(text, CategoryName.Placeholder(), "")
	}
	return strings.ReplaceAll(text, CategoryName.Placeholder(), name)
}
