package pii

import (
	"context"
	"strings"
	"testing"

	"agro-backend/internal/shared/util"
)

func TestSanitizePhoneNeverSurvives(t *testing.T) {
	repo := NewMemoryAuditRepo()
	gw := NewGateway("test-salt", repo)

	query := "Suvarma lazımdırmı? Zəng edin +994 50 123 45 67"

	out, err := gw.Sanitize(context.Background(), "farm-1", "", query, "req-1")
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if strings.Contains(out.Query, "+994") {
		t.Fatalf("phone survived sanitization: %q", out.Query)
	}
	if !strings.Contains(out.Query, "[PHONE]") {
		t.Fatalf("expected [PHONE] placeholder, got %q", out.Query)
	}
	if out.Audit.CategoryCounts[CategoryPhone] != 1 {
		t.Fatalf("expected one phone detection, got %v", out.Audit.CategoryCounts)
	}

	records, err := repo.ListByFarmToken(context.Background(), out.FarmToken, 10)
	if err != nil {
		t.Fatalf("ListByFarmToken: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(records))
	}
	for _, h := range records[0].ValueHashes {
		if strings.Contains(h, "994") && len(h) != 64 {
			t.Fatalf("audit stores something other than a hash: %q", h)
		}
	}
	want := util.HashValue("+994 50 123 45 67")
	found := false
	for _, h := range records[0].ValueHashes {
		if h == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected hash of stripped phone in audit record")
	}
}

func TestSanitizeCategories(t *testing.T) {
	gw := NewGateway("test-salt", nil)

	cases := []struct {
		name        string
		query       string
		placeholder string
		category    Category
	}{
		{"email", "write to fermer@example.az please", "[EMAIL]", CategoryEmail},
		{"iban", "pay AZ21NABZ00000000137010001944", "[IBAN]", CategoryIBAN},
		{"fin", "FIN 5ABC123 qeydiyyat", "[FIN]", CategoryFIN},
		{"gps", "my field is at 40.4093, 49.8671", "[GPS]", CategoryGPS},
		{"name cue", "mənim adım Eldar Məmmədov", "[NAME]", CategoryName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := gw.Sanitize(context.Background(), "farm-9", "", tc.query, "")
			if err != nil {
				t.Fatalf("Sanitize: %v", err)
			}
			if !strings.Contains(out.Query, tc.placeholder) {
				t.Fatalf("expected %s in %q", tc.placeholder, out.Query)
			}
			if out.Audit.CategoryCounts[tc.category] == 0 {
				t.Fatalf("expected %s count > 0, got %v", tc.category, out.Audit.CategoryCounts)
			}
		})
	}
}

func TestSanitizePlainWordsUntouched(t *testing.T) {
	gw := NewGateway("test-salt", nil)
	query := "buğda sahəsi üçün gübrə norması nə qədərdir"
	out, err := gw.Sanitize(context.Background(), "farm-2", "", query, "")
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if out.Query != query {
		t.Fatalf("query without identifiers must pass through unchanged: %q", out.Query)
	}
	if len(out.Audit.CategoryCounts) != 0 {
		t.Fatalf("expected no detections, got %v", out.Audit.CategoryCounts)
	}
}

func TestFarmTokenStable(t *testing.T) {
	gw := NewGateway("salt-a", nil)
	a, _ := gw.Sanitize(context.Background(), "ektis-778812", "", "q", "")
	b, _ := gw.Sanitize(context.Background(), "ektis-778812", "", "other q", "")
	if a.FarmToken != b.FarmToken {
		t.Fatalf("same farm must map to same token: %s vs %s", a.FarmToken, b.FarmToken)
	}
	if strings.Contains(a.FarmToken, "778812") {
		t.Fatalf("token leaks farm id: %s", a.FarmToken)
	}
}

func TestPersonalizeReinsertsOnlyName(t *testing.T) {
	gw := NewGateway("salt", nil)
	text := "[NAME], sahənizi bu gün suvarın."
	got := gw.Personalize(text, "Eldar")
	if got != "Eldar, sahənizi bu gün suvarın." {
		t.Fatalf("unexpected personalization: %q", got)
	}
	if gw.Personalize("[PHONE] stays", "Eldar") != "[PHONE] stays" {
		t.Fatalf("non-name placeholders must never be reconstituted")
	}
	if gw.Personalize(text, "") != ", sahənizi bu gün suvarın." {
		t.Fatalf("empty name should drop the placeholder")
	}
}
