package temporal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSeasonPhases(t *testing.T) {
	cases := []struct {
		month time.Month
		want  SeasonPhase
	}{
		{time.January, PhaseDormancy},
		{time.February, PhaseLandPreparation},
		{time.March, PhaseLandPreparation},
		{time.April, PhaseSowing},
		{time.May, PhaseSowing},
		{time.June, PhaseVegetation},
		{time.July, PhaseVegetation},
		{time.August, PhaseHarvest},
		{time.September, PhaseHarvest},
		{time.October, PhasePostHarvest},
		{time.November, PhasePostHarvest},
		{time.December, PhaseDormancy},
	}
	for _, tc := range cases {
		date := time.Date(2026, tc.month, 15, 0, 0, 0, 0, time.UTC)
		if got := CurrentSeasonPhase(date); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.month, got, tc.want)
		}
	}
}

func TestManagerRecordAndRelevantContext(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(NewMemoryRepo(), func() time.Time { return now })
	ctx := context.Background()

	entry, err := mgr.Record(ctx, "farm-ab12cd34", "irrigation", "wheat")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.ID == "" || !entry.RecordedAt.Equal(now) {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	got, err := mgr.RelevantContext(ctx, "farm-ab12cd34", "irrigation", "wheat", 30)
	if err != nil {
		t.Fatalf("RelevantContext: %v", err)
	}
	if got.ID != entry.ID {
		t.Fatalf("expected entry %s, got %s", entry.ID, got.ID)
	}

	if _, err := mgr.RelevantContext(ctx, "farm-ab12cd34", "harvest", "wheat", 30); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry for unmatched action, got %v", err)
	}
	if _, err := mgr.RelevantContext(ctx, "farm-other", "irrigation", "wheat", 30); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry for other farm, got %v", err)
	}
}

func TestRelevantContextRespectsLookback(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	old := Entry{ID: "e1", FarmToken: "farm-1", ActionType: "irrigation", Crop: "wheat", RecordedAt: base.Add(-40 * 24 * time.Hour)}
	if err := repo.Append(context.Background(), old); err != nil {
		t.Fatalf("Append: %v", err)
	}

	mgr := NewManager(repo, func() time.Time { return base })
	if _, err := mgr.RelevantContext(context.Background(), "farm-1", "irrigation", "wheat", 30); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("entry outside lookback must not match, got %v", err)
	}
	got, err := mgr.RelevantContext(context.Background(), "farm-1", "irrigation", "wheat", 45)
	if err != nil {
		t.Fatalf("RelevantContext: %v", err)
	}
	if got.ID != "e1" {
		t.Fatalf("expected e1, got %s", got.ID)
	}
}

func TestIntervalWarning(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(repo, func() time.Time { return base })
	ctx := context.Background()

	if warn := mgr.IntervalWarning(ctx, "farm-1", "irrigation", "wheat"); warn != "" {
		t.Fatalf("empty timeline must not warn, got %q", warn)
	}

	recent := Entry{ID: "e1", FarmToken: "farm-1", ActionType: "irrigation", Crop: "wheat", RecordedAt: base.Add(-12 * time.Hour)}
	if err := repo.Append(ctx, recent); err != nil {
		t.Fatalf("Append: %v", err)
	}
	warn := mgr.IntervalWarning(ctx, "farm-1", "irrigation", "wheat")
	if warn == "" {
		t.Fatalf("expected a warning inside the minimum interval")
	}
	if !strings.Contains(warn, "irrigation") || !strings.Contains(warn, "wheat") {
		t.Fatalf("warning should name action and crop: %q", warn)
	}

	stale := NewManager(repo, func() time.Time { return base.Add(3 * 24 * time.Hour) })
	if warn := stale.IntervalWarning(ctx, "farm-1", "irrigation", "wheat"); warn != "" {
		t.Fatalf("past the interval must not warn, got %q", warn)
	}

	if warn := mgr.IntervalWarning(ctx, "farm-1", "consultation", "wheat"); warn != "" {
		t.Fatalf("action without interval must not warn, got %q", warn)
	}
}

func TestMemoryRepoConcurrentAppends(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := Entry{
				ID:         string(rune('a' + i)),
				FarmToken:  "farm-1",
				ActionType: "irrigation",
				Crop:       "wheat",
				RecordedAt: base.Add(time.Duration(i) * time.Minute),
			}
			if err := repo.Append(ctx, entry); err != nil {
				t.Errorf("Append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := repo.ListByFarm(ctx, "farm-1", 0)
	if err != nil {
		t.Fatalf("ListByFarm: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
}

func TestListByFarmNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := Entry{ID: string(rune('a' + i)), FarmToken: "farm-1", ActionType: "irrigation", RecordedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	entries, err := repo.ListByFarm(ctx, "farm-1", 2)
	if err != nil {
		t.Fatalf("ListByFarm: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c" || entries[1].ID != "b" {
		t.Fatalf("expected newest-first [c b], got %+v", entries)
	}
}
