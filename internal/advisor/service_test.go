package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"agro-backend/internal/dialect"
	"agro-backend/internal/intent"
	"agro-backend/internal/llm"
	"agro-backend/internal/pii"
	"agro-backend/internal/review"
	"agro-backend/internal/rules"
	"agro-backend/internal/temporal"
)

type stubLLM struct {
	raw   string
	err   error
	calls int
	last  llm.PromptInput
}

func (s *stubLLM) Recommend(ctx context.Context, input llm.PromptInput) (json.RawMessage, error) {
	s.calls++
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.raw), nil
}

type testEnv struct {
	svc        *Service
	reviewRepo *review.MemoryRepo
	timeline   *temporal.MemoryRepo
	queue      *review.MemoryQueueClient
	client     *stubLLM
}

func newTestEnv(t *testing.T, client *stubLLM, online bool) *testEnv {
	t.Helper()
	now := func() time.Time { return time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC) }

	reviewRepo := review.NewMemoryRepo()
	queue := review.NewMemoryQueueClient()
	timelineRepo := temporal.NewMemoryRepo()
	table := dialect.DefaultTable()

	params := Params{
		Score:           DefaultScoreParams(),
		Trust:           DefaultTrustWeights(),
		RegionalDefault: 0.6,
		ModelVersion:    "agro-advisor:test",
		DefaultLanguage: "az",
		LLMTimeout:      time.Second,
	}
	svc := NewService(params, Deps{
		Gateway:    pii.NewGateway("test-salt", pii.NewMemoryAuditRepo()),
		Normalizer: dialect.NewNormalizer(table),
		Dialects:   table,
		Matcher:    intent.NewMatcher(),
		Registry:   rules.DefaultRulepack(),
		Timeline:   temporal.NewManager(timelineRepo, now),
		Standard:   client,
		Lite:       client,
		Selector:   NewModeSelector(stubProbe{online: online}),
		Reviews:    review.NewService(reviewRepo, queue, now),
		Now:        now,
	})
	return &testEnv{svc: svc, reviewRepo: reviewRepo, timeline: timelineRepo, queue: queue, client: client}
}

func dryRequest() Request {
	moisture, ph := 25.0, 6.8
	n, p, k := 40.0, 30.0, 25.0
	tmin, tmax, humidity := 12.0, 28.0, 45.0
	rain := false
	req := Request{
		FarmID:                "AZ-FARM-0042",
		FarmerName:            "Əli Məmmədov",
		Region:                "ganja",
		FarmType:              "crop",
		Crops:                 []string{"wheat"},
		AreaHectares:          12.5,
		SoilMoisturePercent:   &moisture,
		SoilPH:                &ph,
		NitrogenLevel:         &n,
		PhosphorusLevel:       &p,
		PotassiumLevel:        &k,
		TemperatureMin:        &tmin,
		TemperatureMax:        &tmax,
		PrecipitationExpected: &rain,
		HumidityPercent:       &humidity,
		Query:                 "Sahəni nə vaxt suvarım?",
	}
	req.Normalize("az")
	return req
}

func TestRecommendOfflineUsesRulebookOnly(t *testing.T) {
	client := &stubLLM{}
	env := newTestEnv(t, client, false)

	req := dryRequest()
	req.InferenceMode = ModeOffline

	resp, err := env.svc.Recommend(context.Background(), req, "req-1")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("offline mode must never call the provider, got %d calls", client.calls)
	}
	if resp.InferenceMode != ModeOffline {
		t.Fatalf("expected offline mode, got %s", resp.InferenceMode)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}
	rec := resp.Recommendations[0]
	if rec.Source != SourceRulebook || rec.Confidence != 0.95 {
		t.Fatalf("offline rec must carry the rule weight: %+v", rec)
	}
	if len(rec.RuleMatches) != 1 || rec.RuleMatches[0] != "AZ-IRR-001" {
		t.Fatalf("unexpected rule matches: %v", rec.RuleMatches)
	}
	if len(rec.Citations) != 1 || rec.Citations[0].ID != "CIT-AZ-IRR" {
		t.Fatalf("offline rec must cite its rule source: %+v", rec.Citations)
	}
	if rec.ReviewTier != review.TierAutoApproved {
		t.Fatalf("0.95 must auto-approve, got %s", rec.ReviewTier)
	}
	if resp.Intent != "irrigation" || resp.SeasonPhase != "vegetation" {
		t.Fatalf("unexpected pipeline metadata: %+v", resp)
	}
	if !strings.HasPrefix(resp.FarmToken, "farm-") {
		t.Fatalf("farm token must be synthetic, got %q", resp.FarmToken)
	}
}

func TestRecommendStandardCrossValidates(t *testing.T) {
	client := &stubLLM{raw: `{"recommendations":[{"text":"Torpaq qurudur, sahəni suvarın","category":"irrigation","priority":"high"}]}`}
	env := newTestEnv(t, client, true)

	resp, err := env.svc.Recommend(context.Background(), dryRequest(), "req-2")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected one provider call, got %d", client.calls)
	}
	if client.last.Intent != "irrigation" || client.last.SeasonPhase != "vegetation" {
		t.Fatalf("prompt input missing pipeline context: %+v", client.last)
	}
	if resp.InferenceMode != ModeStandard {
		t.Fatalf("expected standard mode, got %s", resp.InferenceMode)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}
	rec := resp.Recommendations[0]
	if rec.Source != SourceHybrid {
		t.Fatalf("rule-backed generation must be hybrid, got %s", rec.Source)
	}
	if rec.Confidence != 0.9 {
		t.Fatalf("expected 0.5+0.4=0.90, got %v", rec.Confidence)
	}
	if rec.ReviewTier != review.TierAutoApproved {
		t.Fatalf("expected auto approval, got %s", rec.ReviewTier)
	}
	if resp.OverallConfidence != 0.9 {
		t.Fatalf("unexpected overall confidence %v", resp.OverallConfidence)
	}
	if resp.AccuracyScore <= 0 || resp.AccuracyScore > 1 {
		t.Fatalf("accuracy score out of bounds: %v", resp.AccuracyScore)
	}

	// Auto-approved output opens no review items.
	if items, _ := env.reviewRepo.ListExpiredPending(context.Background(), review.TierAsyncReview, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), 10); len(items) != 0 {
		t.Fatalf("no review items expected, got %+v", items)
	}

	// A successful request lands on the farm timeline.
	entries, err := env.timeline.ListByFarm(context.Background(), resp.FarmToken, 10)
	if err != nil {
		t.Fatalf("ListByFarm: %v", err)
	}
	if len(entries) != 1 || entries[0].ActionType != "irrigation" || entries[0].Crop != "wheat" {
		t.Fatalf("unexpected timeline entries: %+v", entries)
	}
}

func TestRecommendProviderFailureFallsBackOffline(t *testing.T) {
	client := &stubLLM{err: errors.New("connect timeout")}
	env := newTestEnv(t, client, true)

	req := dryRequest()
	req.InferenceMode = ModeStandard

	resp, err := env.svc.Recommend(context.Background(), req, "req-3")
	if err != nil {
		t.Fatalf("fallback must not fail the request: %v", err)
	}
	if resp.InferenceMode != ModeOfflineFallback {
		t.Fatalf("expected offline-fallback, got %s", resp.InferenceMode)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Confidence != 0.95 {
		t.Fatalf("fallback must serve the rulebook answer: %+v", resp.Recommendations)
	}
}

func TestRecommendEnqueuesLowConfidenceForReview(t *testing.T) {
	// Fertilization has no triggered rules for this context, so the coverage
	// penalty drops the generated item to 0.35 and blocks it.
	client := &stubLLM{raw: `{"recommendations":[{"text":"Gübrə verin","category":"fertilization","priority":"medium"}]}`}
	env := newTestEnv(t, client, true)

	resp, err := env.svc.Recommend(context.Background(), dryRequest(), "req-4")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	var blocked *Recommendation
	for i := range resp.Recommendations {
		if resp.Recommendations[i].Category == "fertilization" {
			blocked = &resp.Recommendations[i]
		}
	}
	if blocked == nil {
		t.Fatalf("fertilization rec missing: %+v", resp.Recommendations)
	}
	if blocked.Confidence != 0.35 || blocked.ReviewTier != review.TierSyncReview {
		t.Fatalf("expected 0.35/blocked, got %v/%s", blocked.Confidence, blocked.ReviewTier)
	}

	// The uncovered triggered rule tops the response up.
	foundFill := false
	for _, rec := range resp.Recommendations {
		if rec.Source == SourceRulebook && len(rec.RuleMatches) == 1 && rec.RuleMatches[0] == "AZ-IRR-001" {
			foundFill = true
		}
	}
	if !foundFill {
		t.Fatalf("expected rulebook fill for AZ-IRR-001: %+v", resp.Recommendations)
	}

	msgs := env.queue.Messages()
	if len(msgs) != 1 || msgs[0].Tier != review.TierSyncReview {
		t.Fatalf("expected one sync review message, got %+v", msgs)
	}
}

func TestRecommendPersonalizesOnlyName(t *testing.T) {
	client := &stubLLM{raw: `{"recommendations":[{"text":"[NAME], torpaq qurudur, sahəni suvarın","category":"irrigation","priority":"high"}]}`}
	env := newTestEnv(t, client, true)

	req := dryRequest()
	req.Query = "Mənim adım Əli Məmmədov, sahəni nə vaxt suvarım?"

	resp, err := env.svc.Recommend(context.Background(), req, "req-5")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	text := resp.Recommendations[0].Text
	if strings.Contains(text, "[NAME]") {
		t.Fatalf("placeholder must be re-personalized at egress: %q", text)
	}
	if !strings.Contains(text, "Əli Məmmədov") {
		t.Fatalf("farmer name missing from personalized text: %q", text)
	}

	// The provider must only ever see the placeholder.
	if strings.Contains(env.client.last.Query, "Əli Məmmədov") {
		t.Fatalf("raw name leaked into the prompt: %q", env.client.last.Query)
	}
	if !strings.Contains(env.client.last.Query, "[NAME]") {
		t.Fatalf("expected placeholder in prompt: %q", env.client.last.Query)
	}
}

func TestRecommendRespectsMaxRecommendations(t *testing.T) {
	client := &stubLLM{raw: `{"recommendations":[
		{"text":"a suvarın","category":"irrigation","priority":"high"},
		{"text":"b suvarın","category":"irrigation","priority":"medium"},
		{"text":"c suvarın","category":"irrigation","priority":"low"}]}`}
	env := newTestEnv(t, client, true)

	req := dryRequest()
	req.MaxRecommendations = 1

	resp, err := env.svc.Recommend(context.Background(), req, "req-6")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}
}

func TestRecommendTrustReflectsDialectMatch(t *testing.T) {
	// Same farm context and rules either way; only the dialect match differs,
	// so the accuracy composite must move with regional relevance.
	plain := dryRequest()
	plain.Region = "salyan"
	plain.InferenceMode = ModeOffline

	envPlain := newTestEnv(t, &stubLLM{}, false)
	respPlain, err := envPlain.svc.Recommend(context.Background(), plain, "req-7")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	regional := dryRequest()
	regional.Region = "salyan"
	regional.InferenceMode = ModeOffline
	regional.Query = "Sahəni nə vaxt sulamax lazımdır?"

	envRegional := newTestEnv(t, &stubLLM{}, false)
	respRegional, err := envRegional.svc.Recommend(context.Background(), regional, "req-8")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if respRegional.Dialect != "ganja" {
		t.Fatalf("expected ganja detection, got %q", respRegional.Dialect)
	}
	if respRegional.Intent != "irrigation" || respPlain.Intent != "irrigation" {
		t.Fatalf("both queries must classify as irrigation: %q vs %q", respRegional.Intent, respPlain.Intent)
	}
	if respRegional.AccuracyScore <= respPlain.AccuracyScore {
		t.Fatalf("dialect match must raise the composite: %v vs %v",
			respRegional.AccuracyScore, respPlain.AccuracyScore)
	}

	// A caller-declared known dialect counts as a match even without term hits.
	declared := dryRequest()
	declared.Region = "salyan"
	declared.InferenceMode = ModeOffline
	declared.Dialect = "lankaran"

	envDeclared := newTestEnv(t, &stubLLM{}, false)
	respDeclared, err := envDeclared.svc.Recommend(context.Background(), declared, "req-9")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if respDeclared.AccuracyScore != respRegional.AccuracyScore {
		t.Fatalf("declared dialect must score like a detected one: %v vs %v",
			respDeclared.AccuracyScore, respRegional.AccuracyScore)
	}
}

func TestRequestValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Request)
		field string
	}{
		{"missing farm id", func(r *Request) { r.FarmID = "" }, "farm_id"},
		{"missing query", func(r *Request) { r.Query = " " }, "query"},
		{"missing region", func(r *Request) { r.Region = "" }, "region"},
		{"bad farm type", func(r *Request) { r.FarmType = "plantation" }, "farm_type"},
		{"negative area", func(r *Request) { r.AreaHectares = -1 }, "area_hectares"},
		{"zero area", func(r *Request) { r.AreaHectares = 0 }, "area_hectares"},
		{"max recs too high", func(r *Request) { r.MaxRecommendations = 21 }, "max_recommendations"},
		{"bad language", func(r *Request) { r.Language = "tr" }, "language"},
		{"bad mode", func(r *Request) { r.InferenceMode = "turbo" }, "inference_mode"},
		{"bad moisture", func(r *Request) { v := 120.0; r.SoilMoisturePercent = &v }, "soil_moisture_percent"},
		{"bad ph", func(r *Request) { v := 15.0; r.SoilPH = &v }, "soil_ph"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := dryRequest()
			tc.edit(&req)
			err := req.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}

	good := dryRequest()
	if err := good.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}
