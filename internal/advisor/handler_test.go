package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"agro-backend/internal/review"
	"agro-backend/internal/temporal"
)

func newTestRouter(t *testing.T, env *testEnv) (*gin.Engine, *review.Service, *temporal.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := func() time.Time { return time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC) }
	reviews := review.NewService(env.reviewRepo, env.queue, now)
	timeline := temporal.NewManager(env.timeline, now)

	router := gin.New()
	handler := NewHandler(env.svc, reviews, timeline)
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, reviews, timeline
}

func TestRecommendEndpointSuccess(t *testing.T) {
	client := &stubLLM{raw: `{"recommendations":[{"text":"Sahəni suvarın","category":"irrigation","priority":"high"}]}`}
	env := newTestEnv(t, client, true)
	router, _, _ := newTestRouter(t, env)

	req := dryRequest()
	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(string(body)))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Recommendations) == 0 || resp.InferenceMode != ModeStandard {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRecommendEndpointNamesOffendingField(t *testing.T) {
	env := newTestEnv(t, &stubLLM{}, true)
	router, _, _ := newTestRouter(t, env)

	req := dryRequest()
	req.FarmID = ""
	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(string(body)))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "farm_id") {
		t.Fatalf("error must name the offending field: %s", w.Body.String())
	}
}

func TestReviewDecisionEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubLLM{}, true)
	router, reviews, _ := newTestRouter(t, env)

	item, err := reviews.Enqueue(context.Background(), review.EnqueueInput{
		RecommendationID:   "rec-1",
		FarmToken:          "farm-ab12cd34",
		Tier:               review.TierSyncReview,
		RecommendationText: "t",
		Confidence:         0.3,
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w := httptest.NewRecorder()
	body := `{"approve":true,"reviewer":"agronomist-7","note":"checked"}`
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+item.ID+"/decision", strings.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var decided review.Item
	if err := json.Unmarshal(w.Body.Bytes(), &decided); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decided.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}

	// Unknown items are a 404, not a 500.
	w = httptest.NewRecorder()
	httpReq = httptest.NewRequest(http.MethodPost, "/api/v1/reviews/missing/decision", strings.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubLLM{}, true)
	router, _, timeline := newTestRouter(t, env)

	if _, err := timeline.Record(context.Background(), "farm-ab12cd34", "irrigation", "wheat"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/farms/farm-ab12cd34/timeline", nil)
	router.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		FarmToken string           `json:"farmToken"`
		Entries   []temporal.Entry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].ActionType != "irrigation" {
		t.Fatalf("unexpected timeline payload: %+v", payload)
	}
}
