package advisor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agro-backend/internal/review"
	"agro-backend/internal/shared/server/respond"
	"agro-backend/internal/temporal"
)

// Handler wires HTTP handlers to the advisor service.
type Handler struct {
	Svc      *Service
	Reviews  *review.Service
	Timeline *temporal.Manager
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, reviews *review.Service, timeline *temporal.Manager) *Handler {
	return &Handler{Svc: svc, Reviews: reviews, Timeline: timeline}
}

// RegisterRoutes attaches advisor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations", h.recommend)
	rg.POST("/reviews/:id/decision", h.decideReview)
	rg.GET("/reviews/:id", h.getReview)
	rg.GET("/farms/:token/timeline", h.getTimeline)
}

func (h *Handler) recommend(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Normalize(h.Svc.DefaultLanguage())
	if err := req.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.FieldError(c, verr.Field, verr.Issue)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	resp, err := h.Svc.Recommend(c.Request.Context(), req, c.GetString("requestId"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to produce recommendations", nil)
		return
	}
	c.Set("farmToken", resp.FarmToken)
	c.Set("intent", resp.Intent)
	c.Set("inferenceMode", resp.InferenceMode)
	respond.OK(c, resp)
}

type reviewDecisionRequest struct {
	Approve  bool   `json:"approve"`
	Reviewer string `json:"reviewer"`
	Note     string `json:"note,omitempty"`
}

func (h *Handler) decideReview(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "review id is required", nil)
		return
	}
	var body reviewDecisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if body.Reviewer == "" {
		respond.FieldError(c, "reviewer", "is required")
		return
	}

	item, err := h.Reviews.Decide(c.Request.Context(), id, body.Approve, body.Reviewer, body.Note)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "review item not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record decision", nil)
		}
		return
	}
	respond.OK(c, item)
}

func (h *Handler) getReview(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "review id is required", nil)
		return
	}
	item, err := h.Reviews.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "review item not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load review item", nil)
		}
		return
	}
	respond.OK(c, item)
}

func (h *Handler) getTimeline(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "farm token is required", nil)
		return
	}
	c.Set("farmToken", token)
	entries, err := h.Timeline.Timeline(c.Request.Context(), token, 50)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load timeline", nil)
		return
	}
	if entries == nil {
		entries = []temporal.Entry{}
	}
	respond.OK(c, gin.H{"farmToken": token, "entries": entries})
}
