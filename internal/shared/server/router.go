package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agro-backend/internal/advisor"
	"agro-backend/internal/shared/config"
	"agro-backend/internal/shared/metrics"
	"agro-backend/internal/shared/server/middleware"
	"agro-backend/internal/shared/server/respond"
)

// RouterDeps lists the handlers the router mounts.
type RouterDeps struct {
	Config  config.Config
	Advisor *advisor.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" || deps.Config.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"RECOMMEND": {Rate: 2, Burst: 10},
				"REVIEW":    {Rate: 5, Burst: 20},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.Advisor.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch {
	case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/recommendations":
		return "RECOMMEND"
	case c.FullPath() == "/api/v1/reviews/:id/decision":
		return "REVIEW"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
