package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agro-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request. Only de-identified values
// (farm tokens, ids) ever reach the log fields.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		fields := map[string]any{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if v := c.GetString("farmToken"); v != "" {
			fields["farm_token"] = v
		}
		if v := c.GetString("intent"); v != "" {
			fields["intent"] = v
		}
		if v := c.GetString("inferenceMode"); v != "" {
			fields["inference_mode"] = v
		}

		telemetry.Info("request.complete", fields)
	}
}
