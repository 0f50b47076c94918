package main

// Review escalation worker: periodically auto-approves async review items
// whose window elapsed without an expert decision.
//   go run ./cmd/worker

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"agro-backend/internal/bootstrap"
	"agro-backend/internal/shared/config"
	"agro-backend/internal/shared/telemetry"
)

const defaultSweepIntervalSec = 60

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	interval := time.Duration(envInt("REVIEW_SWEEP_INTERVAL_SECONDS", defaultSweepIntervalSec)) * time.Second
	log.Printf("review worker started interval=%s window=%s", interval, cfg.ReviewTimeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("review worker stopping")
			return
		case <-ticker.C:
			n, err := app.Reviews.EscalateExpired(ctx, cfg.ReviewTimeout)
			if err != nil {
				telemetry.Error("worker.escalate_sweep_failed", map[string]any{"error": err.Error()})
				continue
			}
			if n > 0 {
				telemetry.Info("worker.escalate_sweep", map[string]any{"escalated": n})
			}
		}
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
