package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type HealthChecker struct {
	pool      *pgxpool.Pool
	version   string
	gitCommit string
}

func NewHealthChecker(pool *pgxpool.Pool, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		pool:      pool,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Health reports overall server health. The endpoint is public and
// unauthenticated, so the body carries no connection details.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database": h.checkDatabase(ctx),
		}

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()

	if h.pool == nil {
		return CheckResult{Status: "fail", Message: "database pool not configured"}
	}

	var one int
	if err := h.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return CheckResult{
			Status:    "fail",
			Message:   "database query failed",
			LatencyMs: time.Since(start).Milliseconds(),
		}
	}

	return CheckResult{
		Status:    "pass",
		LatencyMs: time.Since(start).Milliseconds(),
	}
}
