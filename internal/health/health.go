package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"repair-backend/internal/cache"
)

// HealthChecker reports readiness for the /health endpoints. The database
// decides the overall verdict; the redis cache is optional and only ever
// degrades the status, never fails it.
type HealthChecker struct {
	db *pgxpool.Pool
}

type Status struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Cache    CacheHealth    `json:"cache"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type CacheHealth struct {
	Status string `json:"status"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) Check(ctx context.Context) Status {
	dbHealth := h.checkDatabase(ctx)
	cacheHealth := checkCache(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	} else if cacheHealth.Status == "unhealthy" {
		status = "degraded"
	}

	return Status{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheHealth,
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	status := "healthy"
	if err != nil {
		status = "unhealthy"
	}
	return DatabaseHealth{
		Status:       status,
		ResponseTime: responseTime,
	}
}

func checkCache(ctx context.Context) CacheHealth {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	switch err := cache.Ping(ctx); {
	case err == nil:
		return CacheHealth{Status: "healthy"}
	case err == cache.ErrDisabled:
		return CacheHealth{Status: "disabled"}
	default:
		return CacheHealth{Status: "unhealthy"}
	}
}
