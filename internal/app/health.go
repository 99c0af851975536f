package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/signup/internal/pkg/router"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (h healthResponse) StatusCode() int {
	if h.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h healthResponse) Message() string {
	return "service is " + h.Status
}

type pinger func(ctx context.Context) error

func check(ctx context.Context, name string, ping pinger) string {
	if err := ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
		return "down"
	}
	return "up"
}

func healthOf(ctx context.Context, db, cache pinger) healthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: check(ctx, "database", db),
		Redis:    check(ctx, "redis", cache),
	}
	if resp.Database != "up" || resp.Redis != "up" {
		resp.Status = "degraded"
	}

	return resp
}

func (a *App) health(r *router.Request) (any, error) {
	return healthOf(r.Context(), a.dbConn.Ping, func(ctx context.Context) error {
		return a.cacheConn.Ping(ctx).Err()
	}), nil
}
