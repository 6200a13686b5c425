package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// pinger is the health check surface shared by the db and redis clients.
type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency before reporting ready.
func HealthReady(logg *logger.Logger, db pinger, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "cache": "ok"}
		healthy := true

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				logg.Error(ctx, "health.database_unreachable", err)
				checks["database"] = "unreachable"
				healthy = false
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				logg.Error(ctx, "health.cache_unreachable", err)
				checks["cache"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unreachable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
