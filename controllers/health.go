package controllers

import (
	"net/http"

	"github.com/dcode-github/capetown_discovery/backend/middleware"
	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"go.uber.org/zap"
)

// Health reports whether the store answers a ping.
func Health(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			middleware.Logger(r.Context()).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "store unavailable"})
			return
		}
		ok(w, models.APIResponse{Message: "ok", Data: map[string]string{"store": "up"}})
	}
}
