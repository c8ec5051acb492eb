package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dcode-github/capetown_discovery/backend/middleware"
	"github.com/dcode-github/capetown_discovery/backend/models"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, resp models.APIResponse) {
	resp.Success = true
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps an error to its status. Validation errors list every
// field; anything unexpected is logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Details: verr.Fields})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "resource not found"})
	case errors.Is(err, models.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "request body too large"})
	default:
		middleware.Logger(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
	}
}

func count(n int) *int { return &n }
