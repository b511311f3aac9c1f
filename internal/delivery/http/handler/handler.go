package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/delivery/http/response"
	"github.com/nflstats/predictor/internal/usecase"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	stats  usecase.Statistics
	logger *zap.Logger
}

func NewHandler(stats usecase.Statistics, logger *zap.Logger) *Handler {
	return &Handler{
		stats:  stats,
		logger: logger,
	}
}

// HandleStatistics returns every stored prediction ordered by id.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.List(r.Context())
	if err != nil {
		h.logger.Error("failed to read player statistics", zap.Error(err))
		h.writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]response.PlayerStatistics, len(rows))
	for i, row := range rows {
		resp[i] = response.NewPlayerStatistics(row)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.stats.Health(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "unhealthy", Database: "down"})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Database: "up"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
