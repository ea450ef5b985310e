package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auraplay/fortune-server-go/internal/repository"
)

// HealthHandler reports process liveness plus a small operational
// snapshot: the number of payment sessions held in memory.
type HealthHandler struct {
	payments repository.PaymentRepository
}

func NewHealthHandler(payments repository.PaymentRepository) *HealthHandler {
	return &HealthHandler{
		payments: payments,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.payments.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count payment sessions")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
		"sessions":  sessions,
	})
}
