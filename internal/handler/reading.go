package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/auraplay/fortune-server-go/internal/errors"
	"github.com/auraplay/fortune-server-go/internal/model"
	"github.com/auraplay/fortune-server-go/internal/service"
)

type ReadingHandler struct {
	readingService *service.ReadingService
}

func NewReadingHandler(readingService *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
	}
}

// POST /api/hook
func (h *ReadingHandler) Hook(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReadingRequest(w, r)
	if !ok {
		return
	}

	result, err := h.readingService.GenerateHook(r.Context(), req)
	if err != nil {
		writeReadingError(w, err, "hook generation failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/report
func (h *ReadingHandler) Report(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReadingRequest(w, r)
	if !ok {
		return
	}

	result, err := h.readingService.GenerateReport(r.Context(), req)
	if err != nil {
		writeReadingError(w, err, "report generation failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func decodeReadingRequest(w http.ResponseWriter, r *http.Request) (model.ReadingRequest, bool) {
	var req model.ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return model.ReadingRequest{}, false
	}
	return req, true
}

// writeReadingError keeps degraded mode distinct from failure: a
// missing credential is reported as 200 {disabled:true} so the front
// end can label the feature off instead of showing an error state.
func writeReadingError(w http.ResponseWriter, err error, logMsg string) {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeFeatureDisabled {
		writeJSON(w, http.StatusOK, map[string]any{
			"disabled": true,
			"error":    appErr.Message,
		})
		return
	}

	log.Error().Err(err).Msg(logMsg)
	writeError(w, err)
}
