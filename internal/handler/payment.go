package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/auraplay/fortune-server-go/internal/errors"
	"github.com/auraplay/fortune-server-go/internal/httputil"
	"github.com/auraplay/fortune-server-go/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.Create)
	r.Get("/status", h.Status)
	r.Post("/confirm", h.Confirm)
	r.Get("/mock-scan", h.MockScan)

	return r
}

// POST /api/pay/create
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	// An empty body is fine; the amount falls back to the default.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.paymentService.CreateSession(r.Context(), req.Amount)
	if err != nil {
		log.Error().Err(err).Msg("failed to create payment session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/pay/status?id=
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, apperrors.MissingRequired("id"))
		return
	}

	result, err := h.paymentService.GetStatus(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/pay/confirm
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"paymentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentID == "" {
		writeError(w, apperrors.MissingRequired("paymentId"))
		return
	}

	result, err := h.paymentService.Confirm(r.Context(), req.PaymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/pay/mock-scan?id=&token=
// Simulated payment-provider callback reached by scanning the QR code.
func (h *PaymentHandler) MockScan(w http.ResponseWriter, r *http.Request) {
	h.confirmScan(w, r, r.URL.Query().Get("id"), r.URL.Query().Get("token"))
}

// GET /pay-wallet?paymentId=&token=
// Same flow as mock-scan under the URL embedded in the QR payload.
func (h *PaymentHandler) PayWallet(w http.ResponseWriter, r *http.Request) {
	h.confirmScan(w, r, r.URL.Query().Get("paymentId"), r.URL.Query().Get("token"))
}

func (h *PaymentHandler) confirmScan(w http.ResponseWriter, r *http.Request, id, token string) {
	if id == "" || token == "" {
		writeScanPage(w, http.StatusNotFound, "Payment not found",
			"This payment link is incomplete.")
		return
	}

	result, err := h.paymentService.ConfirmScan(r.Context(), id, token)
	if err != nil {
		status := httputil.StatusFromCode(apperrors.GetCode(err))
		if status == http.StatusGone {
			writeScanPage(w, status, "Payment expired",
				"This payment session has expired. Please request a new one.")
			return
		}
		writeScanPage(w, http.StatusNotFound, "Payment not found",
			"This payment link is invalid.")
		return
	}

	log.Info().Str("paymentId", result.PaymentID).Msg("payment confirmed via scan")

	writeScanPage(w, http.StatusOK, "Payment confirmed",
		"You can now return to the app. Your reading is unlocked.")
}

func writeScanPage(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!doctype html>
<html>
<head><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 4rem 1rem;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>
`, title, title, detail)
}
