package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auraplay/fortune-server-go/internal/qr"
	"github.com/auraplay/fortune-server-go/internal/repository"
	"github.com/auraplay/fortune-server-go/internal/service"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newPaymentTestServer(t *testing.T) (chi.Router, *fakeClock) {
	t.Helper()

	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	paymentService := service.NewPaymentService(
		repository.NewMemoryPaymentRepository(),
		qr.NewGenerator(),
		clk,
		"http://localhost:8080/pay-wallet",
		5*time.Minute,
		2,
	)
	h := NewPaymentHandler(paymentService)

	r := chi.NewRouter()
	r.Mount("/api/pay", h.Routes())
	r.Get("/pay-wallet", h.PayWallet)
	return r, clk
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func createPayment(t *testing.T, router http.Handler) (id string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/pay/create", map[string]any{"amount": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)["paymentId"].(string)
}

func TestPaymentCreateEndpoint(t *testing.T) {
	t.Run("returns session view with QR data URI", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/create", map[string]any{"amount": 2})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["paymentId"])
		assert.Equal(t, float64(2), body["amount"])
		assert.Contains(t, body["qrImage"], "data:image/png;base64,")
		assert.Contains(t, body["payUrl"], "paymentId=")
		assert.NotEmpty(t, body["expiresAt"])
		assert.NotContains(t, body, "paymentToken")
	})

	t.Run("accepts empty body", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/create", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), decodeBody(t, rec)["amount"])
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/pay/create", strings.NewReader(`{"amount":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rec)["code"])
	})
}

func TestPaymentStatusEndpoint(t *testing.T) {
	t.Run("requires id", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/status", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/status?id=nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("pending then paid discloses token only after confirm", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)
		id := createPayment(t, router)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/status?id="+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "pending", body["status"])
		assert.NotContains(t, body, "paymentToken")

		rec = doJSON(t, router, http.MethodPost, "/api/pay/confirm", map[string]any{"paymentId": id})
		require.Equal(t, http.StatusOK, rec.Code)
		confirmBody := decodeBody(t, rec)
		assert.Equal(t, "paid", confirmBody["status"])
		token := confirmBody["paymentToken"].(string)
		assert.Len(t, token, 64)

		rec = doJSON(t, router, http.MethodGet, "/api/pay/status?id="+id, nil)
		body = decodeBody(t, rec)
		assert.Equal(t, "paid", body["status"])
		assert.Equal(t, token, body["paymentToken"])
	})

	t.Run("reports expired after TTL", func(t *testing.T) {
		router, clk := newPaymentTestServer(t)
		id := createPayment(t, router)

		clk.Advance(5*time.Minute + time.Millisecond)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/status?id="+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "expired", decodeBody(t, rec)["status"])
	})
}

func TestPaymentConfirmEndpoint(t *testing.T) {
	t.Run("requires paymentId", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/confirm", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/confirm", map[string]any{"paymentId": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("expired session is 410", func(t *testing.T) {
		router, clk := newPaymentTestServer(t)
		id := createPayment(t, router)

		clk.Advance(6 * time.Minute)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/confirm", map[string]any{"paymentId": id})
		assert.Equal(t, http.StatusGone, rec.Code)
	})
}

func TestMockScanEndpoints(t *testing.T) {
	t.Run("scan with valid link confirms and renders page", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)

		// The id and token both travel in the QR payload.
		rec := doJSON(t, router, http.MethodPost, "/api/pay/create", nil)
		body := decodeBody(t, rec)
		payURL := body["payUrl"].(string)

		req := httptest.NewRequest(http.MethodGet, payURL, nil)
		pageRec := httptest.NewRecorder()
		router.ServeHTTP(pageRec, req)

		assert.Equal(t, http.StatusOK, pageRec.Code)
		assert.Contains(t, pageRec.Body.String(), "Payment confirmed")

		id := body["paymentId"].(string)
		statusRec := doJSON(t, router, http.MethodGet, "/api/pay/status?id="+id, nil)
		assert.Equal(t, "paid", decodeBody(t, statusRec)["status"])
	})

	t.Run("mock-scan with wrong token is 404", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)
		id := createPayment(t, router)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/mock-scan?id="+id+"&token=wrong", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Payment not found")
	})

	t.Run("mock-scan without token is 404", func(t *testing.T) {
		router, _ := newPaymentTestServer(t)
		id := createPayment(t, router)

		rec := doJSON(t, router, http.MethodGet, "/api/pay/mock-scan?id="+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("expired link renders 410 page", func(t *testing.T) {
		router, clk := newPaymentTestServer(t)

		rec := doJSON(t, router, http.MethodPost, "/api/pay/create", nil)
		payURL := decodeBody(t, rec)["payUrl"].(string)

		clk.Advance(6 * time.Minute)

		req := httptest.NewRequest(http.MethodGet, payURL, nil)
		pageRec := httptest.NewRecorder()
		router.ServeHTTP(pageRec, req)

		assert.Equal(t, http.StatusGone, pageRec.Code)
		assert.Contains(t, pageRec.Body.String(), "Payment expired")
	})
}
