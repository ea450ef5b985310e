package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auraplay/fortune-server-go/internal/model"
	"github.com/auraplay/fortune-server-go/internal/repository"
)

func TestHealthEndpoint(t *testing.T) {
	t.Run("reports ok with session count", func(t *testing.T) {
		repo := repository.NewMemoryPaymentRepository()
		h := NewHealthHandler(repo)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.NotEmpty(t, body["timestamp"])
		assert.Equal(t, float64(0), body["sessions"])
	})

	t.Run("session count follows the repository", func(t *testing.T) {
		ctx := context.Background()
		repo := repository.NewMemoryPaymentRepository()
		h := NewHealthHandler(repo)

		_, err := repo.Create(ctx, model.CreatePaymentParams{ID: "p1", Token: "t1", Amount: 2})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreatePaymentParams{ID: "p2", Token: "t2", Amount: 2})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, float64(2), decodeBody(t, rec)["sessions"])
	})
}
