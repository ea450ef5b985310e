package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticTestServer(t *testing.T) (chi.Router, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r := chi.NewRouter()
	r.Get("/*", StaticFileServer(dir).ServeHTTP)
	return r, dir
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSPAHandler(t *testing.T) {
	t.Run("serves existing files", func(t *testing.T) {
		router, _ := newStaticTestServer(t)

		rec := get(router, "/app.js")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "console.log(1)", rec.Body.String())
	})

	t.Run("falls back to index for client routes", func(t *testing.T) {
		router, _ := newStaticTestServer(t)

		rec := get(router, "/reading/result")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "app")
	})

	t.Run("does not swallow api paths", func(t *testing.T) {
		router, _ := newStaticTestServer(t)

		rec := get(router, "/api/unknown")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		router, _ := newStaticTestServer(t)

		rec := get(router, "/static/..%2F..%2Fetc%2Fpasswd")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("404s when index is missing", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/*", StaticFileServer(t.TempDir()).ServeHTTP)

		rec := get(r, "/anything")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
