package middleware

import (
	"net/http"

	"github.com/auraplay/fortune-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
