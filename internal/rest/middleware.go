package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/barokatu/tauri-updater-server/internal/rest/response"
)

// withDeadline cancels the request context after timeout, so that record store
// calls end while the response can still be written.
func withDeadline(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests tags every request with an identifier and logs its outcome.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reuse the caller's request ID if it is a valid UUID.
		requestID, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		if err != nil {
			requestID = uuid.New()
		}

		w.Header().Set("X-Request-Id", requestID.String())

		body := &countWrapper{ReadCloser: r.Body}
		r.Body = body

		sw := &statusWrapper{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(sw, r)

		slog.InfoContext(r.Context(), "API request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
			"bytes_in", body.n,
			"client", clientAddress(r),
			"request_id", requestID.String(),
		)
	})
}

// authorize checks the request credential, rendering a 401 if it's rejected.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	err := s.checker.Check(r.Header.Get("Authorization"))
	if err != nil {
		slog.WarnContext(r.Context(), "Rejected request credential", "path", r.URL.Path, "client", clientAddress(r), "err", err)
		_ = response.Unauthorized(err).Render(w)

		return false
	}

	return true
}

func clientAddress(r *http.Request) string {
	if r.Header.Get("x-forwarded-for") != "" {
		return r.Header.Get("x-forwarded-for")
	}

	return r.RemoteAddr
}
