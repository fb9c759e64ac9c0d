package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/idx"
)

// HeaderRequestID is read from incoming requests and echoed on the reply.
const HeaderRequestID = "X-Request-ID"

// HTTPMiddleware logs every request and puts a request scoped logger in the
// context. Clients that send X-Request-ID (the session controller sends its
// attempt id) get their id in the log line, everyone else a fresh ULID.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

			reqID := r.Header.Get(HeaderRequestID)
			if reqID == "" || len(reqID) > 64 {
				reqID = idx.New().String()
			}
			rw.Header().Set(HeaderRequestID, reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
			)

			next.ServeHTTP(rw, r.WithContext(WithContext(r.Context(), logger)))

			level := slog.LevelInfo
			if rw.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http_request",
				"status", rw.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// StatusRecorder remembers the status code written through it. The gateway
// metrics middleware reuses it.
type StatusRecorder struct {
	http.ResponseWriter

	Status int
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
}
