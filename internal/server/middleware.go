package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// requestID tags every request with a UUID so log lines from one
// request can be correlated.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Get().Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request_id", w.Header().Get(requestIDHeader)).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
