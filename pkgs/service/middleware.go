package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestMiddleware tags every request with an id for correlated
// logging and echoes it back in the X-Request-ID header.
func RequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		w.Header().Set("X-Request-ID", requestID)
		log.WithField("request_id", requestID).Debugf("request started: %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.WithField("request_id", requestID).Debugf("request ended: %s %s", r.Method, r.URL.Path)
	})
}
