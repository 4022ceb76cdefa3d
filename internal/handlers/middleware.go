package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"licxo/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userIdKey contextKey = `userId`

// UserIdFromContext returns the authenticated user's id, if any.
func UserIdFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIdKey).(string)
	return id, ok
}

// AuthorizationMiddleware validates a Bearer token and stores the caller's
// user id on the request context.
func AuthorizationMiddleware(next http.Handler, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, categoryAuth, "Invalid authorization header")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &models.CustomClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, categoryAuth, "Invalid authorization token")
			return
		}

		ctx := context.WithValue(r.Context(), userIdKey, claims.UserId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs every request with method, path, status and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		event := log.Info()
		if recorder.status >= http.StatusBadRequest {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
