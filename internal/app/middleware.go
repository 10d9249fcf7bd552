package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/dailybudget/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(requestLogger)

	// Propagate X-User-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if userIdHeader := strings.TrimSpace(req.Header.Get("X-User-Id")); userIdHeader != "" {
				log.Tracef("user found: %s", userIdHeader)
				ctx = user.WithUser(ctx, user.User{Uid: userIdHeader})
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
		log.WithFields(log.Fields{
			"method":   sanitize(r.Method),
			"path":     sanitize(r.URL.Path),
			"status":   wrapped.statusCode,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
