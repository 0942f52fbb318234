package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/metrics"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates X-Request-Id or assigns a new uuid, and stores it as the log rid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(logger.WithRID(r.Context(), reqID)))
	})
}

// Logging logs every request with its route pattern and feeds the HTTP collectors.
func Logging(m *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			took := logger.Took(start)
			m.Observe(r.Method, route, status, took)

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case route == "/metrics" || route == "/healthz":
				level = slog.LevelDebug
			}
			logger.Event(r.Context(), logger.CompHTTP, level, "request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("code", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", took),
			)
		})
	}
}

// Recoverer turns handler panics into 500 responses.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error(r.Context(), logger.CompHTTP, "panic.recovered",
					slog.Any("err", fmt.Errorf("panic: %v", rec)),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
