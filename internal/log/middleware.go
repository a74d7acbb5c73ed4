package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// Middleware puts logger in the request context, tagged with the request id
// found by requestID (if any).
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// AccessLog logs one line per request with its status and duration. Client
// errors are logged at warn level, server errors at error level.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		if rw.status >= 500 {
			level = slog.LevelError
		} else if rw.status >= 400 {
			level = slog.LevelWarn
		}
		logger := FromContext(r.Context())
		fields := NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			WithHTTPResponse(rw.status, time.Since(start).Milliseconds()).
			WithComponent(ComponentHTTP)
		logger.Logger.Log(r.Context(), level, "HTTP request completed", fields.ToSlice()...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
