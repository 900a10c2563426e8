// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

/*
Package middleware provides the cross-cutting HTTP processing chain.

Each middleware decorates the standard http.Handler with one concern:

  - Trace: request ID generation for log correlation.
  - Log: structured request logging (slog) with a per-request sub-logger.
  - Guard: per-IP rate limiting and CORS.
  - Safe: panic recovery.
  - Auth: authentication gate and role guards (authn.go, authz.go).

Domain handlers stay free of infrastructure concerns; everything here runs
before they do.
*/
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pixagen/pixagen/internal/platform/constants"
	"github.com/pixagen/pixagen/internal/platform/ctxutil"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request.
//
// A client-supplied X-Request-ID is honored so upstream proxies can stitch
// their traces to ours; otherwise a UUIDv7 is minted for its time-sortable
// property in log storage.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = newRequestID()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// newRequestID mints a UUIDv7, falling back to v4 if the clock misbehaves.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// # Request Logging

// statusRecorder captures the response status for the completion log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// identityRecord carries the resolved user ID from the gate back to the
// completion log line. The gate runs downstream of the logger and attaches
// the identity to a child context the logger never sees again, so the two
// share this pointer instead.
type identityRecord struct {
	userID int64
	seen   bool
}

type identityRecordKey struct{}

// StructuredLogger injects a request-scoped sub-logger into the context and
// emits one completion line per request. 4xx logs at warn, 5xx at error.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			record := &identityRecord{}
			ctx = context.WithValue(ctx, identityRecordKey{}, record)
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case recorder.status >= 500:
				level = slog.LevelError
			case recorder.status >= 400:
				level = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", recorder.status),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}
			if record.seen {
				attrs = append(attrs, slog.String("user_id", strconv.FormatInt(record.userID, 10)))
			}

			requestLogger.Log(ctx, level, "http_request_finished", attrs...)
		})
	}
}

// # Rate Limiting

// ipLimiter tracks one client's token bucket and its last activity.
type ipLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry owns the per-IP buckets for one middleware chain.
// State is chain-local, so servers constructed in tests do not share it.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

// get returns the bucket for an IP, creating it on first sight.
func (registry *limiterRegistry) get(ip string) *rate.Limiter {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	entry, ok := registry.limiters[ip]
	if !ok {
		entry = &ipLimiter{bucket: rate.NewLimiter(
			rate.Limit(constants.DefaultRateLimitRPS),
			constants.DefaultRateLimitBurst,
		)}
		registry.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.bucket
}

// sweep drops entries idle past the TTL until ctx is cancelled.
func (registry *limiterRegistry) sweep(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			registry.mu.Lock()
			for ip, entry := range registry.limiters {
				if time.Since(entry.lastSeen) > constants.RateLimitClientTTL {
					delete(registry.limiters, ip)
				}
			}
			registry.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// RateLimit applies a token-bucket limit per client IP.
//
// The ctx bounds the background cleanup goroutine; cancel it at shutdown.
func RateLimit(ctx context.Context) func(http.Handler) http.Handler {
	registry := &limiterRegistry{limiters: make(map[string]*ipLimiter)}
	go registry.sweep(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !registry.get(RealIP(request)).Allow() {
				writeError(writer, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// # Reliability & Safety

// PanicRecovery converts a handler panic into a logged 500 response.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				stack := make([]byte, 2048)
				n := runtime.Stack(stack, false)

				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(),
					"panic_recovered",
					slog.Any("error", recovered),
					slog.String("stack", string(stack[:n])),
				)

				writeError(writer, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred")
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// AppConfig is the slice of configuration the CORS middleware needs.
type AppConfig interface {
	IsDevelopment() bool
}

// CORS allows any origin in development and only *.pixagen.app in
// production. Preflight OPTIONS requests short-circuit with 204.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if cfg.IsDevelopment() || strings.HasSuffix(origin, "pixagen.app") {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Helpers

// RealIP resolves the client address, preferring proxy headers.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}
	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return host
}

// writeError emits a minimal JSON error body. Rate limiting and panic
// recovery sit above the error-mapping layer, so they write directly.
func writeError(writer http.ResponseWriter, status int, code, detail string) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]string{
		constants.FieldCode:   code,
		constants.FieldDetail: detail,
	})
}
