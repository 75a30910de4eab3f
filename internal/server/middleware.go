package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
)

const correlationHeader = "X-Correlation-ID"

// requestLogger returns logger tagged with the response's correlation ID so
// entries can be looked up through /api/diagnostics.
func requestLogger(logger *common.Logger, w http.ResponseWriter) *common.Logger {
	if id := w.Header().Get(correlationHeader); id != "" {
		return logger.WithCorrelationId(id)
	}
	return logger
}

// recoveryMiddleware catches panics and returns 500. When the handler has
// already started the response the panic is only logged.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					requestLogger(logger, w).Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Bool("response_started", ww.Status() != 0).
						Msg("Panic recovered in HTTP handler")
					if ww.Status() == 0 {
						WriteError(ww, http.StatusInternalServerError, "Something went wrong!")
					}
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get(correlationHeader)
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set(correlationHeader, corrID)
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware sets conservative browser security headers on
// every response.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'self'; object-src 'none'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			l := requestLogger(logger, w)
			event := l.Trace()
			if status >= 500 {
				event = l.Error()
			} else if status >= 400 {
				event = l.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}

// corsMiddleware allows any origin to read the API.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", correlationHeader, "Mcp-Session-Id"},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	})
}

// middlewareStack returns the stack in execution order.
func middlewareStack(logger *common.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		recoveryMiddleware(logger),
		correlationIDMiddleware,
		securityHeadersMiddleware,
		loggingMiddleware(logger),
		corsMiddleware(),
		middleware.GetHead,
	}
}
