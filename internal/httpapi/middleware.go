package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyUserID ctxKey = "authenticatedUserID"

// requestTrace collects what handlers learn about a request for the completion log.
type requestTrace struct {
	userID uuid.UUID
}

const ctxKeyTrace ctxKey = "requestTrace"

func traceOf(r *http.Request) *requestTrace {
	t, _ := r.Context().Value(ctxKeyTrace).(*requestTrace)
	return t
}

// routePattern is the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return "unmatched"
}

// requestLogger writes one line per request keyed by route pattern and caller.
// 5xx responses log at ERROR, 4xx at WARN.
func requestLogger(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			trace := &requestTrace{}
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyTrace, trace))

			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = slog.LevelError
			case ww.Status() >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			attrs := []any{
				"req_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"route", routePattern(r),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if trace.userID != uuid.Nil {
				attrs = append(attrs, "user_id", trace.userID.String())
			}
			l.Log(r.Context(), level, "request", attrs...)
		})
	}
}

// recoverer turns a handler panic into a JSON 500 and logs the stack.
func recoverer(l *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				var userID uuid.UUID
				if trace := traceOf(r); trace != nil {
					userID = trace.userID
				}
				l.Error("handler panic",
					"req_id", chimw.GetReqID(r.Context()),
					"route", routePattern(r),
					"user_id", userID.String(),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				writeErr(w, http.StatusInternalServerError, "internal_error", "internal_error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[len("Bearer "):])
	return tok, tok != ""
}

// authenticate requires a valid bearer token and stores the caller's id in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := parseBearerToken(r)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "missing bearer token", "unauthorized")
			return
		}
		userID, err := s.tokens.Verify(tok)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid token", "unauthorized")
			return
		}
		if trace := traceOf(r); trace != nil {
			trace.userID = userID
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated user. Only valid behind authenticate.
func callerID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(ctxKeyUserID).(uuid.UUID)
	return id
}
