package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/greeting-server/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"

	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"
)

// candidateMethods are checked against the route tree when building an Allow header.
var candidateMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Problem is an RFC 9457 problem details body carrying the request's
// correlation ID as the traceId extension member.
type Problem struct {
	huma.ErrorModel
	TraceID string `json:"traceId,omitempty"`
}

// WriteProblem renders a problem details body with the given status and detail.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := &Problem{
		ErrorModel: huma.ErrorModel{
			Title:    http.StatusText(status),
			Status:   status,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		TraceID: applog.CorrelationID(r.Context()),
	}

	w.Header().Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(problem); err != nil {
		applog.LogError(r.Context(), "failed to render problem", err, zap.Int("status", status))
	}
}

// NotFoundHandler answers unmatched paths with a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logWithStatus(r.Context(), http.StatusNotFound, msgNotFound, nil, zap.String("path", r.URL.Path))
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler answers known paths requested with an unregistered method.
// The Allow header lists the methods the route tree accepts for the path.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		detail := fmt.Sprintf("method %s not allowed", r.Method)
		logWithStatus(r.Context(), http.StatusMethodNotAllowed, detail, nil, zap.String("path", r.URL.Path))
		WriteProblem(w, r, http.StatusMethodNotAllowed, detail)
	}
}

// Recoverer converts handler panics into 500 problems.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection,
// and nothing is written when the handler already sent headers.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
				logWithStatus(r.Context(), http.StatusInternalServerError, "panic recovered", err)

				if rw.wroteHeader {
					return
				}
				WriteProblem(w, r, http.StatusInternalServerError, msgInternalServerErr)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// responseWriter records whether the response has been started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	allowed := make([]string, 0, len(candidateMethods))
	for _, method := range candidateMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func logWithStatus(ctx context.Context, status int, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Int("status", status))
	switch {
	case status >= 500:
		applog.LogError(ctx, msg, err, fields...)
	case err != nil:
		applog.LogWarn(ctx, msg, append(fields, zap.Error(err))...)
	default:
		applog.LogWarn(ctx, msg, fields...)
	}
}
