package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware allowing any origin to read the greeting.
// Only safe methods are advertised since the API is read-only.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-Id",
			"traceparent",
		},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
