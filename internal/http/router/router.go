// Package router assembles the HTTP handler: middleware stack, error
// handlers and the route table.
package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/greeting-server/internal/http/v1/greeting"
	applog "github.com/janisto/greeting-server/internal/platform/logging"
	appmiddleware "github.com/janisto/greeting-server/internal/platform/middleware"
	"github.com/janisto/greeting-server/internal/platform/respond"
)

// Title is the API title reported in the OpenAPI info block.
const Title = "Greeting Server"

// maxBodyBytes caps request bodies. GET / ignores its body.
const maxBodyBytes = 1 << 20

// Route is one entry of the route table. Method and Path decide where the
// operation is served; Register completes and registers it.
type Route struct {
	Method   string
	Path     string
	Register func(huma.API, huma.Operation)
}

// Routes returns the route table applied by New.
func Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: greeting.Path, Register: greeting.Register},
	}
}

// Config returns the huma configuration used by New.
// OpenAPI, docs and schema endpoints are disabled and response bodies carry
// no $schema link, so the route table is the whole HTTP surface.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.OpenAPIPath = ""
	cfg.DocsPath = ""
	cfg.SchemasPath = ""
	cfg.CreateHooks = nil
	cfg.Transformers = nil
	return cfg
}

// New builds the router with the base middleware stack and every route in Routes.
func New(version string) chi.Router {
	return NewWithRoutes(version, Routes())
}

// NewWithRoutes builds the router with the base middleware stack and the given routes.
func NewWithRoutes(version string, routes []Route) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxBodyBytes),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	api := humachi.New(router, Config(version))
	for _, rt := range routes {
		rt.Register(api, huma.Operation{Method: rt.Method, Path: rt.Path})
	}
	return router
}
