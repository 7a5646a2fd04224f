// Package app assembles the HTTP application: router, middleware stack, huma
// API and routes. The same assembly backs the production server and the
// in-process test client.
package app

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // huma-generated errors negotiate CBOR too
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/pipeline-greeting/internal/config"
	"github.com/janisto/pipeline-greeting/internal/http/health"
	"github.com/janisto/pipeline-greeting/internal/http/routes"
	applog "github.com/janisto/pipeline-greeting/internal/platform/logging"
	appmiddleware "github.com/janisto/pipeline-greeting/internal/platform/middleware"
	"github.com/janisto/pipeline-greeting/internal/platform/respond"
)

const (
	title    = "Pipeline Greeting API"
	docsPath = "/api-docs"
)

// App is the assembled HTTP application.
type App struct {
	cfg    config.Config
	router chi.Router
	api    huma.API
}

// New builds the application for cfg. version is reported by the OpenAPI
// document and the health probe.
func New(cfg config.Config, version string) *App {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	stack := []func(http.Handler) http.Handler{
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1 << 20),
		applog.RequestLogger(),
		applog.AccessLogger(),
	}
	if !cfg.Testing {
		stack = append(stack, respond.Recoverer())
	}
	router.Use(stack...)

	router.Get(health.Path, health.Handler(version))

	humaCfg := huma.DefaultConfig(title, version)
	humaCfg.DocsPath = docsPath
	api := humachi.New(router, humaCfg)
	routes.Register(api)

	return &App{cfg: cfg, router: router, api: api}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// API exposes the huma API, mainly for inspecting the generated OpenAPI document.
func (a *App) API() huma.API {
	return a.api
}

// Testing reports whether the app was built in testing mode.
func (a *App) Testing() bool {
	return a.cfg.Testing
}

// Server returns an http.Server bound to the configured port.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// TestClient returns a client that dispatches requests straight into the
// handler without opening a socket.
func (a *App) TestClient() *Client {
	return &Client{handler: a.router}
}
