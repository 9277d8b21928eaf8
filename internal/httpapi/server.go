// Package httpapi is Prism's client-facing HTTP surface: the single
// criteria query endpoint, the broker liveness gate, and the Echo
// wiring (CORS, body-limit, response headers) around them.
package httpapi

import (
	"context"
	"net"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/samply/prism/internal/cache"
	"github.com/samply/prism/internal/pending"
)

// maxCriteriaBodyBytes bounds the client request body, well above any
// realistic sites list.
const maxCriteriaBodyBytes = 64 * 1024

// Server is Prism's HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cache        *cache.CriteriaCache
	pending      *pending.Set
	initialSites []string
}

// NewServer wires the Echo router: body limit, CORS, the Server response
// header, and the single POST /criteria route.
func NewServer(criteriaCache *cache.CriteriaCache, pendingSet *pending.Set, initialSites []string, corsOrigin string) *Server {
	e := echo.New()

	s := &Server{
		echo:         e,
		cache:        criteriaCache,
		pending:      pendingSet,
		initialSites: initialSites,
	}

	e.Use(middleware.BodyLimit(maxCriteriaBodyBytes))
	e.Use(serverHeader())
	e.Use(corsMiddleware(corsOrigin))

	e.POST("/criteria", s.criteriaHandler)

	return s
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, such
// as one bound to a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
