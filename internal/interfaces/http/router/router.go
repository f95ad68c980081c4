// Package router wires the admin HTTP routes onto a gin engine.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/logger"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/interfaces/http/handler"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:       name,
		prefix:     prefix,
		routes:     make([]routeDefinition, 0),
		middleware: make([]gin.HandlerFunc, 0),
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: "GET", path: path, handlers: handlers})
	return dg
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: "POST", path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)

	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// ---------------------------------------------------------------------------
// Admin surface
// ---------------------------------------------------------------------------

// AdminConfig holds the admin surface settings
type AdminConfig struct {
	// AdminToken guards manual runs, empty disables the check
	AdminToken string
	// RunBurst and RunWindow rate limit manual runs per client
	RunBurst  int
	RunWindow time.Duration
}

// NewEngine creates a gin engine with request logging and panic recovery
func NewEngine(log *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	return engine
}

// NewSyncRoutes builds the /sync group
func NewSyncRoutes(h *handler.SyncHandler, cfg AdminConfig) *DomainGroup {
	burst := cfg.RunBurst
	if burst <= 0 {
		burst = 5
	}
	window := cfg.RunWindow
	if window <= 0 {
		window = time.Minute
	}

	return NewDomainGroup("sync", "/sync").
		GET("/status", h.GetStatus).
		POST("/:type/run",
			middleware.AdminToken(cfg.AdminToken),
			middleware.RateLimit(middleware.NewRateLimiter(burst, window)),
			h.Run,
		)
}

// NewAdminEngine assembles the full admin HTTP surface
func NewAdminEngine(log *zap.Logger, health *handler.HealthHandler, sync *handler.SyncHandler, cfg AdminConfig) *gin.Engine {
	engine := NewEngine(log)
	engine.GET("/health", health.Health)

	NewRouter(engine).Register(NewSyncRoutes(sync, cfg)).Setup()
	return engine
}
