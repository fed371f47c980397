// Package api exposes the game over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"pointsgame/config"
	"pointsgame/service"
)

// Services are the application services behind the routes
type Services struct {
	Auth      service.AuthService
	Games     service.GameService
	Catalog   service.CatalogService
	Analytics service.AnalyticsService
	Admin     service.AdminService
	Timer     service.TimerService
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Server owns the gin engine and the HTTP listener
type Server struct {
	handlers *handlers
	engine   *gin.Engine
	http     *http.Server
}

// NewServer builds the router. live may be nil to disable the admin event stream.
func NewServer(cfg *config.Config, services Services, health HealthChecker, live *LiveHub) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())

	h := &handlers{
		services:     services,
		health:       health,
		live:         live,
		secureCookie: cfg.IsProduction(),
		sessionTTL:   cfg.SessionTTL,
	}
	setupRoutes(engine, h, cfg.IsProduction())

	return &Server{
		handlers: h,
		engine:   engine,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.handlers.live != nil {
		s.handlers.live.Close()
	}
	return s.http.Shutdown(ctx)
}

// setupRoutes registers every route on r
func setupRoutes(r *gin.Engine, h *handlers, throttleAuth bool) {
	r.GET("/healthz", h.healthz)

	apiGroup := r.Group("/api")

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/register", AuthRateLimit(throttleAuth, 12*time.Second, 5), h.register)
		auth.POST("/login", AuthRateLimit(throttleAuth, 12*time.Second, 5), h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", AuthRequired(h.services.Auth), h.me)
	}

	apiGroup.GET("/leaderboard", h.leaderboard)

	protected := apiGroup.Group("/")
	protected.Use(AuthRequired(h.services.Auth))
	{
		protected.POST("/games/reel", h.playReel)
		protected.POST("/games/die", h.playDie)
		protected.POST("/games/grid", h.playGrid)
		protected.POST("/games/grid/claim", h.claimGrid)

		protected.GET("/items", h.inventory)
		protected.POST("/items/use", h.useItem)

		protected.GET("/sabotage", h.sabotageOptions)
		protected.POST("/sabotage", h.sabotage)
		protected.GET("/sabotage/notifications", h.notifications)

		protected.GET("/history", h.history)
		protected.POST("/timer", h.timer)
	}

	admin := apiGroup.Group("/admin")
	admin.Use(AuthRequired(h.services.Auth), AdminRequired())
	{
		admin.GET("/activity", h.adminActivity)
		admin.GET("/analytics", h.adminAnalytics)
		admin.GET("/users", h.adminUsers)
		admin.PUT("/users", h.adminUpdateUser)
		admin.POST("/points", h.adminPoints)
		admin.GET("/items", h.adminItems)
		admin.POST("/trigger", h.adminTrigger)
		admin.POST("/gift", h.adminGift)
		admin.GET("/live", h.adminLive)
	}
}
