package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lumo/internal/config"
	"lumo/internal/handler"
	"lumo/internal/metrics"
	"lumo/internal/middleware"
	"lumo/internal/redis"
	"lumo/internal/services"
	"lumo/internal/transport/httpdto"
	"lumo/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers groups the route handlers wired in by main.
type Handlers struct {
	Auth   *handler.AuthHandler
	Token  *handler.TokenHandler
	Upload *handler.UploadHandler
	Relay  *handler.RelayHandler
	WS     *WebSocketHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	switch cfg.Server.Environment {
	case "production", ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes installs the middleware chain and the API surface.
// healthCheck probes whichever metadata store the deployment selected.
func (s *Server) SetupRoutes(
	handlers *Handlers,
	authService *services.AuthService,
	limiter *redis.RateLimiter,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	healthCheck func(ctx context.Context) error,
) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.MetricsMiddleware(m))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := healthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	auth := s.engine.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimitMiddleware(limiter))
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", middleware.AuthMiddleware(authService), handlers.Auth.Logout)
	}

	tokens := s.engine.Group("/v1/tokens")
	{
		tokens.POST("", middleware.AuthMiddleware(authService), handlers.Token.Create)
		tokens.GET("", middleware.AuthMiddleware(authService), handlers.Token.List)
		tokens.DELETE("/:id", middleware.AuthMiddleware(authService), handlers.Token.Delete)
		// Public: the guest upload page resolves its token here.
		tokens.GET("/:value/info", handlers.Token.Info)
	}

	uploads := s.engine.Group("/v1/uploads")
	uploads.Use(middleware.UploadRateLimitMiddleware(limiter))
	{
		uploads.POST("/:value", handlers.Upload.Upload)
	}

	relay := s.engine.Group("/v1/relay")
	relay.Use(middleware.AuthMiddleware(authService))
	{
		relay.GET("/status", handlers.Relay.Status)
		relay.POST("/run", handlers.Relay.Run)
	}

	s.engine.GET("/v1/gallery/ws", handlers.WS.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
