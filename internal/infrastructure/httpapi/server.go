package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
)

const gracefulShutdownTimeout = 10 * time.Second

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, category string, limit int) (domain.RunReport, error)
}

// Server is the operator trigger API.
type Server struct {
	Echo *echo.Echo

	addr         string
	defaultLimit int
	runner       Runner
	logger       *slog.Logger
}

// NewServer builds the echo instance with middlewares and routes.
func NewServer(cfg config.AdminConfig, defaultLimit int, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		Echo:         e,
		addr:         cfg.Addr,
		defaultLimit: defaultLimit,
		runner:       runner,
		logger:       logger,
	}
	s.setupMiddlewares(cfg)
	s.routes(cfg.Token)
	return s
}

func (s *Server) setupMiddlewares(cfg config.AdminConfig) {
	s.Echo.Use(requestLogger(s.logger))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
}

func (s *Server) routes(token string) {
	s.Echo.GET("/health", s.health)

	admin := s.Echo.Group("/admin")
	if token != "" {
		admin.Use(bearerAuth(token))
	}
	admin.POST("/pipeline/run", s.runPipeline)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin api listening", "addr", s.addr)
		if err := s.Echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return s.Echo.Shutdown(shutdownCtx)
}
