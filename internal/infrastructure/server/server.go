package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/uniplanner/core/internal/adapters/http"
	"github.com/uniplanner/core/internal/application/planner"
	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/config"
	"github.com/uniplanner/core/internal/infrastructure/logger"
)

// Server is the local read-only view server. It serves derived views over
// the signed-in user's synced planner state; it is not the planner backend
// and performs no writes beyond share-link creation.
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance.
func New(cfg *config.Config, tasks *planner.TaskStore, registry *planner.CourseRegistry, share *planner.ShareService, registerer *prometheus.Registry, appLogger *logger.Logger) *Server {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	viewHandler := httpHandlers.NewViewHandler(tasks, registry, appLogger)
	shareHandler := httpHandlers.NewShareHandler(share, appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	server.setupMiddleware()
	server.setupRoutes(viewHandler, shareHandler)

	if cfg.Server.MetricsEnabled && registerer != nil {
		server.setupMetrics(registerer)
	}

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.Server.RateLimitRequests),
				Burst:     s.config.Server.RateLimitRequests,
				ExpiresIn: s.config.Server.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.RequestID())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(viewHandler *httpHandlers.ViewHandler, shareHandler *httpHandlers.ShareHandler) {
	s.echo.GET("/healthz", s.healthCheck)

	views := s.echo.Group("/views")
	views.GET("/today", viewHandler.Today)
	views.GET("/soon", viewHandler.Soon)
	views.GET("/upcoming", viewHandler.Upcoming)
	views.GET("/stats", viewHandler.Stats)
	views.GET("/calendar", viewHandler.Calendar)

	s.echo.GET("/calendar.ics", viewHandler.CalendarFeed)

	s.echo.POST("/share", shareHandler.Create)
	s.echo.GET("/shared/:token", shareHandler.Resolve)
}

// setupMetrics exposes the prometheus registry that also carries the
// planner API client metrics.
func (s *Server) setupMetrics(registry *prometheus.Registry) {
	registry.MustRegister(collectors.NewGoCollector())

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_requests_total",
			Help: "Total number of view requests served",
		},
		[]string{"method", "path", "status"},
	)
	registry.MustRegister(requestsTotal)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
			).Inc()
			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Infow("Starting view server", "address", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down view server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps domain errors onto HTTP statuses.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		var ve *entities.ValidationError
		var re *entities.RemoteError

		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = he.Message
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			msg = map[string]string{"message": ve.Error()}
		case errors.Is(err, entities.ErrTaskNotFound), errors.Is(err, entities.ErrCourseNotFound):
			code = http.StatusNotFound
			msg = map[string]string{"message": err.Error()}
		case errors.As(err, &re):
			code = http.StatusBadGateway
			msg = map[string]string{"message": "planner backend unavailable"}
		default:
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
