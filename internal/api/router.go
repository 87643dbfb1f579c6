package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/secureapi/secure-api/internal/api/handler"
	"github.com/secureapi/secure-api/internal/api/middleware"
	"github.com/secureapi/secure-api/internal/core/ports"
)

// publicPaths are reachable without a bearer token.
var publicPaths = []string{
	"/auth/*",
	"/health",
	"/health/ready",
	"/metrics",
	"/swagger/*",
}

// Deps holds everything the router wires into handlers.
type Deps struct {
	AuthService   ports.AuthService
	Authenticator ports.Authenticator
	PostService   ports.PostService
	// Health lists the dependencies checked by /health/ready, by name.
	Health map[string]handler.Pinger
	Logger zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry,
	// which is where the custom metrics live.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	// Login throttling keys on the peer address; forwarded headers are
	// client-controlled and are not trusted.
	e.IPExtractor = echo.ExtractIPDirect()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "secureapi",
		Registerer: registerer,
	}))
	e.Use(middleware.Auth(middleware.AuthConfig{
		Authenticator: deps.Authenticator,
		Skipper:       middleware.PublicPaths(publicPaths...),
		Logger:        deps.Logger,
	}))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Protected routes ---
	postHandler := handler.NewPostHandler(deps.PostService)
	apiGroup := e.Group("/api")
	apiGroup.GET("/data", postHandler.Data)
	apiGroup.GET("/posts", postHandler.List)
	apiGroup.POST("/posts", postHandler.Create)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
