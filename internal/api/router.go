package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/stockroom/inventory-system/docs"
	"github.com/stockroom/inventory-system/internal/api/handler"
	"github.com/stockroom/inventory-system/internal/api/middleware"
	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

const bodyLimit = "10M"

// Dependencies are the services and settings the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Activity ports.ActivityService
	Hub      handler.NotificationHub
	// Readiness may be nil, in which case /health/ready is not registered.
	Readiness *handler.HealthDependenciesHandler

	Log           zerolog.Logger
	CORSOrigins   []string
	AuthRateLimit float64

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	promMiddleware, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("prometheus middleware: %w", err)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(promMiddleware)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Log)
	activityHandler := handler.NewActivityHandler(deps.Activity)
	notificationHandler := handler.NewNotificationHandler(deps.Hub, deps.CORSOrigins, deps.Log)
	requireAuth := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup, authRateLimiter(deps.AuthRateLimit))
	auth.POST("/login", authHandler.Login, authRateLimiter(deps.AuthRateLimit))
	auth.POST("/logout", authHandler.Logout, middleware.OptionalAuth(deps.Auth))
	auth.GET("/me", authHandler.Me, requireAuth)
	auth.PUT("/updateProfile", authHandler.UpdateProfile, requireAuth)
	auth.GET("/staffuser", authHandler.ListStaff, requireAuth)
	auth.GET("/manageruser", authHandler.ListManagers, requireAuth)
	auth.GET("/adminuser", authHandler.ListAdmins, requireAuth)
	auth.PUT("/role/:id", authHandler.AssignRole, requireAuth, adminOnly)
	auth.DELETE("/removeuser/:id", authHandler.RemoveUser, requireAuth, adminOnly)

	// --- Activity routes ---
	auditors := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)
	e.GET("/api/activitylogs", activityHandler.Recent, requireAuth, auditors)
	e.GET("/api/notifications/ws", notificationHandler.Subscribe, middleware.WebsocketAuth(deps.Auth), auditors)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness) // liveness  – is the process alive?
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness) // readiness – are dependencies up?
	}

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// authRateLimiter throttles credential endpoints per client IP. A limit of 0
// disables throttling.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(perSecond),
			Burst: int(perSecond) + 1,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests, try again later"})
		},
	})
}
