package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloggers-platform/accounts-api/internal/api/handler"
	"github.com/bloggers-platform/accounts-api/internal/api/middleware"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// RouterParams carries everything the router needs to wire routes.
type RouterParams struct {
	Env          string
	AuthService  ports.AuthService
	UsersService ports.UsersService
	Verifier     middleware.TokenVerifier
	Limiter      middleware.Limiter
	Mongo        *mongo.Database
	Redis        *redis.Client
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(p RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(p.Env, p.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	authHandler := handler.NewAuthHandler(p.AuthService, p.UsersService)
	userHandler := handler.NewUserHandler(p.UsersService, p.Log)

	requireAuth := middleware.Auth(p.Verifier)
	optionalAuth := middleware.OptionalAuth(p.Verifier)
	throttle := middleware.Throttle(p.Limiter, p.Log)

	// --- Auth routes (all public endpoints throttled) ---
	auth := e.Group("/auth")
	auth.POST("/registration", authHandler.Registration, throttle)
	auth.POST("/login", authHandler.Login, throttle)
	auth.POST("/password-recovery", authHandler.PasswordRecovery, throttle)
	auth.POST("/new-password", authHandler.NewPassword, throttle)
	auth.POST("/registration-confirmation", authHandler.RegistrationConfirmation, throttle)
	auth.POST("/registration-email-resending", authHandler.RegistrationEmailResending, throttle)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- User routes ---
	e.GET("/users", userHandler.List)
	e.GET("/users/:id", userHandler.Get, optionalAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(p.Mongo, p.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	if p.Env != "production" {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}
