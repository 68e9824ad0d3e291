package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"powereye/docs"
	"powereye/internal/auth"
	"powereye/internal/config"
	apperrors "powereye/internal/errors"
	"powereye/internal/handler"
	"powereye/internal/logging"
	"powereye/internal/model"
)

// Register wires routes and middleware. Authentication is attached per
// route; a group with middleware makes echo route unknown paths under it
// through that middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *slog.Logger,
	authn *auth.Authenticator,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	machineHandler *handler.MachineHandler,
	alertHandler *handler.AlertHandler,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "powereye")
	}))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := authn.Middleware()
	adminOnly := auth.RequireRole(model.RoleAdmin)

	// Public routes
	api.GET("/health", healthHandler.Health)
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)

	// Any authenticated role
	api.POST("/logout", authHandler.Logout, requireAuth)
	api.GET("/profile", authHandler.Profile, requireAuth)

	api.GET("/machines", machineHandler.ListMachines, requireAuth)
	api.GET("/machines/:id", machineHandler.GetMachine, requireAuth)
	api.POST("/machines", machineHandler.CreateMachine, requireAuth)
	api.PUT("/machines/:id", machineHandler.UpdateMachine, requireAuth)
	api.DELETE("/machines/:id", machineHandler.DeleteMachine, requireAuth)

	api.GET("/alerts", alertHandler.ListAlerts, requireAuth)
	api.POST("/alerts", alertHandler.CreateAlert, requireAuth)
	api.PUT("/alerts/:id/resolve", alertHandler.ResolveAlert, requireAuth)

	api.GET("/reports/summary", reportHandler.Summary, requireAuth)

	// Admin only
	api.GET("/users", userHandler.ListUsers, requireAuth, adminOnly)
	api.PUT("/users/:id", userHandler.UpdateUser, requireAuth, adminOnly)
	api.DELETE("/users/:id", userHandler.DeleteUser, requireAuth, adminOnly)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
