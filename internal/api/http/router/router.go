package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/membergate/membergate/internal/api/http/handler"
	"github.com/membergate/membergate/internal/api/http/middleware"
	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
)

// Router wires the authentication pages, middleware and operational
// endpoints onto an echo instance.
type Router struct {
	auth           *handler.Auth
	sessions       middleware.SessionResolver
	contextManager model.ContextManager
	cookieName     string
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	auth *handler.Auth,
	sessions middleware.SessionResolver,
	contextManager model.ContextManager,
	cookieName string,
	logger *logger.Logger,
) *Router {
	return &Router{
		auth:           auth,
		sessions:       sessions,
		contextManager: contextManager,
		cookieName:     cookieName,
		logger:         logger,
	}
}

// Register sets up all routes and middleware on the echo instance.
func (r *Router) Register(e *echo.Echo) {
	metrics := middleware.NewMetrics()

	e.Use(middleware.NewLogging(r.logger).Handle)
	e.Use(metrics.Handle)
	e.Use(middleware.NewAuthenticate(r.sessions, r.contextManager, r.cookieName, r.logger).Handle)

	e.GET(model.RouteLogin.Path(), r.auth.ShowLogin)
	e.POST(model.RouteLogin.Path(), r.auth.SubmitLogin)
	e.GET(model.RouteRegister.Path(), r.auth.ShowRegister)
	e.POST(model.RouteRegister.Path(), r.auth.SubmitRegister)
	e.GET(model.RouteLostPassword.Path(), r.auth.ShowLostPassword)
	e.POST(model.RouteLostPassword.Path(), r.auth.SubmitLostPassword)
	e.GET(model.RouteResetPassword.Path(), r.auth.ShowResetPassword)
	e.POST(model.RouteResetPassword.Path(), r.auth.SubmitResetPassword)
	e.GET(model.RouteLogout.Path(), r.auth.Logout)
	e.GET(model.RouteAccount.Path(), r.auth.ShowAccount)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())
}
