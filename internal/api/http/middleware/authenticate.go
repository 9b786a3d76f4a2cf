package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/membergate/membergate/internal/logger"
	"github.com/membergate/membergate/internal/model"
)

// SessionResolver resolves a session token to its identity.
type SessionResolver interface {
	CurrentIdentity(ctx context.Context, sessionToken string) (model.Identity, error)
}

// Authenticate resolves the member session cookie and injects the identity
// into the request context. Requests without a usable session pass through
// anonymous; pages decide what anonymity means for them.
type Authenticate struct {
	sessions       SessionResolver
	contextManager model.ContextManager
	cookieName     string
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionResolver, contextManager model.ContextManager, cookieName string, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		sessions:       sessions,
		contextManager: contextManager,
		cookieName:     cookieName,
		logger:         logger,
	}
}

// Handle is the echo middleware function.
func (m *Authenticate) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		ctx := c.Request().Context()

		identity, err := m.sessions.CurrentIdentity(ctx, cookie.Value)
		if err != nil {
			if !errors.Is(err, model.ErrNoSession) {
				m.logger.Warn("Authenticate middleware: session resolution failed",
					"error", err.Error())
			}
			return next(c)
		}

		c.SetRequest(c.Request().WithContext(m.contextManager.SetIdentityToContext(ctx, identity)))

		return next(c)
	}
}
