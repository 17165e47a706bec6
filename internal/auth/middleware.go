package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

const actorKey = "auth_actor"

// Actor identifies the authenticated caller for audit trails.
type Actor struct {
	ID   string
	Name string
}

// Middleware validates bearer tokens and exposes the actor to handlers.
type Middleware struct {
	tokens *TokenVerifier
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenVerifier) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(actorKey, &Actor{ID: claims.Subject, Name: claims.Name})
	return c.Next()
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(c *fiber.Ctx) (*Actor, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return nil, false
	}
	actor, ok := val.(*Actor)
	return actor, ok
}
