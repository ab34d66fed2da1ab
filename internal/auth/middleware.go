package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/azis003/tick-track/internal/domain"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User         *domain.User
	Capabilities CapabilitySet
}

// UserLoader resolves token subjects to accounts. The user repository
// satisfies it; declaring the narrow interface here keeps this package off
// the persistence layer.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware validates bearer tokens and loads principals.
type Middleware struct {
	tokens *TokenManager
	users  UserLoader
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users UserLoader) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthenticated("user inactive")
	}

	c.Locals(principalKey, &Principal{
		User:         user,
		Capabilities: CapabilitiesForRole(user.Role),
	})
	return c.Next()
}

// RequireCapability gates a route on the principal holding a capability.
func RequireCapability(cap Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.Capabilities.Has(cap) {
			return apperrors.NewUnauthorized("missing capability " + string(cap))
		}
		return c.Next()
	}
}

// RequireAnyCapability gates a route on at least one of the capabilities.
func RequireAnyCapability(caps ...Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		for _, cap := range caps {
			if principal.Capabilities.Has(cap) {
				return c.Next()
			}
		}
		return apperrors.NewUnauthorized("insufficient capabilities")
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
