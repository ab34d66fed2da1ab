package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azis003/tick-track/internal/domain"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

type mapUserLoader map[int64]*domain.User

func (m mapUserLoader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := m[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newMiddlewareApp(t *testing.T, users mapUserLoader) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", 60)
	m := NewMiddleware(tokens, users)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/me", m.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{
			"id":       principal.User.ID,
			"can_work": principal.Capabilities.Has(CapTicketsWork),
		})
	})
	return app, tokens
}

func TestMiddlewareLoadsPrincipal(t *testing.T) {
	user := &domain.User{ID: 7, Name: "Budi", Role: domain.RoleTechnician, Active: true}
	app, tokens := newMiddlewareApp(t, mapUserLoader{user.ID: user})

	token, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsBadCredentials(t *testing.T) {
	active := &domain.User{ID: 7, Role: domain.RoleTechnician, Active: true}
	inactive := &domain.User{ID: 8, Role: domain.RoleTechnician, Active: false}
	app, tokens := newMiddlewareApp(t, mapUserLoader{active.ID: active, inactive.ID: inactive})

	inactiveToken, _, err := tokens.GenerateToken(inactive)
	require.NoError(t, err)
	orphanToken, _, err := tokens.GenerateToken(&domain.User{ID: 99, Role: domain.RoleEmployee})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"unknown user", "Bearer " + orphanToken},
		{"inactive user", "Bearer " + inactiveToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
