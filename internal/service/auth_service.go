package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/config"
	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/repository"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// AuthService coordinates login for helpdesk accounts. Accounts are
// provisioned by an administrator, so there is no self-registration flow.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !user.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ProvisionInput describes a new account.
type ProvisionInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	UnitID   *int64
}

// ProvisionUser creates an account. Only administrators reach this path.
func (s *AuthService) ProvisionUser(ctx context.Context, input ProvisionInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationFailed("name, email and password are required", nil)
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, apperrors.NewValidationFailed(err.Error(), nil)
	}
	switch input.Role {
	case domain.RoleEmployee, domain.RoleHelpdesk, domain.RoleTechnician,
		domain.RoleManager, domain.RoleTeamLead, domain.RoleAdmin:
	default:
		return nil, apperrors.NewValidationFailed("unknown role", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		UnitID:       input.UnitID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
