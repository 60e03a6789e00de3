package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
)

// bcryptCost matches the work factor used for all stored credentials.
const bcryptCost = 10

// AuthService handles login and account management against the
// management schema.
type AuthService struct {
	users   repositories.UserRepository
	tenants repositories.TenantRepository
	tokens  *auth.Service
	logger  *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users repositories.UserRepository, tenants repositories.TenantRepository, tokens *auth.Service, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tenants: tenants, tokens: tokens, logger: logger}
}

// LoginResult carries the issued token plus the user's home centre.
type LoginResult struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

// Login verifies credentials and issues a token. A user whose centre is
// not yet provisioned cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	result := &LoginResult{User: user}

	if user.TenantID != nil {
		t, err := s.tenants.GetByID(ctx, *user.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up tenant: %w", err)
		}
		if !t.Usable() {
			return nil, fmt.Errorf("%w: centre %s is not ready", apperrors.ErrForbidden, t.Slug)
		}
		result.Tenant = t
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	result.Token = token

	return result, nil
}

// RegisterUserParams describes a new account.
type RegisterUserParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateStaff creates a staff account bound to the admin's own centre.
func (s *AuthService) CreateStaff(ctx context.Context, params RegisterUserParams) (*models.User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	tenantID, ok := claims.TenantUUID()
	if !ok {
		return nil, apperrors.ErrNoTenant
	}
	if !models.ValidStaffRole(params.Role) {
		return nil, fmt.Errorf("%w: invalid staff role %q", apperrors.ErrForbidden, params.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        params.Email,
		PasswordHash: string(hash),
		Name:         params.Name,
		Role:         params.Role,
		TenantID:     &tenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("staff account created",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("tenant_id", tenantID.String()))
	return user, nil
}

// ListStaff returns the staff accounts of the admin's own centre.
func (s *AuthService) ListStaff(ctx context.Context) ([]models.User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	tenantID, ok := claims.TenantUUID()
	if !ok {
		return nil, apperrors.ErrNoTenant
	}
	return s.users.ListByTenant(ctx, tenantID, models.StaffRoles)
}
