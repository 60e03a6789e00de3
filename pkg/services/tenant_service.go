package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
	"github.com/phc-health/phc-engine/pkg/tenant"
)

// TenantService handles centre registration and the directory.
type TenantService struct {
	tenants     repositories.TenantRepository
	users       repositories.UserRepository
	provisioner *tenant.Provisioner
	logger      *zap.Logger
}

// NewTenantService creates a TenantService.
func NewTenantService(tenants repositories.TenantRepository, users repositories.UserRepository, provisioner *tenant.Provisioner, logger *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, users: users, provisioner: provisioner, logger: logger}
}

// RegisterTenantParams describes a new Primary Health Centre.
type RegisterTenantParams struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Address       string `json:"address"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// RegisterTenantResult carries the created tenant and its admin account.
type RegisterTenantResult struct {
	Tenant *models.Tenant `json:"tenant"`
	Admin  *models.User   `json:"admin"`
}

// Register creates the tenant record, its admin account, and the
// isolated partition, synchronously and in that order. The tenant stays
// in status "provisioning" until its schema is fully materialized and
// is flipped to "failed" if provisioning errors, so a half-built centre
// is never reachable by login or clinical traffic.
func (s *TenantService) Register(ctx context.Context, params RegisterTenantParams) (*RegisterTenantResult, error) {
	slug, err := tenant.ParseSlug(params.Slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTenantSlug, err)
	}

	t := &models.Tenant{
		Name:    params.Name,
		Slug:    string(slug),
		Address: params.Address,
		Status:  models.TenantStatusProvisioning,
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: slug %s already exists", apperrors.ErrConflict, slug)
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.AdminPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Email:        params.AdminEmail,
		PasswordHash: string(hash),
		Name:         params.AdminName,
		Role:         models.RoleHospitalAdmin,
		TenantID:     &t.ID,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		s.markFailed(ctx, t)
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: admin email already registered", apperrors.ErrConflict)
		}
		return nil, err
	}

	if err := s.provisioner.Provision(ctx, slug); err != nil {
		s.markFailed(ctx, t)
		return nil, fmt.Errorf("failed to provision centre %s: %w", slug, err)
	}

	if err := s.tenants.UpdateStatus(ctx, t.ID, models.TenantStatusActive); err != nil {
		return nil, fmt.Errorf("failed to activate centre %s: %w", slug, err)
	}
	t.Status = models.TenantStatusActive

	s.logger.Info("centre registered",
		zap.String("slug", string(slug)),
		zap.String("tenant_id", t.ID.String()))
	return &RegisterTenantResult{Tenant: t, Admin: admin}, nil
}

// markFailed flags a tenant as unusable after a registration failure.
func (s *TenantService) markFailed(ctx context.Context, t *models.Tenant) {
	if err := s.tenants.UpdateStatus(ctx, t.ID, models.TenantStatusFailed); err != nil {
		s.logger.Error("failed to mark tenant as failed",
			zap.String("tenant_id", t.ID.String()),
			zap.Error(err))
	}
}

// List returns every registered centre.
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}
