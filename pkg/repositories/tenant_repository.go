package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/database"
	"github.com/phc-health/phc-engine/pkg/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// TenantRepository defines directory access for tenants in the
// management schema.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// tenantRepository implements TenantRepository using PostgreSQL.
type tenantRepository struct {
	db *database.DB
}

// NewTenantRepository creates a new tenant repository over the
// management pool.
func NewTenantRepository(db *database.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create inserts a new tenant. Slugs are unique; a duplicate surfaces
// as ErrConflict.
func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusProvisioning
	}

	query := `
		INSERT INTO tenants (id, name, slug, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Slug, tenant.Address, tenant.Status,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetBySlug retrieves a tenant by its slug.
func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return r.get(ctx, "slug = $1", slug)
}

// GetByID retrieves a tenant by its internal id.
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *tenantRepository) get(ctx context.Context, where string, arg interface{}) (*models.Tenant, error) {
	query := `
		SELECT id, name, slug, address, status, created_at, updated_at
		FROM tenants
		WHERE ` + where

	var tenant models.Tenant
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Address, &tenant.Status,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// List returns all tenants ordered by creation time.
func (r *tenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := `
		SELECT id, name, slug, address, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var tenant models.Tenant
		if err := rows.Scan(
			&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Address, &tenant.Status,
			&tenant.CreatedAt, &tenant.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// UpdateStatus flips a tenant's readiness flag. Registration uses this
// to keep a tenant invisible until its partition is materialized.
func (r *tenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE tenants SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
