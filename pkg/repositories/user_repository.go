package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/database"
	"github.com/phc-health/phc-engine/pkg/models"
)

// UserRepository defines account access in the management schema.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, roles []string) ([]models.User, error)
}

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository over the management pool.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Emails are unique; a duplicate surfaces as
// ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()

	query := `
		INSERT INTO users (id, email, password_hash, name, role, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.TenantID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, tenant_id, created_at
		FROM users
		WHERE email = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.TenantID, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListByTenant returns a tenant's users, optionally filtered to the
// given roles.
func (r *userRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, roles []string) ([]models.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, tenant_id, created_at
		FROM users
		WHERE tenant_id = $1 AND ($2::text[] IS NULL OR role = ANY($2))
		ORDER BY created_at DESC`

	var roleFilter interface{}
	if len(roles) > 0 {
		roleFilter = roles
	}

	rows, err := r.db.Query(ctx, query, tenantID, roleFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
			&user.TenantID, &user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
