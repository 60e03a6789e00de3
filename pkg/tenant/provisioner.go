package tenant

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/database"
	"github.com/phc-health/phc-engine/pkg/logging"
	"github.com/phc-health/phc-engine/pkg/retry"
)

// Provisioner creates a tenant's isolated schema and materializes the
// clinical data model inside it. This is the only place in the system
// that performs DDL against a tenant-specific target, and it runs
// synchronously as part of tenant registration, before any request is
// allowed to address the tenant.
type Provisioner struct {
	db             *database.DB
	baseConnString string
	migrationsPath string
	logger         *zap.Logger
}

// NewProvisioner creates a provisioner. migrationsPath points at the
// clinical-schema template directory applied to every new partition.
func NewProvisioner(db *database.DB, baseConnString, migrationsPath string, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		db:             db,
		baseConnString: baseConnString,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

// Provision creates the partition if absent and brings its clinical
// schema up to date. Idempotent: provisioning the same slug twice is a
// no-op for the schema and a version check for the migrations, so a
// failed registration can safely be retried.
func (p *Provisioner) Provision(ctx context.Context, slug Slug) error {
	// slug has passed ParseSlug; Sanitize quotes it as an identifier
	// anyway so the statement never sees raw input.
	ddl := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{string(slug)}.Sanitize())
	if _, err := p.db.Exec(ctx, ddl); err != nil {
		p.logger.Error("failed to create tenant schema",
			zap.String("slug", string(slug)),
			zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to create schema for tenant %s: %w", slug, err)
	}

	// Migrations run over a connection whose search_path is pinned to
	// the new schema; the migrate driver keeps its bookkeeping table
	// there too, so every partition tracks its own version.
	dsn := fmt.Sprintf("%s search_path=%s", p.baseConnString, slug)
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection for tenant %s: %w", slug, err)
	}
	defer func() { _ = sqlDB.Close() }()

	run := func() error {
		return database.RunMigrationsInSchema(sqlDB, p.migrationsPath, string(slug), p.logger)
	}
	err = run()
	if err != nil && retry.IsRetryable(err) {
		// Transient connection failures get backoff; a broken migration
		// file fails immediately.
		err = retry.Do(ctx, retry.DefaultConfig(), run)
	}
	if err != nil {
		p.logger.Error("failed to materialize clinical schema",
			zap.String("slug", string(slug)),
			zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("failed to materialize schema for tenant %s: %w", slug, err)
	}

	p.logger.Info("tenant partition provisioned", zap.String("slug", string(slug)))
	return nil
}
