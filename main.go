package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/config"
	"github.com/phc-health/phc-engine/pkg/database"
	"github.com/phc-health/phc-engine/pkg/handlers"
	"github.com/phc-health/phc-engine/pkg/middleware"
	"github.com/phc-health/phc-engine/pkg/repositories"
	"github.com/phc-health/phc-engine/pkg/services"
	"github.com/phc-health/phc-engine/pkg/tenant"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Log startup configuration
	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", cfg.Env)
	log.Printf("  Database: %s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	log.Printf("  Tenant pools: max_conns=%d connect_timeout=%s", cfg.TenantPool.MaxConns, cfg.TenantPool.ConnectTimeout())

	ctx := context.Background()
	baseConnString := cfg.Database.ConnectionString()

	// Management pool: tenants directory, staff accounts, global registry.
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            baseConnString,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Management-schema migrations run over database/sql for the migrate driver.
	migrationDB, err := sql.Open("pgx", baseConnString)
	if err != nil {
		log.Fatalf("Failed to open migration connection: %v", err)
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	_ = migrationDB.Close()

	// Tenant partition plumbing.
	router, err := tenant.NewRouter(tenant.RouterConfig{
		BaseConnString: baseConnString,
		PoolMaxConns:   cfg.TenantPool.MaxConns,
		PoolMinConns:   cfg.TenantPool.MinConns,
		ConnectTimeout: cfg.TenantPool.ConnectTimeout(),
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create tenant router: %v", err)
	}
	defer router.Close()

	provisioner := tenant.NewProvisioner(db, baseConnString, cfg.TenantMigrationsPath, logger)

	// Repositories
	tenantRepo := repositories.NewTenantRepository(db)
	userRepo := repositories.NewUserRepository(db)
	registryRepo := repositories.NewRegistryRepository(db)
	patientRepo := repositories.NewPatientRepository()
	vitalsRepo := repositories.NewVitalsRepository()
	consultationRepo := repositories.NewConsultationRepository()
	medicineRepo := repositories.NewMedicineRepository()

	// Services
	tokenService := auth.NewService(cfg.Auth.SigningKey, cfg.Auth.TokenTTL())
	authService := services.NewAuthService(userRepo, tenantRepo, tokenService, logger)
	tenantService := services.NewTenantService(tenantRepo, userRepo, provisioner, logger)
	patientService := services.NewPatientService(patientRepo, vitalsRepo, registryRepo, tenantRepo, router, logger)
	consultationService := services.NewConsultationService(consultationRepo, patientRepo, logger)
	pharmacyService := services.NewPharmacyService(medicineRepo, logger)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokenService, logger)
	resolver := tenant.NewResolver(tenantRepo, logger)
	tenantMiddleware := handlers.TenantMiddleware(tenant.RequireTenant(resolver, router, logger))

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, router, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTenantsHandler(tenantService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPatientsHandler(patientService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewConsultationsHandler(consultationService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewPharmacyHandler(pharmacyService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	log.Printf("Starting phc-engine on %s (version: %s)", addr, cfg.Version)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// buildLogger picks the zap preset for the environment.
func buildLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
