package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/phc-health/phc-engine/pkg/logging"
	"github.com/phc-health/phc-engine/pkg/retry"
)

const (
	DefaultPoolMaxConns   = 10
	DefaultPoolMinConns   = 1
	DefaultConnectTimeout = 10 * time.Second
)

// RouterConfig holds configuration for the connection router.
type RouterConfig struct {
	// BaseConnString is the shared connection string for the physical
	// server. Each tenant pool derives its target from this plus the
	// slug as a search_path selector.
	BaseConnString string
	PoolMaxConns   int32
	PoolMinConns   int32
	ConnectTimeout time.Duration
}

// Router is a memoizing factory over per-tenant connection pools.
// It assumes the caller already produced a validated, provisioned slug;
// it never validates or provisions itself.
//
// Concurrency contract: concurrent misses on the same slug converge on
// a single constructed pool; misses on different slugs build
// independently without blocking each other; a failed construction is
// never cached, so the next request for that slug retries.
type Router struct {
	mu     sync.RWMutex
	pools  map[Slug]*pgxpool.Pool
	closed bool

	group          singleflight.Group
	baseConfig     *pgxpool.Config
	connectTimeout time.Duration
	logger         *zap.Logger
}

// NewRouter parses the base connection string once and returns a router
// with an empty pool cache. The cache is unbounded; pools live until
// Close. Callers own the router explicitly; there is no package-level
// instance.
func NewRouter(cfg RouterConfig, logger *zap.Logger) (*Router, error) {
	baseConfig, err := pgxpool.ParseConfig(cfg.BaseConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base connection string: %w", err)
	}

	if cfg.PoolMaxConns <= 0 {
		cfg.PoolMaxConns = DefaultPoolMaxConns
	}
	if cfg.PoolMinConns <= 0 {
		cfg.PoolMinConns = DefaultPoolMinConns
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	baseConfig.MaxConns = cfg.PoolMaxConns
	baseConfig.MinConns = cfg.PoolMinConns

	return &Router{
		pools:          make(map[Slug]*pgxpool.Pool),
		baseConfig:     baseConfig,
		connectTimeout: cfg.ConnectTimeout,
		logger:         logger,
	}, nil
}

// Resolve exchanges a validated slug for the tenant's live pool,
// constructing and caching it on first use. A cache hit performs no I/O.
func (r *Router) Resolve(ctx context.Context, slug Slug) (*pgxpool.Pool, error) {
	if slug == "" {
		return nil, fmt.Errorf("empty tenant slug")
	}

	r.mu.RLock()
	pool, ok := r.pools[slug]
	closed := r.closed
	r.mu.RUnlock()

	if closed {
		return nil, fmt.Errorf("router is closed")
	}
	if ok {
		return pool, nil
	}

	// singleflight keys misses per slug: duplicate first-use requests
	// for one tenant share a single construction, while other tenants
	// proceed on their own keys. The key is forgotten once Do returns,
	// so a failed construction is retried by the next request.
	v, err, _ := r.group.Do(string(slug), func() (interface{}, error) {
		r.mu.RLock()
		existing, ok := r.pools[slug]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		built, err := r.buildPool(ctx, slug)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			built.Close()
			return nil, fmt.Errorf("router is closed")
		}
		r.pools[slug] = built
		total := len(r.pools)
		r.mu.Unlock()

		r.logger.Info("created tenant pool",
			zap.String("slug", string(slug)),
			zap.Int("total_pools", total))
		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*pgxpool.Pool), nil
}

// buildPool constructs a pool whose every connection has search_path
// pinned to the tenant's schema. Construction is timeout-bounded and
// retried for transient failures.
func (r *Router) buildPool(ctx context.Context, slug Slug) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
	defer cancel()

	poolConfig := r.baseConfig.Copy()
	poolConfig.ConnConfig.RuntimeParams["search_path"] = string(slug)

	pool, err := retry.DoWithResult(connectCtx, retry.DefaultConfig(), func() (*pgxpool.Pool, error) {
		p, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			return nil, err
		}
		if err := p.Ping(connectCtx); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		r.logger.Error("failed to create tenant pool",
			zap.String("slug", string(slug)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to create pool for tenant %s: %w", slug, err)
	}

	return pool, nil
}

// Stats returns a snapshot of the router's pool cache.
// Safe to call concurrently.
func (r *Router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RouterStats{
		TotalPools:       len(r.pools),
		AcquiredByTenant: make(map[string]int32, len(r.pools)),
	}
	for slug, pool := range r.pools {
		stats.AcquiredByTenant[string(slug)] = pool.Stat().AcquiredConns()
	}
	return stats
}

// RouterStats contains statistics about the router's cached pools.
type RouterStats struct {
	TotalPools       int              `json:"total_pools"`
	AcquiredByTenant map[string]int32 `json:"acquired_by_tenant"`
}

// Close closes every cached pool and rejects further resolution.
// Idempotent and safe to call multiple times.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for _, pool := range r.pools {
		pool.Close()
	}
	r.pools = make(map[Slug]*pgxpool.Pool)
	r.logger.Info("tenant router closed")
}
