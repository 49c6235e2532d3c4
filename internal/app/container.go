package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nuvme-configurator/internal/access"
	"github.com/noah-isme/nuvme-configurator/internal/catalog"
	"github.com/noah-isme/nuvme-configurator/internal/common"
	"github.com/noah-isme/nuvme-configurator/internal/config"
	"github.com/noah-isme/nuvme-configurator/internal/events"
	"github.com/noah-isme/nuvme-configurator/internal/health"
	"github.com/noah-isme/nuvme-configurator/internal/lock"
	"github.com/noah-isme/nuvme-configurator/internal/notify"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
	"github.com/noah-isme/nuvme-configurator/internal/queue"
	"github.com/noah-isme/nuvme-configurator/internal/quote"
	"github.com/noah-isme/nuvme-configurator/internal/ratelimit"
	"github.com/noah-isme/nuvme-configurator/internal/repo"
)

const (
	applicationName = "nuvme-api"
	idempotencyTTL  = 24 * time.Hour
	readyTimeout    = 500 * time.Millisecond
)

// Container owns the process wide dependencies of the API server.
type Container struct {
	Handler http.Handler
	Redis   *redis.Client
	Pool    *pgxpool.Pool
	Catalog *catalog.Catalog
	Quotes  *quote.Service

	closers []func() error
}

// Build connects the configured backends and assembles the HTTP handler.
// Redis and Postgres are optional; without them sessions, locks and rate
// limits stay in process and saving quotes is disabled.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.Catalog = cat

	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	if cfg.RedisURL != "" {
		client, err := OpenRedis(ctx, cfg.RedisURL, cfg.Obs.EnablePrometheus, logger)
		if err != nil {
			return nil, err
		}
		c.Redis = client
		c.closers = append(c.closers, client.Close)
	}
	if cfg.DatabaseURL != "" {
		if cfg.DBAutoMigrate {
			if err := repo.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			logger.Info().Msg("database migrations applied")
		}
		pool, err := OpenPostgres(ctx, cfg.DatabaseURL, applicationName)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
	}

	bus := &events.Bus{
		Notifiers: []events.Notifier{notify.LogNotifier{Logger: logger.With().Str("component", "events").Logger()}},
	}
	svcCfg := quote.ServiceConfig{
		Catalog: cat,
		LockTTL: cfg.LockTTL,
		Events:  bus,
		Logger:  logger.With().Str("component", "quote").Logger(),
	}
	if c.Redis != nil {
		svcCfg.Store = quote.NewRedisStore(c.Redis, cfg.QuoteSessionTTL)
		svcCfg.Locker = lock.Locker{R: c.Redis, RetryBackoff: cfg.LockRetryBackoff}
	} else {
		svcCfg.Store = quote.NewMemoryStore(cfg.QuoteSessionTTL)
	}
	if c.Pool != nil {
		svcCfg.Archive = repo.SavedQuotes{DB: c.Pool}
		bus.Store = repo.Events{DB: c.Pool}
	}

	stats := &queue.StatsHandler{}
	if c.Redis != nil {
		opt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse queue redis url: %w", err)
		}
		inspector := asynq.NewInspector(opt)
		c.closers = append(c.closers, inspector.Close)
		stats.Inspector = inspector
		if cfg.WebhookURL != "" {
			client := asynq.NewClient(opt)
			c.closers = append(c.closers, client.Close)
			bus.Notifiers = append(bus.Notifiers, queue.Notifier{Client: client})
		}
	} else if cfg.WebhookURL != "" {
		logger.Warn().Msg("WEBHOOK_URL is set but REDIS_URL is not; webhook delivery disabled")
	}

	quotes, err := quote.NewService(svcCfg)
	if err != nil {
		return nil, err
	}
	c.Quotes = quotes

	gate, err := access.NewGate(access.Config{
		PINHash:  cfg.AccessPINHash,
		Secret:   cfg.AccessTokenSecret,
		TokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		return nil, err
	}
	if !gate.Enabled() {
		logger.Warn().Msg("ACCESS_PIN_HASH is empty; the configurator is open")
	}

	store, err := ratelimit.NewStore(c.Redis)
	if err != nil {
		return nil, err
	}
	accessLimiter, err := ratelimit.New(cfg.AccessRateLimit, store)
	if err != nil {
		return nil, err
	}
	apiLimiter, err := ratelimit.New(cfg.APIRateLimit, store)
	if err != nil {
		return nil, err
	}

	checks := map[string]health.Check{}
	if c.Pool != nil {
		pool := c.Pool
		checks["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if c.Redis != nil {
		client := c.Redis
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	deps := Deps{
		Logger:         logger,
		Catalog:        cat,
		Quotes:         quotes,
		Gate:           gate,
		Health:         health.Handler{Checks: checks, Timeout: readyTimeout},
		Queue:          stats,
		AccessLimiter:  accessLimiter,
		APILimiter:     apiLimiter,
		Idem:           common.Idem{R: c.Redis, TTL: idempotencyTTL},
		Tracing:        cfg.Obs.EnableTracing,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		BodyLimitBytes: cfg.BodyLimitBytes,
		TrustProxy:     cfg.TrustProxy,
	}
	if cfg.Obs.EnablePrometheus {
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
		deps.MetricsHandler = DefaultMetricsHandler()
	}
	c.Handler = NewRouter(deps)

	ok = true
	return c, nil
}

// Close releases the backends in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// OpenRedis connects and instruments a go-redis client.
func OpenRedis(ctx context.Context, url string, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// OpenPostgres opens a traced pgx pool.
func OpenPostgres(ctx context.Context, url, name string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = name

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
