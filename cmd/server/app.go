package main

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/glucoscreen/internal/analysis"
	"github.com/ZanzyTHEbar/glucoscreen/internal/cache"
	"github.com/ZanzyTHEbar/glucoscreen/internal/config"
	"github.com/ZanzyTHEbar/glucoscreen/internal/database"
	"github.com/ZanzyTHEbar/glucoscreen/internal/extract"
	"github.com/ZanzyTHEbar/glucoscreen/internal/locale"
	"github.com/ZanzyTHEbar/glucoscreen/internal/middleware"
	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
	"github.com/ZanzyTHEbar/glucoscreen/internal/notify"
	"github.com/ZanzyTHEbar/glucoscreen/internal/privacy"
	"github.com/ZanzyTHEbar/glucoscreen/internal/ratelimit"
	"github.com/ZanzyTHEbar/glucoscreen/internal/resilience"
	"github.com/ZanzyTHEbar/glucoscreen/internal/security"
)

// app holds every collaborator the HTTP API needs
type app struct {
	cfg     *config.Config
	logger  *monitoring.Logger
	metrics *monitoring.Metrics

	pipeline  *analysis.Pipeline
	extractor *extract.Extractor
	cache     *cache.Cache
	catalog   *locale.Catalog
	composer  *notify.Composer

	db       *database.DB
	repo     *database.Repository
	sessions *database.SessionService
	privacy  *privacy.PrivacyService

	redis       *ratelimit.RedisClient
	limiter     *ratelimit.RateLimiter
	security    *security.SecurityMiddleware
	compression *middleware.CompressionMiddleware
}

// pipelineOptions maps the model section of the config onto training options
func pipelineOptions(cfg *config.Config) analysis.Options {
	opts := analysis.DefaultOptions()
	opts.TestFraction = cfg.Model.TestFraction
	opts.SplitSeed = cfg.Model.SplitSeed
	opts.Train.C = cfg.Model.C
	opts.Train.MaxIter = cfg.Model.MaxIter
	opts.Train.Tolerance = cfg.Model.Tolerance
	opts.Train.Seed = cfg.Model.SplitSeed
	if cfg.Model.Snapshot {
		opts.Store = analysis.NewModelStore(cfg.Data.Dir)
	}
	return opts
}

// initializePipeline runs training and publishes the outcome as gauges
func initializePipeline(ctx context.Context, p *analysis.Pipeline) error {
	err := p.Initialize(ctx)
	monitoring.PipelineState.Set(float64(p.State()))
	if err != nil {
		return err
	}

	summary, err := p.Summary()
	if err != nil {
		return err
	}
	monitoring.HoldoutAccuracy.Set(summary.Holdout.Accuracy)
	return nil
}

// newApp opens storage and builds the collaborators. The pipeline is created
// but not initialized; callers decide when training runs.
func newApp(ctx context.Context, cfg *config.Config, logger *monitoring.Logger, loader analysis.DatasetLoader) (*app, error) {
	monitoring.Init()
	metrics := monitoring.NewMetrics()

	catalog, err := locale.NewCatalog(cfg.Locale.Default)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale: %w", err)
	}

	db, err := database.NewDB(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := database.NewRepository(db)
	sessions := database.NewSessionService(repo, cfg.Session.JWTSecret, cfg.Session.TTL)

	var redisClient *ratelimit.RedisClient
	err = resilience.Retry(ctx, "redis_connect", func() error {
		var connErr error
		redisClient, connErr = ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return connErr
	})
	if err != nil {
		logger.Warn("Redis unavailable, rate limits are local to this process", "addr", cfg.Redis.Addr, "error", err)
	}

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		IPLimitPerMin:       cfg.RateLimit.PerMinute,
		SessionLimitPerHour: cfg.RateLimit.SessionPerHour,
		BurstMultiplier:     cfg.RateLimit.BurstMultiplier,
		CleanupInterval:     ratelimit.DefaultConfig().CleanupInterval,
	}, metrics)

	secConfig := security.DefaultSecurityConfig()
	secConfig.MaxUploadBytes = cfg.Server.MaxUploadBytes
	secConfig.RequestTimeout = cfg.Server.RequestTimeout
	secConfig.AllowedOrigins = cfg.Security.AllowedOrigins
	secConfig.EnableHSTS = cfg.Security.EnableHSTS

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		pipeline:  analysis.NewPipeline(loader, pipelineOptions(cfg)),
		extractor: extract.New(),
		cache:     cache.NewCache(cfg.Cache.TTL),
		catalog:   catalog,
		composer:  notify.NewComposer(cfg.Contact.Recipient, repo, logger, metrics),
		db:        db,
		repo:      repo,
		sessions:  sessions,
		privacy:   privacy.NewService(db, cfg.Privacy.RetentionDays),
		redis:     redisClient,
		limiter:   limiter,
		security:  security.NewSecurityMiddleware(secConfig, sessions),

		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
	}, nil
}

// probe feeds the health endpoint
func (a *app) probe() (string, bool) {
	return a.pipeline.State().String(), a.pipeline.Ready()
}

// Close releases background workers and connections
func (a *app) Close() {
	a.limiter.Close()
	a.cache.Close()
	if a.redis.IsEnabled() {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}
