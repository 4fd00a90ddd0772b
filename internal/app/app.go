package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/netfab/bdscan/internal/config"
	"github.com/netfab/bdscan/internal/discovery"
	"github.com/netfab/bdscan/internal/httpserver"
	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
	"github.com/netfab/bdscan/internal/metrics"
	"github.com/netfab/bdscan/internal/redis"
	"github.com/netfab/bdscan/internal/scheduler"
	redisstore "github.com/netfab/bdscan/internal/store/redis"
	"github.com/netfab/bdscan/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.SnapshotReloader
	pruner      *scheduler.Pruner
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDialTimeout,
		ReadTimeout:    cfg.RedisReadTimeout,
		WriteTimeout:   cfg.RedisWriteTimeout,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	memIndex := index.NewMemoryIndex()
	store := redisstore.NewStore(redisClient)

	// Warm the index from redis so the read path serves data before the
	// first snapshot ingest completes.
	syncer := scheduler.NewRedisSyncer(store, memIndex, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to sync from redis on startup, will populate from snapshot",
			logger.Error(err))
	}

	mtr := metrics.New()
	runner := discovery.NewRunner(loggerClient, cfg.Workers)

	reloadTrigger := make(chan struct{}, 1)
	runTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewSnapshotReloader(
		cfg.SnapshotFile,
		runner,
		store,
		memIndex,
		mtr,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
		runTrigger,
	)

	pruner := scheduler.NewPruner(
		store,
		memIndex,
		loggerClient,
		cfg.PruneInterval,
		cfg.PruneAge,
	)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		SnapshotFile:  cfg.SnapshotFile,
		RedisClient:   redisClient,
		MemoryIndex:   memIndex,
		Metrics:       mtr,
		ReloadTrigger: reloadTrigger,
		RunTrigger:    runTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
		pruner:      pruner,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting bdscan v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bdscan %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start snapshot reloader (ingests once and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start snapshot reloader: %w", err)
	}
	a.logger.Info("snapshot reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.pruner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start pruner: %w", err)
	}
	a.logger.Info("pruner started",
		logger.Duration("interval", a.cfg.PruneInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("Redis closed cleanly")
		}
	}

	a.logger.Info("bdscan stopped cleanly")
	return nil
}
