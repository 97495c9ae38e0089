package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/database"
	"github.com/orablu/space-adoption/internal/handler"
	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/queue"
	"github.com/orablu/space-adoption/internal/repository"
	"github.com/orablu/space-adoption/internal/repository/memory"
	"github.com/orablu/space-adoption/internal/router"
	"github.com/orablu/space-adoption/internal/service"
	"github.com/orablu/space-adoption/internal/storage"
)

// stores is the set of repositories the services run on, whichever driver
// backs them.
type stores struct {
	spaces    service.SpaceStore
	adoptions service.AdoptionStore
	media     service.MediaStore
	stats     service.StatsStore
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Initialize(logger.Config{
		Debug:  cfg.LogDebug,
		Fields: map[string]string{"service": "space-adoption", "env": cfg.Env},
	}); err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	uploads, err := storage.NewUploader(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		logger.Fatal("upload dir", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	var rdb *redis.Client
	if c, err := config.NewRedisClient(ctx, config.LoadRedisConfig()); err != nil {
		logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
	} else {
		rdb = c
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub, err := queue.NewPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, adoption events disabled", zap.Error(err))
		} else {
			events = pub
			defer pub.Close()
		}
	}

	catalog := service.NewCatalogService(st.spaces, uploads)
	adoptions := service.NewAdoptionService(st.spaces, st.adoptions, uploads, events)
	e := router.New(router.Handlers{
		Spaces:    handler.NewSpaceHandler(catalog, adoptions),
		Adoptions: handler.NewAdoptionHandler(adoptions),
		Media:     handler.NewMediaHandler(service.NewMediaService(st.media, uploads)),
		Stats:     handler.NewStatsHandler(service.NewStatsService(st.stats)),
		Auth:      handler.NewAuthHandler(cfg),
		Pages:     handler.Pages{Dir: cfg.PublicDir},
	}, uploads.Dir(), router.Options{
		AdminAuth:      cfg.AdminAuthEnabled,
		JWTSecret:      cfg.JWTSecret,
		Cache:          config.LoadCacheConfig(),
		RateLimit:      config.LoadRateLimitConfig(),
		Redis:          rdb,
		UploadMaxBytes: cfg.UploadMaxBytes,
		RequestTimeout: cfg.RequestTimeout,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr()), zap.String("store", cfg.StoreDriver),
			zap.Bool("admin_auth", cfg.AdminAuthEnabled))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, zap.String("op", "http server"))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("op", "http shutdown"))
	}
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		m := memory.New()
		// The memory store starts empty on every run, so it always gets the catalog.
		for _, s := range database.DefaultCatalog {
			m.AddSpace(s.Name, s.Description, s.Cost)
		}
		logger.Info("memory store ready", zap.Int("spaces", m.SpaceCount()))
		return stores{
			spaces:    m.Spaces,
			adoptions: m.Adoptions,
			media:     m.Media,
			stats:     m.Stats,
			close:     func() error { return nil },
		}, nil
	}

	db, err := database.Open(ctx, dbOptions(cfg))
	if err != nil {
		return stores{}, err
	}
	if cfg.SeedOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, err
		}
		n, err := database.Seed(ctx, db, database.DefaultCatalog)
		if err != nil {
			_ = db.Close()
			return stores{}, err
		}
		logger.Info("catalog seeded", zap.Int("inserted", n))
	}
	spaces := repository.NewSpaceRepo(db)
	return stores{
		spaces:    spaces,
		adoptions: repository.NewAdoptionRepo(db, spaces),
		media:     repository.NewMediaRepo(db),
		stats:     repository.NewStatsRepo(db),
		close:     db.Close,
	}, nil
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{User: cfg.DBUser, Password: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName}
}
