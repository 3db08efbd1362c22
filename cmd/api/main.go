// @title          Marketplace API
// @version        1.0
// @description    Workers, businesses, jobs and applications.
// @BasePath       /
// @securityDefinitions.apikey  CookieAuth
// @in                          cookie
// @name                        access_token
// @securityDefinitions.apikey  MobileAuth
// @in                          header
// @name                        x-client-access
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/workhive/marketplace-api/internal/api"
	"github.com/workhive/marketplace-api/internal/api/middleware"
	"github.com/workhive/marketplace-api/internal/core/ports"
	"github.com/workhive/marketplace-api/internal/core/service"
	"github.com/workhive/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/workhive/marketplace-api/internal/infrastructure/db/postgres"
	"github.com/workhive/marketplace-api/internal/infrastructure/db/redis"
	"github.com/workhive/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/workhive/marketplace-api/internal/infrastructure/messaging/kafka"
	"github.com/workhive/marketplace-api/internal/infrastructure/queue"
	"github.com/workhive/marketplace-api/internal/infrastructure/storage/gcs"
	"github.com/workhive/marketplace-api/internal/pkg/config"
	"github.com/workhive/marketplace-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Service: "marketplace-api",
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("marketplace-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Relational store ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.DatabaseURL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	}, log)
	if err != nil {
		return err
	}
	defer closeGorm(db, log)
	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
	}
	checkers := map[string]handlers.Checker{"postgres": handlers.PostgresCheck(db)}

	// --- OTP store ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer closeRedis(rdb, log)
	checkers["redis"] = handlers.RedisCheck(rdb)

	// --- Audit trail (optional) ---
	var audit ports.AuditRepository
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "marketplace-api",
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()

		repo := mongo.NewAuditRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		audit = repo
		checkers["mongo"] = handlers.MongoCheck(mdb)
	} else {
		log.Warn().Msg("MONGO_URI not set, security audit trail disabled")
	}

	// --- Event stream (optional) ---
	var publisher ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka writer close")
			}
		}()
		publisher = p
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, identity events are not published")
	}

	// --- Object store (optional) ---
	var objects ports.ObjectStore
	if cfg.Storage.Bucket != "" {
		store, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.Storage.Bucket,
			CredentialsFile: cfg.Storage.CredentialsFile,
		})
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		objects = store
	} else {
		log.Warn().Msg("GCS_BUCKET not set, asset uploads disabled")
	}

	// --- Events ---
	dispatcher := queue.NewDispatcher(
		queue.Config{Workers: cfg.Events.Workers, Buffer: cfg.Events.Buffer},
		service.NewEventService(audit, publisher, log),
		log,
	)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher.Start(workerCtx)

	// --- Use cases ---
	identities := postgres.NewIdentityRepository(db)
	restrictions := postgres.NewRestrictionRepository(db)
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	auth := service.NewAuthService(
		identities,
		tokens,
		redis.NewOTPStore(rdb),
		redis.NewThrottle(rdb),
		dispatcher,
		service.AuthOptions{
			RevalidateOnRefresh: cfg.Auth.RevalidateOnRefresh,
			OTPTTL:              cfg.Auth.OTPTTL,
			OTPCooldown:         cfg.Auth.OTPCooldown,
		},
		log,
	)

	e := api.NewRouter(api.Deps{
		Log:          log,
		Tokens:       tokens,
		Auth:         auth,
		Jobs:         service.NewJobService(postgres.NewJobRepository(db), postgres.NewApplicationRepository(db), identities, log),
		Moderation:   service.NewModerationService(restrictions, identities, audit, dispatcher, log),
		Assets:       service.NewAssetService(objects, cfg.Storage.URLTTL),
		Restrictions: restrictions,
		Cookies: middleware.NewCookies(middleware.CookieConfig{
			Production:    cfg.IsProduction(),
			Domain:        cfg.Auth.CookieDomain,
			AccessMaxAge:  cfg.Auth.AccessCookieMaxAge,
			RefreshMaxAge: cfg.Auth.RefreshCookieMaxAge,
		}),
		CORSOrigins: cfg.CORSOrigins,
		Checkers:    checkers,
	})
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event dispatcher shutdown")
	}
	log.Info().Msg("marketplace-api exited cleanly")
	return nil
}

func closeGorm(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		log.Warn().Err(err).Msg("postgres close")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
