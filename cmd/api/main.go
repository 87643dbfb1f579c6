// Command api runs the secure post-sharing HTTP API.
//
// @title                       Secure API
// @version                     1.0
// @description                 Registration, login and bearer-token protected post sharing.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/secureapi/secure-api/docs"
	"github.com/secureapi/secure-api/internal/api"
	"github.com/secureapi/secure-api/internal/api/handler"
	"github.com/secureapi/secure-api/internal/core/security"
	"github.com/secureapi/secure-api/internal/core/service"
	mongodb "github.com/secureapi/secure-api/internal/infrastructure/db/mongo"
	redisdb "github.com/secureapi/secure-api/internal/infrastructure/db/redis"
	"github.com/secureapi/secure-api/internal/infrastructure/queue"
	"github.com/secureapi/secure-api/internal/pkg/config"
	"github.com/secureapi/secure-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "secure-api",
		Env:     cfg.Env,
	})

	secret, generated, err := cfg.SigningKey()
	if err != nil {
		return err
	}
	if generated {
		log.Warn().Msg("JWT_SECRET not set; using a random per-process key, issued tokens will not survive a restart")
	}

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "secure-api",
	})
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient, log)

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Audit pipeline ---
	auditService := service.NewAuditService(mongodb.NewAuditRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, log)
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Close()

	// --- Services ---
	codec, err := security.NewTokenCodec(secret, cfg.Auth.TokenTTL, security.WithIssuer("secure-api"))
	if err != nil {
		return err
	}
	users := mongodb.NewUserRepository(db)
	limiter := redisdb.NewLoginLimiter(rdb, redisdb.LimiterConfig{
		MaxAttempts:  cfg.Auth.LoginMaxAttempts,
		Window:       cfg.Auth.LoginWindow,
		LockDuration: cfg.Auth.LoginLockout,
	})
	authService := service.NewAuthService(users, security.NewBcryptHasher(cfg.Auth.BcryptCost), codec, log,
		service.WithLoginLimiter(limiter),
		service.WithAuditSink(dispatcher),
	)
	postService := service.NewPostService(mongodb.NewPostRepository(db), users, log)

	e := api.NewRouter(api.Deps{
		AuthService:   authService,
		Authenticator: authService,
		PostService:   postService,
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger{Client: mongoClient},
			"redis":   handler.RedisPinger{Client: rdb},
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting API server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func disconnectMongo(client interface{ Disconnect(context.Context) error }, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
