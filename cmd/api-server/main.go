package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/healthcare-portal/internal/activity"
	"github.com/hackgods/healthcare-portal/internal/admin"
	"github.com/hackgods/healthcare-portal/internal/api"
	"github.com/hackgods/healthcare-portal/internal/appointment"
	"github.com/hackgods/healthcare-portal/internal/auth"
	"github.com/hackgods/healthcare-portal/internal/config"
	"github.com/hackgods/healthcare-portal/internal/dashboard"
	"github.com/hackgods/healthcare-portal/internal/db"
	"github.com/hackgods/healthcare-portal/internal/event"
	"github.com/hackgods/healthcare-portal/internal/facility"
	"github.com/hackgods/healthcare-portal/internal/logger"
	"github.com/hackgods/healthcare-portal/internal/provider"
	redisclient "github.com/hackgods/healthcare-portal/internal/redis"
	"github.com/hackgods/healthcare-portal/internal/upload"
	"github.com/hackgods/healthcare-portal/internal/user"
	"github.com/hackgods/healthcare-portal/internal/vitals"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json", "api-server")
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, "api-server")
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	redisCtx, cancelRedis := context.WithTimeout(rootCtx, 5*time.Second)
	rdb, err := redisclient.Connect(redisCtx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	cancelRedis()
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("upload dir error")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	activityStore := activity.NewPgStore(pgPool)
	recorder := activity.NewRecorder(activityStore, log)

	users := user.NewService(user.NewPgRepository(pgPool), tokens, cfg.TOTPIssuer, log)
	appointments := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL).WithWait(cfg.LockWait).WithLogger(log),
		recorder,
		log,
	)
	providers := provider.NewService(provider.NewPgRepository(pgPool))
	facilities := facility.NewService(facility.NewPgRepository(pgPool))
	events := event.NewService(event.NewPgRepository(pgPool), recorder, log)
	vitalSigns := vitals.NewService(vitals.NewPgRepository(pgPool))

	limiter := api.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)
	go limiter.Run(rootCtx)

	router := api.NewRouter(api.RouterConfig{
		Users:        users,
		Appointments: appointments,
		Providers:    providers,
		Facilities:   facilities,
		Events:       events,
		Vitals:       vitalSigns,
		Dashboard:    dashboard.NewService(users, appointments, facilities, providers, vitalSigns),
		Admin:        admin.NewService(admin.NewPgStats(pgPool), appointments, activityStore),
		Images:       upload.NewStore(cfg.UploadDir),

		Tokens:      tokens,
		AuthLimiter: limiter,
		Logger:      log,

		Postgres: pgPool,
		Redis:    api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),

		TrustProxy:     cfg.TrustProxy,
		UploadDir:      cfg.UploadDir,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Env:            cfg.Env,
		Version:        version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatal().Err(err).Msg("http server error")
		}
	case <-rootCtx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
