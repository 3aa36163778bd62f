package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-niaga/internal/config"
	"github.com/noah-isme/backend-niaga/internal/coupon"
	"github.com/noah-isme/backend-niaga/internal/lock"
	"github.com/noah-isme/backend-niaga/internal/obs"
)

const sweepLockKey = "lock:coupon:sweep"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics("niaga", nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisClient = mustInitRedis(ctx, cfg, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
	}

	couponStore := coupon.NewStore(pool)
	locker := lock.Locker{R: redisClient}

	sweep := func(ctx context.Context) error {
		n, err := couponStore.DeactivateExpired(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			if obs.CouponSweepTotal != nil {
				obs.CouponSweepTotal.Add(float64(n))
			}
			logger.Info().Int64("deactivated", n).Msg("coupon sweep")
		}
		return nil
	}

	logger.Info().Dur("interval", cfg.SweepInterval).Msg("worker starting")
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		var err error
		if redisClient != nil {
			err = locker.WithLock(ctx, sweepLockKey, cfg.SweepInterval, sweep)
		} else {
			err = sweep(ctx)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("coupon sweep failed")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutdown complete")
			return
		case <-ticker.C:
		}
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}
