// Command import-specializations loads data/ad_specialization.csv into the
// record store, creating one specialization per unseen name.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/recipe-app/healthcare-backend/internal/core/ports"
	"github.com/recipe-app/healthcare-backend/internal/core/service"
	"github.com/recipe-app/healthcare-backend/internal/infrastructure/config"
	mongodb "github.com/recipe-app/healthcare-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/recipe-app/healthcare-backend/internal/infrastructure/db/redis"
	"github.com/recipe-app/healthcare-backend/internal/infrastructure/metrics"
	"github.com/recipe-app/healthcare-backend/internal/infrastructure/report"
	"github.com/recipe-app/healthcare-backend/pkg/logger"
)

var (
	_ ports.SpecializationRepository = (*mongodb.SpecializationRepository)(nil)
	_ ports.UserRepository           = (*mongodb.UserRepository)(nil)
	_ ports.RunLock                  = (*redisdb.Lock)(nil)
	_ ports.ImportMetrics            = (*metrics.Recorder)(nil)
	_ ports.Reporter                 = (*report.StreamReporter)(nil)
	_ ports.ImportService            = (*service.ImportService)(nil)
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	reporter := report.NewStdout()

	cfg, err := config.Load(ctx)
	if err != nil {
		reporter.Error(err.Error())
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "import-specializations",
	})

	path, err := cfg.Import.FilePath()
	if err != nil {
		reporter.Error(err.Error())
		return err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to mongo")
		reporter.Error("Failed to connect to the record store: " + err.Error())
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
		reporter.Error("Failed to prepare the record store: " + err.Error())
		return err
	}

	lock, closeLock, err := runLock(ctx, cfg, log)
	if err != nil {
		reporter.Error("Failed to connect to the lock store: " + err.Error())
		return err
	}
	defer closeLock()

	recorder := metrics.NewRecorder()
	svc := service.NewImportService(
		mongodb.NewSpecializationRepository(db),
		mongodb.NewUserRepository(db),
		reporter,
		lock,
		recorder,
		log,
	)

	_, importErr := svc.Import(ctx, path)
	pushMetrics(ctx, cfg, recorder, log)
	return importErr
}

// runLock returns nil when no Redis address is configured; the import then
// runs unguarded.
func runLock(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.RunLock, func(), error) {
	rcfg := redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if !rcfg.Enabled() {
		log.Debug().Msg("REDIS_ADDR not set, running without import lock")
		return nil, func() {}, nil
	}

	client, err := redisdb.Connect(ctx, rcfg)
	if err != nil {
		log.Error().Err(err).Str("addr", rcfg.Addr).Msg("failed to connect to redis")
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
	return redisdb.NewLock(client, redisdb.ImportLockKey, cfg.Import.LockTTL), closeFn, nil
}

func pushMetrics(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder, log zerolog.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	host, _ := os.Hostname()
	if err := recorder.Push(pushCtx, cfg.Metrics.PushgatewayURL, host); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("failed to push import metrics")
	}
}
