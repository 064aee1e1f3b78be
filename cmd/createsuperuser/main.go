// Command createsuperuser creates the privileged user that owns imported
// records. It reads SUPERUSER_EMAIL, SUPERUSER_PASSWORD and SUPERUSER_NAME.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
	"github.com/recipe-app/healthcare-backend/internal/core/ports"
	"github.com/recipe-app/healthcare-backend/internal/core/service"
	"github.com/recipe-app/healthcare-backend/internal/infrastructure/config"
	mongodb "github.com/recipe-app/healthcare-backend/internal/infrastructure/db/mongo"
	"github.com/recipe-app/healthcare-backend/internal/infrastructure/report"
	"github.com/recipe-app/healthcare-backend/pkg/logger"
)

var _ ports.UserService = (*service.UserService)(nil)

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
		Service: "createsuperuser",
	})

	if cfg.Superuser.Email == "" || cfg.Superuser.Password == "" {
		reporter.Error("SUPERUSER_EMAIL and SUPERUSER_PASSWORD must be set.")
		return errors.New("superuser credentials missing")
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
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		reporter.Error("Failed to prepare the record store: " + err.Error())
		return err
	}

	svc := service.NewUserService(mongodb.NewUserRepository(db), 0, log)
	user, err := svc.CreateSuperuser(ctx, cfg.Superuser.Email, cfg.Superuser.Password, cfg.Superuser.Name)
	switch {
	case errors.Is(err, domain.ErrUserExists):
		reporter.Warning(fmt.Sprintf("User already exists: %s", service.NormalizeEmail(cfg.Superuser.Email)))
		return nil
	case err != nil:
		reporter.Error("Failed to create superuser: " + err.Error())
		return err
	}

	reporter.Success(fmt.Sprintf("Superuser created: %s", user.Email))
	return nil
}
