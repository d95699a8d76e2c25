// Package app wires configuration, stores and usecases into one process
// graph shared by the API server and the ops CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"flexemi-backend/internal/adapter/repository/gormrepo"
	"flexemi-backend/internal/config"
	"flexemi-backend/internal/domain/notification"
	"flexemi-backend/internal/infrastructure/auth"
	"flexemi-backend/internal/infrastructure/cache"
	"flexemi-backend/internal/infrastructure/db"
	"flexemi-backend/internal/infrastructure/notify"
	"flexemi-backend/internal/usecase/admin"
	"flexemi-backend/internal/usecase/latefee"
	"flexemi-backend/internal/usecase/loan"
	"flexemi-backend/internal/usecase/payment"
	userUC "flexemi-backend/internal/usecase/user"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg      *config.Config
	Log      *slog.Logger
	DB       *gorm.DB
	Redis    *redis.Client // nil when REDIS_ADDR is empty
	Notifier notification.Notifier
	Tokens   *auth.TokenService

	Engine   *latefee.Engine
	Users    *userUC.Usecase
	Loans    *loan.Usecase
	Payments *payment.Usecase
	Admin    *admin.Usecase

	closers []io.Closer
}

// New opens the configured stores and builds every usecase. Call Close when done.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	a := &App{Cfg: cfg, Log: log}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.LogLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	a.DB = gdb
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, sqlDB)
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(context.Background(), cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		a.Redis = rdb
		a.closers = append(a.closers, rdb)
	}

	a.Notifier = a.notifier()
	a.Tokens = auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL())

	users := gormrepo.NewUserRepository(gdb)
	loans := gormrepo.NewLoanRepository(gdb)
	installments := gormrepo.NewInstallmentRepository(gdb)
	tx := gormrepo.NewGormUoW(gdb)
	loc := cfg.Location()

	engineOpts := []latefee.Option{latefee.WithLocation(loc), latefee.WithLogger(log)}
	if a.Redis != nil && cfg.SweepGateSeconds > 0 {
		engineOpts = append(engineOpts, latefee.WithGate(cache.NewSweepGate(a.Redis, cfg.SweepGateTTL())))
	}
	a.Engine = latefee.NewEngine(loans, tx, engineOpts...)

	a.Users = userUC.NewUsecase(users, a.Tokens, userUC.WithLogger(log))
	a.Loans = loan.NewUsecase(loans, tx, a.Engine, a.Notifier,
		loan.WithLogger(log), loan.WithLocation(loc), loan.WithDefaultLateFee(cfg.DefaultLateFee))
	a.Payments = payment.NewUsecase(loans, installments, tx, a.Notifier, payment.WithLogger(log))
	a.Admin = admin.NewUsecase(users, loans, a.Engine, log)
	return a, nil
}

func (a *App) notifier() notification.Notifier {
	switch a.Cfg.NotifyDriver {
	case "smtp":
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     a.Cfg.SMTPHost,
			Port:     a.Cfg.SMTPPort,
			User:     a.Cfg.SMTPUser,
			Password: a.Cfg.SMTPPassword,
			From:     a.Cfg.SMTPFrom,
			SSL:      a.Cfg.SMTPSSL,
		}, a.Log)
	case "kafka":
		k := notify.NewKafkaNotifier(a.Cfg.KafkaBrokers, a.Cfg.KafkaNotifyTopic, a.Log)
		a.closers = append(a.closers, k)
		return k
	default:
		return notify.NewLogNotifier(a.Log)
	}
}

func (a *App) Migrate() error { return db.Migrate(a.DB) }

// Close releases everything New opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
