package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "flexemi-backend/internal/adapter/http"
	"flexemi-backend/internal/app"
	"flexemi-backend/internal/config"
	"flexemi-backend/internal/infrastructure/logging"
)

func main() {
	cfg := config.Load()
	log := logging.InitLogger(logging.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	httpadp.Register(e, httpadp.Deps{
		Users:    a.Users,
		Loans:    a.Loans,
		Payments: a.Payments,
		Admin:    a.Admin,
		Tokens:   a.Tokens,
		Redis:    a.Redis,
		IdempTTL: cfg.IdempotencyTTL(),
		Log:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Error("shutdown", "err", err)
	}
}
