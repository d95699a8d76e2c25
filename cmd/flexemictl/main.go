package main

import (
	"fmt"
	"os"

	"flexemi-backend/internal/app"
	"flexemi-backend/internal/config"
	"flexemi-backend/internal/infrastructure/logging"
)

func main() {
	open := func() (*app.App, error) {
		cfg := config.Load()
		// ops commands never serve HTTP; the sweep bypasses the gate
		cfg.RedisAddr = ""
		log := logging.InitLogger(logging.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
		return app.New(cfg, log)
	}
	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
