package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/generator"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/session"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("SMARTMETER_CONFIG"))
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.ConfigureLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (store.ReadingStore, error) {
		return store.Open(ctx, cfg.Database)
	}

	err = session.Run(ctx, "generator", open, func(ctx context.Context, s store.ReadingStore) {
		generator.New(s, cfg.Generator).Run(ctx)
	})
	if err != nil {
		logrus.Errorf("Failed to connect to the database, check DB_* settings or the .env file: %v", err)
	}
}
