package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("SMARTMETER_CONFIG"))
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.ConfigureLogging(cfg.LogLevel)

	logrus.Infof("Setting up table %s on %s", cfg.Database.Table, cfg.Database.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect: %v", err)
	}
	defer s.Close()

	if err := s.CreateTable(ctx); err != nil {
		logrus.Errorf("Failed to create table %s: %v", cfg.Database.Table, err)
		return
	}

	logrus.Info("Setup completed")
}
