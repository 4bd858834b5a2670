package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/api"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/config"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/reader"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// @title Smart Meter Readings API
// @version 1.0
// @description Read-only access to the smart meter readings table
// @BasePath /api

func main() {
	// Parse command line flags
	configPath := flag.String("config", os.Getenv("SMARTMETER_CONFIG"), "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.ConfigureLogging(cfg.LogLevel)

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	readingStore, err := store.Open(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		logrus.Fatalf("Failed to connect to store: %v", err)
	}
	defer readingStore.Close()

	// Set up the Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// API routes
	apiHandler := api.NewAPIHandler(readingStore, reader.New(readingStore, cfg.Reader, os.Stdout))
	apiHandler.SetupRoutes(e)

	// Swagger documentation
	e.GET("/swagger/*", echo.WrapHandler(httpSwagger.Handler()))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.Server.AllowedOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(e)

	// Use PORT environment variable if available, otherwise use config
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logrus.Infof("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logrus.Info("Server exited properly")
}
