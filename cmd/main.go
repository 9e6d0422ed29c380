package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stocktake-scan-service/internal/broadcast"
	"stocktake-scan-service/internal/config"
	"stocktake-scan-service/internal/infrastructure/database/postgres"
	"stocktake-scan-service/internal/logger"
	"stocktake-scan-service/internal/routes"
	pkgmqtt "stocktake-scan-service/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting stocktake scan service",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	hub := broadcast.NewHub(cfg.Stream.SubscriberBuffer)
	defer hub.Close()

	broadcasters := broadcast.Fanout{hub}

	var mqttBroadcaster *broadcast.MQTTBroadcaster
	if cfg.Broker.Enabled {
		client := pkgmqtt.NewClient(&pkgmqtt.Config{
			Broker:         cfg.Broker.URL,
			ClientID:       cfg.Broker.ClientID,
			Username:       cfg.Broker.Username,
			Password:       cfg.Broker.Password,
			KeepAlive:      30,
			ConnectTimeout: 10,
			AutoReconnect:  true,
		})
		mqttBroadcaster, err = broadcast.NewMQTTBroadcaster(client, cfg.Broker.Topic, byte(cfg.Broker.QoS))
		if err != nil {
			logger.Fatal("Failed to connect scan broadcaster to MQTT broker", zap.Error(err))
		}
		defer mqttBroadcaster.Close()
		broadcasters = append(broadcasters, mqttBroadcaster)

		logger.Info("MQTT scan fan-out enabled",
			zap.String("broker", cfg.Broker.URL),
			zap.String("topic", cfg.Broker.Topic),
		)
	}

	router := routes.SetupRoutes(cfg, db, hub, broadcasters)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE stream endpoint holds its response
		// open for the life of the listener connection.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	// Drop stream subscribers first so open SSE responses return and the
	// server can drain within the shutdown window.
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
