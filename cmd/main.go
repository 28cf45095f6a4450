package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentorship-service/internal/model"
	"mentorship-service/internal/server"
	"mentorship-service/pkg/config"
	"mentorship-service/pkg/database"
	"mentorship-service/pkg/jwtutil"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/mailer"
	"mentorship-service/pkg/tokenstore"
	"mentorship-service/pkg/upload"

	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting mentorship service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateSchema(db, log, model.All()...); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	if err := database.CreateIndexes(db, log, model.Indexes...); err != nil {
		log.Fatal("Failed to create database indexes", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tokens, err := tokenstore.New(startupCtx, cfg.Redis)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize token store", zap.Error(err))
	}

	uploads, err := upload.New(cfg.Upload)
	if err != nil {
		log.Fatal("Failed to initialize upload store", zap.Error(err))
	}

	e := server.New(&server.App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		JWT:     jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: cfg.JWT.SigningKey, ExpirationHours: cfg.JWT.ExpirationHours}),
		Tokens:  tokens,
		Mail:    mailer.New(cfg.Mail, log),
		Uploads: uploads,
	})

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
