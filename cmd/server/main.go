package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ticketmail/ticketmail/internal/config"
	"github.com/ticketmail/ticketmail/internal/database"
	"github.com/ticketmail/ticketmail/internal/email"
	"github.com/ticketmail/ticketmail/internal/handler"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/middleware"
	"github.com/ticketmail/ticketmail/internal/newsletter"
	"github.com/ticketmail/ticketmail/internal/repository"
	"github.com/ticketmail/ticketmail/internal/router"
	"github.com/ticketmail/ticketmail/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting TicketMail server")

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Connect to Redis. The cache is optional; the server runs without it.
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, subscriber cache disabled")
		rdb = nil
	} else {
		defer rdb.Close()
		log.Info().Msg("connected to Redis")
	}

	// Initialize repositories
	emailRepo := repository.NewEmailRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)

	// Initialize mail transport
	sender, err := email.NewFromConfig(context.Background(), cfg.Email)
	if err != nil {
		log.Warn().Err(err).Msg("mail transport unavailable, send endpoints will fail")
		sender = email.Unavailable(err)
	} else {
		log.Info().Str("provider", cfg.Email.Provider).Msg("mail transport initialized")
	}

	// Initialize the newsletter renderer (loads embedded images once)
	renderer := newsletter.NewRenderer(cfg.Newsletter.AppName, cfg.Newsletter.ImagesDir, cfg.Newsletter.UnsubscribeBaseURL)

	// Initialize services
	emailSvc := service.NewEmailService(emailRepo, sender, renderer, cfg.Email.SenderAddress, cfg.Email.SenderName, log)
	subscriberSvc := service.NewSubscriberService(subscriberRepo, rdb, log)
	broadcastSvc := service.NewBroadcastService(broadcastRepo, subscriberRepo, emailRepo, sender, renderer, cfg.Email.SenderAddress, cfg.Email.SenderName, log)

	// Initialize handlers
	h := handler.New(db, rdb, log, cfg, emailSvc, subscriberSvc, broadcastSvc)

	// Initialize middleware
	mw := middleware.New(log, cfg)

	// Set up router
	r := router.New(h, mw, cfg.Server.AllowedOrigins)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
