package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/tempora/internal/api/v1"
	"github.com/gosuda/tempora/internal/auth"
	"github.com/gosuda/tempora/internal/calendar"
	"github.com/gosuda/tempora/internal/config"
	"github.com/gosuda/tempora/internal/domain"
	"github.com/gosuda/tempora/internal/notify"
	"github.com/gosuda/tempora/internal/server"
	"github.com/gosuda/tempora/internal/store/postgres"
	redisstore "github.com/gosuda/tempora/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("TEMPORA_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("TEMPORA_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Create auth service.
	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Optional read-only calendar feed.
	var feed domain.CalendarFeed
	if cfg.Google.CredentialsFile != "" {
		googleFeed, feedErr := calendar.NewGoogleFeed(ctx, &cfg.Google)
		if feedErr != nil {
			return feedErr
		}
		feed = googleFeed
		log.Info().Str("calendar", cfg.Google.CalendarID).Msg("calendar feed enabled")
	}

	// Optional Slack capacity alerts.
	var notifier v1.CapacityNotifier
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		notifier = notify.New(notify.NewSlackSender(cfg.Slack.BotToken), cfg.Slack.Channel)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("capacity alerts enabled")
	}

	plannerAPI := v1.NewPlanner(store, pubsub, feed, notifier, cfg.Planner)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, authSvc, plannerAPI)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
