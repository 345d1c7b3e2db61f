package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"germanclash/internal/audio"
	"germanclash/internal/config"
	"germanclash/internal/database"
	"germanclash/internal/generation"
	"germanclash/internal/handlers"
	"germanclash/internal/security"
	"germanclash/internal/service"
	"germanclash/migrations"
)

const (
	sessionSweepInterval = 5 * time.Minute
	rankingPruneInterval = 24 * time.Hour
	rankingRetention     = 30 * 24 * time.Hour
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set, using a random secret; tokens will not survive a restart")
		cfg.JWTSecret = security.NewID()
		if cfg.PendingScoreSecret == "" {
			cfg.PendingScoreSecret = cfg.JWTSecret
		}
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()
	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, migrations.Source(cfg.MigrationsPath)); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	// Redis is optional; without it rate limit windows are per process
	var rdb *redis.Client
	var contactLimiter security.WindowLimiter = security.NewMemoryWindow(service.ContactLimit, service.ContactWindow)
	var redisCheck handlers.HealthCheck
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		contactLimiter = security.NewRedisWindow(rdb, "germanclash:contact", service.ContactLimit, service.ContactWindow)
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Println("Connected to redis")
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.EmailDebug)
	if err != nil {
		log.Printf("Warning: email disabled: %v", err)
		emailService = nil
	}

	generator, err := generation.FromConfig(ctx, cfg.LLM, service.NewContentSource(db), slog.Default())
	if err != nil {
		log.Printf("Warning: exercise generation disabled: %v", err)
		generator = nil
	}

	// Initialize services
	rankings := service.NewRankingService(db)
	profiles := service.NewProfileService(db)
	levels := service.NewLevelService(profiles, rankings)
	appConfig := service.NewConfigService(db)
	exercises := service.NewExerciseService(db, generator)
	topics := service.NewTopicService(db)
	sessions := service.NewSessionService(exercises, levels, rankings, appConfig, cfg.SessionTTL)
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	auth := service.NewAuthService(db, tokens, rankings)
	backup := service.NewBackupService(db, appConfig)
	pending := security.NewPendingScoreSigner(cfg.PendingScoreSecret)

	var mailer service.Mailer
	if emailService != nil {
		mailer = emailService
	}
	contact := service.NewContactService(mailer, appConfig, contactLimiter)

	oauthProviders := map[string]handlers.OAuthProvider{}
	if google, ok := handlers.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret); ok {
		oauthProviders[google.Name] = google
		log.Println("Google sign-in enabled")
	}

	limiter := security.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	// Setup routes
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.NewMiddleware(auth, limiter), handlers.Handlers{
		Auth:   handlers.NewAuthHandler(auth, pending, oauthProviders, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL),
		Game:   handlers.NewGameHandler(sessions, exercises, appConfig, audio.NewGoogleTTS(cfg.AudioCachePath), pending),
		Player: handlers.NewPlayerHandler(rankings, levels, profiles, topics, appConfig, contact),
		Admin:  handlers.NewAdminHandler(exercises, topics, appConfig, auth, profiles, backup),
		Health: handlers.NewHealthHandler(db.Check, redisCheck),
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sessions.Run(gctx, sessionSweepInterval)
	})

	g.Go(func() error {
		pruneRankings(gctx, rankings)
		return nil
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// pruneRankings periodically deletes scores no ranking query can reach any more
func pruneRankings(ctx context.Context, rankings *service.RankingService) {
	ticker := time.NewTicker(rankingPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := rankings.Prune(ctx, rankingRetention)
			if err != nil {
				log.Printf("Error pruning rankings: %v", err)
				continue
			}
			log.Printf("Pruned %d old ranking rows", n)
		}
	}
}
