package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"short-link-service/auth"
	"short-link-service/cache"
	"short-link-service/config"
	"short-link-service/handler"
	appLogger "short-link-service/logger"
	"short-link-service/middleware"
	"short-link-service/preview"
	redisClient "short-link-service/redis"
	"short-link-service/security"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize logger
	appLogger.Initialize(os.Getenv("SHORTLINK_LOG_LEVEL"))

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis client
	rdb := redisClient.NewClient(cfg.Redis)

	// Initialize cache (if enabled)
	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	// Credential signing, preview metadata fetcher, bot signature table
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLDays)*24*time.Hour)
	fetcher := preview.NewFetcher(
		time.Duration(cfg.Preview.FetchTimeout)*time.Second,
		int64(cfg.Preview.MaxBodyKB)*1024,
	)
	bots := security.NewBotDetector(cfg.Bots.Signatures)
	log.Info().Int("signatures", len(cfg.Bots.Signatures)).Msg("Bot detector initialized")

	// Create handlers with dependency injection
	opTimeout := time.Duration(cfg.Redis.OperationTimeout) * time.Second
	linkHandler := handler.NewLinkHandler(rdb, cacheClient, fetcher, bots, cfg)
	userHandler := handler.NewUserHandler(rdb, jwtManager, opTimeout)
	userAuth := middleware.NewUserAuth(jwtManager, rdb, opTimeout)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r.Use(middleware.CORS(cfg.WebServer.FrontendOrigin))
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Register routes
	r.HandleFunc("/health", linkHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", linkHandler.CacheMetrics).Methods("GET")
	r.Handle("/shorten", userAuth.Optional(http.HandlerFunc(linkHandler.CreateShortLink))).Methods("POST")
	r.Handle("/analytics/{shortCode}", userAuth.Optional(http.HandlerFunc(linkHandler.GetAnalytics))).Methods("GET")
	r.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	r.Handle("/auth/me", userAuth.Protect(http.HandlerFunc(userHandler.Me))).Methods("GET")

	// Redirect route (must be last to avoid conflicts)
	r.HandleFunc("/{shortCode}", linkHandler.Redirect).Methods("GET")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Close cache
	if cacheClient != nil {
		cacheClient.Close()
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
