package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/docdb-client/pkg/client"
	"github.com/Sternrassler/docdb-client/pkg/config"
	"github.com/Sternrassler/docdb-client/pkg/cosmos"
	"github.com/Sternrassler/docdb-client/pkg/logging"
	"github.com/Sternrassler/docdb-client/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(cfg.LoggingConfig("docdb-proxy"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it sessions and throttle state stay local
	var redisClient *redis.Client
	redisOpts, err := cfg.RedisOptions()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid Redis configuration")
	}
	if redisOpts != nil {
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisOpts.Addr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		logger.Info().Str("addr", redisOpts.Addr).Msg("Connected to Redis")
	}

	transport, err := client.New(cfg.ClientConfig(redisClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create transport")
	}
	defer transport.Close()

	var store session.Store = session.NewMemoryStore()
	if redisClient != nil {
		store = session.NewRedisStore(redisClient, session.DefaultTTL)
	}

	docdb, err := cosmos.NewClientFromTransport(transport,
		cosmos.WithSessionStore(store),
		cosmos.WithLogger(logging.NewLogger("docdb-client")),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create docdb client")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(docdb, redisClient, cfg).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("endpoint", cfg.Endpoint).
		Str("account", docdb.Account()).
		Str("user_agent", cfg.UserAgent).
		Msg("Starting docdb proxy server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}
