package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gnoparus/pbtodo/adapters/events"
	"github.com/gnoparus/pbtodo/adapters/limiter"
	"github.com/gnoparus/pbtodo/adapters/pocketbase"
	"github.com/gnoparus/pbtodo/adapters/store"
	"github.com/gnoparus/pbtodo/adapters/tokenizer"
	"github.com/gnoparus/pbtodo/config"
	"github.com/gnoparus/pbtodo/internal/logger"
	"github.com/gnoparus/pbtodo/ports"
	"github.com/gnoparus/pbtodo/ratelimit"
	"github.com/gnoparus/pbtodo/service"
	"github.com/gnoparus/pbtodo/transport/http"
)

func main() {
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	signKey, err := loadSignKey(cfg.SignKeyPath)
	if err != nil {
		log.Fatal("failed to load signing key", zap.Error(err))
	}

	// Records backend
	pbClient := pocketbase.NewClient(cfg.PocketBase.URL)
	if cfg.PocketBase.ServiceEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pbClient.AuthWithPassword(ctx, cfg.PocketBase.AuthCollection,
			cfg.PocketBase.ServiceEmail, cfg.PocketBase.ServicePassword); err != nil {
			log.Fatal("failed to authenticate against pocketbase", zap.Error(err))
		}
	}
	userStore := pocketbase.NewUserStore(pbClient)
	todoStore := pocketbase.NewTodoStore(pbClient)

	var (
		tokenStore   ports.TokenStore
		loginLimiter ports.AttemptLimiter
		regLimiter   ports.AttemptLimiter
		publisher    message.Publisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to parse redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)

		tokenStore = store.NewRedisStore(redisClient)

		loginLimiter, err = limiter.NewRedisLimiter(redisClient, limiterConfig(cfg.LoginLimiter), log)
		if err != nil {
			log.Fatal("bad login limiter config", zap.Error(err))
		}
		regLimiter, err = limiter.NewRedisLimiter(redisClient, limiterConfig(cfg.RegisterLimiter), log)
		if err != nil {
			log.Fatal("bad register limiter config", zap.Error(err))
		}

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatal("failed to create redis publisher", zap.Error(err))
		}

		log.Info("using redis adapters", zap.String("url", cfg.RedisURL))
	} else {
		memStore := store.NewMemoryStore()
		startPurger(memStore, log)
		tokenStore = memStore

		loginLimiter, err = ratelimit.New(limiterConfig(cfg.LoginLimiter))
		if err != nil {
			log.Fatal("bad login limiter config", zap.Error(err))
		}
		regLimiter, err = ratelimit.New(limiterConfig(cfg.RegisterLimiter))
		if err != nil {
			log.Fatal("bad register limiter config", zap.Error(err))
		}

		publisher = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

		log.Info("using in-memory adapters")
	}

	authService := service.NewAuthService(
		userStore,
		tokenizer.NewJWTTokenizer(signKey),
		tokenStore,
		loginLimiter,
		regLimiter,
		events.NewWatermillPublisher(publisher),
		log,
	)
	authService.SetTokenTTLs(cfg.AccessTTL, cfg.RefreshTTL)

	todoService := service.NewTodoService(todoStore, log)

	router := http.SetupRouter(authService, todoService)

	log.Info("starting server", zap.String("addr", cfg.ServerAddr))
	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func limiterConfig(lc config.LimiterConfig) ratelimit.Config {
	return ratelimit.Config{
		MaxAttempts:   lc.MaxAttempts,
		Window:        lc.Window,
		BlockDuration: lc.BlockDuration,
	}
}

// loadSignKey reads a PEM-encoded ECDSA private key, or generates an
// ephemeral one when no path is configured. An ephemeral key means all
// tokens die with the process, which is fine for development.
func loadSignKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC key: %w", err)
	}
	return key, nil
}

// startPurger drops expired entries from the in-memory token store so
// it does not grow unbounded between restarts.
func startPurger(s *store.MemoryStore, log *zap.Logger) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := s.Purge(); n > 0 {
				log.Debug("purged invalidated tokens", zap.Int("count", n))
			}
		}
	}()
}
