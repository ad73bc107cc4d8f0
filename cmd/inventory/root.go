package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stockroom/inventory-system/internal/core/ports"
	"github.com/stockroom/inventory-system/internal/core/service"
	mongodb "github.com/stockroom/inventory-system/internal/infrastructure/db/mongo"
	redisdb "github.com/stockroom/inventory-system/internal/infrastructure/db/redis"
	"github.com/stockroom/inventory-system/internal/pkg/config"
	"github.com/stockroom/inventory-system/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Inventory system auth backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine; the environment may already be set.
			_ = godotenv.Load(envFile)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	root.AddCommand(newServeCmd(), newAdminCmd())
	return root
}

// app holds the connections and services shared by every subcommand.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	mongo *mongo.Client
	db    *mongo.Database
	redis *goredis.Client

	users    *mongodb.UserRepository
	sessions *redisdb.SessionStore
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Env:     cfg.Env,
		Service: "inventory",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "inventory",
	})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("mongo_db", cfg.Mongo.Database).Str("redis_addr", cfg.Redis.Addr).Msg("connected to backing services")

	return &app{
		cfg:      cfg,
		log:      log,
		mongo:    client,
		db:       db,
		redis:    rdb,
		users:    mongodb.NewUserRepository(db),
		sessions: redisdb.NewSessionStore(rdb),
	}, nil
}

func (a *app) authService(activity ports.ActivityPublisher) *service.AuthService {
	return service.NewAuthService(a.users, a.sessions, activity, a.cfg.JWTSecret, a.cfg.TokenTTL, logger.Component("auth"))
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.redis.Close(); err != nil {
		a.log.Warn().Err(err).Msg("redis close failed")
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
