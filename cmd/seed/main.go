package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidtube-accounts/config"
	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
	mongoinfra "github.com/oksasatya/vidtube-accounts/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/vidtube-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

// seed creates a demo account directly in the configured store.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	userName := flag.String("username", "demouser", "user name")
	email := flag.String("email", "demo@vidtube.local", "email")
	password := flag.String("password", "password123", "plain password")
	fullName := flag.String("fullname", "Demo User", "display name")
	avatar := flag.String("avatar", "https://storage.googleapis.com/vidtube-public/avatars/default.png", "avatar URL")
	flag.Parse()

	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var repo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		r := mongoinfra.NewUserRepository(client.Database(cfg.MongoDatabase))
		if err := r.EnsureIndexes(ctx); err != nil {
			log.Fatalf("failed to ensure indexes: %v", err)
		}
		repo = r
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), MaxConns: 2})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		repo = pginfra.NewUserRepository(pool)
	default:
		log.Fatalf("seeding needs a persistent store, got STORE_DRIVER=%q", cfg.StoreDriver)
	}

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{
		UserName: entity.NormalizeHandle(*userName),
		Email:    entity.NormalizeEmail(*email),
		FullName: *fullName,
		Avatar:   *avatar,
		Password: hash,
	}
	if err := repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.WithField("user_name", u.UserName).Info("demo user already exists")
			return
		}
		log.Fatalf("failed to seed user: %v", err)
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "user_name": u.UserName, "email": u.Email}).Info("seeded demo user")
}
