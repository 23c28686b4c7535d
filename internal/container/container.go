package container

import (
	"context"
	"fmt"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidtube-accounts/config"
	"github.com/oksasatya/vidtube-accounts/internal/application"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
	"github.com/oksasatya/vidtube-accounts/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/vidtube-accounts/internal/infrastructure/mongo"
	"github.com/oksasatya/vidtube-accounts/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/vidtube-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/vidtube-accounts/internal/infrastructure/search"
	media "github.com/oksasatya/vidtube-accounts/internal/infrastructure/storage"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

// Container holds the components built once at startup and handed to the router.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Users   repository.UserRepository
	Redis   *redis.Client // nil disables rate limiting
	ES      *elasticsearch.Client
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
	Service *application.Service

	closers []func()
}

// New connects every configured backend. Search and email are optional:
// their absence or failure to connect is logged and the feature is skipped.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry),
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}

	users, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	c.Users = users

	storage, err := c.openMedia(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("media: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadTempDir, 0o750); err != nil {
		c.Close()
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
	} else if rdb != nil {
		c.Redis = rdb
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	c.Service = application.NewService(users, c.JWT, storage, logger)

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
	case es != nil:
		c.ES = es
		c.Service.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}

	if cfg.RabbitMQURL != "" && cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; account emails disabled")
		} else {
			c.closers = append(c.closers, pub.Close)
			c.Service.Notify = notify.NewEmailNotifier(pub, cfg.AppName, cfg.SupportURL)
		}
	}
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (repository.UserRepository, error) {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.StoreMemory:
		c.Logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewUserRepository(), nil

	case config.StoreMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = client.Disconnect(context.Background()) })
		repo := mongoinfra.NewUserRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	default:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return pginfra.NewUserRepository(pool), nil
	}
}

func (c *Container) openMedia(ctx context.Context) (application.MediaStorage, error) {
	cfg := c.Config
	if cfg.MediaDriver == config.MediaS3 {
		client, err := helpers.NewS3Client(ctx, helpers.S3Options{
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		return media.NewS3(client, cfg.S3Bucket, cfg.S3PublicBaseURL), nil
	}

	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() { _ = client.Close() })
	return media.NewGCS(client, cfg.GCSBucket), nil
}

// Close releases backends in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
