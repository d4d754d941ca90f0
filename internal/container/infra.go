package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/config"
	"github.com/oksasatya/go-profile-service/internal/application"
	repouser "github.com/oksasatya/go-profile-service/internal/domain/repository"
	"github.com/oksasatya/go-profile-service/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/go-profile-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-profile-service/internal/infrastructure/rabbitmq"
	"github.com/oksasatya/go-profile-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/go-profile-service/pkg/helpers"
)

// Closer releases an infrastructure resource. Never nil.
type Closer func()

// OpenUserStore opens the configured database, applies migrations and, when
// REDIS_ADDR is set, puts the profile cache in front of it.
func OpenUserStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repouser.UserRepository, Closer, error) {
	var (
		users   repouser.UserRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		dsn := cfg.PostgresDSN()
		pool, err := pginfra.NewPool(ctx, dsn, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := pginfra.RunMigrations(dsn, logger); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		users = pginfra.NewUserRepository(pool)
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		users = sqlite.NewUserRepository(db)
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		users = cache.NewUserRepository(users, cache.NewRedisStore(rdb), cfg.ProfileCacheTTL, logger)
		logger.WithField("ttl", cfg.ProfileCacheTTL.String()).Info("profile cache enabled")
	}

	return users, closeAll, nil
}

// OpenEventPublisher connects to RabbitMQ when RABBITMQ_URL is set.
// Without it, events are dropped.
func OpenEventPublisher(cfg *config.Config, logger *logrus.Logger) (application.EventPublisher, Closer, error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL empty; account events disabled")
		return application.NopPublisher{}, func() {}, nil
	}
	q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("account events enabled")
	return rabbitmq.NewEventPublisher(q), q.Close, nil
}
