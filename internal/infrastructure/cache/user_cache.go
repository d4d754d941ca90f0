// Package cache provides a read-through Redis cache in front of a user store.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/repository"
	"github.com/oksasatya/go-profile-service/pkg/helpers"
)

const (
	keyPrefix  = "user:profile:"
	DefaultTTL = 5 * time.Minute
)

// Store is the key-value surface the cache needs.
//
// SetUser must leave an existing entry in place when its Version is greater
// than u.Version, so a slow reader cannot overwrite a fresher write.
type Store interface {
	GetUser(ctx context.Context, key string) (*CachedUser, bool, error)
	SetUser(ctx context.Context, key string, u CachedUser, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedUser is a user record without its password hash. Version is
// UpdatedAt in microseconds.
type CachedUser struct {
	Version   int64     `json:"version"`
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromEntity(u *entity.User) CachedUser {
	return CachedUser{Version: u.UpdatedAt.UnixMicro(), ID: u.ID, Email: u.Email, Name: u.Name, Bio: u.Bio, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (c CachedUser) toEntity() *entity.User {
	return &entity.User{ID: c.ID, Email: c.Email, Name: c.Name, Bio: c.Bio, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// RedisStore implements Store on go-redis.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) GetUser(ctx context.Context, key string) (*CachedUser, bool, error) {
	var cu CachedUser
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, key, &cu)
	if err != nil || !ok {
		return nil, false, err
	}
	return &cu, true, nil
}

func (s *RedisStore) SetUser(ctx context.Context, key string, u CachedUser, ttl time.Duration) error {
	_, err := helpers.RedisSetJSONUnlessNewer(ctx, s.rdb, key, u, u.Version, ttl)
	return err
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, s.rdb, key)
}

// UserRepository caches FindByID results. Cache failures are logged and
// the call falls through to the wrapped store.
//
// Users returned from the cache have an empty PasswordHash. Login goes
// through FindByEmail, which is never cached.
type UserRepository struct {
	next   repository.UserRepository
	store  Store
	ttl    time.Duration
	logger *logrus.Logger

	mu    sync.Mutex
	stale map[int64]struct{} // saved ids whose cache entry could not be refreshed or dropped
}

func NewUserRepository(next repository.UserRepository, store Store, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserRepository{next: next, store: store, ttl: ttl, logger: logger, stale: map[int64]struct{}{}}
}

func key(id int64) string { return keyPrefix + strconv.FormatInt(id, 10) }

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	k := key(id)
	if r.isStale(id) {
		if err := r.store.Del(ctx, k); err != nil {
			r.logger.WithError(err).WithField("key", k).Warn("cache invalidate retry failed")
			return r.next.FindByID(ctx, id)
		}
		r.clearStale(id)
	}

	cu, ok, err := r.store.GetUser(ctx, k)
	if err != nil {
		r.logger.WithError(err).WithField("key", k).Warn("cache get failed")
	} else if ok {
		return cu.toEntity(), nil
	}

	u, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetUser(ctx, k, fromEntity(u), r.ttl); err != nil {
		r.logger.WithError(err).WithField("key", k).Warn("cache set failed")
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string) (*entity.User, error) {
	return r.next.Create(ctx, email, passwordHash, name)
}

// Save writes through and replaces the cached entry with u. When the
// refresh fails the key is deleted instead; when that fails too, FindByID
// bypasses the cache for u.ID until a delete succeeds.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	err := r.next.Save(ctx, u)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	k := key(u.ID)
	if err == nil {
		serr := r.store.SetUser(ctx, k, fromEntity(u), r.ttl)
		if serr == nil {
			return nil
		}
		r.logger.WithError(serr).WithField("user_id", u.ID).Warn("cache refresh failed")
	}
	if derr := r.store.Del(ctx, k); derr != nil {
		r.logger.WithError(derr).WithField("user_id", u.ID).Warn("cache invalidate failed")
		r.markStale(u.ID)
	}
	return err
}

func (r *UserRepository) isStale(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stale[id]
	return ok
}

func (r *UserRepository) markStale(id int64) {
	r.mu.Lock()
	r.stale[id] = struct{}{}
	r.mu.Unlock()
}

func (r *UserRepository) clearStale(id int64) {
	r.mu.Lock()
	delete(r.stale, id)
	r.mu.Unlock()
}

var _ repository.UserRepository = (*UserRepository)(nil)
