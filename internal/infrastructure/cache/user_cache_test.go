package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/repository"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]CachedUser
	ttls    map[string]time.Duration
	failAll error
	setErr  error
	delErr  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]CachedUser{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) GetUser(_ context.Context, key string) (*CachedUser, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, false, m.failAll
	}
	cu, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return &cu, true, nil
}

func (m *memStore) SetUser(_ context.Context, key string, u CachedUser, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if m.setErr != nil {
		return m.setErr
	}
	if cur, ok := m.data[key]; ok && cur.Version > u.Version {
		return nil
	}
	m.data[key] = u
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

type countingRepo struct {
	repository.UserRepository
	users     map[int64]*entity.User
	finds     int
	saveErr   error
	afterRead func() // runs after FindByID has copied the row
}

func (c *countingRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	c.finds++
	u, ok := c.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	if c.afterRead != nil {
		hook := c.afterRead
		c.afterRead = nil
		hook()
	}
	return &cp, nil
}

func (c *countingRepo) Save(_ context.Context, u *entity.User) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	u.UpdatedAt = c.users[u.ID].UpdatedAt.Add(time.Second)
	cp := *u
	c.users[u.ID] = &cp
	return nil
}

func newRepo() *countingRepo {
	name := "Ann"
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &countingRepo{users: map[int64]*entity.User{
		1: {ID: 1, Email: "a@x.com", PasswordHash: "secret-hash", Name: &name, Bio: "hi", CreatedAt: at, UpdatedAt: at},
	}}
}

func TestFindByID_ReadThrough(t *testing.T) {
	next, store := newRepo(), newMemStore()
	r := NewUserRepository(next, store, 0, nil)
	ctx := context.Background()

	u, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "secret-hash", u.PasswordHash)
	assert.Equal(t, 1, next.finds)

	cached, ok := store.data["user:profile:1"]
	require.True(t, ok)
	assert.Equal(t, "a@x.com", cached.Email)
	assert.Equal(t, DefaultTTL, store.ttls["user:profile:1"])

	u, err = r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next.finds)
	assert.Equal(t, "hi", u.Bio)
	assert.Equal(t, "Ann", *u.Name)
	assert.Empty(t, u.PasswordHash)
}

func TestFindByID_NotFoundIsNotCached(t *testing.T) {
	next, store := newRepo(), newMemStore()
	r := NewUserRepository(next, store, time.Minute, nil)

	_, err := r.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Empty(t, store.data)
}

func TestSave_RefreshesEntry(t *testing.T) {
	next, store := newRepo(), newMemStore()
	r := NewUserRepository(next, store, time.Minute, nil)
	ctx := context.Background()

	u, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	u.Bio = "updated"
	require.NoError(t, r.Save(ctx, u))
	assert.Equal(t, "updated", store.data["user:profile:1"].Bio)

	u, err = r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "updated", u.Bio)
	assert.Equal(t, 1, next.finds)
}

func TestSave_PartialCacheFailureNeverServesOldProfile(t *testing.T) {
	cases := []struct {
		name    string
		setErr  error
		delErr  error
		wantLog string
	}{
		{name: "delete fails", delErr: errors.New("del refused")},
		{name: "refresh fails", setErr: errors.New("set refused"), wantLog: "cache refresh failed"},
		{name: "refresh and delete fail", setErr: errors.New("set refused"), delErr: errors.New("del refused"), wantLog: "cache invalidate failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, store := newRepo(), newMemStore()
			logger, hook := logtest.NewNullLogger()
			r := NewUserRepository(next, store, time.Minute, logger)
			ctx := context.Background()

			u, err := r.FindByID(ctx, 1)
			require.NoError(t, err)
			require.Equal(t, "hi", store.data["user:profile:1"].Bio)

			store.setErr, store.delErr = tc.setErr, tc.delErr
			u.Bio = "updated"
			require.NoError(t, r.Save(ctx, u))
			if tc.wantLog != "" {
				assert.Equal(t, tc.wantLog, hook.LastEntry().Message)
			}

			got, err := r.FindByID(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, "updated", got.Bio)

			store.setErr, store.delErr = nil, nil
			got, err = r.FindByID(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, "updated", got.Bio)
		})
	}
}

func TestFindByID_SlowReaderDoesNotOverwriteNewerEntry(t *testing.T) {
	next, store := newRepo(), newMemStore()
	r := NewUserRepository(next, store, time.Minute, nil)
	ctx := context.Background()

	// the reader copies the old row, then an update lands before it caches
	next.afterRead = func() {
		upd := *next.users[1]
		upd.Bio = "updated"
		require.NoError(t, r.Save(ctx, &upd))
	}
	old, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "hi", old.Bio)
	assert.Equal(t, "updated", store.data["user:profile:1"].Bio)

	u, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "updated", u.Bio)
	assert.Equal(t, 1, next.finds)
}

func TestSave_ErrorKeepsCache(t *testing.T) {
	next, store := newRepo(), newMemStore()
	r := NewUserRepository(next, store, time.Minute, nil)
	ctx := context.Background()

	u, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	next.saveErr = errors.New("disk full")

	require.Error(t, r.Save(ctx, u))
	assert.Contains(t, store.data, "user:profile:1")
}

func TestCacheFailureFallsThrough(t *testing.T) {
	next, store := newRepo(), newMemStore()
	store.failAll = errors.New("redis down")
	logger, hook := logtest.NewNullLogger()
	r := NewUserRepository(next, store, time.Minute, logger)
	ctx := context.Background()

	u, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Len(t, hook.AllEntries(), 2)

	u.Bio = "x"
	require.NoError(t, r.Save(ctx, u))
	assert.Equal(t, "cache invalidate failed", hook.LastEntry().Message)
}
