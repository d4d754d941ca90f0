package application

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-profile-service/internal/domain/event"
	"github.com/oksasatya/go-profile-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/go-profile-service/pkg/helpers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.AccountEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []event.AccountEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.AccountEvent(nil), p.events...)
}

type testEnv struct {
	repo     *sqlite.UserRepository
	jwt      *helpers.JWTManager
	events   *recordingPublisher
	logger   *logrus.Logger
	logs     *logtest.Hook
	auth     *AuthService
	sessions *SessionResolver
	profiles *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "app.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	env := &testEnv{
		repo:   sqlite.NewUserRepository(db),
		jwt:    helpers.NewJWTManager("test-secret", "", time.Hour),
		events: &recordingPublisher{},
		logger: logger,
		logs:   hook,
	}
	hasher := helpers.NewPasswordHasher(1000)
	env.auth = NewAuthService(env.repo, hasher, env.jwt, env.events, logger)
	env.sessions = NewSessionResolver(env.repo, env.jwt, logger)
	env.profiles = NewProfileService(env.repo, env.events, logger)
	return env
}

func strPtr(s string) *string { return &s }
