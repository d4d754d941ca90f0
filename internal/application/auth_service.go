package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/event"
	repo "github.com/oksasatya/go-profile-service/internal/domain/repository"
)

const TokenTypeBearer = "bearer"

type AccessToken struct {
	Token     string
	Type      string
	ExpiresAt time.Time
}

// AuthService registers users and exchanges credentials for access tokens.
type AuthService struct {
	Repo   repo.UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Events EventPublisher
	Logger *logrus.Logger

	// verified against on unknown-email logins
	dummyHash string
}

func NewAuthService(repo repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, events EventPublisher, logger *logrus.Logger) *AuthService {
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &AuthService{Repo: repo, Hasher: hasher, Tokens: tokens, Events: events, Logger: logger}
	h, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		logger.WithError(err).Warn("dummy hash generation failed")
	}
	s.dummyHash = h
	return s
}

// Signup creates an account for email. The returned user carries the stored
// hash; callers expose it only through entity.User.Profile.
func (s *AuthService) Signup(ctx context.Context, email, password string, name *string) (*entity.User, error) {
	existing, err := s.Repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Repo.Create(ctx, email, hash, name)
	if err != nil {
		// lost a race with a concurrent signup; the store constraint decided
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Logger.WithField("user_id", u.ID).Info("user registered")
	publish(ctx, s.Events, s.Logger, event.UserRegistered, u)
	return u, nil
}

// Login verifies credentials and issues an access token with the default TTL.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (AccessToken, error) {
	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			// spend the same hashing time as a real check
			s.Hasher.Verify(password, s.dummyHash)
			return AccessToken{}, ErrInvalidCredentials
		}
		return AccessToken{}, fmt.Errorf("lookup email: %w", err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return AccessToken{}, ErrInvalidCredentials
	}

	tok, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue access token failed")
		return AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	return AccessToken{Token: tok, Type: TokenTypeBearer, ExpiresAt: exp}, nil
}

func publish(ctx context.Context, pub EventPublisher, logger *logrus.Logger, typ string, u *entity.User) {
	ev := event.AccountEvent{
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email,
		OccurredAt: time.Now().UTC(),
	}
	if u.Name != nil {
		ev.Name = *u.Name
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "event": typ}).Warn("publish account event failed")
	}
}
