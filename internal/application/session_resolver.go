package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	repo "github.com/oksasatya/go-profile-service/internal/domain/repository"
)

// SessionResolver turns a bearer token into the user it was issued for.
// Every protected operation calls Resolve first.
type SessionResolver struct {
	Repo   repo.UserRepository
	Tokens TokenDecoder
	Logger *logrus.Logger
}

func NewSessionResolver(repo repo.UserRepository, tokens TokenDecoder, logger *logrus.Logger) *SessionResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionResolver{Repo: repo, Tokens: tokens, Logger: logger}
}

// Resolve returns ErrUnauthorized for a missing, invalid, or expired token and
// for a token whose subject no longer exists. The concrete reason is logged only.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		r.Logger.Debug("session rejected: missing token")
		return nil, ErrUnauthorized
	}
	id, err := r.Tokens.Decode(token)
	if err != nil {
		r.Logger.WithError(err).Info("session rejected")
		return nil, ErrUnauthorized
	}
	u, err := r.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			r.Logger.WithField("user_id", id).Info("session rejected: subject not found")
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}
