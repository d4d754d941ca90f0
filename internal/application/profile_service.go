package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/domain/event"
	repo "github.com/oksasatya/go-profile-service/internal/domain/repository"
)

// UpdateProfileInput carries the fields to change. A nil field is left as is;
// a non-nil field overwrites, including with an empty string.
type UpdateProfileInput struct {
	Name *string
	Bio  *string
}

func (in UpdateProfileInput) empty() bool { return in.Name == nil && in.Bio == nil }

type ProfileService struct {
	Repo   repo.UserRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewProfileService(repo repo.UserRepository, events EventPublisher, logger *logrus.Logger) *ProfileService {
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfileService{Repo: repo, Events: events, Logger: logger}
}

func (s *ProfileService) Read(u *entity.User) entity.ProfileView {
	return u.Profile()
}

// Update applies in to u and saves it. u is only modified once the save succeeds.
func (s *ProfileService) Update(ctx context.Context, u *entity.User, in UpdateProfileInput) (entity.ProfileView, error) {
	if in.empty() {
		return u.Profile(), nil
	}

	next := *u
	if in.Name != nil {
		name := *in.Name
		next.Name = &name
	}
	if in.Bio != nil {
		next.Bio = *in.Bio
	}

	if err := s.Repo.Save(ctx, &next); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return entity.ProfileView{}, ErrUnauthorized
		}
		return entity.ProfileView{}, fmt.Errorf("save profile: %w", err)
	}
	*u = next

	s.Logger.WithField("user_id", u.ID).Info("profile updated")
	publish(ctx, s.Events, s.Logger, event.ProfileUpdated, u)
	return u.Profile(), nil
}
