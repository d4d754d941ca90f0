// Package container holds the components built once at startup and shared by
// the router modules.
package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/config"
	"github.com/oksasatya/go-profile-service/internal/application"
	repouser "github.com/oksasatya/go-profile-service/internal/domain/repository"
	handlers "github.com/oksasatya/go-profile-service/internal/interface/http"
	"github.com/oksasatya/go-profile-service/pkg/helpers"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users  repouser.UserRepository
	Hasher *helpers.PasswordHasher
	JWT    *helpers.JWTManager

	Auth     *application.AuthService
	Sessions *application.SessionResolver
	Profiles *application.ProfileService

	AuthHandler    *handlers.AuthHandler
	ProfileHandler *handlers.ProfileHandler
}

// New wires services and handlers on top of an already opened user store.
// events may be nil, in which case account events are dropped.
func New(cfg *config.Config, logger *logrus.Logger, users repouser.UserRepository, events application.EventPublisher) *Container {
	hasher := helpers.NewPasswordHasher(cfg.PasswordRounds)
	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)

	auth := application.NewAuthService(users, hasher, jwt, events, logger)
	sessions := application.NewSessionResolver(users, jwt, logger)
	profiles := application.NewProfileService(users, events, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Users:          users,
		Hasher:         hasher,
		JWT:            jwt,
		Auth:           auth,
		Sessions:       sessions,
		Profiles:       profiles,
		AuthHandler:    handlers.NewAuthHandler(auth, logger),
		ProfileHandler: handlers.NewProfileHandler(sessions, profiles, logger),
	}
}
