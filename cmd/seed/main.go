package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-profile-service/config"
	"github.com/oksasatya/go-profile-service/internal/application"
	"github.com/oksasatya/go-profile-service/internal/container"
	"github.com/oksasatya/go-profile-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "password123", "account password")
	name := flag.String("name", "Demo User", "display name")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	users, closeStore, err := container.OpenUserStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open user store")
	}
	defer closeStore()

	c := container.New(cfg, logger, users, nil)
	u, err := c.Auth.Signup(ctx, *email, *password, name)
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		fmt.Printf("user %s already exists, nothing to do\n", *email)
	case err != nil:
		logger.WithError(err).Fatal("failed to seed user")
	default:
		fmt.Printf("seeded user: id=%d email=%s name=%s\n", u.ID, u.Email, *name)
	}
}
