package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-profile-service/internal/domain/event"
)

// PasswordHasher is satisfied by helpers.PasswordHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// TokenDecoder is satisfied by helpers.JWTManager.
type TokenDecoder interface {
	Decode(token string) (int64, error)
}

// EventPublisher delivers account events after a change is committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev event.AccountEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, event.AccountEvent) error { return nil }
