package event

import "time"

const (
	UserRegistered = "user.registered"
	ProfileUpdated = "profile.updated"
)

// AccountEvent is published after an account change has been committed.
// It is the JSON payload consumed by the email worker.
type AccountEvent struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
