package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// PasswordHash holds the encoded hash produced by the password hasher and is
// never serialized.
//
// Email is immutable after creation. Only Name and Bio change, through
// profile updates.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile returns the outward view of u.
func (u *User) Profile() ProfileView {
	return ProfileView{ID: u.ID, Email: u.Email, Name: u.Name, Bio: u.Bio}
}

// ProfileView is what callers see of a user. It has no credential fields.
type ProfileView struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Bio   string  `json:"bio"`
}
