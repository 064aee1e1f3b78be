package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrEmailRequired = errors.New("user must have an email address")

// User models an actor in the system. Superusers are the privileged actors
// that own imported records.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Privileged reports whether the user may be attributed as the owner of
// system-level imports ahead of regular users.
func (u *User) Privileged() bool {
	return u != nil && u.IsSuperuser
}
