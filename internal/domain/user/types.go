// Package user contains the user aggregate and its repository port.
package user

import (
	"context"
	"strings"
)

// User is a stored account. PasswordHash is the salted Argon2id
// encoding of the password; the plaintext is never persisted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Active       bool
}

// Greet returns the user's greeting line.
func (u *User) Greet() string {
	return "Hello " + u.Username
}

// Speak returns the user's spoken line.
func (u *User) Speak() string {
	return u.Greet()
}

// Shout returns the spoken line in upper case.
func (u *User) Shout() string {
	return strings.ToUpper(u.Speak())
}

// Repository is the outbound port for user persistence.
// Create and Update receive an already-hashed password.
type Repository interface {
	// Create stores a new user and returns its assigned ID.
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	// GetByID returns the user or (nil, nil) if absent.
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByUsername returns the user or (nil, nil) if absent.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// List returns all users.
	List(ctx context.Context) ([]User, error)
	// Update replaces username and password hash, returning the updated user.
	Update(ctx context.Context, id int64, username, passwordHash string) (*User, error)
	// Delete removes the user.
	Delete(ctx context.Context, id int64) error
}
