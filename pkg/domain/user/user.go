package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = fmt.Errorf("%w: user not found", domain.ErrNotFound)
	// ErrUserUnauthorized is returned when credentials or tokens don't check out.
	ErrUserUnauthorized = fmt.Errorf("%w: user unauthorized", domain.ErrUnauthorized)
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", domain.ErrAlreadyExists)
	// ErrUsernameTaken is returned when registering with a username already in use.
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", domain.ErrAlreadyExists)
)

// User represents a user in the system.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Names     string    `json:"names"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// New creates a new User with a hashed password and current timestamps.
func New(username, email, password, names string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidArgument)
	}
	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrInvalidArgument)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrInvalidArgument)
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidArgument, err)
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Names:     strings.TrimSpace(names),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
