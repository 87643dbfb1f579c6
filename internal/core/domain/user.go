package domain

import (
	"errors"
	"fmt"
	"time"
)

// User models a registered account. Username is unique and never changes
// after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrTooManyAttempts      = errors.New("too many failed login attempts")
	ErrInvalidInput         = errors.New("invalid input")
)

// ThrottledError reports that logins for a username are temporarily locked.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrTooManyAttempts, e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error { return ErrTooManyAttempts }
